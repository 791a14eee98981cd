package grpcserver

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gamenight/pkg/models"
)

// Collections syncs users' collections.
type Collections interface {
	Sync(ctx context.Context, user string) (*models.CollectionInfo, []models.Game)
	Refresh(ctx context.Context, user string) (*models.CollectionInfo, []models.Game)
}

// Games reads and resolves cached games.
type Games interface {
	ResolveGames(ctx context.Context, info models.CollectionInfo) ([]models.Game, error)
	Get(ctx context.Context, id string) (*models.Game, error)
	ForGroup(ctx context.Context, users []string) []models.Game
}

type Server struct {
	Collections Collections
	Games       Games
	Log         *zap.Logger
}

func NewServer(collections Collections, games Games, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Collections: collections, Games: games, Log: log}
}

func (s *Server) Sync(ctx context.Context, req *SyncRequest) (*SyncResponse, error) {
	user := strings.TrimSpace(req.User)
	if user == "" {
		return nil, status.Error(codes.InvalidArgument, "user required")
	}

	var (
		info  *models.CollectionInfo
		games []models.Game
	)
	if req.Refresh {
		info, games = s.Collections.Refresh(ctx, user)
	} else {
		info, games = s.Collections.Sync(ctx, user)
	}
	if games == nil {
		games = []models.Game{}
	}
	return &SyncResponse{Found: info != nil, Collection: info, Games: games}, nil
}

func (s *Server) ResolveGames(ctx context.Context, req *ResolveGamesRequest) (*ResolveGamesResponse, error) {
	if len(req.Collection.Games) == 0 {
		return &ResolveGamesResponse{Games: []models.Game{}}, nil
	}
	games, err := s.Games.ResolveGames(ctx, req.Collection)
	if err != nil {
		s.Log.Warn("resolve games incomplete",
			zap.String("user", req.Collection.User),
			zap.Int("resolved", len(games)),
			zap.Error(err),
		)
		if len(games) == 0 {
			return nil, status.Error(codes.Unavailable, "game metadata unavailable")
		}
		return &ResolveGamesResponse{Games: games, Incomplete: true}, nil
	}
	if games == nil {
		games = []models.Game{}
	}
	return &ResolveGamesResponse{Games: games}, nil
}

func (s *Server) GetGame(ctx context.Context, req *GetGameRequest) (*GetGameResponse, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}

	g, err := s.Games.Get(ctx, id)
	if err != nil {
		return nil, status.Error(codes.Unavailable, "cache unavailable")
	}
	if g == nil {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return &GetGameResponse{Game: *g}, nil
}

func (s *Server) GroupGames(ctx context.Context, req *GroupGamesRequest) (*GroupGamesResponse, error) {
	var users []string
	for _, u := range req.Users {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	if len(users) == 0 {
		return nil, status.Error(codes.InvalidArgument, "users required")
	}
	games := s.Games.ForGroup(ctx, users)
	if games == nil {
		games = []models.Game{}
	}
	return &GroupGamesResponse{Games: games}, nil
}
