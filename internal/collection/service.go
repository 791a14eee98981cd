package collection

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"gamenight/internal/metrics"
	synchub "gamenight/internal/sync"
	"gamenight/internal/store"
	"gamenight/pkg/models"
)

// Sync sources recorded in metrics and events.
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
	SourceFailed = "failed"
)

// Fetcher loads a user's collection membership from the remote API.
type Fetcher interface {
	FetchCollection(ctx context.Context, user string) (*models.CollectionInfo, error)
}

// Resolver turns a collection into full game records.
type Resolver interface {
	ResolveGames(ctx context.Context, info models.CollectionInfo) ([]models.Game, error)
}

// Publisher receives sync events.
type Publisher interface {
	BroadcastJSON(v any)
}

type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Events  Publisher
	Now     func() time.Time
}

// Service sequences collection lookup, remote fetch, caching and game
// resolution for a username. Its sync operations never return errors: any
// failure is logged and reported as a nil collection.
type Service struct {
	store    store.Store
	fetcher  Fetcher
	resolver Resolver
	log      *zap.Logger
	metrics  *metrics.Metrics
	events   Publisher
	now      func() time.Time
}

func NewService(st store.Store, fetcher Fetcher, resolver Resolver, opts Options) *Service {
	s := &Service{
		store:    st,
		fetcher:  fetcher,
		resolver: resolver,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		events:   opts.Events,
		now:      opts.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Sync returns the cached collection of user, fetching and caching it when
// absent, together with its resolved games. A nil collection means no data
// is available.
func (s *Service) Sync(ctx context.Context, user string) (*models.CollectionInfo, []models.Game) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, nil
	}

	source := SourceCache
	info := s.cached(ctx, user)
	if info == nil {
		source = SourceRemote
		info = s.fetch(ctx, user)
	}
	if info == nil {
		s.metrics.SyncRun(SourceFailed)
		return nil, nil
	}
	return info, s.resolve(ctx, info, source)
}

// Refresh fetches user's collection from the remote API even when it is
// cached, then resolves its games.
func (s *Service) Refresh(ctx context.Context, user string) (*models.CollectionInfo, []models.Game) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, nil
	}
	info := s.fetch(ctx, user)
	if info == nil {
		s.metrics.SyncRun(SourceFailed)
		return nil, nil
	}
	return info, s.resolve(ctx, info, SourceRemote)
}

// Lookup returns user's collection without resolving games. With
// fetchOnMissing a cache miss is filled from the remote API.
func (s *Service) Lookup(ctx context.Context, user string, fetchOnMissing bool) *models.CollectionInfo {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil
	}
	if info := s.cached(ctx, user); info != nil {
		return info
	}
	if !fetchOnMissing {
		return nil
	}
	return s.fetch(ctx, user)
}

// List returns every cached collection ordered by user.
func (s *Service) List(ctx context.Context) ([]models.CollectionInfo, error) {
	snaps, err := s.store.All(ctx, store.Collections)
	if err != nil {
		return nil, err
	}
	out := make([]models.CollectionInfo, 0, len(snaps))
	for _, snap := range snaps {
		var info models.CollectionInfo
		if err := snap.DataTo(&info); err != nil {
			s.log.Warn("skipping undecodable collection", zap.String("id", snap.ID()), zap.Error(err))
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out, nil
}

func (s *Service) cached(ctx context.Context, user string) *models.CollectionInfo {
	snaps, err := s.store.WhereEqual(ctx, store.Collections, "user", user)
	if err != nil {
		s.log.Error("collection cache lookup failed, falling back to remote", zap.String("user", user), zap.Error(err))
		return nil
	}
	if len(snaps) == 0 {
		return nil
	}
	var info models.CollectionInfo
	if err := snaps[0].DataTo(&info); err != nil {
		s.log.Warn("cached collection undecodable", zap.String("user", user), zap.Error(err))
		return nil
	}
	return &info
}

// fetch loads the collection remotely, stamps it and writes it to the cache.
// A failed cache write still returns the fetched collection.
func (s *Service) fetch(ctx context.Context, user string) *models.CollectionInfo {
	info, err := s.fetcher.FetchCollection(ctx, user)
	if err != nil {
		s.log.Warn("collection fetch failed", zap.String("user", user), zap.Error(err))
		return nil
	}
	if info == nil {
		return nil
	}
	info.User = user
	info.Size = len(info.Games)
	info.UpdatedAt = s.now().UTC()

	if err := s.store.Set(ctx, store.Collections, user, info); err != nil {
		s.log.Error("collection cache write failed", zap.String("user", user), zap.Error(err))
	}
	return info
}

func (s *Service) resolve(ctx context.Context, info *models.CollectionInfo, source string) []models.Game {
	games, err := s.resolver.ResolveGames(ctx, *info)
	if err != nil {
		s.log.Warn("game resolution incomplete",
			zap.String("user", info.User),
			zap.Int("resolved", len(games)),
			zap.Int("size", info.Size),
			zap.Error(err),
		)
	}
	s.metrics.SyncRun(source)
	s.log.Info("collection synced",
		zap.String("user", info.User),
		zap.String("source", source),
		zap.Int("games", len(games)),
	)
	if s.events != nil {
		s.events.BroadcastJSON(synchub.CollectionEvent{
			Type:   synchub.CollectionSynced,
			User:   info.User,
			Size:   info.Size,
			Games:  len(games),
			Source: source,
			At:     s.now().UTC(),
		})
	}
	return games
}
