package grpcserver

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"gamenight/pkg/models"
)

type fakeCollections struct {
	refreshed []string
}

func (f *fakeCollections) Sync(ctx context.Context, user string) (*models.CollectionInfo, []models.Game) {
	if user != "Domonation" {
		return nil, nil
	}
	return &models.CollectionInfo{User: user, Size: 1, Games: []models.GameRef{{ID: "13"}}},
		[]models.Game{{ID: "13", Name: "CATAN", OwnedBy: []string{user}}}
}

func (f *fakeCollections) Refresh(ctx context.Context, user string) (*models.CollectionInfo, []models.Game) {
	f.refreshed = append(f.refreshed, user)
	return f.Sync(ctx, user)
}

type fakeGames struct {
	resolveErr error
	resolved   []models.Game
}

func (f *fakeGames) ResolveGames(ctx context.Context, info models.CollectionInfo) ([]models.Game, error) {
	return f.resolved, f.resolveErr
}

func (f *fakeGames) Get(ctx context.Context, id string) (*models.Game, error) {
	if id == "13" {
		return &models.Game{ID: "13", Name: "CATAN", BestPlayers: "4"}, nil
	}
	return nil, nil
}

func (f *fakeGames) ForGroup(ctx context.Context, users []string) []models.Game {
	if len(users) == 2 {
		return []models.Game{{ID: "822", BestPlayers: "2"}}
	}
	return nil
}

func dial(t *testing.T, srv *Server) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterCollectionServiceServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestSync(t *testing.T) {
	cols := &fakeCollections{}
	c := dial(t, NewServer(cols, &fakeGames{}, nil))
	ctx := context.Background()

	resp, err := c.Sync(ctx, &SyncRequest{User: "Domonation"})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	require.Len(t, resp.Games, 1)
	assert.Equal(t, []string{"Domonation"}, resp.Games[0].OwnedBy)

	resp, err = c.Sync(ctx, &SyncRequest{User: "ghost"})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Games)

	_, err = c.Sync(ctx, &SyncRequest{User: "Domonation", Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Domonation"}, cols.refreshed)

	_, err = c.Sync(ctx, &SyncRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestResolveGames(t *testing.T) {
	games := &fakeGames{resolved: []models.Game{{ID: "13"}}}
	c := dial(t, NewServer(&fakeCollections{}, games, nil))
	ctx := context.Background()
	req := &ResolveGamesRequest{Collection: models.CollectionInfo{User: "u", Games: []models.GameRef{{ID: "13"}, {ID: "822"}}}}

	resp, err := c.ResolveGames(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.Incomplete)
	assert.Len(t, resp.Games, 1)

	games.resolveErr = errors.New("remote down")
	resp, err = c.ResolveGames(ctx, req)
	require.NoError(t, err)
	assert.True(t, resp.Incomplete)

	games.resolved = nil
	_, err = c.ResolveGames(ctx, req)
	assert.Equal(t, codes.Unavailable, status.Code(err))

	resp, err = c.ResolveGames(ctx, &ResolveGamesRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Games)
}

func TestGetGame(t *testing.T) {
	c := dial(t, NewServer(&fakeCollections{}, &fakeGames{}, nil))
	ctx := context.Background()

	resp, err := c.GetGame(ctx, &GetGameRequest{ID: "13"})
	require.NoError(t, err)
	assert.Equal(t, "CATAN", resp.Game.Name)

	_, err = c.GetGame(ctx, &GetGameRequest{ID: "404"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.GetGame(ctx, &GetGameRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGroupGames(t *testing.T) {
	c := dial(t, NewServer(&fakeCollections{}, &fakeGames{}, nil))
	ctx := context.Background()

	resp, err := c.GroupGames(ctx, &GroupGamesRequest{Users: []string{"ana", " ben ", ""}})
	require.NoError(t, err)
	require.Len(t, resp.Games, 1)
	assert.Equal(t, "822", resp.Games[0].ID)

	_, err = c.GroupGames(ctx, &GroupGamesRequest{Users: []string{" "}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
