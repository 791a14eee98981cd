package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamenight/internal/store"
	"gamenight/pkg/models"
	"gamenight/pkg/utils"
)

func TestNewMemory(t *testing.T) {
	cfg := utils.Defaults()
	cfg.Store.Backend = utils.StoreMemory

	a, err := New(context.Background(), &cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &store.MemoryStore{}, a.Store)
	assert.NotNil(t, a.Collections)
	assert.NotNil(t, a.Games)
	assert.NotNil(t, a.Nights)
	assert.NoError(t, a.Ping(context.Background()))
}

func TestNewSQLite(t *testing.T) {
	cfg := utils.Defaults()
	cfg.Store.DBPath = filepath.Join(t.TempDir(), "cache.db")

	a, err := New(context.Background(), &cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Ping(ctx))
	_, _, err = a.Games.Save(ctx, models.Game{ID: "13", Name: "CATAN", BestPlayers: "4"})
	require.NoError(t, err)

	g, err := a.Games.Get(ctx, "13")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "CATAN", g.Name)

	require.NoError(t, a.Close())
	assert.Error(t, a.Ping(ctx))
}

func TestNewUnknownBackend(t *testing.T) {
	cfg := utils.Defaults()
	cfg.Store.Backend = "postgres"
	_, err := New(context.Background(), &cfg, nil)
	assert.Error(t, err)
}
