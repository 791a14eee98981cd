package games

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamenight/internal/store"
	"gamenight/pkg/models"
)

func seedGroupGames(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, g := range []models.Game{
		func() models.Game { g := testGame("1", "Patchwork", "2"); g.OwnedBy = []string{"ana"}; return g }(),
		func() models.Game { g := testGame("2", "Jaipur", "2"); g.OwnedBy = []string{"ben"}; return g }(),
		func() models.Game { g := testGame("3", "Hive", "2"); g.OwnedBy = []string{"cara"}; return g }(),
		func() models.Game { g := testGame("4", "CATAN", "4"); g.OwnedBy = []string{"ana"}; return g }(),
	} {
		require.NoError(t, st.Set(ctx, store.Games, g.ID, g))
	}
}

func TestGroupByBestPlayers(t *testing.T) {
	games := []models.Game{
		testGame("1", "a", "2"),
		testGame("2", "b", "4"),
		testGame("3", "c", "2"),
		testGame("4", "d", models.UnknownBestPlayerCount),
	}

	groups := GroupByBestPlayers(games, "")
	require.Len(t, groups, 3)
	assert.Equal(t, "2", groups[0].BestPlayers)
	assert.Len(t, groups[0].Games, 2)
	assert.Equal(t, "4", groups[1].BestPlayers)
	assert.Equal(t, models.UnknownBestPlayerCount, groups[2].BestPlayers)

	only := GroupByBestPlayers(games, "4")
	require.Len(t, only, 1)
	assert.Equal(t, "2", only[0].Games[0].ID)

	assert.Empty(t, GroupByBestPlayers(games, "7"))
}

func TestForGroup(t *testing.T) {
	r, cs, _ := newTestReconciler(&fakeFetcher{})
	seedGroupGames(t, cs.Store)

	got := r.ForGroup(context.Background(), []string{"ana", "ben"})
	ids := make([]string, 0, len(got))
	for _, g := range got {
		ids = append(ids, g.ID)
	}
	assert.ElementsMatch(t, []string{"1", "2"}, ids)

	assert.Empty(t, r.ForGroup(context.Background(), nil))
	assert.Empty(t, r.ForGroup(context.Background(), []string{"ana", "ben", "cara"}))
}

func TestGet(t *testing.T) {
	r, cs, _ := newTestReconciler(&fakeFetcher{})
	seedGroupGames(t, cs.Store)

	g, err := r.Get(context.Background(), "4")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "CATAN", g.Name)

	g, err = r.Get(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestHandlerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, cs, _ := newTestReconciler(&fakeFetcher{})
	seedGroupGames(t, cs.Store)

	engine := gin.New()
	NewHandler(r).RegisterRoutes(engine.Group("/games"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var g models.Game
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	assert.Equal(t, "Patchwork", g.Name)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games/group?users=ana,ben", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Total int           `json:"total"`
		Items []models.Game `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games/group", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
