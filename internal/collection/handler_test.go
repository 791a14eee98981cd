package collection

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamenight/pkg/models"
)

func newTestRouter(fetcher Fetcher, resolver *fakeResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(fetcher, resolver)
	r := gin.New()
	NewHandler(svc, resolver).RegisterRoutes(r.Group("/collections"))
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandlerSync(t *testing.T) {
	fetcher := &fakeFetcher{infos: map[string]models.CollectionInfo{"Domonation": domonation()}}
	r := newTestRouter(fetcher, &fakeResolver{games: []models.Game{{ID: "13", Name: "CATAN"}}})

	w := do(r, http.MethodGet, "/collections/Domonation")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Collection models.CollectionInfo `json:"collection"`
		Games      []models.Game         `json:"games"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Collection.Size)
	assert.Len(t, body.Games, 1)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/collections/ghost").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/collections/Domonation/refresh").Code)
	assert.EqualValues(t, 3, fetcher.calls)
}

func TestHandlerList(t *testing.T) {
	fetcher := &fakeFetcher{infos: map[string]models.CollectionInfo{"Domonation": domonation()}}
	r := newTestRouter(fetcher, &fakeResolver{})

	_ = do(r, http.MethodGet, "/collections/Domonation")
	w := do(r, http.MethodGet, "/collections")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
}

func TestHandlerGamesGroupsByPlayers(t *testing.T) {
	fetcher := &fakeFetcher{infos: map[string]models.CollectionInfo{"Domonation": domonation()}}
	resolver := &fakeResolver{games: []models.Game{
		{ID: "13", BestPlayers: "4"},
		{ID: "822", BestPlayers: "2"},
	}}
	r := newTestRouter(fetcher, resolver)

	w := do(r, http.MethodGet, "/collections/Domonation/games?players=2")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Groups []models.PlayerCountGroup `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Groups, 1)
	assert.Equal(t, "822", body.Groups[0].Games[0].ID)

	resolver.err = errors.New("remote down")
	assert.Equal(t, http.StatusBadGateway, do(r, http.MethodGet, "/collections/Domonation/games").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/collections/ghost/games").Code)
}
