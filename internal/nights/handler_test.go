package nights

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamenight/pkg/models"
)

func newTestRouter(groups GroupFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(groups)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/nights"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestNightRoutes(t *testing.T) {
	r := newTestRouter(&fakeGroups{games: []models.Game{{ID: "13", Name: "CATAN"}, {ID: "822", Name: "Carcassonne"}}})

	w, out := do(t, r, http.MethodPost, "/nights", gin.H{
		"date":     "2026-10-24T19:00:00+02:00",
		"players":  []string{"Domonation", "m0rlo"},
		"location": "Kitchen table",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "2026-10-24T17:00:00Z", out["date"])

	w, out = do(t, r, http.MethodGet, "/nights/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kitchen table", out["location"])

	w, out = do(t, r, http.MethodPut, "/nights/"+id, gin.H{"description": "Bring snacks"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bring snacks", out["description"])
	assert.Equal(t, "Kitchen table", out["location"])

	w, _ = do(t, r, http.MethodPost, "/nights/"+id+"/votes", gin.H{"game_id": "822"})
	require.Equal(t, http.StatusOK, w.Code)

	w, out = do(t, r, http.MethodGet, "/nights/"+id+"/games", nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := out["games"].([]any)
	require.Len(t, found, 2)
	first := found[0].(map[string]any)
	assert.Equal(t, "822", first["id"])
	assert.EqualValues(t, 1, first["votes"])

	w, out = do(t, r, http.MethodGet, "/nights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["nights"], 1)
}

func TestNightRouteErrors(t *testing.T) {
	r := newTestRouter(&fakeGroups{})

	w, _ := do(t, r, http.MethodGet, "/nights/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/nights/missing/votes", gin.H{"game_id": "13"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/nights/missing/games", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/nights", gin.H{"votes": []gin.H{{"id": "13", "count": -1}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/nights", gin.H{"date": "next friday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
