package games

import (
	"context"
	"errors"
	"sync"
	"time"

	"gamenight/internal/store"
	"gamenight/pkg/models"
)

// countingStore records the calls made to the wrapped store.
type countingStore struct {
	store.Store

	mu        sync.Mutex
	whereIn   [][]string
	sets      []string
	setFields [][]string
	failReads bool
}

func (c *countingStore) WhereIn(ctx context.Context, collection, field string, values []string) ([]store.Snapshot, error) {
	c.mu.Lock()
	c.whereIn = append(c.whereIn, append([]string(nil), values...))
	fail := c.failReads
	c.mu.Unlock()
	if fail {
		return nil, store.ErrCacheUnavailable
	}
	return c.Store.WhereIn(ctx, collection, field, values)
}

func (c *countingStore) Set(ctx context.Context, collection, id string, data any, fields ...string) error {
	c.mu.Lock()
	c.sets = append(c.sets, id)
	c.setFields = append(c.setFields, fields)
	c.mu.Unlock()
	return c.Store.Set(ctx, collection, id, data, fields...)
}

func (c *countingStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.whereIn = nil
	c.sets = nil
	c.setFields = nil
}

// fakeFetcher serves games from a fixed catalogue.
type fakeFetcher struct {
	mu      sync.Mutex
	catalog map[string]models.Game
	calls   [][]string
	err     error
}

func (f *fakeFetcher) FetchGames(ctx context.Context, ids []string) ([]models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), ids...))
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Game
	for _, id := range ids {
		if g, ok := f.catalog[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

var errRemote = errors.New("remote down")

type recordedEvents struct {
	mu     sync.Mutex
	events []any
}

func (r *recordedEvents) BroadcastJSON(v any) {
	r.mu.Lock()
	r.events = append(r.events, v)
	r.mu.Unlock()
}

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func testGame(id, name, best string) models.Game {
	return models.Game{
		ID:             id,
		Type:           "boardgame",
		Name:           name,
		AlternateNames: []string{name},
		MinPlayers:     "2",
		MaxPlayers:     "4",
		BestPlayers:    best,
		PlayerVotes: []models.PlayerVoteEntry{
			{NumPlayers: best, Best: 10, Recommended: 3, NotRecommended: 0},
		},
	}
}

func domonationCollection() models.CollectionInfo {
	return models.CollectionInfo{
		User: "Domonation",
		Size: 5,
		Games: []models.GameRef{
			{ID: "13", Name: "CATAN"},
			{ID: "822", Name: "Carcassonne"},
			{ID: "30549", Name: "Pandemic"},
			{ID: "68448", Name: "7 Wonders"},
			{ID: "174430", Name: "Gloomhaven"},
		},
	}
}

func domonationCatalog() map[string]models.Game {
	return map[string]models.Game{
		"13":     testGame("13", "CATAN", "4"),
		"822":    testGame("822", "Carcassonne", "2"),
		"30549":  testGame("30549", "Pandemic", "4"),
		"68448":  testGame("68448", "7 Wonders", "4"),
		"174430": testGame("174430", "Gloomhaven", "3"),
	}
}

func newTestReconciler(fetcher Fetcher) (*Reconciler, *countingStore, *recordedEvents) {
	cs := &countingStore{Store: store.NewMemoryStore()}
	ev := &recordedEvents{}
	r := NewReconciler(cs, fetcher, Options{
		Events: ev,
		Now:    func() time.Time { return fixedNow },
	})
	return r, cs, ev
}
