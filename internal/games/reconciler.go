package games

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gamenight/internal/metrics"
	synchub "gamenight/internal/sync"
	"gamenight/internal/store"
	"gamenight/pkg/models"
)

// DefaultThingBatchSize is how many ids go into one thing request.
const DefaultThingBatchSize = 20

// Write outcomes reported by Save.
const (
	Created = "created"
	Merged  = "merged"
	Skipped = "skipped"
)

// Fetcher loads full game metadata from the remote API.
type Fetcher interface {
	FetchGames(ctx context.Context, ids []string) ([]models.Game, error)
}

// Publisher receives cache events.
type Publisher interface {
	BroadcastJSON(v any)
}

type Options struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Events         Publisher
	ThingBatchSize int
	Now            func() time.Time
}

// Reconciler resolves a collection's game references against the cache and
// the remote API, writing fresh data back into the cache.
type Reconciler struct {
	store     store.Store
	fetcher   Fetcher
	log       *zap.Logger
	metrics   *metrics.Metrics
	events    Publisher
	batchSize int
	now       func() time.Time
}

func NewReconciler(st store.Store, fetcher Fetcher, opts Options) *Reconciler {
	r := &Reconciler{
		store:     st,
		fetcher:   fetcher,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		events:    opts.Events,
		batchSize: opts.ThingBatchSize,
		now:       opts.Now,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.batchSize <= 0 {
		r.batchSize = DefaultThingBatchSize
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// LookupCached returns the cached games among ids. Lookups are chunked to the
// store's membership limit and issued concurrently; every id appears at most
// once in the result. Records with the sentinel id are never returned.
func (r *Reconciler) LookupCached(ctx context.Context, ids []string) ([]models.Game, error) {
	chunks := chunk(uniqueIDs(ids), store.MaxInValues)
	results := make([][]models.Game, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			snaps, err := r.store.WhereIn(gctx, store.Games, "id", c)
			if err != nil {
				return err
			}
			games := make([]models.Game, 0, len(snaps))
			for _, s := range snaps {
				var game models.Game
				if err := s.DataTo(&game); err != nil {
					return fmt.Errorf("%w: decode game %s: %w", store.ErrCacheUnavailable, s.ID(), err)
				}
				games = append(games, game)
			}
			results[i] = games
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []models.Game
	for _, games := range results {
		for _, game := range games {
			if game.ID == "" || game.ID == models.UnknownID {
				continue
			}
			if _, dup := seen[game.ID]; dup {
				continue
			}
			seen[game.ID] = struct{}{}
			out = append(out, game)
		}
	}
	return out, nil
}

// ResolveGames returns the full Game for every id referenced by info,
// preferring cached copies. Only ids missing from the cache are fetched.
// Cached games the collection owner is not yet listed on are updated in the
// cache without a remote call. When the remote fetch fails the games resolved
// so far are returned together with the error.
func (r *Reconciler) ResolveGames(ctx context.Context, info models.CollectionInfo) ([]models.Game, error) {
	ids := uniqueIDs(info.IDs())
	if len(ids) == 0 {
		return nil, nil
	}

	cached, err := r.LookupCached(ctx, ids)
	if err != nil {
		r.log.Warn("cache lookup failed, fetching every game",
			zap.String("user", info.User),
			zap.Int("ids", len(ids)),
			zap.Error(err),
		)
		cached = nil
	}

	byID := make(map[string]models.Game, len(ids))
	for _, g := range cached {
		byID[g.ID] = g
	}
	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	r.metrics.CacheLookup(len(byID), len(missing))

	if info.User != "" {
		for id, g := range byID {
			if g.OwnedByUser(info.User) {
				continue
			}
			withOwner := g
			withOwner.OwnedBy = unionOwners(g.OwnedBy, []string{info.User})
			saved, _, err := r.Save(ctx, withOwner)
			if err != nil {
				r.log.Warn("owner update failed", zap.String("game", id), zap.String("user", info.User), zap.Error(err))
				byID[id] = withOwner
				continue
			}
			byID[id] = saved
		}
	}

	var fetchErr error
	for _, batch := range chunk(missing, r.batchSize) {
		fetched, err := r.fetcher.FetchGames(ctx, batch)
		if err != nil {
			fetchErr = fmt.Errorf("fetch games: %w", err)
			r.log.Warn("remote game fetch failed", zap.String("user", info.User), zap.Strings("ids", batch), zap.Error(err))
			break
		}
		for _, fresh := range fetched {
			if fresh.ID == "" || fresh.ID == models.UnknownID {
				r.log.Warn("dropping game without id", zap.String("name", fresh.Name))
				continue
			}
			if info.User != "" {
				fresh.OwnedBy = unionOwners(fresh.OwnedBy, []string{info.User})
			}
			saved, _, err := r.Save(ctx, fresh)
			if err != nil {
				r.log.Warn("cache write failed", zap.String("game", fresh.ID), zap.Error(err))
				saved = fresh
			}
			byID[saved.ID] = saved
		}
	}

	out := make([]models.Game, 0, len(byID))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			out = append(out, g)
			delete(byID, id)
		}
	}
	// ids the API answered that the collection did not list
	for _, g := range byID {
		out = append(out, g)
	}
	return out, fetchErr
}

// Save writes fresh into the cache with a read-merge-write. A new id is
// written as is; an existing record is left untouched when nothing differs,
// otherwise only the changed fields are written. It returns the record as
// stored and the outcome.
func (r *Reconciler) Save(ctx context.Context, fresh models.Game) (models.Game, string, error) {
	if fresh.ID == "" || fresh.ID == models.UnknownID {
		return fresh, Skipped, fmt.Errorf("save game: missing id")
	}

	snaps, err := r.store.WhereEqual(ctx, store.Games, "id", fresh.ID)
	if err != nil {
		r.metrics.CacheWrite("failed")
		return fresh, "", fmt.Errorf("read game %s: %w", fresh.ID, err)
	}

	if len(snaps) == 0 {
		fresh.OwnedBy = unionOwners(nil, fresh.OwnedBy)
		fresh.UpdatedAt = r.now().UTC()
		if err := r.store.Set(ctx, store.Games, fresh.ID, fresh); err != nil {
			r.metrics.CacheWrite("failed")
			return fresh, "", fmt.Errorf("write game %s: %w", fresh.ID, err)
		}
		r.written(fresh, Created)
		return fresh, Created, nil
	}

	var cached models.Game
	if err := snaps[0].DataTo(&cached); err != nil {
		r.metrics.CacheWrite("failed")
		return fresh, "", fmt.Errorf("%w: decode game %s: %w", store.ErrCacheUnavailable, fresh.ID, err)
	}

	if sameGame(cached, fresh) {
		r.metrics.CacheWrite(Skipped)
		return cached, Skipped, nil
	}
	merged, changed := mergeGame(cached, fresh)
	if len(changed) == 0 {
		r.metrics.CacheWrite(Skipped)
		return cached, Skipped, nil
	}

	merged.UpdatedAt = r.now().UTC()
	changed = append(changed, updatedAtField)
	if err := r.store.Set(ctx, store.Games, merged.ID, merged, changed...); err != nil {
		r.metrics.CacheWrite("failed")
		return cached, "", fmt.Errorf("write game %s: %w", merged.ID, err)
	}
	r.written(merged, Merged)
	return merged, Merged, nil
}

func (r *Reconciler) written(g models.Game, outcome string) {
	r.metrics.CacheWrite(outcome)
	r.log.Debug("game cached", zap.String("game", g.ID), zap.String("outcome", outcome))
	if r.events != nil {
		r.events.BroadcastJSON(synchub.GameEvent{
			Type:    synchub.GameCached,
			GameID:  g.ID,
			Name:    g.Name,
			Outcome: outcome,
			OwnedBy: g.OwnedBy,
			At:      g.UpdatedAt,
		})
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
