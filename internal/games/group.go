package games

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"gamenight/internal/store"
	"gamenight/pkg/models"
)

// GroupByBestPlayers buckets games by best player count in first-seen order.
// A non-empty playerCount keeps only that bucket.
func GroupByBestPlayers(games []models.Game, playerCount string) []models.PlayerCountGroup {
	var groups []models.PlayerCountGroup
	index := make(map[string]int)
	for _, g := range games {
		if playerCount != "" && g.BestPlayers != playerCount {
			continue
		}
		i, ok := index[g.BestPlayers]
		if !ok {
			i = len(groups)
			index[g.BestPlayers] = i
			groups = append(groups, models.PlayerCountGroup{BestPlayers: g.BestPlayers})
		}
		groups[i].Games = append(groups[i].Games, g)
	}
	return groups
}

// Get returns the cached game with id, or nil when it is not cached.
func (r *Reconciler) Get(ctx context.Context, id string) (*models.Game, error) {
	snaps, err := r.store.WhereEqual(ctx, store.Games, "id", id)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	var g models.Game
	if err := snaps[0].DataTo(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ForGroup returns cached games that play best with exactly len(users)
// players and are owned by at least one of the users. Store failures are
// logged and yield an empty result.
func (r *Reconciler) ForGroup(ctx context.Context, users []string) []models.Game {
	users = uniqueIDs(users)
	if len(users) == 0 {
		return nil
	}

	snaps, err := r.store.WhereEqual(ctx, store.Games, "bestPlayerCount", strconv.Itoa(len(users)))
	if err != nil {
		r.log.Error("group lookup failed", zap.Strings("users", users), zap.Error(err))
		return nil
	}

	var out []models.Game
	for _, s := range snaps {
		var g models.Game
		if err := s.DataTo(&g); err != nil {
			r.log.Warn("skipping undecodable game", zap.String("game", s.ID()), zap.Error(err))
			continue
		}
		for _, u := range users {
			if g.OwnedByUser(u) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
