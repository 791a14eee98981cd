package games

import (
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"gamenight/pkg/models"
)

// fields of Game that mergeGame never copies from the fresh record
const (
	ownedByField   = "ownedBy"
	updatedAtField = "updatedAt"
)

// bestPlayersField and playerVotesField are derived from the same poll and
// are merged together.
const (
	bestPlayersField = "bestPlayerCount"
	playerVotesField = "playerVotes"
)

var equateEmpty = cmpopts.EquateEmpty()

// sameGame reports whether two records carry the same data, ignoring the
// write timestamp.
func sameGame(a, b models.Game) bool {
	return cmp.Equal(a, b, equateEmpty, cmpopts.IgnoreFields(models.Game{}, "UpdatedAt"))
}

// mergeGame overlays fresh onto cached. Fields the fresh record leaves empty
// keep their cached value; owners are unioned. A fresh best player count
// replaces the cached poll whole, votes included, even when it has none. It returns the merged record
// and the document keys that changed.
func mergeGame(cached, fresh models.Game) (models.Game, []string) {
	merged := cached
	var changed []string

	dst := reflect.ValueOf(&merged).Elem()
	src := reflect.ValueOf(fresh)
	t := src.Type()
	for i := 0; i < t.NumField(); i++ {
		key := documentKey(t.Field(i))
		switch key {
		case ownedByField, updatedAtField, bestPlayersField, playerVotesField:
			continue
		}
		fv := src.Field(i)
		if fv.IsZero() {
			continue
		}
		if cmp.Equal(dst.Field(i).Interface(), fv.Interface(), equateEmpty) {
			continue
		}
		dst.Field(i).Set(fv)
		changed = append(changed, key)
	}

	if fresh.BestPlayers != "" &&
		(fresh.BestPlayers != cached.BestPlayers || !cmp.Equal(fresh.PlayerVotes, cached.PlayerVotes, equateEmpty)) {
		merged.BestPlayers = fresh.BestPlayers
		merged.PlayerVotes = fresh.PlayerVotes
		changed = append(changed, bestPlayersField, playerVotesField)
	}

	owners := unionOwners(cached.OwnedBy, fresh.OwnedBy)
	if !cmp.Equal(cached.OwnedBy, owners, equateEmpty) {
		merged.OwnedBy = owners
		changed = append(changed, ownedByField)
	}

	return merged, changed
}

// unionOwners appends the owners in b missing from a, keeping order and
// dropping duplicates and empty names.
func unionOwners(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, u := range list {
			if u == "" {
				continue
			}
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

func documentKey(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}
