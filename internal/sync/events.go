package sync

import "time"

const (
	CollectionSynced = "collection.synced"
	GameCached       = "game.cached"
	NightUpdated     = "night.updated"
)

// CollectionEvent is pushed after a collection has been resolved.
type CollectionEvent struct {
	Type   string    `json:"type"`
	User   string    `json:"user"`
	Size   int       `json:"size"`
	Games  int       `json:"games"`
	Source string    `json:"source"` // "cache" or "remote"
	At     time.Time `json:"at"`
}

// GameEvent is pushed after a game record was created or merged in the cache.
type GameEvent struct {
	Type    string    `json:"type"`
	GameID  string    `json:"game_id"`
	Name    string    `json:"name,omitempty"`
	Outcome string    `json:"outcome"` // "created" or "merged"
	OwnedBy []string  `json:"owned_by,omitempty"`
	At      time.Time `json:"at"`
}

// NightEvent is pushed after a game night was saved or voted on.
type NightEvent struct {
	Type    string    `json:"type"`
	NightID string    `json:"night_id"`
	Date    time.Time `json:"date"`
	Players []string  `json:"players"`
	Votes   int       `json:"votes"`
	At      time.Time `json:"at"`
}
