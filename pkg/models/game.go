package models

import "time"

const (
	// UnknownID and UnknownName are the defaults the extractor leaves in place
	// when an item carries no id or name.
	UnknownID   = "-1"
	UnknownName = "Unknown"

	// UnknownBestPlayerCount is used when a game has no player-count votes.
	UnknownBestPlayerCount = "Unknown"

	// MissingVotes marks a poll bucket whose tally could not be read.
	MissingVotes = -1
)

// Game is the normalized form of one BGG "thing" item, as cached in the
// BoardGame collection.
type Game struct {
	ID             string            `json:"id" firestore:"id"`
	Type           string            `json:"type,omitempty" firestore:"type,omitempty"`
	Name           string            `json:"name" firestore:"name"`
	AlternateNames []string          `json:"alternateNames,omitempty" firestore:"alternateNames,omitempty"`
	Description    string            `json:"description,omitempty" firestore:"description,omitempty"`
	YearPublished  string            `json:"yearPublished,omitempty" firestore:"yearPublished,omitempty"`
	MinAge         string            `json:"minAge,omitempty" firestore:"minAge,omitempty"`
	PlayingTime    string            `json:"playingTime,omitempty" firestore:"playingTime,omitempty"` // minutes
	MinPlayTime    string            `json:"minPlayTime,omitempty" firestore:"minPlayTime,omitempty"`
	MaxPlayTime    string            `json:"maxPlayTime,omitempty" firestore:"maxPlayTime,omitempty"`
	MinPlayers     string            `json:"minPlayers,omitempty" firestore:"minPlayers,omitempty"`
	MaxPlayers     string            `json:"maxPlayers,omitempty" firestore:"maxPlayers,omitempty"`
	Image          string            `json:"image,omitempty" firestore:"image,omitempty"`
	Thumbnail      string            `json:"thumbnail,omitempty" firestore:"thumbnail,omitempty"`
	PlayerVotes    []PlayerVoteEntry `json:"playerVotes,omitempty" firestore:"playerVotes,omitempty"`
	BestPlayers    string            `json:"bestPlayerCount" firestore:"bestPlayerCount"`
	OwnedBy        []string          `json:"ownedBy,omitempty" firestore:"ownedBy,omitempty"`
	UpdatedAt      time.Time         `json:"updatedAt" firestore:"updatedAt"`
}

// PlayerVoteEntry is the vote tally for one player-count bucket of the
// "suggested_numplayers" poll.
type PlayerVoteEntry struct {
	NumPlayers     string `json:"numPlayers" firestore:"numPlayers"`
	Best           int    `json:"best" firestore:"best"`
	Recommended    int    `json:"recommended" firestore:"recommended"`
	NotRecommended int    `json:"notRecommended" firestore:"notRecommended"`
}

// OwnedByUser reports whether user is listed in g.OwnedBy.
func (g Game) OwnedByUser(user string) bool {
	for _, u := range g.OwnedBy {
		if u == user {
			return true
		}
	}
	return false
}

// PlayerCountGroup buckets games sharing the same best player count.
type PlayerCountGroup struct {
	BestPlayers string `json:"bestPlayerCount"`
	Games       []Game `json:"games"`
}
