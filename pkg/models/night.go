package models

import "time"

// GameNight is a planned session: who plays, when and where, and the votes
// cast for the games to bring.
type GameNight struct {
	ID          string     `json:"id" firestore:"id"`
	Date        time.Time  `json:"date" firestore:"date"`
	Players     []string   `json:"players,omitempty" firestore:"players,omitempty"` // BGG usernames
	Location    string     `json:"location,omitempty" firestore:"location,omitempty"`
	Description string     `json:"description,omitempty" firestore:"description,omitempty"`
	Votes       []GameVote `json:"votes,omitempty" firestore:"votes,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

// GameVote counts the votes one game received for a night.
type GameVote struct {
	ID    string `json:"id" firestore:"id"`
	Count int    `json:"count" firestore:"count"`
}

// VotesFor returns the vote count of game id.
func (n GameNight) VotesFor(id string) int {
	for _, v := range n.Votes {
		if v.ID == id {
			return v.Count
		}
	}
	return 0
}
