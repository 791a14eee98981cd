package models

import "time"

// GameRef is the lightweight game entry stored on a collection: only the id
// and a name hint, never the full metadata.
type GameRef struct {
	ID   string `json:"id" firestore:"id"`
	Name string `json:"name,omitempty" firestore:"name,omitempty"`
}

// CollectionInfo is one user's owned-game list as fetched from BGG.
type CollectionInfo struct {
	User      string    `json:"user" firestore:"user"`
	Size      int       `json:"size" firestore:"size"`
	Games     []GameRef `json:"games" firestore:"games"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// IDs returns the referenced game ids in collection order.
func (c CollectionInfo) IDs() []string {
	ids := make([]string, 0, len(c.Games))
	for _, g := range c.Games {
		ids = append(ids, g.ID)
	}
	return ids
}
