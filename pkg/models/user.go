package models

import "time"

// User is an app account. BGGName links it to a BoardGameGeek collection.
type User struct {
	ID           string    `json:"id" firestore:"id"`
	Username     string    `json:"username" firestore:"username"`
	Email        string    `json:"email" firestore:"email"`
	PasswordHash string    `json:"passwordHash" firestore:"passwordHash"`
	BGGName      string    `json:"bggName,omitempty" firestore:"bggName,omitempty"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}
