package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gamenight/internal/store"
	"gamenight/pkg/models"
)

type User = models.User

// Repo keeps app accounts in the Users collection, keyed by user id.
type Repo struct {
	Store store.Store
	Now   func() time.Time
}

func NewRepo(st store.Store) *Repo {
	return &Repo{Store: st, Now: time.Now}
}

func (r *Repo) CreateUser(ctx context.Context, u User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now()
	}
	if err := r.Store.Set(ctx, store.Users, u.ID, u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := r.findOne(ctx, "email", email)
	if err != nil {
		return nil, fmt.Errorf("get by email: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := r.findOne(ctx, "username", strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("get by username: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := r.findOne(ctx, "id", id)
	if err != nil {
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return u, nil
}

// SetBGGName links the account to a BoardGameGeek username. An empty name
// removes the link.
func (r *Repo) SetBGGName(ctx context.Context, id, bggName string) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("set bgg name: %w", err)
	}
	if u == nil {
		return fmt.Errorf("set bgg name: user not found")
	}
	u.BGGName = strings.TrimSpace(bggName)
	if err := r.Store.Set(ctx, store.Users, id, u, "bggName"); err != nil {
		return fmt.Errorf("set bgg name: %w", err)
	}
	return nil
}

func (r *Repo) findOne(ctx context.Context, field, value string) (*User, error) {
	if value == "" {
		return nil, nil
	}
	snaps, err := r.Store.WhereEqual(ctx, store.Users, field, value)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	var u User
	if err := snaps[0].DataTo(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}
