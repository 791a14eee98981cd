package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gamenight/pkg/models"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrUsernameTaken      = errors.New("auth: username already registered")
	ErrNoBGGCollection    = errors.New("auth: bgg user has no collection")
	ErrNotLinked          = errors.New("auth: no bgg account linked")
)

// InvalidInputError reports a rejected registration or link field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("auth: %s %s", e.Field, e.Reason)
}

// Collections is the part of the sync service accounts rely on.
type Collections interface {
	Sync(ctx context.Context, user string) (*models.CollectionInfo, []models.Game)
	Lookup(ctx context.Context, user string, fetchOnMissing bool) *models.CollectionInfo
}

// CollectionSummary describes a linked collection without its games.
type CollectionSummary struct {
	User      string    `json:"user"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

func summarize(info *models.CollectionInfo) *CollectionSummary {
	if info == nil {
		return nil
	}
	return &CollectionSummary{User: info.User, Size: info.Size, UpdatedAt: info.UpdatedAt}
}

// Session is a signed-in account with its token.
type Session struct {
	User       *User
	Token      string
	ExpiresAt  time.Time
	Collection *CollectionSummary
}

// Accounts registers and signs in users whose accounts are tied to a BGG
// collection.
type Accounts struct {
	Repo        *Repo
	Tokens      TokenService
	Collections Collections
}

func NewAccounts(repo *Repo, tokens TokenService, collections Collections) *Accounts {
	return &Accounts{Repo: repo, Tokens: tokens, Collections: collections}
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	BGGName  string `json:"bgg_name"`
}

// Register creates an account. A BGG name, when given, must resolve to a
// collection; it is synced and linked before the account is stored.
func (a *Accounts) Register(ctx context.Context, reg Registration) (*Session, error) {
	username := strings.TrimSpace(reg.Username)
	email := strings.TrimSpace(strings.ToLower(reg.Email))
	bggName := strings.TrimSpace(reg.BGGName)

	switch {
	case len(username) < 3 || len(username) > 30:
		return nil, &InvalidInputError{Field: "username", Reason: "must be 3-30 chars"}
	case !strings.Contains(email, "@") || len(email) > 255:
		return nil, &InvalidInputError{Field: "email", Reason: "is invalid"}
	case len(reg.Password) < 8 || len(reg.Password) > 72:
		return nil, &InvalidInputError{Field: "password", Reason: "must be 8-72 chars"}
	case len(bggName) > 64:
		return nil, &InvalidInputError{Field: "bgg_name", Reason: "must be at most 64 chars"}
	}

	if u, err := a.Repo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if u != nil {
		return nil, ErrEmailTaken
	}
	if u, err := a.Repo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if u != nil {
		return nil, ErrUsernameTaken
	}

	var linked *models.CollectionInfo
	if bggName != "" {
		linked, _ = a.Collections.Sync(ctx, bggName)
		if linked == nil {
			return nil, ErrNoBGGCollection
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		BGGName:      bggName,
	}
	if err := a.Repo.CreateUser(ctx, *u); err != nil {
		return nil, err
	}
	return a.session(u, linked)
}

// Login checks the password and returns a session carrying the cached
// summary of the linked collection. It never reaches BGG.
func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := a.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	var linked *models.CollectionInfo
	if u.BGGName != "" {
		linked = a.Collections.Lookup(ctx, u.BGGName, false)
	}
	return a.session(u, linked)
}

// LinkBGG points u at another BGG collection, syncing it first so a name
// without a collection is refused.
func (a *Accounts) LinkBGG(ctx context.Context, u *User, bggName string) (*models.CollectionInfo, []models.Game, error) {
	bggName = strings.TrimSpace(bggName)
	if bggName == "" || len(bggName) > 64 {
		return nil, nil, &InvalidInputError{Field: "bgg_name", Reason: "must be 1-64 chars"}
	}
	info, games := a.Collections.Sync(ctx, bggName)
	if info == nil {
		return nil, nil, ErrNoBGGCollection
	}
	if err := a.Repo.SetBGGName(ctx, u.ID, bggName); err != nil {
		return nil, nil, err
	}
	u.BGGName = bggName
	return info, games, nil
}

// Collection syncs the collection linked to u.
func (a *Accounts) Collection(ctx context.Context, u *User) (*models.CollectionInfo, []models.Game, error) {
	if u.BGGName == "" {
		return nil, nil, ErrNotLinked
	}
	info, games := a.Collections.Sync(ctx, u.BGGName)
	if info == nil {
		return nil, nil, ErrNoBGGCollection
	}
	return info, games, nil
}

func (a *Accounts) session(u *User, linked *models.CollectionInfo) (*Session, error) {
	token, exp, err := a.Tokens.Sign(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: exp, Collection: summarize(linked)}, nil
}
