// Package nights plans game nights: the players, date and place, the votes
// for what to play, and the cached games that suit the group.
package nights

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamenight/internal/store"
	synchub "gamenight/internal/sync"
	"gamenight/pkg/models"
)

var (
	ErrNotFound = errors.New("nights: game night not found")
	ErrInvalid  = errors.New("nights: invalid game night")
)

// GroupFinder finds cached games that suit a group of BGG users.
type GroupFinder interface {
	ForGroup(ctx context.Context, users []string) []models.Game
}

type Publisher interface {
	BroadcastJSON(v any)
}

type Options struct {
	Logger *zap.Logger
	Events Publisher
	Now    func() time.Time
}

// Service stores game nights in the GameNights collection, keyed by id.
type Service struct {
	store  store.Store
	games  GroupFinder
	log    *zap.Logger
	events Publisher
	now    func() time.Time
}

func NewService(st store.Store, games GroupFinder, opts Options) *Service {
	s := &Service{store: st, games: games, log: opts.Logger, events: opts.Events, now: opts.Now}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Candidate is a game suited to a night's group with the votes it got.
type Candidate struct {
	models.Game
	Votes int `json:"votes"`
}

// Get returns the night with id, or nil when there is none.
func (s *Service) Get(ctx context.Context, id string) (*models.GameNight, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	snaps, err := s.store.WhereEqual(ctx, store.GameNights, "id", id)
	if err != nil {
		return nil, fmt.Errorf("get night %s: %w", id, err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	var n models.GameNight
	if err := snaps[0].DataTo(&n); err != nil {
		return nil, fmt.Errorf("%w: decode night %s: %w", store.ErrCacheUnavailable, id, err)
	}
	return &n, nil
}

// List returns every night, earliest first.
func (s *Service) List(ctx context.Context) ([]models.GameNight, error) {
	snaps, err := s.store.All(ctx, store.GameNights)
	if err != nil {
		return nil, fmt.Errorf("list nights: %w", err)
	}
	out := make([]models.GameNight, 0, len(snaps))
	for _, snap := range snaps {
		var n models.GameNight
		if err := snap.DataTo(&n); err != nil {
			s.log.Warn("skipping undecodable night", zap.String("id", snap.ID()), zap.Error(err))
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Save merges n into the stored night with the same id. A night without an
// id is new and gets one. Fields n leaves empty keep their stored value; a
// new night without a date is dated now. It returns the night as stored.
func (s *Service) Save(ctx context.Context, n models.GameNight) (*models.GameNight, error) {
	n.ID = strings.TrimSpace(n.ID)
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Date.IsZero() {
		existing, err := s.Get(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			n.Date = existing.Date
		} else {
			n.Date = s.now()
		}
	}
	n.Date = n.Date.UTC()
	n.Players = normalizePlayers(n.Players)
	votes, err := normalizeVotes(n.Votes)
	if err != nil {
		return nil, err
	}
	n.Votes = votes
	n.Location = strings.TrimSpace(n.Location)
	n.Description = strings.TrimSpace(n.Description)
	n.UpdatedAt = s.now().UTC()

	if err := s.store.Set(ctx, store.GameNights, n.ID, n); err != nil {
		return nil, fmt.Errorf("save night %s: %w", n.ID, err)
	}
	stored, err := s.Get(ctx, n.ID)
	if err != nil || stored == nil {
		s.log.Warn("re-read of saved night failed", zap.String("night", n.ID), zap.Error(err))
		stored = &n
	}
	s.updated(stored)
	return stored, nil
}

// Vote adds one vote for gameID to night id.
func (s *Service) Vote(ctx context.Context, id, gameID string) (*models.GameNight, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" || gameID == models.UnknownID {
		return nil, fmt.Errorf("%w: game id required", ErrInvalid)
	}
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}

	found := false
	for i := range n.Votes {
		if n.Votes[i].ID == gameID {
			n.Votes[i].Count++
			found = true
			break
		}
	}
	if !found {
		n.Votes = append(n.Votes, models.GameVote{ID: gameID, Count: 1})
	}
	n.UpdatedAt = s.now().UTC()

	if err := s.store.Set(ctx, store.GameNights, n.ID, n, "votes", "updatedAt"); err != nil {
		return nil, fmt.Errorf("vote on night %s: %w", n.ID, err)
	}
	s.updated(n)
	return n, nil
}

// Candidates returns the cached games that play best with the night's group
// and are owned by one of its players, most voted first.
func (s *Service) Candidates(ctx context.Context, id string) ([]Candidate, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	found := s.games.ForGroup(ctx, n.Players)
	out := make([]Candidate, 0, len(found))
	for _, g := range found {
		out = append(out, Candidate{Game: g, Votes: n.VotesFor(g.ID)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Votes > out[j].Votes })
	return out, nil
}

func (s *Service) updated(n *models.GameNight) {
	total := 0
	for _, v := range n.Votes {
		total += v.Count
	}
	s.log.Debug("night saved", zap.String("night", n.ID), zap.Int("players", len(n.Players)), zap.Int("votes", total))
	if s.events != nil {
		s.events.BroadcastJSON(synchub.NightEvent{
			Type:    synchub.NightUpdated,
			NightID: n.ID,
			Date:    n.Date,
			Players: n.Players,
			Votes:   total,
			At:      s.now().UTC(),
		})
	}
}

func normalizePlayers(players []string) []string {
	seen := make(map[string]struct{}, len(players))
	var out []string
	for _, p := range players {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// normalizeVotes folds repeated game ids into one entry.
func normalizeVotes(votes []models.GameVote) ([]models.GameVote, error) {
	index := make(map[string]int, len(votes))
	var out []models.GameVote
	for _, v := range votes {
		v.ID = strings.TrimSpace(v.ID)
		if v.ID == "" || v.Count < 0 {
			return nil, fmt.Errorf("%w: vote needs a game id and a non-negative count", ErrInvalid)
		}
		if i, ok := index[v.ID]; ok {
			out[i].Count += v.Count
			continue
		}
		index[v.ID] = len(out)
		out = append(out, v)
	}
	return out, nil
}
