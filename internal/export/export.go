// Package export writes the cached games and collections out as CSV or XLSX.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gamenight/internal/store"
	"gamenight/pkg/models"
)

const (
	GamesSheet       = "Games"
	CollectionsSheet = "Collections"
)

var (
	GameHeader = []string{
		"id", "name", "type", "year_published", "min_players", "max_players",
		"best_player_count", "playing_time", "min_age", "owned_by", "updated_at",
	}
	CollectionHeader = []string{"user", "size", "game_ids", "updated_at"}
)

// LoadGames reads every cached game ordered by name, then id.
func LoadGames(ctx context.Context, st store.Store) ([]models.Game, error) {
	snaps, err := st.All(ctx, store.Games)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	out := make([]models.Game, 0, len(snaps))
	for _, s := range snaps {
		var g models.Game
		if err := s.DataTo(&g); err != nil {
			return nil, fmt.Errorf("decode game %s: %w", s.ID(), err)
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// LoadCollections reads every cached collection ordered by user.
func LoadCollections(ctx context.Context, st store.Store) ([]models.CollectionInfo, error) {
	snaps, err := st.All(ctx, store.Collections)
	if err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}
	out := make([]models.CollectionInfo, 0, len(snaps))
	for _, s := range snaps {
		var c models.CollectionInfo
		if err := s.DataTo(&c); err != nil {
			return nil, fmt.Errorf("decode collection %s: %w", s.ID(), err)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out, nil
}

func GameRow(g models.Game) []string {
	return []string{
		g.ID,
		g.Name,
		g.Type,
		g.YearPublished,
		g.MinPlayers,
		g.MaxPlayers,
		g.BestPlayers,
		g.PlayingTime,
		g.MinAge,
		strings.Join(g.OwnedBy, ";"),
		formatTime(g.UpdatedAt),
	}
}

func CollectionRow(c models.CollectionInfo) []string {
	return []string{
		c.User,
		strconv.Itoa(c.Size),
		strings.Join(c.IDs(), ";"),
		formatTime(c.UpdatedAt),
	}
}

// WriteCSV writes games with a header row.
func WriteCSV(w io.Writer, games []models.Game) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(GameHeader); err != nil {
		return err
	}
	for _, g := range games {
		if err := cw.Write(GameRow(g)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a Games sheet and a Collections sheet.
func WriteXLSX(w io.Writer, games []models.Game, collections []models.CollectionInfo) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), GamesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(CollectionsSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	rows := make([][]string, 0, len(games)+1)
	rows = append(rows, GameHeader)
	for _, g := range games {
		rows = append(rows, GameRow(g))
	}
	if err := writeRows(f, GamesSheet, rows); err != nil {
		return err
	}

	rows = rows[:0]
	rows = append(rows, CollectionHeader)
	for _, c := range collections {
		rows = append(rows, CollectionRow(c))
	}
	if err := writeRows(f, CollectionsSheet, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, idx+1, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
