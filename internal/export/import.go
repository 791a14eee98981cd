package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gamenight/pkg/models"
)

// ReadCSV parses games written by WriteCSV. Columns are matched by header
// name, so extra or reordered columns are tolerated. Rows without an id or
// name are skipped.
func ReadCSV(r io.Reader) ([]models.Game, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if _, ok := header["id"]; !ok {
		return nil, errors.New("read header: missing id column")
	}

	var out []models.Game
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		g := models.Game{
			ID:            valueAt(header, row, "id"),
			Name:          valueAt(header, row, "name"),
			Type:          valueAt(header, row, "type"),
			YearPublished: valueAt(header, row, "year_published"),
			MinPlayers:    valueAt(header, row, "min_players"),
			MaxPlayers:    valueAt(header, row, "max_players"),
			BestPlayers:   valueAt(header, row, "best_player_count"),
			PlayingTime:   valueAt(header, row, "playing_time"),
			MinAge:        valueAt(header, row, "min_age"),
		}
		if g.ID == "" || g.ID == models.UnknownID || g.Name == "" {
			continue
		}
		if owners := valueAt(header, row, "owned_by"); owners != "" {
			g.OwnedBy = strings.Split(owners, ";")
		}
		if raw := valueAt(header, row, "updated_at"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse updated_at: %w", line, err)
			}
			g.UpdatedAt = t
		}
		out = append(out, g)
	}
	return out, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
