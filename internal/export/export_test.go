package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gamenight/internal/store"
	"gamenight/pkg/models"
)

func seed(t *testing.T) store.Store {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	for _, g := range []models.Game{
		{ID: "822", Name: "Carcassonne", BestPlayers: "2", OwnedBy: []string{"Domonation"}, UpdatedAt: at},
		{ID: "13", Name: "CATAN", Type: "boardgame", BestPlayers: "4", OwnedBy: []string{"Domonation", "m0rlo"}, UpdatedAt: at},
	} {
		require.NoError(t, st.Set(ctx, store.Games, g.ID, g))
	}
	require.NoError(t, st.Set(ctx, store.Collections, "Domonation", models.CollectionInfo{
		User: "Domonation", Size: 2, Games: []models.GameRef{{ID: "13"}, {ID: "822"}}, UpdatedAt: at,
	}))
	return st
}

func TestWriteCSV(t *testing.T) {
	st := seed(t)
	games, err := LoadGames(context.Background(), st)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, games))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, GameHeader, records[0])
	assert.Equal(t, "CATAN", records[1][1])
	assert.Equal(t, "Domonation;m0rlo", records[1][9])
	assert.Equal(t, "2026-10-16T09:30:00Z", records[1][10])
	assert.Equal(t, "Carcassonne", records[2][1])
}

func TestWriteXLSX(t *testing.T) {
	st := seed(t)
	ctx := context.Background()
	games, err := LoadGames(ctx, st)
	require.NoError(t, err)
	collections, err := LoadCollections(ctx, st)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, games, collections))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{GamesSheet, CollectionsSheet}, f.GetSheetList())

	rows, err := f.GetRows(GamesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "13", rows[1][0])

	rows, err = f.GetRows(CollectionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Domonation", "2", "13;822", "2026-10-16T09:30:00Z"}, rows[1])
}

func TestReadCSV(t *testing.T) {
	in := "ID,Name,best_player_count,owned_by,extra\n" +
		"13,CATAN,4,Domonation;m0rlo,x\n" +
		",nameless,2,,\n" +
		"-1,Unknown,Unknown,,\n" +
		"822,Carcassonne,2,,\n"

	games, err := ReadCSV(bytes.NewBufferString(in))
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, []string{"Domonation", "m0rlo"}, games[0].OwnedBy)
	assert.Equal(t, "4", games[0].BestPlayers)
	assert.Nil(t, games[1].OwnedBy)

	_, err = ReadCSV(bytes.NewBufferString("name\nCATAN\n"))
	assert.ErrorContains(t, err, "missing id column")

	_, err = ReadCSV(bytes.NewBufferString("id,name,updated_at\n13,CATAN,yesterday\n"))
	assert.ErrorContains(t, err, "line 2")
}
