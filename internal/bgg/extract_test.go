package bgg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gamenight/pkg/models"
)

func firstItem(t *testing.T, payload string) *Node {
	t.Helper()
	items, err := DecodeItems([]byte(payload))
	require.NoError(t, err)
	return items[0]
}

func TestExtractGameFromFixture(t *testing.T) {
	items, err := DecodeItems(readFixture(t, "thing.xml"))
	require.NoError(t, err)

	g := NewExtractor(nil).Game(items[0])

	assert.Equal(t, "13", g.ID)
	assert.Equal(t, "boardgame", g.Type)
	assert.Equal(t, "CATAN", g.Name)
	assert.Equal(t, []string{"CATAN", "Die Siedler von Catan", "Settlers of Catan"}, g.AlternateNames)
	assert.Equal(t, "In CATAN, players try to be the dominant force\n\"Trade\" & build.", g.Description)
	assert.Equal(t, "1995", g.YearPublished)
	assert.Equal(t, "3", g.MinPlayers)
	assert.Equal(t, "4", g.MaxPlayers)
	assert.Equal(t, "120", g.PlayingTime)
	assert.Equal(t, "60", g.MinPlayTime)
	assert.Equal(t, "120", g.MaxPlayTime)
	assert.Equal(t, "10", g.MinAge)
	assert.Equal(t, "https://cf.geekdo-images.com/catan.jpg", g.Image)
	assert.Equal(t, "https://cf.geekdo-images.com/catan_t.jpg", g.Thumbnail)

	require.Len(t, g.PlayerVotes, 4)
	assert.Equal(t, models.PlayerVoteEntry{NumPlayers: "4", Best: 1500, Recommended: 500, NotRecommended: 20}, g.PlayerVotes[0])
	assert.Equal(t, "3", g.PlayerVotes[1].NumPlayers)
	assert.Equal(t, "4", g.BestPlayers)
	assert.Empty(t, g.OwnedBy)
}

func TestExtractPrimaryNameLeadsAlternates(t *testing.T) {
	item := firstItem(t, `<items><item id="1">
		<name type="primary" value="Azul"/>
		<name type="alternate" value="Azul: Mosaic"/>
	</item></items>`)

	g := NewExtractor(nil).Game(item)
	require.NotEmpty(t, g.AlternateNames)
	assert.Equal(t, g.Name, g.AlternateNames[0])
}

func TestExtractVotesSortedDescending(t *testing.T) {
	item := firstItem(t, `<items><item id="1"><poll name="suggested_numplayers">
		<results numplayers="1"><result numvotes="2"/><result numvotes="1"/><result numvotes="9"/></results>
		<results numplayers="2"><result numvotes="40"/><result numvotes="1"/><result numvotes="0"/></results>
		<results numplayers="3"><result numvotes="7"/><result numvotes="5"/><result numvotes="1"/></results>
		<results numplayers="4"><result numvotes="40"/><result numvotes="3"/><result numvotes="1"/></results>
	</poll></item></items>`)

	g := NewExtractor(nil).Game(item)
	require.Len(t, g.PlayerVotes, 4)
	for i := 1; i < len(g.PlayerVotes); i++ {
		assert.GreaterOrEqual(t, g.PlayerVotes[i-1].Best, g.PlayerVotes[i].Best)
	}
	assert.Equal(t, g.PlayerVotes[0].NumPlayers, g.BestPlayers)
}

func TestExtractEmptyPollIsUnknown(t *testing.T) {
	items, err := DecodeItems(readFixture(t, "thing.xml"))
	require.NoError(t, err)

	g := NewExtractor(nil).Game(items[1])
	assert.Equal(t, "822", g.ID)
	assert.Empty(t, g.PlayerVotes)
	assert.Equal(t, models.UnknownBestPlayerCount, g.BestPlayers)
}

func TestExtractNoPollIsUnknown(t *testing.T) {
	g := NewExtractor(nil).Game(firstItem(t, `<items><item id="5"><name value="A"/></item></items>`))
	assert.Nil(t, g.PlayerVotes)
	assert.Equal(t, models.UnknownBestPlayerCount, g.BestPlayers)
}

func TestExtractMalformedPollBucket(t *testing.T) {
	item := firstItem(t, `<items><item id="1"><poll name="suggested_numplayers">
		<results numplayers="2"><result numvotes="4"/><result numvotes="1"/></results>
		<results numplayers="3"><result numvotes="6"/><result numvotes="2"/><result numvotes="0"/></results>
	</poll></item></items>`)

	g := NewExtractor(nil).Game(item)
	require.Len(t, g.PlayerVotes, 2)
	assert.Equal(t, models.PlayerVoteEntry{NumPlayers: "3", Best: 6, Recommended: 2, NotRecommended: 0}, g.PlayerVotes[0])
	assert.Equal(t, models.PlayerVoteEntry{NumPlayers: "2", Best: -1, Recommended: -1, NotRecommended: -1}, g.PlayerVotes[1])
	assert.Equal(t, "3", g.BestPlayers)
}

func TestExtractNonNumericVotes(t *testing.T) {
	item := firstItem(t, `<items><item id="1"><poll name="suggested_numplayers">
		<results numplayers="2"><result numvotes="many"/><result/><result numvotes="3"/></results>
	</poll></item></items>`)

	g := NewExtractor(nil).Game(item)
	require.Len(t, g.PlayerVotes, 1)
	assert.Equal(t, models.PlayerVoteEntry{NumPlayers: "2", Best: -1, Recommended: -1, NotRecommended: 3}, g.PlayerVotes[0])
}

func TestExtractPrefersPlayerCountPoll(t *testing.T) {
	item := firstItem(t, `<items><item id="1">
		<poll name="language_dependence"><results><result level="1" numvotes="10"/></results></poll>
		<poll name="suggested_numplayers">
			<results numplayers="5"><result numvotes="3"/><result numvotes="1"/><result numvotes="0"/></results>
		</poll>
	</item></items>`)

	g := NewExtractor(nil).Game(item)
	assert.Equal(t, "5", g.BestPlayers)
}

func TestExtractOtherPollsOnlyIsUnknown(t *testing.T) {
	item := firstItem(t, `<items><item id="1">
		<poll name="suggested_playerage">
			<results><result value="8" numvotes="12"/><result value="10" numvotes="30"/></results>
		</poll>
	</item></items>`)

	g := NewExtractor(nil).Game(item)
	assert.Nil(t, g.PlayerVotes)
	assert.Equal(t, models.UnknownBestPlayerCount, g.BestPlayers)
}

func TestExtractMissingIDKeepsSentinel(t *testing.T) {
	g := NewExtractor(nil).Game(firstItem(t, `<items><item><yearpublished value="2001"/></item></items>`))
	assert.Equal(t, models.UnknownID, g.ID)
	assert.Equal(t, models.UnknownName, g.Name)
	assert.Equal(t, "2001", g.YearPublished)
}

func TestExtractNilItem(t *testing.T) {
	g := NewExtractor(nil).Game(nil)
	assert.Equal(t, models.UnknownID, g.ID)
}

func TestExtractLogsUnrecognizedFields(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ext := NewExtractor(zap.New(core))

	g := ext.Game(firstItem(t, `<items><item id="9">
		<name value="Root"/>
		<statistics page="1"/>
		<link type="boardgamecategory" value="Wargame"/>
		<minage value="10"/>
	</item></items>`))

	assert.Equal(t, "Root", g.Name)
	assert.Equal(t, "10", g.MinAge)

	entries := logs.FilterMessage("unrecognized field").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "statistics", entries[0].ContextMap()["field"])
	assert.Equal(t, "9", entries[0].ContextMap()["game"])
}

func TestExtractGamesKeepsOrder(t *testing.T) {
	items, err := DecodeItems(readFixture(t, "thing.xml"))
	require.NoError(t, err)

	games := NewExtractor(nil).Games(items)
	require.Len(t, games, 2)
	assert.Equal(t, "13", games[0].ID)
	assert.Equal(t, "822", games[1].ID)
}
