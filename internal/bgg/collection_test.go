package bgg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamenight/pkg/models"
)

func TestParseCollection(t *testing.T) {
	items, err := DecodeItems(readFixture(t, "collection.xml"))
	require.NoError(t, err)

	info := ParseCollection(items, "Domonation")
	require.NotNil(t, info)

	assert.Equal(t, "Domonation", info.User)
	assert.Equal(t, 5, info.Size)
	assert.Equal(t, len(info.Games), info.Size)
	assert.Equal(t, models.GameRef{ID: "13", Name: "CATAN"}, info.Games[0])
	assert.Equal(t, models.GameRef{ID: "174430", Name: "Gloomhaven"}, info.Games[4])
	assert.Equal(t, []string{"13", "822", "30549", "68448", "174430"}, info.IDs())
	assert.True(t, info.UpdatedAt.IsZero())
}

func TestParseCollectionEmpty(t *testing.T) {
	assert.Nil(t, ParseCollection(nil, "nobody"))
	assert.Nil(t, ParseCollection([]*Node{}, "nobody"))
}

func TestParseCollectionToleratesMissingName(t *testing.T) {
	items, err := DecodeItems([]byte(`<items><item objectid="1"/></items>`))
	require.NoError(t, err)

	info := ParseCollection(items, "u")
	require.NotNil(t, info)
	assert.Equal(t, models.GameRef{ID: "1"}, info.Games[0])
}
