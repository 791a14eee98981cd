package bgg

import (
	"gamenight/pkg/models"
)

// ParseCollection builds a CollectionInfo from the items of a collection
// response. Only the object id and the name text are read. It returns nil
// when there are no items.
func ParseCollection(items []*Node, user string) *models.CollectionInfo {
	if len(items) == 0 {
		return nil
	}

	games := make([]models.GameRef, 0, len(items))
	for _, item := range items {
		ref := models.GameRef{}
		ref.ID, _ = item.Attr("objectid")
		if name, ok := item.Child("name"); ok {
			ref.Name = name.Text
		}
		games = append(games, ref)
	}

	return &models.CollectionInfo{
		User:  user,
		Size:  len(items),
		Games: games,
	}
}
