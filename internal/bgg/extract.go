package bgg

import (
	"html"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"gamenight/pkg/models"
)

// fieldKind classifies the child elements of a thing item.
type fieldKind int

const (
	kindUnrecognized fieldKind = iota
	kindName
	kindLink
	kindPoll
	kindText
	kindHTMLText
	kindValue
)

var fieldKinds = map[string]fieldKind{
	"name":          kindName,
	"link":          kindLink,
	"poll":          kindPoll,
	"description":   kindHTMLText,
	"image":         kindText,
	"thumbnail":     kindText,
	"maxplayers":    kindValue,
	"maxplaytime":   kindValue,
	"minage":        kindValue,
	"minplayers":    kindValue,
	"minplaytime":   kindValue,
	"playingtime":   kindValue,
	"yearpublished": kindValue,
}

// fieldSetters writes the scalar of a text or value field onto a Game.
var fieldSetters = map[string]func(*models.Game, string){
	"description":   func(g *models.Game, v string) { g.Description = v },
	"image":         func(g *models.Game, v string) { g.Image = v },
	"thumbnail":     func(g *models.Game, v string) { g.Thumbnail = v },
	"maxplayers":    func(g *models.Game, v string) { g.MaxPlayers = v },
	"maxplaytime":   func(g *models.Game, v string) { g.MaxPlayTime = v },
	"minage":        func(g *models.Game, v string) { g.MinAge = v },
	"minplayers":    func(g *models.Game, v string) { g.MinPlayers = v },
	"minplaytime":   func(g *models.Game, v string) { g.MinPlayTime = v },
	"playingtime":   func(g *models.Game, v string) { g.PlayingTime = v },
	"yearpublished": func(g *models.Game, v string) { g.YearPublished = v },
}

const playerCountPoll = "suggested_numplayers"

// Extractor turns decoded thing items into Games.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor returns an Extractor that reports unrecognized fields to log.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// Game extracts one item. It never fails: missing pieces keep their defaults,
// so an item without an id comes back with models.UnknownID.
func (e *Extractor) Game(item *Node) models.Game {
	g := models.Game{
		ID:          models.UnknownID,
		Name:        models.UnknownName,
		BestPlayers: models.UnknownBestPlayerCount,
	}
	if item == nil {
		return g
	}

	if id, ok := item.Attr("id"); ok && id != "" {
		g.ID = id
	}
	if typ, ok := item.Attr("type"); ok {
		g.Type = typ
	}

	for _, group := range groupChildren(item) {
		name, nodes := group.name, group.nodes
		switch fieldKinds[name] {
		case kindName:
			applyNames(&g, nodes)
		case kindLink:
			// category/mechanic/family links are not used downstream
		case kindPoll:
			applyPoll(&g, nodes)
		case kindText:
			fieldSetters[name](&g, nodes[0].Text)
		case kindHTMLText:
			fieldSetters[name](&g, html.UnescapeString(nodes[0].Text))
		case kindValue:
			if v, ok := nodes[0].Attr("value"); ok {
				fieldSetters[name](&g, v)
			}
		default:
			e.log.Warn("unrecognized field",
				zap.String("field", name),
				zap.String("game", g.ID),
			)
		}
	}

	return g
}

// Games extracts every item in order.
func (e *Extractor) Games(items []*Node) []models.Game {
	out := make([]models.Game, 0, len(items))
	for _, item := range items {
		out = append(out, e.Game(item))
	}
	return out
}

type childGroup struct {
	name  string
	nodes []*Node
}

// groupChildren groups an item's children by element name, in order of first
// appearance.
func groupChildren(item *Node) []childGroup {
	var groups []childGroup
	index := make(map[string]int)
	for _, c := range item.Children {
		i, ok := index[c.Name]
		if !ok {
			i = len(groups)
			index[c.Name] = i
			groups = append(groups, childGroup{name: c.Name})
		}
		groups[i].nodes = append(groups[i].nodes, c)
	}
	return groups
}

func applyNames(g *models.Game, nodes []*Node) {
	if v, ok := nodes[0].Attr("value"); ok {
		g.Name = v
	}
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if v, ok := n.Attr("value"); ok {
			names = append(names, v)
		}
	}
	g.AlternateNames = names
}

// applyPoll reads the player-count poll; other polls are ignored.
func applyPoll(g *models.Game, polls []*Node) {
	var votes []models.PlayerVoteEntry
	for _, p := range polls {
		if name, _ := p.Attr("name"); name == playerCountPoll {
			votes = parsePlayerVotes(p)
			break
		}
	}
	if len(votes) == 0 {
		g.PlayerVotes = nil
		g.BestPlayers = models.UnknownBestPlayerCount
		return
	}
	g.PlayerVotes = votes
	g.BestPlayers = votes[0].NumPlayers
}

// parsePlayerVotes reads every results bucket of a player-count poll and
// sorts them by Best, highest first.
func parsePlayerVotes(poll *Node) []models.PlayerVoteEntry {
	buckets := poll.ChildrenNamed("results")
	if len(buckets) == 0 {
		return nil
	}

	votes := make([]models.PlayerVoteEntry, 0, len(buckets))
	for _, b := range buckets {
		label, _ := b.Attr("numplayers")
		entry := models.PlayerVoteEntry{
			NumPlayers:     label,
			Best:           models.MissingVotes,
			Recommended:    models.MissingVotes,
			NotRecommended: models.MissingVotes,
		}
		// slots are positional: best, recommended, not recommended
		if slots := b.ChildrenNamed("result"); len(slots) >= 3 {
			entry.Best = numVotes(slots[0])
			entry.Recommended = numVotes(slots[1])
			entry.NotRecommended = numVotes(slots[2])
		}
		votes = append(votes, entry)
	}

	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].Best > votes[j].Best
	})
	return votes
}

func numVotes(n *Node) int {
	v, ok := n.Attr("numvotes")
	if !ok {
		return models.MissingVotes
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return models.MissingVotes
	}
	return i
}
