package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"gamenight/internal/app"
	"gamenight/internal/games"
	"gamenight/pkg/models"
	"gamenight/pkg/utils"
)

var errNoCollection = errors.New("no collection data available")

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "gamenight",
		Usage:     "sync BoardGameGeek collections into the local game cache",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "gamenight.yaml", Usage: "path to YAML config"},
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of tables"},
		},
		Commands: []*cli.Command{
			{
				Name:      "sync",
				Usage:     "resolve a user's collection, using the cache when possible",
				ArgsUsage: "<bgg-user>",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					user, err := oneArg(c)
					if err != nil {
						return err
					}
					info, resolved := a.Collections.Sync(c.Context, user)
					return printCollection(c, info, resolved)
				}),
			},
			{
				Name:      "refresh",
				Usage:     "refetch a user's collection from BGG",
				ArgsUsage: "<bgg-user>",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					user, err := oneArg(c)
					if err != nil {
						return err
					}
					info, resolved := a.Collections.Refresh(c.Context, user)
					return printCollection(c, info, resolved)
				}),
			},
			{
				Name:      "games",
				Usage:     "list a user's games grouped by best player count",
				ArgsUsage: "<bgg-user>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "players", Usage: "only games best with this many players"},
				},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					user, err := oneArg(c)
					if err != nil {
						return err
					}
					info, resolved := a.Collections.Sync(c.Context, user)
					if info == nil {
						return errNoCollection
					}
					players := ""
					if n := c.Int("players"); n > 0 {
						players = strconv.Itoa(n)
					}
					groups := games.GroupByBestPlayers(resolved, players)
					if c.Bool("json") {
						return printJSON(c.App.Writer, groups)
					}
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					for _, g := range groups {
						fmt.Fprintf(tw, "best with %s\t\t\n", g.BestPlayers)
						writeGames(tw, g.Games)
					}
					return tw.Flush()
				}),
			},
			{
				Name:      "group",
				Usage:     "cached games that play best with exactly this group",
				ArgsUsage: "<bgg-user>...",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					users := c.Args().Slice()
					if len(users) == 0 {
						return errors.New("at least one user required")
					}
					found := a.Games.ForGroup(c.Context, users)
					if c.Bool("json") {
						return printJSON(c.App.Writer, found)
					}
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					writeGames(tw, found)
					return tw.Flush()
				}),
			},
			{
				Name:  "collections",
				Usage: "list cached collections",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					items, err := a.Collections.List(c.Context)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(c.App.Writer, items)
					}
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "USER\tGAMES\tUPDATED")
					for _, it := range items {
						fmt.Fprintf(tw, "%s\t%d\t%s\n", it.User, it.Size, it.UpdatedAt.Format("2006-01-02 15:04"))
					}
					return tw.Flush()
				}),
			},
			nightCommand(),
			{
				Name:  "watch",
				Usage: "print sync events from a running api-server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Value: "ws://127.0.0.1:8080/ws", Usage: "websocket endpoint"},
				},
				Action: func(c *cli.Context) error {
					return watch(c.App.Writer, c.String("url"))
				},
			},
		},
	}
}

// withApp loads configuration and builds the application for one command.
func withApp(run func(*cli.Context, *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := utils.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}
		// keep stdout clean outside development
		logger := zap.NewNop()
		if cfg.Dev() {
			if logger, err = utils.NewLogger(true); err != nil {
				return err
			}
			defer logger.Sync()
		}

		a, err := app.New(c.Context, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(c, a)
	}
}

func oneArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 || strings.TrimSpace(c.Args().First()) == "" {
		return "", errors.New("exactly one BGG username required")
	}
	return c.Args().First(), nil
}

func printCollection(c *cli.Context, info *models.CollectionInfo, resolved []models.Game) error {
	if info == nil {
		return errNoCollection
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, struct {
			Collection *models.CollectionInfo `json:"collection"`
			Games      []models.Game          `json:"games"`
		}{info, resolved})
	}
	fmt.Fprintf(c.App.Writer, "%s owns %d games (%d resolved)\n", info.User, info.Size, len(resolved))
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	writeGames(tw, resolved)
	return tw.Flush()
}

func writeGames(w io.Writer, list []models.Game) {
	fmt.Fprintln(w, "ID\tNAME\tPLAYERS\tBEST")
	for _, g := range list {
		fmt.Fprintf(w, "%s\t%s\t%s-%s\t%s\n", g.ID, g.Name, g.MinPlayers, g.MaxPlayers, g.BestPlayers)
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func watch(w io.Writer, wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(msg))
	}
}
