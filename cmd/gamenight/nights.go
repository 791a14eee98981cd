package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"gamenight/internal/app"
	"gamenight/internal/nights"
	"gamenight/pkg/models"
)

const dateLayout = "2006-01-02 15:04"

func nightCommand() *cli.Command {
	return &cli.Command{
		Name:  "night",
		Usage: "plan game nights and vote on what to play",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "create a game night",
				Flags: []cli.Flag{
					&cli.TimestampFlag{Name: "date", Layout: dateLayout, Usage: "when, as " + dateLayout + " (UTC)"},
					&cli.StringSliceFlag{Name: "player", Aliases: []string{"p"}, Usage: "BGG username of a player, repeatable"},
					&cli.StringFlag{Name: "location", Usage: "where"},
					&cli.StringFlag{Name: "description", Usage: "notes for the players"},
				},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					n := models.GameNight{
						Players:     c.StringSlice("player"),
						Location:    c.String("location"),
						Description: c.String("description"),
					}
					if d := c.Timestamp("date"); d != nil {
						n.Date = *d
					}
					saved, err := a.Nights.Save(c.Context, n)
					if err != nil {
						return err
					}
					return printNight(c, saved, nil)
				}),
			},
			{
				Name:      "show",
				Usage:     "show a game night and the games that suit its players",
				ArgsUsage: "<night-id>",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					id, err := nightArg(c, 1)
					if err != nil {
						return err
					}
					n, err := a.Nights.Get(c.Context, id)
					if err != nil {
						return err
					}
					if n == nil {
						return nights.ErrNotFound
					}
					found, err := a.Nights.Candidates(c.Context, id)
					if err != nil {
						return err
					}
					return printNight(c, n, found)
				}),
			},
			{
				Name:      "vote",
				Usage:     "vote for a game to play",
				ArgsUsage: "<night-id> <game-id>",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					id, err := nightArg(c, 2)
					if err != nil {
						return err
					}
					n, err := a.Nights.Vote(c.Context, id, c.Args().Get(1))
					if err != nil {
						return err
					}
					return printNight(c, n, nil)
				}),
			},
			{
				Name:  "list",
				Usage: "list game nights",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					items, err := a.Nights.List(c.Context)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(c.App.Writer, items)
					}
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tDATE\tPLAYERS\tLOCATION")
					for _, n := range items {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.Date.Format(dateLayout), strings.Join(n.Players, ","), n.Location)
					}
					return tw.Flush()
				}),
			},
		},
	}
}

func nightArg(c *cli.Context, want int) (string, error) {
	if c.NArg() != want || strings.TrimSpace(c.Args().First()) == "" {
		return "", errors.New("usage: " + c.Command.HelpName + " " + c.Command.ArgsUsage)
	}
	return c.Args().First(), nil
}

func printNight(c *cli.Context, n *models.GameNight, found []nights.Candidate) error {
	if c.Bool("json") {
		return printJSON(c.App.Writer, struct {
			Night *models.GameNight  `json:"night"`
			Games []nights.Candidate `json:"games,omitempty"`
		}{n, found})
	}
	w := c.App.Writer
	fmt.Fprintf(w, "night %s on %s\n", n.ID, n.Date.Format(dateLayout))
	if n.Location != "" {
		fmt.Fprintf(w, "at %s\n", n.Location)
	}
	if len(n.Players) > 0 {
		fmt.Fprintf(w, "players: %s\n", strings.Join(n.Players, ", "))
	}
	for _, v := range n.Votes {
		fmt.Fprintf(w, "votes for %s: %d\n", v.ID, v.Count)
	}
	if found != nil {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		writeCandidates(tw, found)
		return tw.Flush()
	}
	return nil
}

func writeCandidates(w io.Writer, found []nights.Candidate) {
	fmt.Fprintln(w, "ID\tNAME\tBEST\tVOTES")
	for _, g := range found {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", g.ID, g.Name, g.BestPlayers, g.Votes)
	}
}
