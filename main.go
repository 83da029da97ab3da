package main

import (
	"log"
	"os"

	"github.com/dtnitsch/hrscrape/internal/matchcmd"
	"github.com/dtnitsch/hrscrape/internal/runs"
	"github.com/dtnitsch/hrscrape/internal/scrape"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "hrscrape",
		Usage: "fetch company register documents from handelsregister.de",
		Commands: []*cli.Command{
			{
				Name:      "fetch",
				Usage:     "search a company and download its register documents",
				ArgsUsage: "<company name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "registration", Aliases: []string{"r"}, Usage: "registration number for precise matching, e.g. \"HRB 259502\""},
					&cli.StringSliceFlag{Name: "type", Aliases: []string{"t"}, Usage: "document type to fetch (AD, CD); repeatable, default both"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "output format: json or text"},
					&cli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
					&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "save fetched documents under this directory"},
					&cli.StringFlag{Name: "db", Usage: "path to the run history database"},
					&cli.BoolFlag{Name: "headless", Value: true, Usage: "run the browser headless; pass --headless=false to watch it"},
					&cli.IntFlag{Name: "attempts", Usage: "max attempts for retryable failures (overrides config)"},
					&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "log errors only"},
				},
				Action: scrape.FetchAction,
			},
			{
				Name:      "match",
				Usage:     "rank a saved candidate list offline to debug selection",
				ArgsUsage: "<company name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "candidates", Aliases: []string{"c"}, Usage: "YAML or JSON file of candidate rows, or - for stdin"},
					&cli.StringFlag{Name: "registration", Aliases: []string{"r"}, Usage: "registration number to score against"},
					&cli.StringFlag{Name: "config", Usage: "path to a YAML config file"},
					&cli.BoolFlag{Name: "json", Usage: "emit the selection as JSON"},
				},
				Action: matchcmd.RankAction,
			},
			{
				Name:  "runs",
				Usage: "inspect the run history",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list recent runs",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 20, Usage: "max runs to show (0 = all)"},
							&cli.StringFlag{Name: "db", Usage: "path to the run history database"},
						},
						Action: runs.ListAction,
					},
					{
						Name:      "show",
						Usage:     "show one run in detail (latest when no ID given)",
						ArgsUsage: "[run-id]",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "db", Usage: "path to the run history database"},
						},
						Action: runs.ShowAction,
					},
					{
						Name:  "query",
						Usage: "filter the run history",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "today", Usage: "only runs from today"},
							&cli.BoolFlag{Name: "failed", Usage: "only failed runs"},
							&cli.StringFlag{Name: "company", Usage: "match query or company name (substring)"},
							&cli.StringFlag{Name: "db", Usage: "path to the run history database"},
						},
						Action: runs.QueryAction,
					},
					{
						Name:  "stats",
						Usage: "print run history totals",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "db", Usage: "path to the run history database"},
						},
						Action: runs.StatsAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
