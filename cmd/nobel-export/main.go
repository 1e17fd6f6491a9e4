// Command nobel-export fetches prizes, prints a statistics report and saves
// the result as a JSON document or CSV file.
package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/Sternrassler/nobel-prize-cache/internal/app"
	"github.com/Sternrassler/nobel-prize-cache/pkg/config"
	"github.com/Sternrassler/nobel-prize-cache/pkg/export"
	"github.com/Sternrassler/nobel-prize-cache/pkg/logging"
	"github.com/Sternrassler/nobel-prize-cache/pkg/prize"
	"github.com/Sternrassler/nobel-prize-cache/pkg/service"
	"github.com/Sternrassler/nobel-prize-cache/pkg/stats"
)

// defaultLimit widens an unfiltered export to a useful sample.
const defaultLimit = 100

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"year":            "year",
	"category":        "category",
	"logLevel":        "log_level",
	"outputFile":      "output_file",
	"outputDir":       "output_dir",
	"format":          "format",
	"all":             "fetch_all",
	"api-base-url":    "api_base_url",
	"page-size":       "page_size",
	"max-concurrency": "max_concurrency",
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error().Err(err).Msg("Analysis failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "nobel-export",
		Usage:  "analyze Nobel prizes and export them as JSON or CSV",
		Action: runExport,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "year", Usage: "filter by award year"},
			&cli.StringFlag{Name: "category", Usage: "filter by category, e.g. phy or Physics"},
			&cli.StringFlag{Name: "logLevel", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "outputFile", Usage: "output file name"},
			&cli.StringFlag{Name: "outputDir", Usage: "output directory"},
			&cli.StringFlag{Name: "format", Usage: "json or csv"},
			&cli.StringFlag{Name: "config", Usage: "YAML or JSON config file"},
			&cli.BoolFlag{Name: "all", Usage: "fetch every page of the filtered set"},
			&cli.StringFlag{Name: "api-base-url", Usage: "upstream API root"},
			&cli.IntFlag{Name: "page-size", Usage: "prizes per page with --all"},
			&cli.IntFlag{Name: "max-concurrency", Usage: "parallel page requests with --all"},
		},
	}
}

func runExport(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.Context, cctx.String("config"), app.FlagOverrides(cctx, flagKeys))
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger(logging.ComponentExport)

	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	logger.Info().Msg("Starting Nobel Prize Data Analysis...")
	logger.Debug().Interface("config", cfg).Msg("Configuration")

	ctx := cctx.Context
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Close failed")
		}
	}()

	params := exportParams(cfg)
	logger.Info().
		Str("params", params.Encode()).
		Bool("all", cfg.FetchAll).
		Msg("Fetching data from API...")

	var prizes []prize.Prize
	if cfg.FetchAll {
		prizes, err = a.Batch.FetchAll(ctx, params)
	} else {
		prizes, err = a.Service.Prizes(ctx, params)
	}
	if err != nil {
		return err
	}
	logger.Info().Int("prizes", len(prizes)).Msg("Retrieved prize records")

	st := stats.Aggregate(prizes)
	printReport(cctx.App.Writer, st)

	doc := export.NewDocument(prizes, params, &st, time.Now())
	path, err := export.Save(cfg.OutputDir, cfg.OutputFile, format, doc)
	if err != nil {
		return err
	}

	logger.Info().Str("path", path).Msg("Analysis complete. Results saved")
	return nil
}

// exportParams builds the upstream query. Without a year or category the
// export is widened to defaultLimit prizes; --all pages through everything.
func exportParams(cfg config.Config) url.Values {
	f := service.Filter{Year: cfg.Year, Category: cfg.Category}
	if !f.Narrowed() && !cfg.FetchAll {
		f.Limit = defaultLimit
	}
	return f.Values()
}

func printReport(w io.Writer, st stats.Statistics) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "---  Analysis Report ---")
	fmt.Fprintf(w, "Total Prizes Analyzed: %d\n", st.TotalPrizes)
	fmt.Fprintf(w, "Total Laureates:       %d\n", st.TotalLaureates)
	fmt.Fprintf(w, "Average Prize Amount:  %s SEK\n", groupThousands(st.AveragePrizeAmount))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Category Distribution:")

	categories := make([]string, 0, len(st.PrizesByCategory))
	width := len("Category")
	for c := range st.PrizesByCategory {
		categories = append(categories, c)
		width = max(width, len(c))
	}
	sort.Strings(categories)

	fmt.Fprintf(w, "  %-*s  %s\n", width, "Category", "Prizes")
	for _, c := range categories {
		fmt.Fprintf(w, "  %-*s  %d\n", width, c, st.PrizesByCategory[c])
	}
	fmt.Fprintln(w, "--------------------------")
	fmt.Fprintln(w)
}

// groupThousands renders n with comma separators, e.g. 1,333,333.
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}
