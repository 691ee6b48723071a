// decoder reads search links, one per line, and logs what each one asks
// for. With --save the decoded links are recorded in MySQL as well.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"travel_query/internal/adapters/observability"
	redisad "travel_query/internal/adapters/redis"
	"travel_query/internal/app"
	"travel_query/internal/domain"
	"travel_query/internal/shared"
	mysqlrepo "travel_query/internal/storage/mysql"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := shared.Load()

	var (
		input   string
		workers int
		save    bool
	)
	flagSet := pflag.NewFlagSet("decoder", pflag.ContinueOnError)
	flagSet.StringVarP(&input, "input", "i", "-", "file with one link per line (- for stdin)")
	flagSet.IntVarP(&workers, "workers", "w", cfg.DecoderWorkers, "concurrent decodes")
	flagSet.BoolVar(&save, "save", false, "record decoded links in the search history")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	log.Logger = observability.NewLogger(cfg.AppEnv, "decoder")

	lines, err := readLines(input)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var links *app.LinkService
	if save {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fmt.Errorf("sql.Open: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cache.Close()
		links = app.NewLinkService(mysqlrepo.New(db), cache, cfg.LinkConfig())
	}

	log.Info().Int("links", len(lines)).Int("workers", workers).Bool("save", save).Msg("decoder starting")

	results, err := app.DecodeBatch(ctx, lines, workers, links)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Warn().Int("line", r.Line).Err(r.Err).Msg("decode failed")
			continue
		}
		ev := log.Info().Int("line", r.Line).Str("kind", string(r.Link.Kind))
		if r.Record != nil {
			ev = ev.Str("id", r.Record.ID)
		}
		switch {
		case r.Link.Flight != nil:
			f := r.Link.Flight
			ev.Str("origin", f.Origin).Str("destination", f.Destination).
				Str("depart", f.DepartDate).Str("return", f.ReturnDate).
				Stringer("cabin", f.CabinClass).Stringer("trip", f.TripType).
				Int("adults", f.Count(domain.PassengerAdult)).Msg("flight")
		case r.Link.Hotel != nil:
			h := r.Link.Hotel
			ev.Str("location", h.Location).Str("checkin", h.CheckinDate).
				Str("checkout", h.CheckoutDate).Int("adults", h.Adults).
				Ints("children", h.ChildrenAges).Str("currency", h.Currency).Msg("hotel")
		}
	}
	if err != nil {
		return err
	}
	log.Info().Int("decoded", len(results)-failed).Int("failed", failed).Msg("decoder finished")
	if failed > 0 {
		return fmt.Errorf("%d of %d links failed", failed, len(results))
	}
	return nil
}

func readLines(path string) ([]app.BatchInput, error) {
	if path == "-" {
		return app.ReadBatch(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return app.ReadBatch(f)
}
