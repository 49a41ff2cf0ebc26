// Command geo-ingest loads province/city reference data from gzipped region
// exports into PostgreSQL. Carrier region dumps are published as several
// overlapping snapshot files; lines are pipe-delimited:
//
//	province_id|province_name|city_id|city_name|postcode
//
// Files are parsed concurrently and duplicate rows across snapshots are
// suppressed with a bloom filter before upserting.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/region"
	"github.com/brmntiosa/Ecommerce-Arum/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.0001
	fieldCount    = 5
	progressEvery = 1_000_000
)

// row is one parsed export line.
type row struct {
	province region.Province
	city     region.City
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing regions*.gz export files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("geo ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("geo ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "regions*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no regions*.gz files in %s", dataDir)
	}

	slog.Info("parsing export files", slog.Int("files", len(files)))

	perFile, err := parseFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse export files")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return writeRows(ctx, repository.NewRegionRepository(pool), perFile)
}

// parseFiles parses every export file concurrently, one slice of rows per
// file so snapshot order is preserved for the dedupe pass.
func parseFiles(ctx context.Context, files []string) ([][]row, error) {
	perFile := make([][]row, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			rows, err := parseFile(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "parse %s", path)
			}
			slog.Info("parsed export file", slog.String("path", path), slog.Int("rows", len(rows)))
			perFile[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return perFile, nil
}

func parseFile(ctx context.Context, path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	var (
		rows    []row
		skipped int
		scanned uint64
	)
	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scanned++
		if scanned%progressEvery == 0 {
			slog.Info("parse progress", slog.String("path", path), slog.Uint64("lines", scanned))
		}

		fields := strings.Split(scanner.Text(), "|")
		if len(fields) != fieldCount || fields[0] == "" || fields[2] == "" {
			skipped++
			continue
		}
		rows = append(rows, row{
			province: region.Province{ID: fields[0], Name: fields[1]},
			city: region.City{
				ID:         fields[2],
				ProvinceID: fields[0],
				Name:       fields[3],
				Postcode:   fields[4],
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	if skipped > 0 {
		slog.Warn("skipped malformed lines", slog.String("path", path), slog.Int("count", skipped))
	}
	return rows, nil
}

// writeRows upserts provinces and cities, suppressing rows already written.
// Snapshot files overlap almost entirely, so the bloom filter saves the bulk
// of redundant upserts; upserts are idempotent, so a rerun repairs any row a
// false positive may have skipped.
func writeRows(ctx context.Context, repo *repository.RegionRepository, perFile [][]row) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var provinces, cities int
	for _, rows := range perFile {
		for _, r := range rows {
			if key := "p|" + r.province.ID + "|" + r.province.Name; !seen.TestAndAddString(key) {
				if err := repo.UpsertProvince(ctx, r.province); err != nil {
					return errors.Wrapf(err, "upsert province %s", r.province.ID)
				}
				provinces++
			}

			key := "c|" + r.city.ID + "|" + r.city.Name + "|" + r.city.Postcode
			if !seen.TestAndAddString(key) {
				if err := repo.UpsertCity(ctx, r.city); err != nil {
					return errors.Wrapf(err, "upsert city %s", r.city.ID)
				}
				cities++
			}
		}
	}

	slog.Info("reference data written",
		slog.Int("provinces", provinces),
		slog.Int("cities", cities),
	)
	return nil
}
