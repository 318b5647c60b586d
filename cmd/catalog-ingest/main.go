// Command catalog-ingest merges one or more product JSON files (plain or
// gzip-compressed) into a catalog, validates it, and writes the result either
// to an atomic JSON catalog file or into PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/voicecart/internal/domain/product"
	"github.com/xenking/voicecart/internal/storage/jsonfile"
	"github.com/xenking/voicecart/internal/storage/postgres"
)

func main() {
	var (
		out         string
		databaseURL string
	)

	flag.StringVar(&out, "out", "data/products.json", "path to write the merged catalog JSON file")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL; when set, upsert into the database instead of writing a file (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("at least one input file is required: catalog-ingest [flags] <products.json[.gz]>...")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, files, out, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, files []string, out, databaseURL string) error {
	products, err := readCatalogs(ctx, files)
	if err != nil {
		return err
	}
	if err := product.ValidateCatalog(products); err != nil {
		return errors.Wrap(err, "validate merged catalog")
	}

	slog.Info("catalog merged", slog.Int("files", len(files)), slog.Int("products", len(products)))

	if databaseURL == "" {
		if err := jsonfile.WriteCatalog(out, products); err != nil {
			return errors.Wrapf(err, "write catalog %s", out)
		}
		slog.Info("catalog written", slog.String("path", out))
		return nil
	}

	return writeDatabase(ctx, databaseURL, products)
}

// readCatalogs parses all input files concurrently and merges the results in
// input order. Later files override earlier ones on duplicate product ids.
func readCatalogs(ctx context.Context, files []string) ([]product.Product, error) {
	parsed := make([][]product.Product, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			products, err := readCatalogFile(f)
			if err != nil {
				return errors.Wrapf(err, "read %s", f)
			}
			slog.Info("file parsed", slog.String("path", f), slog.Int("products", len(products)))
			parsed[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]int)
	var merged []product.Product
	for _, products := range parsed {
		for _, p := range products {
			if at, ok := byID[p.ID]; ok {
				merged[at] = p
				continue
			}
			byID[p.ID] = len(merged)
			merged = append(merged, p)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	return merged, nil
}

// readCatalogFile decodes a product JSON array, transparently decompressing
// .gz files.
func readCatalogFile(path string) ([]product.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var products []product.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

func writeDatabase(ctx context.Context, databaseURL string, products []product.Product) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewCatalogRepository(pool)
	for i, p := range products {
		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		if (i+1)%100 == 0 || i+1 == len(products) {
			slog.Info("upsert progress", slog.Int("written", i+1), slog.Int("total", len(products)))
		}
	}

	return nil
}
