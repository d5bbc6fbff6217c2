// Command catalog-ingest bulk-imports catalog entries from gzip-compressed
// JSON Lines exports, one entity per line. Files named pizzas*.jsonl.gz
// carry pizzas and files named extras*.jsonl.gz carry extras; all files are
// streamed concurrently and rows are upserted by name in batches.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/donprecious/pizza-order-api/internal/repository"
)

const (
	batchSize     = 500
	progressEvery = 10_000
)

const (
	upsertPizzaSQL = `INSERT INTO pizzas (id, name, base_price, image_url, ingredients)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET base_price = EXCLUDED.base_price,
		    image_url = EXCLUDED.image_url,
		    ingredients = EXCLUDED.ingredients,
		    is_active = TRUE`

	upsertExtraSQL = `INSERT INTO extras (id, name, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET price = EXCLUDED.price,
		    is_active = TRUE`
)

type pizzaLine struct {
	Name        string          `json:"name"`
	BasePrice   decimal.Decimal `json:"base_price"`
	ImageURL    string          `json:"image_url"`
	Ingredients []string        `json:"ingredients"`
}

type extraLine struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing pizzas*.jsonl.gz and extras*.jsonl.gz files")
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
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "list data files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", dataDir)
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

	slog.Info("ingesting files", slog.Int("count", len(files)))

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(ingestFile(ctx, pool, f))
	}
	return g.Wait()
}

func ingestFile(ctx context.Context, pool *pgxpool.Pool, path string) func() error {
	return func() error {
		base := filepath.Base(path)
		switch {
		case strings.HasPrefix(base, "pizzas"):
			return streamGzLines(ctx, path, newBatcher(ctx, pool, path, decodePizza))
		case strings.HasPrefix(base, "extras"):
			return streamGzLines(ctx, path, newBatcher(ctx, pool, path, decodeExtra))
		default:
			slog.Warn("skipping unrecognized file", slog.String("path", path))
			return nil
		}
	}
}

// decodeFunc parses one JSONL line into an upsert statement with its args.
type decodeFunc func(line []byte) (sql string, args []any, err error)

func decodePizza(line []byte) (string, []any, error) {
	var p pizzaLine
	if err := json.Unmarshal(line, &p); err != nil {
		return "", nil, errors.Wrap(err, "parse pizza line")
	}
	if p.Name == "" {
		return "", nil, errors.New("pizza line has no name")
	}
	ingredients := p.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return upsertPizzaSQL, []any{uuid.New(), p.Name, p.BasePrice, p.ImageURL, ingredients}, nil
}

func decodeExtra(line []byte) (string, []any, error) {
	var ex extraLine
	if err := json.Unmarshal(line, &ex); err != nil {
		return "", nil, errors.Wrap(err, "parse extra line")
	}
	if ex.Name == "" {
		return "", nil, errors.New("extra line has no name")
	}
	return upsertExtraSQL, []any{uuid.New(), ex.Name, ex.Price}, nil
}

// newBatcher returns a line handler that accumulates upserts into pgx
// batches and flushes every batchSize lines. Passing a nil line flushes the
// remainder.
func newBatcher(ctx context.Context, pool *pgxpool.Pool, path string, decode decodeFunc) func(line []byte) error {
	batch := &pgx.Batch{}
	var total uint64

	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrapf(err, "flush batch for %s", path)
		}
		batch = &pgx.Batch{}
		return nil
	}

	return func(line []byte) error {
		if line == nil {
			if err := flush(); err != nil {
				return err
			}
			slog.Info("file complete", slog.String("path", path), slog.Uint64("rows", total))
			return nil
		}

		sql, args, err := decode(line)
		if err != nil {
			return err
		}
		batch.Queue(sql, args...)
		total++

		if total%progressEvery == 0 {
			slog.Info("ingest progress", slog.String("path", path), slog.Uint64("rows", total))
		}
		if batch.Len() >= batchSize {
			return flush()
		}
		return nil
	}
}

// streamGzLines opens a gzip-compressed file and calls fn for each non-empty
// line, then once more with nil to signal the end of the file.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		// scanner reuses its buffer; hand the handler a copy.
		cp := make([]byte, len(line))
		copy(cp, line)
		if err := fn(cp); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return fn(nil)
}
