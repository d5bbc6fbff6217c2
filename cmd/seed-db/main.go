// Command seed-db loads the pizza and extra catalog from a JSON file into
// PostgreSQL. Rows are upserted by name, so re-running against an existing
// database refreshes prices without duplicating entries.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/donprecious/pizza-order-api/internal/repository"
)

type catalogJSON struct {
	Pizzas []pizzaJSON `json:"pizzas"`
	Extras []extraJSON `json:"extras"`
}

type pizzaJSON struct {
	Name        string          `json:"name"`
	BasePrice   decimal.Decimal `json:"base_price"`
	ImageURL    string          `json:"image_url"`
	Ingredients []string        `json:"ingredients"`
}

type extraJSON struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

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

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
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

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}
	var cat catalogJSON
	if err := json.Unmarshal(data, &cat); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	if err := seedPizzas(ctx, pool, cat.Pizzas); err != nil {
		return errors.Wrap(err, "seed pizzas")
	}
	if err := seedExtras(ctx, pool, cat.Extras); err != nil {
		return errors.Wrap(err, "seed extras")
	}
	return nil
}

func seedPizzas(ctx context.Context, pool *pgxpool.Pool, pizzas []pizzaJSON) error {
	slog.Info("upserting pizzas", slog.Int("count", len(pizzas)))

	for _, p := range pizzas {
		ingredients := p.Ingredients
		if ingredients == nil {
			ingredients = []string{}
		}
		_, err := pool.Exec(ctx, upsertPizzaSQL,
			uuid.New(), p.Name, p.BasePrice, p.ImageURL, ingredients,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert pizza %s", p.Name)
		}

		slog.Info("upserted pizza", slog.String("name", p.Name), slog.String("base_price", p.BasePrice.StringFixed(2)))
	}
	return nil
}

func seedExtras(ctx context.Context, pool *pgxpool.Pool, extras []extraJSON) error {
	slog.Info("upserting extras", slog.Int("count", len(extras)))

	for _, ex := range extras {
		_, err := pool.Exec(ctx, upsertExtraSQL, uuid.New(), ex.Name, ex.Price)
		if err != nil {
			return errors.Wrapf(err, "upsert extra %s", ex.Name)
		}

		slog.Info("upserted extra", slog.String("name", ex.Name), slog.String("price", ex.Price.StringFixed(2)))
	}
	return nil
}
