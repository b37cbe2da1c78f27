// Binary seed-db loads the catalog from a JSON file, seeds launch
// discounts, and registers the storefront's API key.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sajibhasan/gymkart/internal/domain/catalog"
	"github.com/sajibhasan/gymkart/internal/storage/postgres"
)

type productJSON struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	BasePrice decimal.Decimal   `json:"basePrice"`
	BaseStock *int              `json:"baseStock"`
	Category  string            `json:"category"`
	Image     string            `json:"image"`
	Variants  []catalog.Variant `json:"variants"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or GYMKART_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or GYMKART_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("GYMKART_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or GYMKART_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("GYMKART_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedDiscounts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}
	return nil
}

const upsertProductSQL = `
INSERT INTO products (id, name, base_price, base_stock, category, image, variants)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    name       = EXCLUDED.name,
    base_price = EXCLUDED.base_price,
    base_stock = EXCLUDED.base_stock,
    category   = EXCLUDED.category,
    image      = EXCLUDED.image,
    variants   = EXCLUDED.variants`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, p := range products {
		g.Go(func() error {
			variants, err := json.Marshal(p.Variants)
			if err != nil {
				return errors.Wrapf(err, "marshal variants of %s", p.ID)
			}
			if _, err := pool.Exec(ctx, upsertProductSQL,
				p.ID, p.Name, p.BasePrice, p.BaseStock, p.Category, p.Image, variants,
			); err != nil {
				return errors.Wrapf(err, "upsert product %s", p.ID)
			}
			slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
			return nil
		})
	}
	return g.Wait()
}

const upsertDiscountSQL = `
INSERT INTO discounts (id, code, title, discount_type, value, min_subtotal, max_discount, max_uses, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
ON CONFLICT (code) DO UPDATE SET
    title         = EXCLUDED.title,
    discount_type = EXCLUDED.discount_type,
    value         = EXCLUDED.value,
    min_subtotal  = EXCLUDED.min_subtotal,
    max_discount  = EXCLUDED.max_discount,
    max_uses      = EXCLUDED.max_uses,
    active        = TRUE`

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding launch discounts")

	type seed struct {
		id, code, title, dtype          string
		value, minSubtotal, maxDiscount decimal.Decimal
		maxUses                         int
	}
	discounts := []seed{
		{
			id:          "welcome10",
			code:        "WELCOME10",
			title:       "Welcome: 10% off your first order",
			dtype:       "percentage",
			value:       decimal.NewFromInt(10),
			maxDiscount: decimal.NewFromInt(500),
		},
		{
			id:          "flat100",
			code:        "FLAT100",
			title:       "Flat 100 off orders over 1500",
			dtype:       "fixed",
			value:       decimal.NewFromInt(100),
			minSubtotal: decimal.NewFromInt(1500),
		},
	}

	for _, d := range discounts {
		if _, err := pool.Exec(ctx, upsertDiscountSQL,
			d.id, d.code, d.title, d.dtype, d.value, d.minSubtotal, d.maxDiscount, d.maxUses,
		); err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.code)
		}
		slog.Info("upserted discount", slog.String("code", d.code), slog.String("title", d.title))
	}
	return nil
}

const upsertAPIKeySQL = `
INSERT INTO api_keys (id, key_hash, name, scopes, active)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT (id) DO UPDATE SET
    key_hash = EXCLUDED.key_hash,
    name     = EXCLUDED.name,
    scopes   = EXCLUDED.scopes,
    active   = TRUE`

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding storefront API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx, upsertAPIKeySQL,
		"storefront", keyHash, "Storefront frontend key", []string{"checkout", "catalog"},
	); err != nil {
		return errors.Wrap(err, "upsert storefront API key")
	}

	slog.Info("upserted API key", slog.String("id", "storefront"))
	return nil
}
