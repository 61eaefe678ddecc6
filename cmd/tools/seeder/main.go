package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type seedProduct struct {
	Code      string
	Barcode   string
	Name      string
	Retail    int64
	Wholesale int64
	Stock     int64
	MinStock  int64
	Category  string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProducts(ctx, pool)
	seedKits(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) {
	products := []seedProduct{
		{"PIN-001", "7501001000011", "Piñata Estrella Grande", 35000, 28000, 40, 5, "party"},
		{"PIN-002", "7501001000028", "Piñata Burro Chica", 22000, 17500, 25, 5, "party"},
		{"DUL-001", "7501002000013", "Bolsa Dulce Surtido 1kg", 9500, 7200, 120, 20, "candy"},
		{"DUL-002", "7501002000020", "Paleta Payaso Caja 20pz", 18000, 14500, 60, 10, "candy"},
		{"DUL-003", "7501002000037", "Mazapán Caja 30pz", 15000, 12000, 80, 10, "candy"},
		{"GLO-001", "7501003000015", "Globos Látex Bolsa 50pz", 6500, 4800, 200, 30, "party"},
		{"GLO-002", "7501003000022", "Globo Metálico Número", 4500, 3200, 150, 20, "party"},
		{"DES-001", "7501004000017", "Plato Desechable Paq 25pz", 3800, 2900, 300, 50, "disposables"},
		{"DES-002", "7501004000024", "Vaso Desechable Paq 50pz", 4200, 3100, 280, 50, "disposables"},
		{"BOL-001", "7501005000019", "Bolsa Regalo Mediana", 1200, 800, 500, 100, "wrapping"},
	}

	log.Println("Seeding products...")
	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (code, barcode, name, retail_price, wholesale_price, stock, min_stock, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (code) DO UPDATE SET
				barcode = EXCLUDED.barcode,
				name = EXCLUDED.name,
				retail_price = EXCLUDED.retail_price,
				wholesale_price = EXCLUDED.wholesale_price,
				category = EXCLUDED.category`,
			p.Code, p.Barcode, p.Name, p.Retail, p.Wholesale, p.Stock, p.MinStock, p.Category)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Code, err)
		}
	}
}

// seedKits creates one demo kit: every large piñata unlocks two candy picks.
func seedKits(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding kits...")

	var kitID string
	err := pool.QueryRow(ctx, `
		INSERT INTO kits (name, trigger_product_id, max_per_trigger)
		SELECT 'Piñata + Dulces', id, 2 FROM products WHERE code = 'PIN-001'
		ON CONFLICT (trigger_product_id) DO UPDATE SET
			name = EXCLUDED.name,
			max_per_trigger = EXCLUDED.max_per_trigger
		RETURNING id`).Scan(&kitID)
	if err != nil {
		log.Printf("Failed to seed kit: %v", err)
		return
	}

	for _, code := range []string{"DUL-001", "DUL-002", "DUL-003"} {
		_, err := pool.Exec(ctx, `
			INSERT INTO kit_items (kit_id, product_id)
			SELECT $1, id FROM products WHERE code = $2
			ON CONFLICT DO NOTHING`, kitID, code)
		if err != nil {
			log.Printf("Failed to seed kit item %s: %v", code, err)
		}
	}
}
