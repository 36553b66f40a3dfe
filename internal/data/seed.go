package data

import (
	"context"
	"fmt"
	"math"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minUnitPrice = 1.0
	maxUnitPrice = 100.0
	minQuantity  = 1
	maxQuantity  = 50
)

// CategoryNames is the fixed category list inserted on every generation run.
var CategoryNames = []string{
	"Beverages",
	"Dairy",
	"Condiments",
	"Confections",
	"Grains/Cereals",
	"Produce",
	"Meat/Poultry",
}

// GenerateConfig controls how many rows of each entity are fabricated.
type GenerateConfig struct {
	Suppliers int
	Products  int
	Orders    int
	BatchSize int
	// Seed makes runs reproducible; zero picks a random seed.
	Seed uint64
}

// DefaultGenerateConfig mirrors the demo dataset size.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Suppliers: 100,
		Products:  500,
		Orders:    2000,
		BatchSize: 500,
	}
}

// GenerateResult reports how many rows were inserted per table.
type GenerateResult struct {
	Suppliers  int
	Categories int
	Products   int
	Orders     int
}

// EnsureSchema creates any of the four tables that do not exist yet.
func EnsureSchema(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Generate fills the store with random suppliers, categories, products and
// order lines. Supplier and category references are drawn from [1, n] and
// assume a freshly created store. Each table is written in batches without an
// enclosing transaction, so a failure leaves earlier tables populated.
func Generate(ctx context.Context, db *gorm.DB, cfg GenerateConfig) (*GenerateResult, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultGenerateConfig().BatchSize
	}
	if cfg.Suppliers < 0 || cfg.Products < 0 || cfg.Orders < 0 {
		return nil, fmt.Errorf("row counts must not be negative: %+v", cfg)
	}
	if cfg.Products > 0 && cfg.Suppliers == 0 {
		return nil, fmt.Errorf("cannot reference suppliers: none requested")
	}
	if cfg.Orders > 0 && cfg.Products == 0 {
		return nil, fmt.Errorf("cannot reference products: none requested")
	}

	fake := gofakeit.New(cfg.Seed)
	res := &GenerateResult{}

	suppliers := buildSuppliers(fake, cfg.Suppliers)
	if err := createInBatches(ctx, db, &suppliers, len(suppliers), cfg.BatchSize); err != nil {
		return res, fmt.Errorf("insert suppliers: %w", err)
	}
	res.Suppliers = len(suppliers)

	categories := make([]Category, 0, len(CategoryNames))
	for _, name := range CategoryNames {
		categories = append(categories, Category{CategoryName: name})
	}
	if err := createInBatches(ctx, db, &categories, len(categories), cfg.BatchSize); err != nil {
		return res, fmt.Errorf("insert categories: %w", err)
	}
	res.Categories = len(categories)

	products := buildProducts(fake, cfg.Products, cfg.Suppliers, len(CategoryNames))
	if err := createInBatches(ctx, db, &products, len(products), cfg.BatchSize); err != nil {
		return res, fmt.Errorf("insert products: %w", err)
	}
	res.Products = len(products)

	prices, err := ProductPrices(ctx, db)
	if err != nil {
		return res, fmt.Errorf("load product prices: %w", err)
	}
	orders := buildOrders(fake, cfg.Orders, cfg.Products, prices)
	if err := createInBatches(ctx, db, &orders, len(orders), cfg.BatchSize); err != nil {
		return res, fmt.Errorf("insert order details: %w", err)
	}
	res.Orders = len(orders)

	return res, nil
}

// ProductPrices maps every stored ProductID to its unit price.
func ProductPrices(ctx context.Context, db *gorm.DB) (map[uint]float64, error) {
	var rows []Product
	if err := db.WithContext(ctx).Model(&Product{}).Select("ProductID", "UnitPrice").Find(&rows).Error; err != nil {
		return nil, err
	}
	prices := make(map[uint]float64, len(rows))
	for _, p := range rows {
		prices[p.ProductID] = p.UnitPrice
	}
	return prices, nil
}

func createInBatches(ctx context.Context, db *gorm.DB, rows interface{}, n, batchSize int) error {
	if n == 0 {
		return nil
	}
	return db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(rows, batchSize).Error
}

func buildSuppliers(fake *gofakeit.Faker, n int) []Supplier {
	suppliers := make([]Supplier, 0, n)
	for i := 0; i < n; i++ {
		suppliers = append(suppliers, Supplier{
			CompanyName: fake.Company(),
			City:        fake.City(),
			Country:     fake.Country(),
		})
	}
	return suppliers
}

func buildProducts(fake *gofakeit.Faker, n, suppliers, categories int) []Product {
	title := cases.Title(language.English)
	products := make([]Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, Product{
			ProductName: title.String(fake.Word()),
			SupplierID:  uint(fake.IntRange(1, suppliers)),
			CategoryID:  uint(fake.IntRange(1, categories)),
			UnitPrice:   randomPrice(fake),
		})
	}
	return products
}

func buildOrders(fake *gofakeit.Faker, n, products int, prices map[uint]float64) []OrderDetail {
	orders := make([]OrderDetail, 0, n)
	for i := 0; i < n; i++ {
		productID := uint(fake.IntRange(1, products))
		price, ok := prices[productID]
		if !ok {
			price = randomPrice(fake)
		}
		orders = append(orders, OrderDetail{
			ProductID: productID,
			Quantity:  fake.IntRange(minQuantity, maxQuantity),
			UnitPrice: price,
		})
	}
	return orders
}

func randomPrice(fake *gofakeit.Faker) float64 {
	return roundCents(fake.Float64Range(minUnitPrice, maxUnitPrice))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
