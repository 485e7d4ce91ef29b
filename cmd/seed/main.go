// Command seed creates or refreshes the default sock catalog.
// Products are matched by size, material and color; price and stock are overwritten.
package main

import (
	"context"
	"fmt"
	"os"

	"socks-bot/internal/config"
	"socks-bot/internal/database"
	"socks-bot/internal/domain"
	"socks-bot/internal/logger"
	"socks-bot/internal/repository"
	"socks-bot/internal/repository/memstore"
	"socks-bot/internal/service"

	"go.uber.org/zap"
)

type nopMetrics struct{}

func (nopMetrics) OrderPlaced()            {}
func (nopMetrics) PurchaseRejected(string) {}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	var products repository.ProductRepository
	var orders repository.OrderRepository

	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("In-memory driver selected; seeding a throwaway store")
		store := memstore.New()
		products, orders = store.Products(), store.Orders()
	} else {
		dbService, err := database.New(cfg.Database)
		if err != nil {
			log.Fatal("Failed to open database", zap.Error(err))
		}
		defer dbService.Close()

		if err := database.RunMigrations(ctx, dbService.DB(), cfg.Database.MigrationsDir, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		products = repository.NewProductRepository(dbService.DB())
		orders = repository.NewOrderRepository(dbService.DB())
	}

	catalog := service.NewCatalogService(products, orders, nopMetrics{}, log)

	results, err := catalog.Seed(ctx, service.DefaultCatalog())
	if err != nil {
		log.Fatal("Failed to seed catalog", zap.Error(err))
	}

	for _, r := range results {
		action := "UPDATED"
		if r.Created {
			action = "CREATED"
		}
		fmt.Println(action, productLine(r.Product))
	}

	all, err := products.List(ctx)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		os.Exit(1)
	}

	fmt.Println("--- FINAL LIST ---")
	for _, p := range all {
		fmt.Println(productLine(p))
	}
}

func productLine(p *domain.Product) string {
	return fmt.Sprintf("%d %s %s %s %s %s %d",
		p.ID, p.Name, p.Size, p.Material.Label(), p.Color, p.Price.StringFixed(2), p.Stock)
}
