// Package main provides the main entry point for the MealCart API server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/alchemorsel/mealcart/internal/infrastructure/catalogfile"
	"github.com/alchemorsel/mealcart/internal/infrastructure/container"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	exportPath := flag.String("export-catalog", "", "write the configured catalog to this YAML file and exit")
	flag.Parse()

	// Environment overrides come from .env when present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}

	if *exportPath != "" {
		exportCatalog(container.ConfigPath(*configPath), *exportPath)
		return
	}

	app := fx.New(
		fx.NopLogger, // Use our own logger instead of Fx's
		container.New(container.ConfigPath(*configPath)),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Stop on a signal or when a component asks fx to shut down
	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}

	fmt.Println("Application stopped successfully")
}

// exportCatalog builds the graph without starting it and dumps the catalog
// it resolves, e.g. the seeded database catalog, in catalog file layout.
func exportCatalog(configPath container.ConfigPath, path string) {
	var catalogs outbound.CatalogRepository
	app := fx.New(
		fx.NopLogger,
		container.New(configPath),
		fx.Populate(&catalogs),
	)
	if err := app.Err(); err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := catalogfile.Export(ctx, catalogs, path)
	if err != nil {
		log.Fatalf("Failed to export catalog: %v", err)
	}
	fmt.Printf("Exported %d dishes to %s\n", n, path)
}
