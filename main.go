package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	redisGo "github.com/redis/go-redis/v9"

	"github.com/eltimbiriche/cart-service/internal/config"
	httpDelivery "github.com/eltimbiriche/cart-service/internal/delivery/http"
	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/messaging/kafka"
	"github.com/eltimbiriche/cart-service/internal/repository"
	fileRepo "github.com/eltimbiriche/cart-service/internal/repository/file"
	"github.com/eltimbiriche/cart-service/internal/repository/postgres"
	redisRepo "github.com/eltimbiriche/cart-service/internal/repository/redis"
	"github.com/eltimbiriche/cart-service/internal/service"
	"github.com/eltimbiriche/cart-service/internal/store"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	cfg := config.Load()

	// --- Database ---
	db, err := postgres.InitDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	// --- Cart persistence ---
	var cartRepo repository.CartRepository
	if cfg.RedisAddr != "" {
		client := redisGo.NewClient(&redisGo.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		cartRepo = redisRepo.NewCartRepository(client, cfg.CartKey)
		slog.Info("Cart persistence: Redis", "addr", cfg.RedisAddr, "key", cfg.CartKey)
	} else {
		cartRepo = fileRepo.NewCartRepository(cfg.CartFile)
		slog.Info("Cart persistence: file", "path", cfg.CartFile)
	}

	// --- Kafka ---
	broker := kafka.NewBroker(cfg.KafkaBrokers)
	defer broker.Close()

	// --- Services ---
	catalogSvc := service.NewCatalogService(productRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := catalogSvc.Seed(ctx, demoProducts()); err != nil {
		slog.Error("Failed to seed products", "err", err)
		os.Exit(1)
	}

	cart := store.New(cartRepo)
	cart.Hydrate(ctx)

	checkoutSvc := service.NewCheckoutService(cart, broker)

	// --- HTTP API ---
	handler := httpDelivery.NewHandler(cart, catalogSvc, orderSvc, checkoutSvc)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpDelivery.EnableCORS(mux),
	}

	// Consumer: orders.placed → order read model + stock projection
	go broker.Consume(ctx, service.TopicOrdersPlaced, "cart-service-orders", orderSvc.HandleOrderPlaced)

	go func() {
		slog.Info("🚀 HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// demoProducts seeds the catalog on first boot.
func demoProducts() []entity.Product {
	return []entity.Product{
		{
			ID:       1,
			Name:     "Camiseta Clásica",
			PriceUSD: 12,
			PriceCUP: 4200,
			Image:    "/images/camiseta-clasica.jpg",
			Category: "Ropa",
			Rating:   4.5,
			IsNew:    true,
			Variations: []entity.ProductVariation{
				{
					ID:          101,
					Name:        "Camiseta Clásica - Roja M",
					Attributes:  map[string]string{"color": "Rojo", "talla": "M"},
					Stock:       10,
					IsAvailable: true,
				},
				{
					ID:                    102,
					Name:                  "Camiseta Clásica - Negra L",
					Attributes:            map[string]string{"color": "Negro", "talla": "L"},
					Stock:                 4,
					EffectiveSalePriceUSD: floatPtr(10),
					EffectiveSalePriceCUP: floatPtr(3500),
					IsAvailable:           true,
				},
			},
		},
		{
			ID:               2,
			Name:             "Cafetera Moka 6 Tazas",
			PriceUSD:         25,
			PriceCUP:         8750,
			OriginalPriceUSD: floatPtr(30),
			OriginalPriceCUP: floatPtr(10500),
			Image:            "/images/cafetera-moka.jpg",
			Category:         "Hogar",
			Rating:           4.8,
			IsSale:           true,
			Stock:            intPtr(15),
		},
		{
			ID:       3,
			Name:     "Paquete de Café Molido 500g",
			PriceUSD: 8,
			PriceCUP: 2800,
			Image:    "/images/cafe-molido.jpg",
			Category: "Alimentos",
			Rating:   4.2,
			Stock:    intPtr(40),
		},
	}
}
