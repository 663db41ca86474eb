package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servicehub-be/internal/category"
	"servicehub-be/internal/config"
	"servicehub-be/internal/db"
	"servicehub-be/internal/httpapi"
	"servicehub-be/internal/logger"
	"servicehub-be/internal/order"
	"servicehub-be/internal/product"
	"servicehub-be/internal/tag"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	categoryRepo := category.NewRepository(database)
	categorySvc := category.NewService(categoryRepo)

	tagRepo := tag.NewRepository(database)
	tagSvc := tag.NewService(tagRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo)

	srv := httpapi.NewServer(categorySvc, tagSvc, productSvc, orderSvc)

	httpServer := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("🚀 API server running at http://localhost:%s/", cfg.AppPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
