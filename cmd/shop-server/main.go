package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongthieu-itme/ecm-be/internal/cart"
	"github.com/cuongthieu-itme/ecm-be/internal/catalog"
	"github.com/cuongthieu-itme/ecm-be/internal/config"
	"github.com/cuongthieu-itme/ecm-be/internal/database"
	"github.com/cuongthieu-itme/ecm-be/internal/httpapi"
	"github.com/cuongthieu-itme/ecm-be/internal/order"
	"github.com/cuongthieu-itme/ecm-be/internal/relay"
	"github.com/cuongthieu-itme/ecm-be/pkg/kafka"
	"github.com/cuongthieu-itme/ecm-be/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	server := httpapi.NewServer(
		catalog.NewService(pool),
		cart.NewService(pool),
		order.NewEngine(pool),
		metrics.NewServerMetrics("shop_server"),
	)

	kc := kafka.NewClient(cfg.KafkaBrokers)
	if kc.Enabled() {
		go relay.New(pool, kc, cfg.OutboxPoll).Run(ctx)
		defer kc.Close()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           http.TimeoutHandler(server.Router(), cfg.RequestTimeout, `{"success":false,"error":"request timed out"}`),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("shop-server listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}
}
