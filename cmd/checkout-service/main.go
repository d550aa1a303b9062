package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc/health"

	"github.com/joaocamilod/catalogo-online/internal/cart"
	"github.com/joaocamilod/catalogo-online/internal/checkout"
	"github.com/joaocamilod/catalogo-online/internal/config"
	checkoutgrpc "github.com/joaocamilod/catalogo-online/internal/grpc"
	h "github.com/joaocamilod/catalogo-online/internal/http"
	"github.com/joaocamilod/catalogo-online/internal/metrics"
	"github.com/joaocamilod/catalogo-online/internal/notify"
	"github.com/joaocamilod/catalogo-online/internal/repository/catalog"
	"github.com/joaocamilod/catalogo-online/internal/repository/orders"
	sellerrepo "github.com/joaocamilod/catalogo-online/internal/repository/sellers"
	"github.com/joaocamilod/catalogo-online/internal/sellers"
	"github.com/joaocamilod/catalogo-online/internal/service"
	"github.com/joaocamilod/catalogo-online/pkg/circuitbreaker"
	"github.com/joaocamilod/catalogo-online/pkg/logger"
)

func main() {
	log.Println("checkout-service starting...")
	var wg sync.WaitGroup

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logg := logger.New("checkout-service", logger.ParseLevel(cfg.LogLevel))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Orders (postgres)
	creds := &orders.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	orderRepo, err := orders.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer orderRepo.Close()

	if err := orderRepo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	guardedOrders := orders.NewGuarded(orderRepo, circuitbreaker.New(circuitbreaker.Config{
		Name:         "orders-postgres",
		MaxFailures:  5,
		OpenTimeout:  30 * time.Second,
		IsSuccessful: orders.CountsAsSuccess,
		Logger:       logg,
	}))

	// Catalog (sqlite)
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer catalogRepo.Close()

	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}

	// Sellers (mongo)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 15*time.Second)
	mongoDB, err := sellerrepo.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		connectCancel()
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	sellerStore := sellerrepo.NewMongoRepository(mongoDB)
	if err := sellerStore.CreateIndexes(connectCtx); err != nil {
		log.Printf("Failed to create seller indexes: %v", err)
	}
	connectCancel()
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			log.Printf("Failed to disconnect MongoDB: %v", err)
		}
	}()
	directory := sellers.NewDirectory(sellerStore, cfg.SellersCacheTTL)

	// Cart (redis)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	cartStore := cart.NewRedisStore(redisClient)

	// Notifications
	var notifier notify.Notifier = notify.LogNotifier{Logger: logg}
	var kafkaNotifier *notify.KafkaNotifier
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier = notify.NewKafkaNotifier(logg, m.NotificationResult("kafka"), cfg.NotificationTopic, cfg.KafkaBrokers...)
		notifier = notify.Multi{notifier, kafkaNotifier}
		log.Printf("Queuing notifications on topic %s", cfg.NotificationTopic)
	}

	submitter := checkout.NewSubmitter(guardedOrders, notifier, m, logg, checkout.Config{
		CountryCode:  cfg.WhatsAppCountryCode,
		OrderTimeout: cfg.OrderTimeout,
	})
	svc := service.NewCheckoutService(cartStore, catalogRepo, directory, guardedOrders, submitter, logg)

	router := h.NewRouter(h.RouterConfig{
		Cart:           h.NewCartHandler(svc, cfg.RequestTimeout),
		Checkout:       h.NewCheckoutHandler(svc, cfg.RequestTimeout),
		Metrics:        metrics.Handler(reg),
		Observer:       m,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP API listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// gRPC health
	hs := health.NewServer()
	prober := checkoutgrpc.NewProber(hs, logg, cfg.HealthInterval, map[string]checkoutgrpc.Check{
		checkoutgrpc.ServiceOrders:  orderRepo.Ping,
		checkoutgrpc.ServiceSellers: sellerStore.Ping,
		checkoutgrpc.ServiceCart:    cartStore.Ping,
	})
	probeCtx, probeCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		prober.Run(probeCtx)
	}()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := checkoutgrpc.NewServer(hs)

	go func() {
		log.Printf("gRPC health listening on :%s", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down checkout service...")
	hs.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	grpcServer.GracefulStop()
	probeCancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("Health prober stopped cleanly")
	case <-ctx.Done():
		log.Println("Health prober didn't stop in time")
	}

	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(); err != nil {
			log.Printf("Failed to flush notifications: %v", err)
		}
	}
	log.Println("checkout service stopped")
}
