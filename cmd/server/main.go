package main

import (
	"context"
	"errors"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delivery-service/internal/auth"
	"delivery-service/internal/config"
	"delivery-service/internal/controllers/http"
	"delivery-service/internal/domain"
	"delivery-service/internal/infra"
	mmysql "delivery-service/internal/infra/mysql"
	"delivery-service/internal/infra/rabbitmq"
	redisinfra "delivery-service/internal/infra/redis"
	mysqlrepo "delivery-service/internal/repository/mysql"
	"delivery-service/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mmysql.NewMySQL(cfg.MySQL)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	orderRepo := mysqlrepo.NewOrderRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.Exchange)
		if err != nil {
			log.Fatalf("failed to init publisher: %v", err)
		}
		defer pub.Close()
		publisher = pub
	} else {
		log.Println("RABBITMQ_URL not set, order events are disabled")
	}

	var cache infra.ProductCache = infra.NopProductCache{}
	if cfg.RedisHost != "" {
		rdb, err := redisinfra.NewClient(ctx, cfg.RedisHost)
		if err != nil {
			log.Fatalf("redis: connect: %v", err)
		}
		defer rdb.Close()
		cache = redisinfra.NewProductCache(rdb, time.Minute)
	} else {
		log.Println("REDIS_HOST not set, product cache is disabled")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	orders := services.NewOrderService(orderRepo, productRepo, publisher, services.OrderOptions{
		DeliveryFee:  cfg.DeliveryFee,
		EnforceStock: cfg.EnforceStock,
		Restaurant:   domain.Position{Latitude: cfg.RestaurantLat, Longitude: cfg.RestaurantLng},
		TravelTime:   cfg.CourierTravelTime,
	})
	products := services.NewProductService(productRepo, cache)
	accounts := services.NewAuthService(userRepo, tokens)

	if len(cfg.WarmupProductIDs) > 0 {
		go func() {
			if err := products.WarmupCache(ctx, cfg.WarmupProductIDs); err != nil {
				log.Printf("Failed to warm up cache: %v", err)
			} else {
				log.Println("Cache warmed up successfully")
			}
		}()
	}

	handler := http.NewHandler(orders, products, accounts, tokens)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting delivery service on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		orders.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Printf("server run: %v", err)
		return
	}
	log.Println("Server stopped")
}
