package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openmart/martcart/internal/cache"
	"github.com/openmart/martcart/internal/cart"
	"github.com/openmart/martcart/internal/cartstore"
	"github.com/openmart/martcart/internal/catalog"
	"github.com/openmart/martcart/internal/checkout"
	"github.com/openmart/martcart/internal/httpapi"
	"github.com/openmart/martcart/internal/orders"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	CatalogBaseURL  string
	KafkaBrokers    string
	Currency        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	Postgres orders.Credentials
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "cartdb"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CatalogBaseURL:  getEnv("CATALOG_BASE_URL", "http://localhost:8090"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", "localhost:9092"),
		Currency:        getEnv("CURRENCY", "USD"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Postgres: orders.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnvInt("POSTGRES_PORT", 5432),
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "ordersdb"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "migrations"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Set up MongoDB connection for carts
	mongoDB, err := cartstore.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := cartstore.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to ensure cart indexes: %v", err)
	}
	cartRepo := cartstore.NewMongoRepository(mongoDB)
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")
	cartCache := cache.NewRedisCache(redisClient)

	orderRepo, err := orders.NewPostgresRepository(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(&cfg.Postgres); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Connected to Postgres at %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.RequestTimeout)

	producer := orders.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	consumer := orders.NewStatusConsumer(orderRepo, cfg.KafkaBrokers)
	go consumer.Run(consumerCtx)

	cartService := cart.NewService(cartRepo, cartCache, catalogClient)
	checkoutService := checkout.NewService(cartService, orderRepo, catalogClient, producer)

	cartHandler := httpapi.NewCartHandler(cartService, cfg.RequestTimeout, cfg.Currency)
	checkoutHandler := httpapi.NewCheckoutHandler(checkoutService, orderRepo, cfg.RequestTimeout, cfg.Currency)
	ordersHandler := httpapi.NewOrdersHandler(orderRepo, cfg.RequestTimeout)

	router := httpapi.NewRouter(cartHandler, checkoutHandler, ordersHandler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Cart service starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	stopConsumer()
	consumer.Close()
	mongoDB.Client().Disconnect(ctx)
	log.Println("server exited")
}
