package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"orderflow/cmd"
	"orderflow/internal/adapters/out/postgres/assignmentrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/partnerrepo"
	"orderflow/internal/adapters/out/postgres/quotarepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	config, err := loadConfig()
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(postgres.Open(postgresDSN(config)), &gorm.Config{})
	if err != nil {
		logger.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}

	if err := migrateSchema(gormDB); err != nil {
		logger.Error("migrating schema", "error", err)
		os.Exit(1)
	}

	root := cmd.NewCompositionRoot(config, gormDB, logger)
	defer root.Close()

	router, err := root.CreateDispatchRouter()
	if err != nil {
		logger.Error("building dispatch router", "error", err)
		os.Exit(1)
	}

	routerCtx, cancelRouter := context.WithCancel(context.Background())
	defer cancelRouter()
	go func() {
		if runErr := router.Run(routerCtx); runErr != nil {
			logger.Error("dispatch router stopped", "error", runErr)
		}
	}()
	<-router.Running()

	jobManager := root.CreateJobManager()
	jobManager.StartAll()
	defer jobManager.StopAll()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	root.CreateHTTPServer().RegisterRoutes(e)
	root.CreateLiveHandler().Register(e)

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)
		if serveErr := e.Start(addr); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", serveErr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	cancelRouter()
	if err := router.Close(); err != nil {
		logger.Error("dispatch router shutdown", "error", err)
	}
}

func loadConfig() (cmd.Config, error) {
	// The .env file is optional; real deployments set the environment
	// directly.
	_ = godotenv.Load(".env")

	otpTTL, err := durationEnv("OTP_TTL", 10*time.Minute)
	if err != nil {
		return cmd.Config{}, err
	}
	otpCoolDown, err := durationEnv("OTP_LOCK_COOL_DOWN", 15*time.Minute)
	if err != nil {
		return cmd.Config{}, err
	}
	acceptanceWindow, err := durationEnv("ASSIGNMENT_ACCEPTANCE_WINDOW", 2*time.Minute)
	if err != nil {
		return cmd.Config{}, err
	}
	radiusKm, err := floatEnv("PARTNER_SEARCH_RADIUS_KM", 10)
	if err != nil {
		return cmd.Config{}, err
	}

	config := cmd.Config{
		HTTPPort:   envOrDefault("HTTP_PORT", "8080"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     envOrDefault("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSslMode:  envOrDefault("DB_SSLMODE", "disable"),

		KafkaHosts:             strings.Split(envOrDefault("KAFKA_HOSTS", "localhost:9092"), ","),
		KafkaNotificationTopic: envOrDefault("KAFKA_NOTIFICATION_TOPIC", "notifications.dispatch"),
		KafkaOrderChangedTopic: envOrDefault("KAFKA_ORDER_CHANGED_TOPIC", "orders.changed"),

		RedisAddr:     envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		PaymentServiceURL: os.Getenv("PAYMENT_SERVICE_URL"),

		OtpTTL:                     otpTTL,
		OtpLockCoolDown:            otpCoolDown,
		AssignmentAcceptanceWindow: acceptanceWindow,
		PartnerSearchRadiusKm:      radiusKm,
	}

	if config.DBHost == "" || config.DBUser == "" || config.DBName == "" {
		return cmd.Config{}, errors.New("DB_HOST, DB_USER and DB_NAME must be set")
	}
	if config.JWTSecret == "" {
		return cmd.Config{}, errors.New("JWT_SECRET must be set")
	}
	if config.PaymentServiceURL == "" {
		return cmd.Config{}, errors.New("PAYMENT_SERVICE_URL must be set")
	}
	return config, nil
}

func migrateSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&orderrepo.GroupParticipantDTO{},
		&orderrepo.StatusEventDTO{},
		&assignmentrepo.AssignmentDTO{},
		&partnerrepo.PartnerDTO{},
		&quotarepo.QuotaDTO{},
	)
}

func postgresDSN(config cmd.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName, config.DBSslMode)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parsed, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parsed, nil
}
