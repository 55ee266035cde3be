package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"cardstore/internal/api"
	"cardstore/internal/config"
	"cardstore/internal/metrics"
	"cardstore/internal/payment"
	"cardstore/internal/repository"
	"cardstore/internal/service"
	"cardstore/migrations"
)

func connectDB(cfg *config.Config) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", cfg.DSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("✅ Connected to DB %s", cfg.DBName)
				return db, nil
			}
		}
		log.Printf("❌ Retry %d: Failed to connect to DB %s (%s:%s): %v", i+1, cfg.DBName, cfg.DBHost, cfg.DBPort, err)
		time.Sleep(3 * time.Second)
	}
	return nil, err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := connectDB(cfg)
	if err != nil {
		panic(err)
	}

	err = migrations.AutoMigrate(3, db)
	if err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, "order-topic")
	publisher := service.NewKafkaPublisher(kafkaWriter)

	cache := repository.NewRedisCache(rdb)

	cardRepo := repository.NewCardRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	postRepo := repository.NewPostRepository(db)

	serverMetrics := metrics.NewServerMetrics()

	cardService := service.NewCardService(cardRepo, cache)
	cartService := service.NewCartService(cartRepo, cardRepo, userRepo)
	checkoutService := service.NewCheckoutService(cartRepo, cardRepo, orderRepo, userRepo, publisher)
	settlementService := service.NewSettlementService(orderRepo, cardRepo, cartRepo, publisher).
		WithRecorder(serverMetrics).
		WithStockHook(func(ctx context.Context, cardIDs []string) {
			cardService.InvalidateCache(ctx, cardIDs...)
		})
	userService := service.NewUserService(userRepo, cache, cfg.JWTSecret)
	favoriteService := service.NewFavoriteService(favoriteRepo, userRepo)
	postService := service.NewPostService(postRepo)
	fulfillmentService := service.NewFulfillmentService(orderRepo, publisher)

	paypalClient := payment.NewPayPalClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret)
	mpClient := payment.NewMercadoPagoClient(cfg.MPBaseURL, cfg.MPAccessToken, cfg.SiteURL, cfg.USDToARS)
	paymentService := service.NewPaymentService(orderRepo, paypalClient, mpClient, settlementService, cache)

	userHandler := api.NewUserHandler(userService)
	cardHandler := api.NewCardHandler(cardService)
	cartHandler := api.NewCartHandler(cartService)
	orderHandler := api.NewOrderHandler(checkoutService)
	paymentHandler := api.NewPaymentHandler(paymentService)
	favoriteHandler := api.NewFavoriteHandler(favoriteService)
	blogHandler := api.NewBlogHandler(postService)
	adminHandler := api.NewAdminHandler(fulfillmentService, cardService, postService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(1),
				Burst:     3,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))
	e.Use(serverMetrics.Middleware())

	// Public routes
	e.POST("/api/register", userHandler.Register)
	e.POST("/api/login", userHandler.Login)
	e.GET("/api/cards", cardHandler.ListCards)
	e.GET("/api/cards/:id", cardHandler.GetCard)
	e.GET("/api/blog/latest", blogHandler.LatestPost)
	e.GET("/api/blog/posts", blogHandler.ListPosts)
	e.GET("/api/blog/posts/:slug", blogHandler.GetPost)
	e.POST("/api/mercadopago/webhook", paymentHandler.MercadoPagoWebhook)

	// Customer routes behind JWT
	jwtConfig := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		SigningKey: []byte(cfg.JWTSecret),
	}
	customer := e.Group("/api", echojwt.WithConfig(jwtConfig))
	customer.GET("/session", userHandler.ValidateSession)
	customer.GET("/cart", cartHandler.GetCart)
	customer.POST("/cart", cartHandler.UpsertCart)
	customer.DELETE("/cart/:cardId", cartHandler.DeleteCartItem)
	customer.GET("/favorites", favoriteHandler.ListFavorites)
	customer.POST("/favorites", favoriteHandler.ToggleFavorite)
	customer.POST("/orders", orderHandler.CreateOrder)
	customer.GET("/orders", orderHandler.ListOrders)
	customer.POST("/paypal/orders", paymentHandler.CreatePayPalOrder)
	customer.POST("/paypal/capture", paymentHandler.CapturePayPalOrder)
	customer.POST("/mercadopago/preferences", paymentHandler.CreateMercadoPagoPreference)

	// Operator routes behind the shared admin secret
	admin := e.Group("/api/admin", api.AdminSecret(cfg.AdminSecret))
	admin.GET("/orders", adminHandler.ListOrders)
	admin.POST("/orders/ship", adminHandler.ShipOrder)
	admin.POST("/orders/deliver", adminHandler.DeliverOrder)
	admin.POST("/cards/import", adminHandler.ImportCards)
	admin.GET("/posts", adminHandler.ListPosts)
	admin.POST("/posts", adminHandler.CreatePost)
	admin.GET("/posts/:id", adminHandler.GetPost)
	admin.PATCH("/posts/:id", adminHandler.UpdatePost)
	admin.DELETE("/posts/:id", adminHandler.DeletePost)

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "cardstore",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
