package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/greenbasket/greenbasket-backend/api/controllers"
	"github.com/greenbasket/greenbasket-backend/api/routes"
	"github.com/greenbasket/greenbasket-backend/internal/banners"
	"github.com/greenbasket/greenbasket-backend/internal/cart"
	"github.com/greenbasket/greenbasket-backend/internal/checkout"
	"github.com/greenbasket/greenbasket-backend/internal/discount"
	"github.com/greenbasket/greenbasket-backend/internal/offers"
	"github.com/greenbasket/greenbasket-backend/internal/orders"
	"github.com/greenbasket/greenbasket-backend/internal/products"
	"github.com/greenbasket/greenbasket-backend/internal/users"
	"github.com/greenbasket/greenbasket-backend/migrations"
	"github.com/greenbasket/greenbasket-backend/pkg/auth"
	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/env"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/metrics"
	"github.com/greenbasket/greenbasket-backend/pkg/migrate"
	"github.com/greenbasket/greenbasket-backend/pkg/redis"
	"github.com/greenbasket/greenbasket-backend/pkg/security"
	"github.com/greenbasket/greenbasket-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(logg, ctx, "failed to load config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.NewClient(cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		fatal(logg, ctx, "failed to bootstrap database", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, dbClient, migrations.FS, logg); err != nil {
		fatal(logg, ctx, "failed to run dev migrations", err)
	}

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		fatal(logg, ctx, "failed to bootstrap redis", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		fatal(logg, ctx, "failed to create token manager", err)
	}

	stripeClient, err := stripe.NewClient(cfg.Stripe)
	if err != nil {
		fatal(logg, ctx, "failed to create stripe client", err)
	}

	reg := metrics.NewRegistry()
	hasher := security.NewHasher(cfg.Password)

	userRepo := users.NewRepository(dbClient)
	orderRepo := orders.NewRepository(dbClient)

	userService, err := users.NewService(userRepo, hasher, tokens, logg)
	if err != nil {
		fatal(logg, ctx, "failed to create users service", err)
	}
	productService, err := products.NewService(products.NewRepository(dbClient), logg)
	if err != nil {
		fatal(logg, ctx, "failed to create products service", err)
	}
	offerService, err := offers.NewService(offers.NewRepository(dbClient), logg)
	if err != nil {
		fatal(logg, ctx, "failed to create offers service", err)
	}
	bannerService, err := banners.NewService(banners.NewRepository(dbClient), logg)
	if err != nil {
		fatal(logg, ctx, "failed to create banners service", err)
	}
	orderService, err := orders.NewService(orderRepo, logg)
	if err != nil {
		fatal(logg, ctx, "failed to create orders service", err)
	}

	resolver, err := discount.NewResolver(offerService, logg)
	if err != nil {
		fatal(logg, ctx, "failed to create discount resolver", err)
	}

	cartStorage, err := cart.NewRedisStorage(redisClient, cfg.Cart.TTL, logg)
	if err != nil {
		fatal(logg, ctx, "failed to create cart storage", err)
	}
	cartStore, err := cart.NewStore(cartStorage, resolver, logg)
	if err != nil {
		fatal(logg, ctx, "failed to create cart store", err)
	}

	checkoutService, err := checkout.NewService(
		cartStore, orderRepo, userRepo, stripeClient, dbClient, cfg.Checkout, reg, logg,
	)
	if err != nil {
		fatal(logg, ctx, "failed to create checkout service", err)
	}

	handler := routes.New(routes.Deps{
		Config:  cfg,
		Logger:  logg,
		Tokens:  tokens,
		Metrics: reg,

		Health:    controllers.NewHealthController(dbClient, redisClient, logg),
		Auth:      controllers.NewAuthController(userService, logg),
		Products:  controllers.NewProductsController(productService, logg),
		Banners:   controllers.NewBannersController(bannerService, logg),
		Cart:      controllers.NewCartController(cartStore, productService, reg, logg),
		Checkout:  controllers.NewCheckoutController(checkoutService, logg),
		Orders:    controllers.NewOrdersController(orderService, logg),
		Offers:    controllers.NewOffersController(offerService, logg),
		AdminUser: controllers.NewAdminUsersController(userService, logg),
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func fatal(logg *logger.Logger, ctx context.Context, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
