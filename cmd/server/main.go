package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"emporium_back_end/internal/cache"
	"emporium_back_end/internal/config"
	"emporium_back_end/internal/database"
	"emporium_back_end/internal/handlers/admin"
	"emporium_back_end/internal/handlers/product"
	"emporium_back_end/internal/handlers/user"
	"emporium_back_end/internal/logger"
	"emporium_back_end/internal/middleware"
	"emporium_back_end/internal/repository"
	"emporium_back_end/internal/routes"
	"emporium_back_end/internal/services"
	"emporium_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients, err := database.Connect(ctx, cfg, logg)
	if err != nil {
		logg.Fatal().Err(err).Msg("database connection failed")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: buildEngine(cfg, clients, logg),
	}

	go func() {
		logg.Info().Str("port", cfg.HTTP.Port).Msg("emporium api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logg.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("http shutdown")
	}
	clients.Close(shutdownCtx)
}

func buildEngine(cfg *config.Config, clients *database.Clients, logg zerolog.Logger) *gin.Engine {
	store := cache.New(clients.Redis)
	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	mailer := utils.NewMailer(cfg, logg)
	auditor := utils.NewAuditor(clients.Scylla, logg)
	timeout := cfg.Mongo.Timeout

	users := repository.NewUserRepository(clients.DB)
	products := repository.NewProductRepository(clients.DB)
	brands := repository.NewBrandRepository(clients.DB)
	categories := repository.NewCategoryRepository(clients.DB)
	carts := repository.NewCartRepository(clients.DB)
	addresses := repository.NewAddressRepository(clients.DB)
	orderRepo := repository.NewOrderRepository(clients.DB)

	index := services.NewElasticProductIndex(clients.Elastic, cfg.Elastic.Index, logg)
	images := services.NewMinioImageStore(clients.MinIO, cfg.MinIO.Bucket)
	events := services.NewKafkaEventPublisher(clients.Kafka)

	authSvc := services.NewAuthService(users, tokens, store, store, mailer, logg, timeout)
	userSvc := services.NewUserService(users, store, logg, timeout)
	productSvc := services.NewProductService(products, brands, categories, store, index, images, logg, timeout)
	brandSvc := services.NewNamedService(brands, "Brand", timeout)
	categorySvc := services.NewNamedService(categories, "Category", timeout)
	cartSvc := services.NewCartService(carts, products, logg, timeout)
	addressSvc := services.NewAddressService(addresses, timeout)
	orderSvc := services.NewOrderService(orderRepo, products, store, users, events, mailer, logg, timeout)

	h := routes.Handlers{
		Auth:       user.NewAuthHandler(authSvc, cfg.Auth.CookieSecure),
		Users:      user.NewUserHandler(userSvc),
		Address:    user.NewAddressHandler(addressSvc),
		Cart:       user.NewCartHandler(cartSvc),
		Orders:     user.NewOrderHandler(orderSvc),
		Products:   product.NewProductHandler(productSvc),
		Brands:     product.NewNamedHandler(brandSvc),
		Categories: product.NewNamedHandler(categorySvc),
		Audit:      admin.NewAuditHandler(auditor),
	}

	return routes.NewEngine(h, routes.Deps{
		Tokens:         tokens,
		Revoked:        store,
		Accounts:       authSvc,
		Limiter:        middleware.NewRateLimiter(store, logg),
		Auditor:        auditor,
		Log:            logg,
		AllowOrigins:   cfg.CORS.AllowOrigins,
		LoginRateLimit: cfg.Auth.LoginRateLimit,
	})
}
