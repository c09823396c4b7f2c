package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/WhoSowSee/CurrencyConverter/internal/cache"
	"github.com/WhoSowSee/CurrencyConverter/internal/config"
	"github.com/WhoSowSee/CurrencyConverter/internal/feed"
	"github.com/WhoSowSee/CurrencyConverter/internal/handler"
	"github.com/WhoSowSee/CurrencyConverter/internal/models"
	"github.com/WhoSowSee/CurrencyConverter/internal/netcheck"
	"github.com/WhoSowSee/CurrencyConverter/internal/service"
	"github.com/WhoSowSee/CurrencyConverter/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	var log *zap.Logger
	if cfg.Server.Environment == "dev" {
		log = logger.NewDevelopmentLogger("currency-converter")
	} else {
		log = logger.NewLogger("currency-converter")
	}
	defer log.Sync()

	prober := netcheck.NewChecker(log, cfg.Probe.Addresses...)
	store := cache.NewStore(cfg.Cache.Path, log)
	cacheManager := cache.NewManager(store, prober, log)

	rateClient := feed.NewRateClient(cfg.RateFeed.URL, cfg.RateFeed.Timeout, log)
	priceClient := feed.NewPriceClient(
		cfg.PriceFeed.URL,
		cfg.PriceFeed.PartnerID,
		cfg.PriceFeed.Timeout,
		cfg.PriceFeed.ProbeTimeout,
		prober,
		log,
	)

	converter := service.NewConverter(prober, rateClient, priceClient, cacheManager, log)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	source := converter.Initialize(initCtx)
	cancelInit()
	log.Info("converter initialized", zap.String("rate_source", string(source)))
	if source == models.RateSourceDefault {
		log.Warn("running on the default rate; conversions are degraded until a feed or cache rate appears")
	}

	currencyHandler := handler.NewCurrencyHandler(converter, log)
	router := setupRouter(currencyHandler, cfg.Server.Environment)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting currency converter service", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func setupRouter(h *handler.CurrencyHandler, environment string) *gin.Engine {
	if environment != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		currency := v1.Group("/currency")
		{
			currency.POST("/convert", h.ConvertCurrency)
			currency.POST("/steam", h.ConvertToSteam)
			currency.GET("/status", h.GetStatus)
			currency.PUT("/rate", h.SetManualRate)
			currency.POST("/refresh", h.Refresh)
		}
	}

	return router
}
