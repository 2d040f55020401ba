package router

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/polkiloo/foodbridge/internal/config"
	pkgAuth "github.com/polkiloo/foodbridge/internal/pkg/auth"
	"github.com/polkiloo/foodbridge/internal/server/http/handlers"
	"github.com/polkiloo/foodbridge/internal/server/http/middleware"
)

// HealthChecker reports whether storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Params groups router dependencies.
type Params struct {
	fx.In

	Facade   handlers.FoodBridgeFacade
	Feed     handlers.DeliveryFeed
	Parser   middleware.ActorParser
	Health   HealthChecker
	Gatherer prometheus.Gatherer
	Config   *config.Config
	Logger   *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(corsMiddleware(p.Config.CORSOrigins))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics"}),
		gzip.WithExcludedPathsRegexs([]string{`/tracking$`}),
	))

	engine.GET("/healthz", healthz(p.Health))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))

	donationHandler := handlers.NewDonationHandler(p.Facade)
	ratingHandler := handlers.NewRatingHandler(p.Facade)
	organizationHandler := handlers.NewOrganizationHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	deliveryHandler := handlers.NewDeliveryHandler(p.Facade)
	trackingHandler := handlers.NewTrackingHandler(p.Facade, p.Feed, p.Logger)

	donorOnly := middleware.RequireRole(pkgAuth.RoleDonor)
	orgOnly := middleware.RequireRole(pkgAuth.RoleOrganization)
	receiverOnly := middleware.RequireRole(pkgAuth.RoleReceiver)
	raters := middleware.RequireRole(pkgAuth.RoleOrganization, pkgAuth.RoleReceiver)

	api := engine.Group("/api")
	api.Use(middleware.ActorRequired(p.Parser))

	donations := api.Group("/donations")
	donations.POST("", donorOnly, donationHandler.Post)
	donations.GET("/review-queue", orgOnly, donationHandler.ReviewQueue)
	donations.GET("/:id", donationHandler.Get)
	donations.POST("/:id/accept", orgOnly, donationHandler.Accept)
	donations.POST("/:id/reject", orgOnly, donationHandler.Reject)
	donations.POST("/:id/ratings", raters, ratingHandler.Rate)

	api.GET("/donors/:id/rating", ratingHandler.DonorScore)

	organizations := api.Group("/organizations")
	organizations.PUT("/me/location", orgOnly, organizationHandler.SetLocation)
	organizations.GET("/me/inventory", orgOnly, organizationHandler.Inventory)
	organizations.GET("/nearby", organizationHandler.Nearby)

	api.GET("/items/:item/supplier", organizationHandler.Supplier)

	orders := api.Group("/orders")
	orders.POST("", receiverOnly, orderHandler.Create)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/approve", orgOnly, orderHandler.Approve)
	orders.POST("/:id/reject", orgOnly, orderHandler.Reject)
	orders.GET("/:id/tracking", trackingHandler.Track)

	deliveries := api.Group("/deliveries")
	deliveries.PATCH("/:id", orgOnly, deliveryHandler.Update)
	deliveries.GET("/:id", deliveryHandler.Get)

	return engine
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders("Authorization", "Content-Encoding")
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions}
	return cors.New(cfg)
}

func healthz(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := checker.HealthCheck(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
