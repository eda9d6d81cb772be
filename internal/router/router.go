// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/javajoker/imi-ledger/internal/config"
	"github.com/javajoker/imi-ledger/internal/handlers"
	"github.com/javajoker/imi-ledger/internal/middleware"
	"github.com/javajoker/imi-ledger/internal/services"
	"github.com/javajoker/imi-ledger/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, ledger *services.Ledger, gatherer prometheus.Gatherer) *gin.Engine {
	// Initialize handlers
	patentHandler := handlers.NewPatentHandler(ledger.Patents)
	licenseHandler := handlers.NewLicenseHandler(ledger.Licenses)
	auctionHandler := handlers.NewAuctionHandler(ledger.Auctions)
	royaltyHandler := handlers.NewRoyaltyHandler(ledger.Royalties)
	disclosureHandler := handlers.NewDisclosureHandler(ledger.Disclosures)
	eventHandler := handlers.NewEventHandler(ledger.Events)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthRequired(), middleware.WriteRateLimit())
	{
		// Patent routes
		patents := v1.Group("/patents")
		{
			patents.POST("", patentHandler.RegisterPatent)
			patents.GET("/mine", patentHandler.ListMyPatents)
			patents.GET("/:id", patentHandler.GetPatent)
			patents.PUT("/:id/status", patentHandler.UpdatePatentStatus)
			patents.POST("/:id/licenses", licenseHandler.RequestLicense)

			// Auction routes
			patents.POST("/:id/auction", auctionHandler.OpenAuction)
			patents.GET("/:id/auction", auctionHandler.GetAuction)
			patents.POST("/:id/auction/bids", auctionHandler.SubmitBid)
			patents.POST("/:id/auction/finalize", auctionHandler.FinalizeAuction)
		}

		// License routes
		licenses := v1.Group("/licenses")
		{
			licenses.GET("", licenseHandler.ListMyLicenses)
			licenses.GET("/:id", licenseHandler.GetLicense)
			licenses.PUT("/:id/approve", licenseHandler.ApproveLicense)
			licenses.PUT("/:id/status", licenseHandler.UpdateLicenseStatus)

			// Royalty routes
			licenses.POST("/:id/royalties", royaltyHandler.PayRoyalties)
			licenses.GET("/:id/royalties", royaltyHandler.ListPayments)
			licenses.POST("/:id/royalties/:index/verify", royaltyHandler.RequestVerification)
		}

		v1.POST("/disclosures", disclosureHandler.Reveal)

		// Event routes
		events := v1.Group("/events")
		{
			events.GET("", eventHandler.ListEvents)
			events.GET("/verify", middleware.AdminRequired(), eventHandler.VerifyChain)
		}
	}

	return r
}
