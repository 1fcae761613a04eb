package router

import (
	"storefront/internal/transport/http/handlers"
	"storefront/internal/transport/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Checkout  *handlers.CheckoutHandler
	Catalog   *handlers.CatalogHandler
	Webhook   *handlers.WebhookHandler
	JWTSecret string
	Log       *zap.Logger
}

func Router(d Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// public catalog
	r.GET("/api/v1/products", d.Catalog.ListProducts)
	r.GET("/api/v1/products/:slug", d.Catalog.GetProduct)

	// processor callbacks, authenticated by shared secret
	r.POST("/api/v1/webhooks/payments", d.Webhook.HandlePayment)

	authed := r.Group("/api/v1")
	authed.Use(middleware.AuthRequired(d.JWTSecret, d.Log))
	{
		authed.POST("/orders", d.Checkout.PlaceOrder)
		authed.GET("/orders", d.Checkout.ListOrders)
		authed.GET("/orders/:id", d.Checkout.GetOrder)
		authed.POST("/orders/:id/card-payment", d.Checkout.ChargeCard)
		authed.GET("/orders/:id/payment", d.Checkout.PaymentStatus)

		authed.POST("/products", d.Catalog.CreateProduct)
		authed.PUT("/products/:id/stock", d.Catalog.SetVariantStock)
	}

	return r
}
