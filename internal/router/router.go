package router

import (
	"github.com/raquelxaviert/micangaria-sub002/internal/handlers"
	"github.com/raquelxaviert/micangaria-sub002/internal/middleware"
	"github.com/raquelxaviert/micangaria-sub002/internal/payment"
	"github.com/raquelxaviert/micangaria-sub002/internal/service"
	"github.com/raquelxaviert/micangaria-sub002/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Router(
	reservations service.ReservationService,
	orders service.OrderService,
	sessions *session.Store,
	validator *payment.SignatureValidator,
	log *zap.Logger,
) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderSessionID},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	reservationHandler := handlers.NewReservationHandler(reservations, log)
	checkoutHandler := handlers.NewCheckoutHandler(orders, sessions, log)
	webhookHandler := handlers.NewWebhookHandler(orders, validator, log)

	// Вебхук вне HolderRequired: провайдер аутентифицируется подписью.
	r.POST("/webhooks/payment", webhookHandler.Handle)

	r.GET("/products/:id/status", reservationHandler.ProductStatus)
	r.GET("/orders/:external_reference", checkoutHandler.GetOrder)
	r.POST("/checkout/status", checkoutHandler.Status)

	authed := r.Group("/", middleware.HolderRequired())
	{
		authed.POST("/reservations", reservationHandler.Create)
		authed.GET("/reservations", reservationHandler.List)
		authed.DELETE("/reservations", reservationHandler.Cancel)

		authed.POST("/checkout/preference", checkoutHandler.CreatePreference)
		authed.GET("/checkout/session", checkoutHandler.GetSession)
		authed.POST("/checkout/session", checkoutHandler.PutSession)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}
