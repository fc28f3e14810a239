package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/tablewise/reserve-app/controllers"
	"github.com/tablewise/reserve-app/middlewares"
	"github.com/tablewise/reserve-app/models"
	"github.com/tablewise/reserve-app/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)
	reservationCtrl := controllers.NewReservationController(db)
	reviewCtrl := controllers.NewReviewController(db)
	paymentCtrl := controllers.NewPaymentController(db, services.NewPaymentService(db))

	// Cache pendek untuk endpoint publik yang sering dipanggil
	publicCache := cache.New(5*time.Second, 30*time.Second)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter ketat untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Directory restoran (tanpa auth)
	cached := r.Group("/")
	cached.Use(middlewares.CacheMiddleware(publicCache, 5*time.Second))
	{
		cached.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
		cached.GET("/restaurants/:id", restaurantCtrl.GetRestaurantByID)
		cached.GET("/restaurants/:id/availability", restaurantCtrl.GetAvailability)
	}
	r.GET("/restaurants/:id/reviews", reviewCtrl.GetRestaurantReviews)

	// Callback gateway pembayaran (diverifikasi lewat signature, bukan JWT)
	r.POST("/payments/callback", paymentCtrl.HandlePaymentCallback)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/logout", userCtrl.Logout)
		auth.GET("/profile", userCtrl.GetProfile)
		auth.GET("/users", userCtrl.GetAllUsers)

		// RESERVATIONS
		auth.POST("/reservations", reservationCtrl.CreateReservation)
		auth.GET("/reservations/me", reservationCtrl.GetMyReservations)
		auth.PUT("/reservations/:id/cancel", reservationCtrl.CancelReservation)
		auth.PUT("/reservations/:id", reservationCtrl.UpdateReservation)
		auth.PUT("/reservations/:id/status", reservationCtrl.UpdateReservationStatus)
		auth.GET("/reservations/:id/payments", paymentCtrl.GetReservationPayments)
		auth.POST("/reservations/:id/pay", paymentCtrl.CreatePaymentSession)

		// Listing untuk owner restoran
		owner := auth.Group("/")
		owner.Use(middlewares.RequireRoles(models.RoleOwner))
		{
			owner.GET("/reservations/owner", reservationCtrl.GetOwnerReservations)
		}

		// RESTAURANTS (owner/admin)
		auth.POST("/restaurants", restaurantCtrl.CreateRestaurant)
		auth.PUT("/restaurants/:id", restaurantCtrl.UpdateRestaurant)
		auth.DELETE("/restaurants/:id", restaurantCtrl.DeleteRestaurant)

		// REVIEWS
		auth.POST("/restaurants/:id/reviews", reviewCtrl.CreateReview)
		auth.DELETE("/reviews/:id", reviewCtrl.DeleteReview)
	}

	// WebSocket dengan auth via query token
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", controllers.StreamHandler)
	}

	return r
}
