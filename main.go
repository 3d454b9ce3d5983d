package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/config"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/controllers"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/middleware"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/services"
)

func main() {
	log.Println("Starting Beyana API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderCounter{},
		&models.Review{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Image uploads require an S3 bucket; everything else works without one
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
		log.Printf("Image storage initialized (bucket %s)", cfg.AWSS3Bucket)
	} else {
		log.Println("AWS_S3_BUCKET not set, image uploads disabled")
	}

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires middleware and all API routes
func setupRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.GET("/logout", controllers.Logout)
			auth.GET("/verify-email/:token", controllers.VerifyEmail)
			auth.POST("/forgot-password", controllers.ForgotPassword)
			auth.PUT("/reset-password/:token", controllers.ResetPassword)
			auth.POST("/refresh-token", controllers.RefreshToken)

			auth.GET("/profile", middleware.Authenticate(), controllers.GetProfile)
			auth.PUT("/profile", middleware.Authenticate(), controllers.UpdateProfile)
			auth.PUT("/update-password", middleware.Authenticate(), controllers.UpdatePassword)
		}

		products := v1.Group("/products")
		{
			products.GET("", controllers.GetProducts)
			products.GET("/featured", controllers.GetFeaturedProducts)
			products.GET("/slug/:slug", controllers.GetProductBySlug)
			products.GET("/:id", controllers.GetProduct)
			products.GET("/:id/similar", controllers.GetSimilarProducts)

			products.POST("", middleware.Authenticate(), staff, controllers.CreateProduct)
			products.PUT("/:id", middleware.Authenticate(), staff, controllers.UpdateProduct)
			products.DELETE("/:id", middleware.Authenticate(), staff, controllers.DeleteProduct)
			products.PUT("/:id/stock", middleware.Authenticate(), staff, controllers.UpdateProductStock)
		}
		v1.GET("/products/:id/reviews", middleware.OptionalAuthenticate(), reviewsByProductParam)

		categories := v1.Group("/categories")
		{
			categories.GET("", controllers.GetCategories)
			categories.GET("/slug/:slug", controllers.GetCategoryBySlug)
			categories.GET("/:id", controllers.GetCategory)
			categories.GET("/:id/subcategories", controllers.GetSubcategories)
			categories.GET("/:id/path", controllers.GetCategoryPath)
			categories.GET("/:id/products", controllers.GetCategoryProducts)

			categories.POST("", middleware.Authenticate(), staff, controllers.CreateCategory)
			categories.PUT("/:id", middleware.Authenticate(), staff, controllers.UpdateCategory)
			categories.DELETE("/:id", middleware.Authenticate(), staff, controllers.DeleteCategory)
		}

		orders := v1.Group("/orders", middleware.Authenticate())
		{
			orders.POST("", controllers.PlaceOrder)
			orders.GET("", admin, controllers.GetOrders)
			orders.GET("/me", controllers.GetMyOrders)
			orders.GET("/stats", admin, controllers.GetOrderStats)
			orders.GET("/:id", controllers.GetOrder)
			orders.PUT("/:id/status", staff, controllers.UpdateOrderStatus)
			orders.PUT("/:id/payment", staff, controllers.UpdatePaymentStatus)
			orders.PUT("/:id/cancel", controllers.CancelOrder)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.GET("/most-helpful", controllers.GetMostHelpfulReviews)
			reviews.GET("/pending", middleware.Authenticate(), staff, controllers.GetPendingReviews)
			reviews.GET("/:id", middleware.OptionalAuthenticate(), controllers.GetReview)

			reviews.POST("", middleware.Authenticate(), controllers.CreateReview)
			reviews.PUT("/:id", middleware.Authenticate(), controllers.UpdateReview)
			reviews.DELETE("/:id", middleware.Authenticate(), controllers.DeleteReview)
			reviews.PUT("/:id/approve", middleware.Authenticate(), staff, controllers.ApproveReview)
			reviews.PUT("/:id/like", middleware.Authenticate(), controllers.LikeReview)
		}

		uploads := v1.Group("/uploads", middleware.Authenticate(), staff)
		{
			uploads.POST("/images", controllers.UploadImage)
		}
	}

	return router
}

// reviewsByProductParam adapts the product reviews handler to the nested
// /products/:id/reviews route, whose param name differs.
func reviewsByProductParam(c *gin.Context) {
	c.Params = append(c.Params, gin.Param{Key: "productId", Value: c.Param("id")})
	controllers.GetProductReviews(c)
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Beyana API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
