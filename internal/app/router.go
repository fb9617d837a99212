package app

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"travelshare/backend/internal/config"
	"travelshare/backend/internal/middleware"
	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"
	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"
	"travelshare/backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	// Set Gin mode
	if cfg.ServerPort == "5000" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware(cfg.ClientURL))

	// Rate limiting middleware (if enabled)
	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
		log.Printf("Rate limiting enabled: %.0f req/sec, burst: %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Friendship{},
		&model.DirectMessage{},
		&model.ActivityGroup{},
		&model.GroupMember{},
		&model.GroupChatMessage{},
		&model.GroupBlog{},
		&model.SiteBlog{},
		&model.BlogComment{},
		&model.Route{},
		&model.Notification{},
		&model.PasswordResetToken{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// Initialize Redis with retry logic
	redisClient := initRedisWithRetry(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, redisClient)
	friendshipRepo := repository.NewFriendshipRepository(db, redisClient)
	messageRepo := repository.NewMessageRepository(db, redisClient)
	groupRepo := repository.NewGroupRepository(db, redisClient)
	groupChatRepo := repository.NewGroupChatRepository(db, redisClient)
	groupBlogRepo := repository.NewGroupBlogRepository(db, redisClient)
	blogRepo := repository.NewBlogRepository(db, redisClient)
	routeRepo := repository.NewRouteRepository(db, redisClient)
	notificationRepo := repository.NewNotificationRepository(db, redisClient)
	resetTokenRepo := repository.NewResetTokenRepository(db)

	// Initialize RabbitMQ with retry logic
	rabbitMQ := initRabbitMQWithRetry(cfg)

	// Initialize email service and worker
	emailService := service.NewEmailService(rabbitMQ, cfg)
	if rabbitMQ != nil {
		emailWorker := service.NewEmailWorker(emailService, rabbitMQ)
		if err := emailWorker.Start(); err != nil {
			log.Printf("Warning: Failed to start email worker: %v", err)
		} else {
			log.Println("Email worker started successfully")
		}
	} else {
		log.Println("Email worker not started - RabbitMQ unavailable. Emails will be sent inline.")
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("WebSocket hub started")

	// Initialize tmp directory
	if err := initTmpDir(); err != nil {
		log.Printf("Warning: Failed to create tmp directory: %v", err)
	}

	// Initialize Cloudinary client
	var cloudinaryClient *util.CloudinaryClient
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		var err error
		cloudinaryClient, err = util.NewCloudinaryClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v. Image uploads will be disabled.", err)
		} else {
			log.Println("Cloudinary initialized successfully")
		}
	} else {
		log.Println("Cloudinary credentials not configured. Image uploads will be disabled.")
	}

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, rabbitMQ)
	notificationService.SetWSHub(wsHub)
	authService := service.NewAuthService(userRepo, resetTokenRepo, emailService, cloudinaryClient, cfg)
	userService := service.NewUserService(userRepo, friendshipRepo, messageRepo, notificationRepo, groupRepo, resetTokenRepo)
	friendshipService := service.NewFriendshipService(friendshipRepo, userRepo, notificationService)
	messageService := service.NewMessageService(messageRepo, userRepo, friendshipService, notificationService)
	messageService.SetWSHub(wsHub)
	groupService := service.NewGroupService(groupRepo, userRepo)
	groupChatService := service.NewGroupChatService(groupChatRepo, userRepo, groupService)
	groupChatService.SetWSHub(wsHub)
	groupBlogService := service.NewGroupBlogService(groupBlogRepo, groupRepo, userRepo, groupService, notificationService, cloudinaryClient)
	blogService := service.NewBlogService(blogRepo, userRepo, notificationService, cloudinaryClient)
	routeService := service.NewRouteService(routeRepo, userRepo, friendshipService, notificationService)
	mapsService := service.NewMapsService(cfg.GoogleMapsAPIKey, redisClient)
	weatherService := service.NewWeatherService(cfg.OpenWeatherAPIKey, redisClient)

	// Group room subscriptions re-check membership against the database
	wsHub.SetMembershipCheck(func(groupID, userID string) bool {
		_, err := groupService.RequireMember(groupID, userID)
		return err == nil
	})

	// Initialize handlers
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	friendshipHandler := NewFriendshipHandler(friendshipService)
	messageHandler := NewMessageHandler(messageService)
	groupHandler := NewGroupHandler(groupService)
	groupChatHandler := NewGroupChatHandler(groupChatService, groupBlogService)
	blogHandler := NewBlogHandler(blogService)
	routeHandler := NewRouteHandler(routeService)
	notificationHandler := NewNotificationHandler(notificationService)
	mapsHandler := NewMapsHandler(mapsService, weatherService)

	authRequired := middleware.AuthMiddleware(cfg.JWTSecret)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/verify-reset-code", authHandler.VerifyResetCode)
			auth.POST("/reset-password", authHandler.ResetPassword)

			// Protected routes
			auth.GET("/me", authRequired, authHandler.GetProfile)
			auth.PUT("/me", authRequired, authHandler.UpdateProfile)
			auth.POST("/me/avatar", authRequired, authHandler.UploadAvatar)
			auth.POST("/change-password", authRequired, authHandler.ChangePassword)
		}

		// User routes
		users := api.Group("/users")
		users.Use(authRequired)
		{
			users.GET("/handle/:publicId", userHandler.GetUserByPublicID)
			users.GET("/:id", userHandler.GetUser)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(authRequired)
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/users", userHandler.ListUsers)
			admin.PUT("/users/:id/active", userHandler.SetActive)
			admin.PUT("/users/:id/role", userHandler.SetRole)
			admin.DELETE("/users/:id", userHandler.DeleteUser)
		}

		// Friendship routes
		friendships := api.Group("/friendships")
		friendships.Use(authRequired)
		{
			friendships.POST("/request", friendshipHandler.SendFriendRequest)
			friendships.POST("/block", friendshipHandler.BlockUser)
			friendships.POST("/unblock", friendshipHandler.UnblockUser)
			friendships.GET("/friends", friendshipHandler.GetFriends)
			friendships.GET("/pending", friendshipHandler.GetPendingRequests)
			friendships.GET("/pending/count", friendshipHandler.GetPendingCount)
			friendships.GET("/sent", friendshipHandler.GetSentRequests)
			friendships.GET("/blocked", friendshipHandler.GetBlockedUsers)
			friendships.GET("/search", friendshipHandler.SearchUsers)
			friendships.GET("/status/:userId", friendshipHandler.GetFriendshipStatus)
			friendships.POST("/:id/accept", friendshipHandler.AcceptFriendRequest)
			friendships.POST("/:id/reject", friendshipHandler.RejectFriendRequest)
			friendships.DELETE("/:id", friendshipHandler.RemoveFriend)
		}

		// Direct message routes
		messages := api.Group("/messages")
		messages.Use(authRequired)
		{
			messages.POST("", messageHandler.SendMessage)
			messages.GET("/conversations", messageHandler.GetConversations)
			messages.GET("/conversations/:userId", messageHandler.GetConversation)
			messages.POST("/conversations/:userId/read", messageHandler.MarkConversationRead)
			messages.DELETE("/conversations/:userId", messageHandler.DeleteConversation)
			messages.GET("/unread/count", messageHandler.GetUnreadCount)
			messages.DELETE("/:id", messageHandler.DeleteMessage)
		}

		// Activity group routes
		groups := api.Group("/groups")
		groups.Use(authRequired)
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("", groupHandler.ListGroups)
			groups.GET("/mine", groupHandler.GetMyGroups)

			// Group blog detail routes (before /:id to avoid conflict)
			groups.GET("/blogs/:blogId", groupChatHandler.GetPost)
			groups.PUT("/blogs/:blogId", groupChatHandler.UpdatePost)
			groups.DELETE("/blogs/:blogId", groupChatHandler.DeletePost)
			groups.DELETE("/chat/:messageId", groupChatHandler.DeleteMessage)

			groups.GET("/:id", groupHandler.GetGroup)
			groups.PUT("/:id", groupHandler.UpdateGroup)
			groups.DELETE("/:id", groupHandler.DeleteGroup)
			groups.POST("/:id/join", groupHandler.JoinGroup)
			groups.POST("/:id/leave", groupHandler.LeaveGroup)
			groups.GET("/:id/members", groupHandler.GetMembers)
			groups.DELETE("/:id/members/:userId", groupHandler.RemoveMember)
			groups.POST("/:id/chat", groupChatHandler.SendMessage)
			groups.GET("/:id/chat", groupChatHandler.GetMessages)
			groups.POST("/:id/blogs", groupChatHandler.CreatePost)
			groups.GET("/:id/blogs", groupChatHandler.GetPosts)
		}

		// Site blog routes
		blogs := api.Group("/blogs")
		{
			// Reading the blog needs no account
			blogs.GET("", blogHandler.ListPosts)
			blogs.GET("/:id", blogHandler.GetPost)

			blogs.Use(authRequired)
			{
				blogs.POST("", blogHandler.CreatePost)
				blogs.DELETE("/comments/:commentId", blogHandler.DeleteComment)
				blogs.PUT("/:id", blogHandler.UpdatePost)
				blogs.DELETE("/:id", blogHandler.DeletePost)
				blogs.POST("/:id/comments", blogHandler.AddComment)
			}
		}

		// Route routes
		routes := api.Group("/routes")
		{
			// Public share link resolution
			routes.GET("/shared/:token", routeHandler.GetSharedRoute)

			routes.Use(authRequired)
			{
				routes.POST("", routeHandler.CreateRoute)
				routes.GET("", routeHandler.GetMyRoutes)
				routes.GET("/shared", routeHandler.GetSharedWithMe)
				routes.GET("/stats", routeHandler.GetStats)
				routes.GET("/:id", routeHandler.GetRoute)
				routes.PUT("/:id", routeHandler.UpdateRoute)
				routes.DELETE("/:id", routeHandler.DeleteRoute)
				routes.POST("/:id/share", routeHandler.ShareRoute)
				routes.POST("/:id/unshare", routeHandler.UnshareRoute)
				routes.POST("/:id/share-link", routeHandler.GenerateShareLink)
				routes.DELETE("/:id/share-link", routeHandler.RevokeShareLink)
			}
		}

		// Notification routes
		notifications := api.Group("/notifications")
		notifications.Use(authRequired)
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread/count", notificationHandler.GetUnreadCount)
			notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
			notifications.POST("/:id/read", notificationHandler.MarkAsRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		// Maps and weather proxy routes
		maps := api.Group("/maps")
		maps.Use(authRequired)
		{
			maps.GET("/geocode", mapsHandler.Geocode)
			maps.GET("/reverse-geocode", mapsHandler.ReverseGeocode)
			maps.GET("/distance", mapsHandler.DistanceMatrix)
			maps.GET("/directions", mapsHandler.Directions)
			maps.GET("/nearby", mapsHandler.NearbyPlaces)
			maps.GET("/place", mapsHandler.PlaceDetails)
		}

		api.GET("/weather", authRequired, mapsHandler.CurrentWeather)
	}

	// WebSocket route
	r.GET("/ws", func(c *gin.Context) {
		websocket.ServeWS(wsHub, cfg.JWTSecret).ServeHTTP(c.Writer, c.Request)
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// initRedisWithRetry attempts to connect to Redis with exponential backoff retry
func initRedisWithRetry(cfg *config.Config) *util.RedisClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		redisClient, err := util.NewRedisClient(cfg)
		if err == nil {
			log.Printf("Redis connected successfully on attempt %d", attempt)
			return redisClient
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}
			log.Printf("Failed to connect to Redis (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to Redis after %d attempts: %v. Caching will be disabled.", maxRetries, err)
		}
	}

	return nil
}

// initRabbitMQWithRetry attempts to connect to RabbitMQ with exponential backoff retry
func initRabbitMQWithRetry(cfg *config.Config) *util.RabbitMQClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		rabbitMQ, err := util.NewRabbitMQClient(cfg.RabbitMQURL)
		if err == nil {
			log.Printf("RabbitMQ connected successfully on attempt %d", attempt)
			return rabbitMQ
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}
			log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to RabbitMQ after %d attempts: %v. Async messaging disabled.", maxRetries, err)
		}
	}

	return nil
}

// initTmpDir initializes the tmp directory for file uploads
func initTmpDir() error {
	wd, err := os.Getwd()
	if err != nil {
		tmpDir := filepath.Join(os.TempDir(), "tmp")
		return os.MkdirAll(tmpDir, 0755)
	}

	tmpDir := filepath.Join(wd, "tmp")
	return os.MkdirAll(tmpDir, 0755)
}

func corsMiddleware(clientURL string) gin.HandlerFunc {
	// Allowed origins (whitelist)
	allowedOrigins := []string{
		clientURL, // Default from config
		"http://localhost:3000",
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is in whitelist
		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", clientURL)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
