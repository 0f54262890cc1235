package main

import (
	"log"
	"os"

	_ "fabrikaops/api/swagger" // swagger docs
	"fabrikaops/internal/access"
	"fabrikaops/internal/database"
	"fabrikaops/internal/handler"
	"fabrikaops/internal/middleware"
	"fabrikaops/internal/migration"
	"fabrikaops/internal/repository"
	"fabrikaops/internal/service"
	"fabrikaops/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Factory Operations API
// @version         1.0
// @description     Factory floor operations backend: role-based access, task control flow, checklists, HR scoring, quality and inventory.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	db, err := database.NewConnection(databaseDSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := migration.Apply(db); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	qualityRepo := repository.NewQualityRepository(db)
	orgRepo := repository.NewOrgRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	accessMode := access.ParseMode(os.Getenv("HR_ACCESS_MODE"))
	invalidateAuth := func() { middleware.ClearCapabilityCache("") }

	accessService := service.NewAccessService(roleRepo, settingsRepo, moduleRepo, accessMode)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, auditRepo, txManager)
	roleService := service.NewRoleService(roleRepo, moduleRepo, auditRepo, txManager, invalidateAuth)
	moduleService := service.NewModuleService(moduleRepo, invalidateAuth)
	settingsService := service.NewSettingsService(settingsRepo, auditRepo, txManager, invalidateAuth)
	taskService := service.NewTaskService(taskRepo, auditRepo, txManager, wsHub)
	checklistService := service.NewChecklistService(checklistRepo, auditRepo, txManager, wsHub)
	attendanceService := service.NewAttendanceService(attendanceRepo, settingsRepo, auditRepo, txManager)
	qualityService := service.NewQualityService(qualityRepo, orgRepo)
	inventoryService := service.NewInventoryService(inventoryRepo, auditRepo, txManager, wsHub)
	orgService := service.NewOrgService(orgRepo)
	auditService := service.NewAuditService(auditRepo)

	middleware.InitAccessMiddleware(userRepo, accessService)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService, userService, accessService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	moduleHandler := handler.NewModuleHandler(moduleService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	taskHandler := handler.NewTaskHandler(taskService)
	checklistHandler := handler.NewChecklistHandler(checklistService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	qualityHandler := handler.NewQualityHandler(qualityService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	orgHandler := handler.NewOrgHandler(orgService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	authHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	roleHandler.RegisterRoutes(api)
	moduleHandler.RegisterRoutes(api)
	settingsHandler.RegisterRoutes(api)
	taskHandler.RegisterRoutes(api)
	checklistHandler.RegisterRoutes(api)
	attendanceHandler.RegisterRoutes(api)
	qualityHandler.RegisterRoutes(api)
	inventoryHandler.RegisterRoutes(api)
	orgHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func databaseDSN() string {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	return "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode
}
