package router

import (
	"database/sql"

	"dream_build_backend/internal/config"
	"dream_build_backend/internal/handlers"
	"dream_build_backend/internal/middleware"
	"dream_build_backend/internal/repositories"
	"dream_build_backend/internal/services"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config) {
	handlers.RegisterValidators()

	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	schoolRepo := repositories.NewSchoolRepository(db)
	budgetRepo := repositories.NewBudgetRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	equipmentRepo := repositories.NewEquipmentRepository(db)
	reportRepo := repositories.NewEquipmentReportRepository(db)
	recordRepo := repositories.NewFinancialRecordRepository(db)

	// Initialize Services
	authenticator := services.NewPasswordAuthenticator(userRepo)
	if cfg.AuthDevMode {
		authenticator = services.NewDevAuthenticator(userRepo, db)
		utils.LogWarn("Dev login enabled: any name and role is accepted without a password")
	}
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	authService := services.NewAuthService(authenticator, userRepo, tokenRepo, tokens, db)
	budgetService := services.NewBudgetService(budgetRepo, activityRepo, schoolRepo, db)
	schoolService := services.NewSchoolService(schoolRepo, budgetService, db)
	employeeService := services.NewEmployeeService(userRepo, activityRepo, db)
	activityService := services.NewActivityService(activityRepo, schoolRepo, userRepo, db)
	equipmentService := services.NewEquipmentService(equipmentRepo, reportRepo, db)
	financeService := services.NewFinanceService(activityRepo, recordRepo, db)
	dashboardService := services.NewDashboardService(activityRepo, userRepo, schoolRepo, equipmentService, budgetService)
	importService := services.NewImportService(schoolRepo, userRepo, activityRepo, recordRepo, db, cfg.ImportMaxRows)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	schoolHandler := handlers.NewSchoolHandler(schoolService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	activityHandler := handlers.NewActivityHandler(activityService)
	equipmentHandler := handlers.NewEquipmentHandler(equipmentService)
	financeHandler := handlers.NewFinanceHandler(financeService, budgetService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	importHandler := handlers.NewImportHandler(importService)

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.SessionMiddleware(authService))

	SetupAuthRoutes(apiV1, authHandler)
	SetupDashboardRoutes(apiV1, dashboardHandler)
	SetupSchoolRoutes(apiV1, schoolHandler)
	SetupEmployeeRoutes(apiV1, employeeHandler)
	SetupActivityRoutes(apiV1, activityHandler)
	SetupEquipmentRoutes(apiV1, equipmentHandler)
	SetupFinanceRoutes(apiV1, financeHandler)
	SetupImportRoutes(apiV1, importHandler)
}
