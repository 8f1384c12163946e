package router

import (
	"dream_build_backend/internal/handlers"
	"dream_build_backend/internal/middleware"
	"dream_build_backend/internal/models"

	"github.com/gin-gonic/gin"
)

var (
	managerOnly  = middleware.RequireRole(models.RoleManager)
	employeeArea = middleware.RequireRole(models.RoleEmployee)
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterUser)
		authRoutes.POST("/login", authHandler.LoginUser)
		authRoutes.GET("/mode", authHandler.GetAuthMode)
		authRoutes.GET("/menu", authHandler.GetMenu)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(employeeArea)
		{
			authRequiredRoutes.POST("/logout", authHandler.LogoutUser)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupDashboardRoutes sets up the dashboard routes.
func SetupDashboardRoutes(apiGroup *gin.RouterGroup, dashboardHandler *handlers.DashboardHandler) {
	dashboardRoutes := apiGroup.Group("/dashboard")
	{
		dashboardRoutes.GET("/manager", managerOnly, dashboardHandler.GetManagerDashboard)
		dashboardRoutes.GET("/employee", employeeArea, dashboardHandler.GetEmployeeDashboard)
	}
}

// SetupSchoolRoutes sets up the school routes.
func SetupSchoolRoutes(apiGroup *gin.RouterGroup, schoolHandler *handlers.SchoolHandler) {
	schoolRoutes := apiGroup.Group("/schools")
	schoolRoutes.Use(managerOnly)
	{
		schoolRoutes.POST("", schoolHandler.CreateSchool)
		schoolRoutes.GET("", schoolHandler.GetSchools)
		schoolRoutes.GET("/:id", schoolHandler.GetSchoolByID)
		schoolRoutes.PUT("/:id", schoolHandler.UpdateSchool)
		schoolRoutes.DELETE("/:id", schoolHandler.DeleteSchool)
	}
}

// SetupEmployeeRoutes sets up the employee routes.
func SetupEmployeeRoutes(apiGroup *gin.RouterGroup, employeeHandler *handlers.EmployeeHandler) {
	employeeRoutes := apiGroup.Group("/employees")
	employeeRoutes.Use(managerOnly)
	{
		employeeRoutes.POST("", employeeHandler.CreateEmployee)
		employeeRoutes.GET("", employeeHandler.GetEmployees)
		employeeRoutes.GET("/payroll", employeeHandler.GetPayroll)
		employeeRoutes.GET("/:id", employeeHandler.GetEmployeeByID)
		employeeRoutes.PUT("/:id", employeeHandler.UpdateEmployee)
		employeeRoutes.POST("/:id/deactivate", employeeHandler.DeactivateEmployee)
	}
}

// SetupActivityRoutes sets up the schedule routes. Employees read and confirm their own work.
func SetupActivityRoutes(apiGroup *gin.RouterGroup, activityHandler *handlers.ActivityHandler) {
	activityRoutes := apiGroup.Group("/activities")
	activityRoutes.Use(employeeArea)
	{
		activityRoutes.GET("", activityHandler.GetSchedule)
		activityRoutes.GET("/pending", activityHandler.GetPendingConfirmations)
		activityRoutes.GET("/:id", activityHandler.GetActivityByID)
		activityRoutes.POST("/:id/confirm", activityHandler.ConfirmActivity)

		managed := activityRoutes.Group("")
		managed.Use(managerOnly)
		{
			managed.POST("", activityHandler.CreateActivity)
			managed.POST("/series", activityHandler.CreateSeries)
			managed.GET("/summary", activityHandler.GetMonthlySummary)
			managed.PUT("/:id", activityHandler.UpdateActivity)
			managed.POST("/:id/cancel", activityHandler.CancelActivity)
			managed.DELETE("/:id", activityHandler.DeleteActivity)
			managed.POST("/purge", activityHandler.PurgeActivities)
		}
	}
}

// SetupEquipmentRoutes sets up the equipment and equipment report routes.
func SetupEquipmentRoutes(apiGroup *gin.RouterGroup, equipmentHandler *handlers.EquipmentHandler) {
	equipmentRoutes := apiGroup.Group("/equipment")
	equipmentRoutes.Use(employeeArea)
	{
		equipmentRoutes.GET("", equipmentHandler.GetEquipment)
		equipmentRoutes.GET("/alerts", equipmentHandler.GetLowStockAlerts)
		equipmentRoutes.GET("/:id", equipmentHandler.GetEquipmentByID)

		managed := equipmentRoutes.Group("")
		managed.Use(managerOnly)
		{
			managed.POST("", equipmentHandler.CreateEquipment)
			managed.PUT("/:id", equipmentHandler.UpdateEquipment)
			managed.POST("/:id/adjust", equipmentHandler.AdjustStock)
			managed.DELETE("/:id", equipmentHandler.DeleteEquipment)
		}
	}

	reportRoutes := apiGroup.Group("/equipment-reports")
	reportRoutes.Use(employeeArea)
	{
		reportRoutes.POST("", equipmentHandler.CreateReport)
		reportRoutes.GET("/mine", equipmentHandler.GetMyReports)
		reportRoutes.GET("", managerOnly, equipmentHandler.GetReports)
		reportRoutes.POST("/:id/resolve", managerOnly, equipmentHandler.ResolveReport)
	}
}

// SetupFinanceRoutes sets up finance, record and budget routes.
func SetupFinanceRoutes(apiGroup *gin.RouterGroup, financeHandler *handlers.FinanceHandler) {
	financeRoutes := apiGroup.Group("/finance")
	financeRoutes.Use(managerOnly)
	{
		financeRoutes.GET("/summary", financeHandler.GetSummary)
		financeRoutes.GET("/income-activities", financeHandler.GetIncomeActivities)

		financeRoutes.POST("/records", financeHandler.CreateRecord)
		financeRoutes.GET("/records", financeHandler.GetRecords)
		financeRoutes.DELETE("/records/:id", financeHandler.DeleteRecord)

		financeRoutes.GET("/budgets", financeHandler.GetBudgets)
		financeRoutes.PUT("/budgets", financeHandler.UpsertBudget)
		financeRoutes.GET("/budgets/alerts", financeHandler.GetBudgetAlerts)
		financeRoutes.GET("/budgets/schools/:id", financeHandler.GetSchoolBudget)
	}
}

// SetupImportRoutes sets up the bulk import routes.
func SetupImportRoutes(apiGroup *gin.RouterGroup, importHandler *handlers.ImportHandler) {
	importRoutes := apiGroup.Group("/import")
	importRoutes.Use(managerOnly)
	{
		importRoutes.GET("/templates/:type", importHandler.DownloadTemplate)
		importRoutes.POST("/:type", importHandler.Import)
	}
}
