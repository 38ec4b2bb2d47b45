package handler

import (
	"appointment-backend/internal/middleware"
	"appointment-backend/internal/models"
	"appointment-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth      *AuthHandler
	Records   *MedicalRecordHandler
	Doctors   *DoctorHandler
	SyncTasks *SyncTaskHandler
}

// NewRouter builds the gin engine with middleware and the full route table
func NewRouter(h Handlers, jwt *utils.JWTManager, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), middleware.Recovery(logger), middleware.CORS(allowedOrigins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "appointment-backend",
		})
	})

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(jwt))

	clinician := middleware.RequireRoles(models.RoleDoctor, models.RoleAdmin)
	admin := middleware.RequireAdmin()

	records := api.Group("/medical-records")
	{
		records.POST("", clinician, h.Records.Create)
		records.GET("/:id", h.Records.Get)
		records.PUT("/:id", clinician, h.Records.Update)
		records.DELETE("/:id", admin, h.Records.Delete)
		records.GET("/appointment/:appointmentId", h.Records.GetByAppointment)
		records.GET("/doctor/:doctorId", clinician, h.Records.ListByDoctor)
		records.GET("/doctor/:doctorId/export", clinician, h.Records.ExportByDoctor)
		records.GET("/doctor/:doctorId/patient/:patientId", clinician, h.Records.ListByDoctorAndPatient)
		records.GET("/patient/:patientId", middleware.RequireRoles(models.RolePatient, models.RoleAdmin), h.Records.ListByPatient)
		records.GET("/status/:status", admin, h.Records.ListByStatus)
	}

	doctors := api.Group("/doctors")
	{
		doctors.GET("", h.Doctors.Search)
		doctors.POST("", admin, h.Doctors.Create)
		doctors.GET("/:id", h.Doctors.Get)
		doctors.PUT("/:id", clinician, h.Doctors.Update)
		doctors.DELETE("/:id", admin, h.Doctors.Delete)
		doctors.GET("/department/:departmentId", h.Doctors.ListByDepartment)
		doctors.GET("/user/:userId", h.Doctors.GetByUser)
	}

	syncTasks := api.Group("/admin/sync-tasks", admin)
	{
		syncTasks.GET("", h.SyncTasks.List)
		syncTasks.POST("/:id/retry", h.SyncTasks.Retry)
	}

	return r
}
