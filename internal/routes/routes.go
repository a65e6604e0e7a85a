package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-server/internal/encryption"
	"hospital-server/internal/handlers"
	"hospital-server/internal/middleware"
	"hospital-server/internal/models"
	"hospital-server/internal/scheduling"
	"hospital-server/internal/token"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, tokens *token.Manager, scheduler *scheduling.Service, cipher *encryption.Cipher, log zerolog.Logger) {
	authHandler := handlers.NewAuthHandler(db, tokens, log)
	patientHandler := handlers.NewPatientHandler(db, cipher)
	appointmentHandler := handlers.NewAppointmentHandler(db, scheduler)
	adminHandler := handlers.NewAdminHandler(db)
	reportHandler := handlers.NewReportHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.RefreshToken)
		}
		public.POST("/patients/register", patientHandler.RegisterPatient)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(tokens))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		patientRoutes := private.Group("/patients")
		patientRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient))
		{
			patientRoutes.GET("/me", patientHandler.GetMe)
			patientRoutes.PATCH("/me", patientHandler.UpdateMe)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			// Patients book for themselves; lifecycle authority is
			// enforced inside the scheduling service.
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.PATCH("/:id/doctor-note", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.UpdateDoctorNote)
		}

		// Any authenticated user can browse hospitals and doctors.
		private.GET("/hospitals", adminHandler.ListHospitals)
		private.GET("/doctors", adminHandler.ListDoctors)

		private.GET("/reports/doctor-schedule", reportHandler.DoctorSchedule)

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.POST("/hospitals", adminHandler.CreateHospital)
			adminRoutes.GET("/hospitals", adminHandler.ListHospitals)
			adminRoutes.GET("/doctors", adminHandler.ListDoctors)
			adminRoutes.POST("/doctors/:doctorId/availability", adminHandler.AddAvailability)
			adminRoutes.GET("/doctors/:doctorId/availability", adminHandler.ListAvailability)
			adminRoutes.PATCH("/doctors/:doctorId/specialization", adminHandler.SetSpecialization)
			adminRoutes.POST("/doctors/:doctorId/hospitals", adminHandler.AssignDoctorToHospital)
			adminRoutes.POST("/appointments/:id/reassign", appointmentHandler.ReassignAppointment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
