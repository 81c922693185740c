package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinic-scheduler/internal/audit"
	"github.com/clinicdesk/clinic-scheduler/internal/cache"
	"github.com/clinicdesk/clinic-scheduler/internal/config"
	"github.com/clinicdesk/clinic-scheduler/internal/handlers"
	"github.com/clinicdesk/clinic-scheduler/internal/mailer"
	"github.com/clinicdesk/clinic-scheduler/internal/middleware"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	availabilityCache := cache.New(cfg.RedisAddr, 60*time.Second)
	bookingMailer := mailer.New(cfg.ResendAPIKey, cfg.MailFrom)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)

	publicHandler := handlers.NewPublicHandler(
		db,
		cfg,
		availabilityCache,
		bookingMailer,
		auditDispatcher,
	)

	appointmentHandler := handlers.NewAppointmentHandler(db, cfg, auditDispatcher)
	scheduleHandler := handlers.NewScheduleHandler(db, auditDispatcher)
	catalogHandler := handlers.NewCatalogHandler(db, auditDispatcher)
	settingsHandler := handlers.NewSettingsHandler(db, auditDispatcher)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// STATIC BOOKING PAGE
	// ======================================================
	r.Static("/booking", cfg.StaticDir)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC API
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/services", publicHandler.ListServices)
			publicAPI.GET("/staff", publicHandler.ListStaff)
			publicAPI.GET("/slots", publicHandler.Slots)
			publicAPI.GET("/available-dates", publicHandler.AvailableDates)
			publicAPI.POST("/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// ADMIN API
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(cfg))
		{
			admin.GET("/me", authHandler.Me)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			admin.GET("/appointments", appointmentHandler.ListByDate)
			admin.GET("/appointments/month", appointmentHandler.ListByMonth)
			admin.GET("/appointments/export", appointmentHandler.ExportMonth)
			admin.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			admin.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
			admin.PATCH("/appointments/:id/notes", appointmentHandler.UpdateNotes)

			// ------------------------------
			// CATALOG
			// ------------------------------
			admin.GET("/services", catalogHandler.ListServices)
			admin.POST("/services", catalogHandler.CreateService)
			admin.PATCH("/services/:id", catalogHandler.UpdateService)

			admin.GET("/staff", catalogHandler.ListStaff)
			admin.POST("/staff", catalogHandler.CreateStaff)
			admin.PATCH("/staff/:id", catalogHandler.UpdateStaff)

			// ------------------------------
			// SCHEDULE
			// ------------------------------
			admin.GET("/weekly-hours", scheduleHandler.GetWeeklyHours)
			admin.PUT("/weekly-hours", scheduleHandler.UpdateWeeklyHours)

			admin.GET("/holidays", scheduleHandler.ListHolidays)
			admin.POST("/holidays", scheduleHandler.CreateHoliday)
			admin.DELETE("/holidays/:id", scheduleHandler.DeleteHoliday)

			admin.GET("/schedule-exceptions", scheduleHandler.ListExceptions)
			admin.POST("/schedule-exceptions", scheduleHandler.CreateException)
			admin.DELETE("/schedule-exceptions/:id", scheduleHandler.DeleteException)

			admin.GET("/slot-capacities", scheduleHandler.ListCapacities)
			admin.POST("/slot-capacities", scheduleHandler.CreateCapacity)
			admin.DELETE("/slot-capacities/:id", scheduleHandler.DeleteCapacity)

			// ------------------------------
			// SETTINGS / AUDIT
			// ------------------------------
			admin.GET("/settings", settingsHandler.Get)
			admin.PUT("/settings", settingsHandler.Update)

			admin.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
