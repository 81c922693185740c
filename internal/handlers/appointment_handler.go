package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinic-scheduler/internal/audit"
	"github.com/clinicdesk/clinic-scheduler/internal/config"
	"github.com/clinicdesk/clinic-scheduler/internal/export"
	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
	infraRepo "github.com/clinicdesk/clinic-scheduler/internal/infra/repository"
	"github.com/clinicdesk/clinic-scheduler/internal/middleware"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
	"github.com/clinicdesk/clinic-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	audit *audit.Dispatcher

	cancelUC   *booking.CancelAppointment
	completeUC *booking.CompleteAppointment
	listUC     *booking.ListAppointments
}

func NewAppointmentHandler(
	db *gorm.DB,
	cfg *config.Config,
	dispatcher *audit.Dispatcher,
) *AppointmentHandler {
	repo := infraRepo.NewSchedulingGormRepository(db)

	return &AppointmentHandler{
		db:    db,
		cfg:   cfg,
		audit: dispatcher,

		cancelUC:   booking.NewCancelAppointment(repo, dispatcher),
		completeUC: booking.NewCompleteAppointment(repo, dispatcher),
		listUC:     booking.NewListAppointments(repo),
	}
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "date is required")
		return
	}

	date, err := parseClinicDate(h.cfg.Timezone, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "invalid date")
		return
	}

	aps, err := h.listUC.ByDate(c.Request.Context(), date)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	c.JSON(http.StatusOK, aps)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	monthStr := c.Query("month") // YYYY-MM
	if monthStr == "" {
		httperr.BadRequest(c, "missing_month", "month is required")
		return
	}

	date, err := parseClinicDate(h.cfg.Timezone, monthStr+"-01")
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "invalid month")
		return
	}

	aps, err := h.listUC.ByMonth(c.Request.Context(), date)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	c.JSON(http.StatusOK, aps)
}

// ======================================================
// CANCEL / COMPLETE
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid appointment id")
		return
	}

	ap, err := h.cancelUC.Execute(
		c.Request.Context(),
		userID,
		uint(id),
		nowInClinic(h.cfg.Timezone),
	)
	if err != nil {
		mapStateChangeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid appointment id")
		return
	}

	ap, err := h.completeUC.Execute(
		c.Request.Context(),
		userID,
		uint(id),
		nowInClinic(h.cfg.Timezone),
	)
	if err != nil {
		mapStateChangeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func mapStateChangeError(c *gin.Context, err error) {
	if httperr.IsBusiness(err, "appointment_not_found") {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}
	if httperr.IsBusiness(err, "invalid_state") {
		httperr.BadRequest(c, "invalid_state", "The appointment is not confirmed.")
		return
	}
	httperr.Internal(c, "failed_to_update_appointment", "Could not update the appointment.")
}

// ======================================================
// NOTES
// ======================================================

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *AppointmentHandler) UpdateNotes(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid appointment id")
		return
	}

	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid request")
		return
	}

	var ap models.Appointment
	if err := h.db.First(&ap, uint(id)).Error; err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}

	ap.Notes = req.Notes
	if err := h.db.Save(&ap).Error; err != nil {
		httperr.Internal(c, "failed_to_update_appointment", "Could not update the appointment.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "appointment_notes_updated",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// EXPORT
// ======================================================

func (h *AppointmentHandler) ExportMonth(c *gin.Context) {
	monthStr := c.Query("month")
	if monthStr == "" {
		httperr.BadRequest(c, "missing_month", "month is required")
		return
	}

	date, err := parseClinicDate(h.cfg.Timezone, monthStr+"-01")
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "invalid month")
		return
	}

	aps, err := h.listUC.ByMonth(c.Request.Context(), date)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	f, err := export.AppointmentsWorkbook(aps)
	if err != nil {
		httperr.Internal(c, "export_failed", "Could not build the export.")
		return
	}

	filename := export.Filename(date.Year(), int(date.Month()))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		httperr.Internal(c, "export_failed", "Could not stream the export.")
		return
	}
}
