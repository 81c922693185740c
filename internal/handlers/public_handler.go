package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinic-scheduler/internal/audit"
	"github.com/clinicdesk/clinic-scheduler/internal/cache"
	"github.com/clinicdesk/clinic-scheduler/internal/config"
	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
	infraRepo "github.com/clinicdesk/clinic-scheduler/internal/infra/repository"
	"github.com/clinicdesk/clinic-scheduler/internal/mailer"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
	"github.com/clinicdesk/clinic-scheduler/internal/settings"
	"github.com/clinicdesk/clinic-scheduler/internal/usecase/booking"
	"github.com/clinicdesk/clinic-scheduler/internal/validators"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	cache *cache.Cache
	mail  *mailer.Mailer

	generateSlots *booking.GenerateSlots
	listDates     *booking.ListAvailableDates
	createBooking *booking.CreateBooking
}

func NewPublicHandler(
	db *gorm.DB,
	cfg *config.Config,
	cch *cache.Cache,
	mail *mailer.Mailer,
	dispatcher *audit.Dispatcher,
) *PublicHandler {
	repo := infraRepo.NewSchedulingGormRepository(db)

	return &PublicHandler{
		db:    db,
		cfg:   cfg,
		cache: cch,
		mail:  mail,

		generateSlots: booking.NewGenerateSlots(repo),
		listDates:     booking.NewListAvailableDates(repo),
		createBooking: booking.NewCreateBooking(repo, dispatcher),
	}
}

////////////////////////////////////////////////////////
// DTOs (wire shape kept compatible with the old API)
////////////////////////////////////////////////////////

type SlotResponse struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	StartAt   string `json:"startAt"`
	EndAt     string `json:"endAt"`
	Available bool   `json:"available"`
}

type SlotsResponse struct {
	Slots []SlotResponse `json:"slots"`
	Error string         `json:"error,omitempty"`
}

type AvailableDateResponse struct {
	Date      string `json:"date"`
	DayOfWeek int    `json:"dayOfWeek"`
}

type PublicCreateAppointmentRequest struct {
	ServiceID uint   `json:"serviceId" binding:"required"`
	StaffID   *uint  `json:"staffId"`
	StartAt   string `json:"startAt" binding:"required"`
	EndAt     string `json:"endAt" binding:"required"`

	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

////////////////////////////////////////////////////////
// CATALOG
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	var services []models.Service
	if err := h.db.
		Where("active = ?", true).
		Order("id ASC").
		Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, services)
}

func (h *PublicHandler) ListStaff(c *gin.Context) {
	var staff []models.Staff
	if err := h.db.
		Where("active = ?", true).
		Order("id ASC").
		Find(&staff).Error; err != nil {
		httperr.Internal(c, "failed_to_list_staff", "Could not list staff.")
		return
	}

	c.JSON(http.StatusOK, staff)
}

////////////////////////////////////////////////////////
// SLOTS
////////////////////////////////////////////////////////

func (h *PublicHandler) Slots(c *gin.Context) {
	dateStr := c.Query("date")
	serviceIDStr := c.Query("serviceId")

	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "date and serviceId are required")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service", "invalid service")
		return
	}

	var staffID *uint
	if raw := c.Query("staffId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_staff", "invalid staff")
			return
		}
		v := uint(id)
		staffID = &v
	}

	date, err := parseClinicDate(h.cfg.Timezone, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "invalid date")
		return
	}

	cacheKey := fmt.Sprintf("slots:%s:%d:%s", dateStr, serviceID, c.Query("staffId"))
	var cached SlotsResponse
	if h.cache.GetJSON(c.Request.Context(), cacheKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	snap, err := settings.Load(h.db)
	if err != nil {
		httperr.Internal(c, "settings_failed", "Could not load booking settings.")
		return
	}

	slots, err := h.generateSlots.Execute(
		c.Request.Context(),
		booking.GenerateSlotsInput{
			Date:      date,
			ServiceID: uint(serviceID),
			StaffID:   staffID,
			Now:       nowInClinic(h.cfg.Timezone),
			Settings:  snap,
		},
	)

	if err != nil {
		if be, ok := httperr.AsBusiness(err); ok {
			c.JSON(http.StatusBadRequest, SlotsResponse{
				Slots: []SlotResponse{},
				Error: be.Error(),
			})
			return
		}

		httperr.Internal(c, "slots_failed", "Could not compute slots.")
		return
	}

	resp := SlotsResponse{Slots: toSlotResponses(slots)}
	h.cache.SetJSON(c.Request.Context(), cacheKey, resp)

	c.JSON(http.StatusOK, resp)
}

func toSlotResponses(slots []domain.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			Start:     s.StartAt.Format("15:04"),
			End:       s.EndAt.Format("15:04"),
			StartAt:   s.StartAt.Format(time.RFC3339),
			EndAt:     s.EndAt.Format(time.RFC3339),
			Available: s.Available,
		})
	}
	return out
}

////////////////////////////////////////////////////////
// AVAILABLE DATES
////////////////////////////////////////////////////////

func (h *PublicHandler) AvailableDates(c *gin.Context) {
	const cacheKey = "available-dates"

	var cached []AvailableDateResponse
	if h.cache.GetJSON(c.Request.Context(), cacheKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	snap, err := settings.Load(h.db)
	if err != nil {
		httperr.Internal(c, "settings_failed", "Could not load booking settings.")
		return
	}

	dates, err := h.listDates.Execute(
		c.Request.Context(),
		nowInClinic(h.cfg.Timezone),
		snap,
	)
	if err != nil {
		httperr.Internal(c, "dates_failed", "Could not list available dates.")
		return
	}

	resp := make([]AvailableDateResponse, 0, len(dates))
	for _, d := range dates {
		resp = append(resp, AvailableDateResponse{
			Date:      d.Date.Format("2006-01-02"),
			DayOfWeek: d.Weekday,
		})
	}

	h.cache.SetJSON(c.Request.Context(), cacheKey, resp)

	c.JSON(http.StatusOK, resp)
}

////////////////////////////////////////////////////////
// CREATE APPOINTMENT
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid request")
		return
	}

	if !validators.IsEmailDomainValid(req.Email) {
		httperr.BadRequest(c, "invalid_email_domain", "the email domain does not look valid")
		return
	}

	snap, err := settings.Load(h.db)
	if err != nil {
		httperr.Internal(c, "settings_failed", "Could not load booking settings.")
		return
	}

	ap, err := h.createBooking.Execute(
		c.Request.Context(),
		booking.CreateBookingInput{
			ServiceID:    req.ServiceID,
			StaffID:      req.StaffID,
			StartAt:      req.StartAt,
			EndAt:        req.EndAt,
			PatientName:  req.Name,
			PatientPhone: req.Phone,
			PatientEmail: req.Email,
			Notes:        req.Notes,
			Now:          nowInClinic(h.cfg.Timezone),
			Settings:     snap,
		},
	)

	if err != nil {
		mapBookingError(c, err)
		return
	}

	go h.mail.SendBookingConfirmation(ap, req.Email)

	c.JSON(http.StatusCreated, gin.H{
		"reference": ap.Reference,
		"startAt":   ap.StartAt.Format(time.RFC3339),
		"endAt":     ap.EndAt.Format(time.RFC3339),
		"status":    ap.Status,
	})
}

// mapBookingError keeps policy reasons intact but the conflict message
// generic: it must not leak whose booking is in the way.
func mapBookingError(c *gin.Context, err error) {
	if httperr.IsBusiness(err, "slot_already_booked") {
		httperr.BadRequest(c, "slot_already_booked", "slot already booked")
		return
	}

	if be, ok := httperr.AsBusiness(err); ok {
		httperr.BadRequest(c, be.Code, be.Error())
		return
	}

	httperr.Internal(c, "failed_to_create_appointment", "Could not create the appointment.")
}
