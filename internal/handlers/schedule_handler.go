package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinic-scheduler/internal/audit"
	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
	"github.com/clinicdesk/clinic-scheduler/internal/middleware"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

// ScheduleHandler owns the admin CRUD for the schedule tables: weekly hours,
// holidays, exceptions and capacity overrides. The engine only ever reads
// these rows.
type ScheduleHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewScheduleHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *ScheduleHandler {
	return &ScheduleHandler{db: db, audit: dispatcher}
}

// ======================================================
// WEEKLY HOURS
// ======================================================

type WeeklyDayConfig struct {
	Weekday int  `json:"weekday" binding:"min=0,max=6"`
	Closed  bool `json:"closed"`

	MorningOpen    string `json:"morning_open"`
	MorningClose   string `json:"morning_close"`
	AfternoonOpen  string `json:"afternoon_open"`
	AfternoonClose string `json:"afternoon_close"`
}

type WeeklyHoursUpdateRequest struct {
	Days []WeeklyDayConfig `json:"days" binding:"required"`
}

func (h *ScheduleHandler) GetWeeklyHours(c *gin.Context) {
	var hours []models.WeeklyHours
	if err := h.db.
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		httperr.Internal(c, "failed_to_get_weekly_hours", "Could not load weekly hours.")
		return
	}

	c.JSON(http.StatusOK, hours)
}

func (h *ScheduleHandler) UpdateWeeklyHours(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req WeeklyHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid request")
		return
	}

	for _, d := range req.Days {
		updates := map[string]any{
			"closed":          d.Closed,
			"morning_open":    d.MorningOpen,
			"morning_close":   d.MorningClose,
			"afternoon_open":  d.AfternoonOpen,
			"afternoon_close": d.AfternoonClose,
			// Editing through the admin UI retires the legacy pair.
			"open_time":  "",
			"close_time": "",
		}

		if err := h.db.Model(&models.WeeklyHours{}).
			Where("weekday = ?", d.Weekday).
			Updates(updates).Error; err != nil {
			httperr.Internal(c, "failed_to_save_weekly_hours", "Could not save weekly hours.")
			return
		}
	}

	h.audit.Dispatch(audit.Event{
		UserID: &userID,
		Action: "weekly_hours_updated",
		Entity: "weekly_hours",
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// HOLIDAYS
// ======================================================

type HolidayRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
	Name string `json:"name"`
}

func (h *ScheduleHandler) ListHolidays(c *gin.Context) {
	var holidays []models.Holiday
	if err := h.db.Order("date ASC").Find(&holidays).Error; err != nil {
		httperr.Internal(c, "failed_to_list_holidays", "Could not list holidays.")
		return
	}

	c.JSON(http.StatusOK, holidays)
}

func (h *ScheduleHandler) CreateHoliday(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid request")
		return
	}

	if !isValidDate(req.Date) {
		httperr.BadRequest(c, "invalid_date", "invalid date")
		return
	}

	holiday := models.Holiday{Date: req.Date, Name: req.Name}
	if err := h.db.Create(&holiday).Error; err != nil {
		httperr.Internal(c, "failed_to_create_holiday", "Could not create the holiday.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "holiday_created",
		Entity:   "holiday",
		EntityID: &holiday.ID,
	})

	c.JSON(http.StatusCreated, holiday)
}

func (h *ScheduleHandler) DeleteHoliday(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid holiday id")
		return
	}

	if err := h.db.Delete(&models.Holiday{}, uint(id)).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_holiday", "Could not delete the holiday.")
		return
	}

	entityID := uint(id)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "holiday_deleted",
		Entity:   "holiday",
		EntityID: &entityID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// SCHEDULE EXCEPTIONS
// ======================================================

type ScheduleExceptionRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Kind      string `json:"kind" binding:"required"`

	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	MorningOpen    string `json:"morning_open"`
	MorningClose   string `json:"morning_close"`
	AfternoonOpen  string `json:"afternoon_open"`
	AfternoonClose string `json:"afternoon_close"`

	Reason string `json:"reason"`
}

func validExceptionKind(kind string) bool {
	switch kind {
	case models.ExceptionClosed,
		models.ExceptionPartialClosed,
		models.ExceptionModifiedHours,
		models.ExceptionSpecialOpen:
		return true
	}
	return false
}

func (h *ScheduleHandler) ListExceptions(c *gin.Context) {
	var exceptions []models.ScheduleException
	if err := h.db.Order("start_date ASC").Find(&exceptions).Error; err != nil {
		httperr.Internal(c, "failed_to_list_exceptions", "Could not list schedule exceptions.")
		return
	}

	c.JSON(http.StatusOK, exceptions)
}

func (h *ScheduleHandler) CreateException(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req ScheduleExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid request")
		return
	}

	if !isValidDate(req.StartDate) || !isValidDate(req.EndDate) || req.StartDate > req.EndDate {
		httperr.BadRequest(c, "invalid_date_range", "invalid date range")
		return
	}
	if !validExceptionKind(req.Kind) {
		httperr.BadRequest(c, "invalid_kind", "invalid exception kind")
		return
	}

	exc := models.ScheduleException{
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Kind:           req.Kind,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		MorningOpen:    req.MorningOpen,
		MorningClose:   req.MorningClose,
		AfternoonOpen:  req.AfternoonOpen,
		AfternoonClose: req.AfternoonClose,
		Reason:         req.Reason,
	}

	if err := h.db.Create(&exc).Error; err != nil {
		httperr.Internal(c, "failed_to_create_exception", "Could not create the exception.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "schedule_exception_created",
		Entity:   "schedule_exception",
		EntityID: &exc.ID,
	})

	c.JSON(http.StatusCreated, exc)
}

func (h *ScheduleHandler) DeleteException(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid exception id")
		return
	}

	if err := h.db.Delete(&models.ScheduleException{}, uint(id)).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_exception", "Could not delete the exception.")
		return
	}

	entityID := uint(id)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "schedule_exception_deleted",
		Entity:   "schedule_exception",
		EntityID: &entityID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// SLOT CAPACITIES
// ======================================================

type SlotCapacityRequest struct {
	Weekday *int    `json:"weekday"`
	Date    *string `json:"date"`

	TimeOfDay string `json:"time_of_day" binding:"required"`
	Capacity  int    `json:"capacity" binding:"required,min=1"`
}

func (h *ScheduleHandler) ListCapacities(c *gin.Context) {
	var capacities []models.SlotCapacity
	if err := h.db.Order("id ASC").Find(&capacities).Error; err != nil {
		httperr.Internal(c, "failed_to_list_capacities", "Could not list capacity overrides.")
		return
	}

	c.JSON(http.StatusOK, capacities)
}

func (h *ScheduleHandler) CreateCapacity(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req SlotCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid request")
		return
	}

	// Exactly one of weekday / date scopes the override.
	if (req.Weekday == nil) == (req.Date == nil) {
		httperr.BadRequest(c, "invalid_scope", "set either weekday or date")
		return
	}
	if req.Weekday != nil && (*req.Weekday < 0 || *req.Weekday > 6) {
		httperr.BadRequest(c, "invalid_weekday", "invalid weekday")
		return
	}
	if req.Date != nil && !isValidDate(*req.Date) {
		httperr.BadRequest(c, "invalid_date", "invalid date")
		return
	}

	capacity := models.SlotCapacity{
		Weekday:   req.Weekday,
		Date:      req.Date,
		TimeOfDay: req.TimeOfDay,
		Capacity:  req.Capacity,
	}

	if err := h.db.Create(&capacity).Error; err != nil {
		httperr.Internal(c, "failed_to_create_capacity", "Could not create the capacity override.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "slot_capacity_created",
		Entity:   "slot_capacity",
		EntityID: &capacity.ID,
	})

	c.JSON(http.StatusCreated, capacity)
}

func (h *ScheduleHandler) DeleteCapacity(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "invalid capacity id")
		return
	}

	if err := h.db.Delete(&models.SlotCapacity{}, uint(id)).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_capacity", "Could not delete the capacity override.")
		return
	}

	entityID := uint(id)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "slot_capacity_deleted",
		Entity:   "slot_capacity",
		EntityID: &entityID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
