package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicdesk/clinic-scheduler/internal/audit"
	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
	"github.com/clinicdesk/clinic-scheduler/internal/middleware"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
	"github.com/clinicdesk/clinic-scheduler/internal/settings"
)

type SettingsHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewSettingsHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *SettingsHandler {
	return &SettingsHandler{db: db, audit: dispatcher}
}

// --------- Requests ---------

type UpdateSettingsRequest struct {
	CutoffDays      *int `json:"booking_cutoff_days,omitempty"`
	CutoffHours     *int `json:"booking_cutoff_hours,omitempty"`
	MaxDaysAhead    *int `json:"booking_max_days_ahead,omitempty"`
	SlotDurationMin *int `json:"slot_duration_minutes,omitempty"`
	DefaultCapacity *int `json:"default_slot_capacity,omitempty"`
}

// --------- Handlers ---------

// Get returns the effective snapshot, defaults filled in for missing keys.
func (h *SettingsHandler) Get(c *gin.Context) {
	snap, err := settings.Load(h.db)
	if err != nil {
		httperr.Internal(c, "settings_failed", "Could not load booking settings.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		settings.KeyCutoffDays:      snap.CutoffDays,
		settings.KeyCutoffHours:     snap.CutoffHours,
		settings.KeyMaxDaysAhead:    snap.MaxDaysAhead,
		settings.KeySlotDurationMin: snap.SlotDurationMin,
		settings.KeyDefaultCapacity: snap.DefaultCapacity,
	})
}

func (h *SettingsHandler) Update(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "invalid request")
		return
	}

	changes := map[string]*int{
		settings.KeyCutoffDays:      req.CutoffDays,
		settings.KeyCutoffHours:     req.CutoffHours,
		settings.KeyMaxDaysAhead:    req.MaxDaysAhead,
		settings.KeySlotDurationMin: req.SlotDurationMin,
		settings.KeyDefaultCapacity: req.DefaultCapacity,
	}

	for key, value := range changes {
		if value == nil {
			continue
		}

		if !validSettingValue(key, *value) {
			httperr.BadRequest(c, "invalid_setting", "invalid value for "+key)
			return
		}

		row := models.Setting{Key: key, Value: strconv.Itoa(*value)}
		if err := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&row).Error; err != nil {
			httperr.Internal(c, "failed_to_save_settings", "Could not save settings.")
			return
		}
	}

	h.audit.Dispatch(audit.Event{
		UserID: &userID,
		Action: "settings_updated",
		Entity: "setting",
	})

	h.Get(c)
}

func validSettingValue(key string, value int) bool {
	switch key {
	case settings.KeyCutoffHours:
		return value >= 0 && value <= 23
	case settings.KeySlotDurationMin, settings.KeyDefaultCapacity:
		return value >= 1
	default:
		return value >= 0
	}
}
