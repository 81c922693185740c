package db

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinic-scheduler/internal/config"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
	"github.com/clinicdesk/clinic-scheduler/internal/settings"
)

// NewDB opens the configured database, runs the schema migration once and
// seeds the rows the engine expects (weekly hours, settings, admin account).
// Migration lives here and only here; query paths never issue DDL.
func NewDB(cfg *config.Config) *gorm.DB {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBUrl)
	default:
		dialector = postgres.Open(cfg.DBUrl)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	if err := Seed(db, cfg); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Service{},
		&models.Staff{},
		&models.Patient{},
		&models.WeeklyHours{},
		&models.Holiday{},
		&models.ScheduleException{},
		&models.SlotCapacity{},
		&models.Appointment{},
		&models.Setting{},
		&models.User{},
		&models.AuditLog{},
	)
}

// Seed is idempotent: it only writes rows that are missing, so concurrent
// first starts and restarts are safe.
func Seed(db *gorm.DB, cfg *config.Config) error {
	if err := seedWeeklyHours(db); err != nil {
		return err
	}
	if err := seedSettings(db); err != nil {
		return err
	}
	return seedAdmin(db, cfg)
}

func seedWeeklyHours(db *gorm.DB) error {
	for weekday := 0; weekday <= 6; weekday++ {
		var count int64
		if err := db.Model(&models.WeeklyHours{}).
			Where("weekday = ?", weekday).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		wh := models.WeeklyHours{
			Weekday:        weekday,
			MorningOpen:    "09:00",
			MorningClose:   "12:00",
			AfternoonOpen:  "13:00",
			AfternoonClose: "18:00",
		}
		// Sunday starts closed until the admin opens it.
		if weekday == 0 {
			wh = models.WeeklyHours{Weekday: weekday, Closed: true}
		}

		if err := db.Create(&wh).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedSettings(db *gorm.DB) error {
	defaults := map[string]string{
		settings.KeyCutoffDays:      "2",
		settings.KeyCutoffHours:     "3",
		settings.KeyMaxDaysAhead:    "60",
		settings.KeySlotDurationMin: "30",
		settings.KeyDefaultCapacity: "1",
	}

	for key, value := range defaults {
		var count int64
		if err := db.Model(&models.Setting{}).
			Where("key = ?", key).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Setting{Key: key, Value: value}).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if cfg.AdminPassword == "changeme" {
		log.Println("seeding admin account with the default password; set ADMIN_PASSWORD")
	}

	return db.Create(&models.User{
		Name:         "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hashed),
		Role:         "admin",
	}).Error
}
