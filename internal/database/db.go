package database

import (
	"log"

	"fabrikaops/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// user_roles carries an explicit position column; the HR resolver is
	// order-sensitive over it.
	if err := db.SetupJoinTable(&model.User{}, "Roles", &model.UserRole{}); err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Department{},
		&model.Machine{},
		&model.User{},
		&model.RefreshToken{},
		&model.AppModule{},
		&model.Role{},
		&model.ModuleGrant{},
		&model.NamedModuleGrant{},
		&model.ChecklistGrant{},
		&model.HRSettings{},
		&model.RoleCapability{},
		&model.AccessOverride{},
		&model.Task{},
		&model.ChecklistTemplate{},
		&model.ChecklistItem{},
		&model.ChecklistSubmission{},
		&model.SubmissionAnswer{},
		&model.QualityReview{},
		&model.InventoryItem{},
		&model.StockTransaction{},
		&model.AttendanceRecord{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
