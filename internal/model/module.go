package model

import (
	"time"

	"github.com/google/uuid"
)

// AppModule is a named, toggleable feature/route unit of the application
// (dashboard, tasks, checklists, HR, inventory, quality...). Roles reference it
// both by id (ModuleGrant) and by name (NamedModuleGrant).
type AppModule struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"type:varchar(50)" json:"icon"`
	Route       string    `gorm:"type:varchar(100)" json:"route"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
