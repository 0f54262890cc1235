package migration

import (
	"fmt"
	"os"

	"fabrikaops/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	Register(Migration{Version: 1, Name: "seed modules, system roles and admin user", Run: seedBaseline})
	Register(Migration{Version: 2, Name: "backfill name-keyed module grants from id-keyed grants", Run: backfillNamedGrants})
	Register(Migration{Version: 3, Name: "grant supervisor checklist score and approve rights", Run: grantSupervisorChecklistRights})
}

var defaultModules = []model.AppModule{
	{Name: "Dashboard", Icon: "home", Route: "/dashboard"},
	{Name: "Görevler", Icon: "clipboard", Route: "/tasks"},
	{Name: "Checklistler", Icon: "check-square", Route: "/checklists"},
	{Name: "İnsan Kaynakları", Icon: "users", Route: "/hr"},
	{Name: "Kalite", Icon: "award", Route: "/quality"},
	{Name: "Stok", Icon: "package", Route: "/inventory"},
	{Name: "Makineler", Icon: "tool", Route: "/machines"},
}

// seedBaseline creates the module catalog, the two system roles and the
// initial admin account. Existing rows are left untouched so re-running
// against a half-seeded database is safe.
func seedBaseline(tx *gorm.DB) error {
	for i := range defaultModules {
		m := defaultModules[i]
		m.Active = true
		var existing model.AppModule
		if err := tx.Where("name = ?", m.Name).First(&existing).Error; err != nil {
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("failed to seed module '%s': %w", m.Name, err)
			}
		}
	}

	adminRole, err := ensureRole(tx, model.RoleNameAdmin, "Sistem yöneticisi", true)
	if err != nil {
		return err
	}
	if _, err := ensureRole(tx, model.RoleNameSupervisor, "Vardiya amiri", true); err != nil {
		return err
	}

	// Initial admin account. Password comes from the environment in
	// production; the fallback is for local development only.
	var count int64
	if err := tx.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_INITIAL_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := model.User{
		FirstName: "Sistem",
		LastName:  "Yöneticisi",
		Username:  "admin",
		Password:  string(hashed),
		Status:    model.UserStatusActive,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return tx.Create(&model.UserRole{UserID: admin.ID, RoleID: adminRole.ID, Position: 0}).Error
}

func ensureRole(tx *gorm.DB, name, description string, system bool) (*model.Role, error) {
	var role model.Role
	if err := tx.Where("name = ?", name).First(&role).Error; err == nil {
		return &role, nil
	}
	role = model.Role{Name: name, Description: description, IsSystem: system}
	if err := tx.Create(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to seed role '%s': %w", name, err)
	}
	return &role, nil
}

// backfillNamedGrants creates a name-keyed grant for every id-keyed grant that
// has no matching entry yet. Grants pointing at deleted modules are skipped,
// and existing name-keyed entries are never overwritten.
func backfillNamedGrants(tx *gorm.DB) error {
	var modules []model.AppModule
	if err := tx.Find(&modules).Error; err != nil {
		return err
	}
	nameByID := make(map[string]string, len(modules))
	for _, m := range modules {
		nameByID[m.ID.String()] = m.Name
	}

	var grants []model.ModuleGrant
	if err := tx.Find(&grants).Error; err != nil {
		return err
	}

	for _, g := range grants {
		name, ok := nameByID[g.ModuleID.String()]
		if !ok {
			continue
		}

		var existing model.NamedModuleGrant
		err := tx.Where("role_id = ? AND module_name = ?", g.RoleID, name).First(&existing).Error
		if err == nil {
			continue
		}

		named := model.NamedModuleGrant{
			RoleID:     g.RoleID,
			ModuleName: name,
			CanView:    g.CanAccess,
			CanEdit:    g.CanEdit,
		}
		if err := tx.Create(&named).Error; err != nil {
			return fmt.Errorf("failed to backfill grant for role %s module '%s': %w", g.RoleID, name, err)
		}
	}
	return nil
}

// grantSupervisorChecklistRights ensures the supervisor role can score and
// approve submissions of every non-system role.
func grantSupervisorChecklistRights(tx *gorm.DB) error {
	var supervisor model.Role
	if err := tx.Where("name = ?", model.RoleNameSupervisor).First(&supervisor).Error; err != nil {
		// No supervisor role in this deployment, nothing to do.
		return nil
	}

	var roles []model.Role
	if err := tx.Where("is_system = ?", false).Find(&roles).Error; err != nil {
		return err
	}

	for _, r := range roles {
		var existing model.ChecklistGrant
		err := tx.Where("role_id = ? AND target_role_id = ?", supervisor.ID, r.ID).First(&existing).Error
		if err == nil {
			if !existing.CanScore || !existing.CanApprove {
				existing.CanView = true
				existing.CanScore = true
				existing.CanApprove = true
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			}
			continue
		}

		grant := model.ChecklistGrant{
			RoleID:       supervisor.ID,
			TargetRoleID: r.ID,
			CanView:      true,
			CanScore:     true,
			CanApprove:   true,
		}
		if err := tx.Create(&grant).Error; err != nil {
			return fmt.Errorf("failed to grant supervisor rights over role '%s': %w", r.Name, err)
		}
	}
	return nil
}
