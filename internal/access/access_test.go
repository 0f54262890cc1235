package access

import (
	"errors"
	"testing"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
)

func role(name string) model.Role {
	return model.Role{ID: uuid.New(), Name: name}
}

func capability(roleID uuid.UUID, canScore, canViewReports bool) model.RoleCapability {
	return model.RoleCapability{
		ID:                   uuid.New(),
		RoleID:               roleID,
		CanScore:             canScore,
		CanViewReports:       canViewReports,
		AllowedRolesToCreate: "[]",
		AllowedRolesToDelete: "[]",
	}
}

func TestResolveHR_AdminGrantsEverything(t *testing.T) {
	admin := role(model.RoleNameAdmin)
	other := role("Usta")
	allIDs := []uuid.UUID{admin.ID, other.ID}

	cases := []struct {
		name     string
		settings *model.HRSettings
	}{
		{"settings absent", nil},
		{"settings empty", &model.HRSettings{}},
		{"settings deny admin role explicitly", &model.HRSettings{
			RoleCapabilities: []model.RoleCapability{capability(admin.ID, false, false)},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			caps, err := ResolveHR(uuid.New(), []model.Role{other, admin}, tc.settings, allIDs, ResolveOptions{})
			if err != nil {
				t.Fatalf("expected grant, got %v", err)
			}
			if !caps.CanCreateUser || !caps.CanDeleteUser || !caps.CanScore || !caps.CanImportExcel || !caps.CanViewReports {
				t.Fatalf("admin should hold every capability, got %+v", caps)
			}
			if len(caps.AllowedRolesToCreate) != len(allIDs) || len(caps.AllowedRolesToDelete) != len(allIDs) {
				t.Fatalf("admin allowed-role lists should cover all roles, got %+v", caps)
			}
		})
	}
}

func TestResolveHR_ManualEntryBypass(t *testing.T) {
	// The bypass wins over everything, including an Admin role: the listing is
	// permitted but every capability stays false.
	admin := role(model.RoleNameAdmin)
	caps, err := ResolveHR(uuid.New(), []model.Role{admin}, nil, []uuid.UUID{admin.ID}, ResolveOptions{ForManualEntry: true})
	if err != nil {
		t.Fatalf("bypass must permit the call: %v", err)
	}
	if caps.CanCreateUser || caps.CanDeleteUser || caps.CanScore || caps.CanImportExcel || caps.CanViewReports {
		t.Fatalf("bypass must yield a zero-capability record, got %+v", caps)
	}
	if len(caps.AllowedRolesToCreate) != 0 || len(caps.AllowedRolesToDelete) != 0 {
		t.Fatalf("bypass must not carry allowed-role lists, got %+v", caps)
	}
}

func TestResolveHR_NoGrantNoAccess(t *testing.T) {
	usta := role("Usta")

	_, err := ResolveHR(uuid.New(), []model.Role{usta}, &model.HRSettings{}, nil, ResolveOptions{})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Absent settings document behaves the same.
	_, err = ResolveHR(uuid.New(), []model.Role{usta}, nil, nil, ResolveOptions{})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden with absent settings, got %v", err)
	}
}

func TestResolveHR_FirstQualifyingRoleWins(t *testing.T) {
	r1 := role("Ortacı")
	r2 := role("Paketlemeci")

	// Only R2 qualifies: R1 has a record but neither score nor report rights.
	settings := &model.HRSettings{
		RoleCapabilities: []model.RoleCapability{
			capability(r1.ID, false, false),
			func() model.RoleCapability {
				c := capability(r2.ID, true, false)
				c.CanCreateUser = true
				return c
			}(),
		},
	}

	caps, err := ResolveHR(uuid.New(), []model.Role{r1, r2}, settings, nil, ResolveOptions{})
	if err != nil {
		t.Fatalf("expected R2's record, got %v", err)
	}
	if !caps.CanScore || !caps.CanCreateUser {
		t.Fatalf("resolution must skip non-qualifying R1 and land on R2, got %+v", caps)
	}
}

func TestResolveHR_UserOverrideUsesFirstStoredRole(t *testing.T) {
	r1 := role("Ortacı")
	r2 := role("Paketlemeci")
	userID := uuid.New()

	settings := &model.HRSettings{
		RoleCapabilities: []model.RoleCapability{
			capability(r1.ID, false, false), // first role's record: no score/report
			capability(r2.ID, true, true),
		},
		AccessOverrides: []model.AccessOverride{
			{UserID: &userID, AccessStatus: model.AccessStatusActive},
		},
	}

	// With the override active, the first stored role's record applies even
	// though the fallback scan would have chosen R2.
	caps, err := ResolveHR(userID, []model.Role{r1, r2}, settings, nil, ResolveOptions{})
	if err != nil {
		t.Fatalf("override path should grant: %v", err)
	}
	if caps.CanScore || caps.CanViewReports {
		t.Fatalf("override must return the first role's record verbatim, got %+v", caps)
	}

	// A passive override is ignored and the fallback scan runs instead.
	settings.AccessOverrides[0].AccessStatus = model.AccessStatusPassive
	caps, err = ResolveHR(userID, []model.Role{r1, r2}, settings, nil, ResolveOptions{})
	if err != nil {
		t.Fatalf("fallback scan should grant: %v", err)
	}
	if !caps.CanScore {
		t.Fatalf("fallback scan should land on R2, got %+v", caps)
	}
}

func TestResolveHR_UserOverrideWithoutRecordFallsThrough(t *testing.T) {
	r1 := role("Ortacı")
	r2 := role("Paketlemeci")
	userID := uuid.New()

	// Override is active but the first role has no capability record at all;
	// resolution falls through to the ordered scan.
	settings := &model.HRSettings{
		RoleCapabilities: []model.RoleCapability{capability(r2.ID, true, false)},
		AccessOverrides: []model.AccessOverride{
			{UserID: &userID, AccessStatus: model.AccessStatusActive},
		},
	}

	caps, err := ResolveHR(userID, []model.Role{r1, r2}, settings, nil, ResolveOptions{})
	if err != nil {
		t.Fatalf("expected fallback grant, got %v", err)
	}
	if !caps.CanScore {
		t.Fatalf("expected R2's record from the fallback scan, got %+v", caps)
	}
}

func TestResolveHR_UnionMode(t *testing.T) {
	r1 := role("Ortacı")
	r2 := role("Paketlemeci")
	allowed := uuid.New()

	c1 := capability(r1.ID, false, false)
	c1.CanCreateUser = true
	c1.AllowedRolesToCreate = model.EncodeIDList([]uuid.UUID{allowed})
	c2 := capability(r2.ID, true, false)

	settings := &model.HRSettings{RoleCapabilities: []model.RoleCapability{c1, c2}}

	caps, err := ResolveHR(uuid.New(), []model.Role{r1, r2}, settings, nil, ResolveOptions{Mode: ModeUnion})
	if err != nil {
		t.Fatalf("union mode should grant: %v", err)
	}
	if !caps.CanCreateUser || !caps.CanScore {
		t.Fatalf("union mode must OR both records, got %+v", caps)
	}
	if len(caps.AllowedRolesToCreate) != 1 || caps.AllowedRolesToCreate[0] != allowed {
		t.Fatalf("union mode must merge allowed lists, got %+v", caps.AllowedRolesToCreate)
	}

	// Union over roles with no records still denies.
	_, err = ResolveHR(uuid.New(), []model.Role{role("Usta")}, settings, nil, ResolveOptions{Mode: ModeUnion})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("union") != ModeUnion {
		t.Fatal("union should parse to ModeUnion")
	}
	if ParseMode("") != ModeFirstMatch || ParseMode("anything") != ModeFirstMatch {
		t.Fatal("unknown values should fall back to first-match")
	}
}
