package service

import (
	"context"
	"errors"
	"testing"

	"fabrikaops/internal/access"
	"fabrikaops/internal/model"

	"github.com/google/uuid"
)

type userRepoMock struct {
	users    map[uuid.UUID]*model.User
	roleSets map[uuid.UUID][]uuid.UUID
	updates  int
}

func newUserRepoMock(users ...*model.User) *userRepoMock {
	m := &userRepoMock{
		users:    make(map[uuid.UUID]*model.User),
		roleSets: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *userRepoMock) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *userRepoMock) Update(_ context.Context, user *model.User) error {
	m.users[user.ID] = user
	m.updates++
	return nil
}

func (m *userRepoMock) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *userRepoMock) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repositoryErrNotFound
	}
	return u, nil
}

func (m *userRepoMock) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repositoryErrNotFound
}

func (m *userRepoMock) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (m *userRepoMock) LoadRoles(_ context.Context, _ *model.User) error { return nil }

func (m *userRepoMock) ReplaceRoles(_ context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	m.roleSets[userID] = roleIDs
	return nil
}

func (m *userRepoMock) CreateRefreshToken(_ context.Context, _ *model.RefreshToken) error { return nil }

func (m *userRepoMock) FindRefreshToken(_ context.Context, _ string) (*model.RefreshToken, error) {
	return nil, repositoryErrNotFound
}

func (m *userRepoMock) DeleteRefreshToken(_ context.Context, _ string) error { return nil }

func (m *userRepoMock) DeleteRefreshTokensForUser(_ context.Context, _ uuid.UUID) error { return nil }

func TestUpdateUserWithoutCapabilityIsForbidden(t *testing.T) {
	target := &model.User{
		ID:       uuid.New(),
		Username: "fatma",
		Status:   model.UserStatusActive,
	}
	repo := newUserRepoMock(target)
	audit := &auditRepoMock{}
	svc := NewUserService(repo, audit, &txManagerMock{})

	adminRole := uuid.New().String()
	_, err := svc.UpdateUser(context.Background(), target.ID.String(), UpdateUserRequest{
		RoleIDs: []string{adminRole},
	}, access.Capabilities{}, nil)
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.updates != 0 {
		t.Fatalf("user was updated despite missing capability")
	}
	if len(repo.roleSets) != 0 {
		t.Fatalf("roles were replaced despite missing capability")
	}
	if len(audit.entries) != 0 {
		t.Fatalf("audit entry written for a forbidden update")
	}
}

func TestUpdateUserRoleAssignmentHonorsAllowedList(t *testing.T) {
	target := &model.User{
		ID:       uuid.New(),
		Username: "mehmet",
		Status:   model.UserStatusActive,
	}
	repo := newUserRepoMock(target)
	svc := NewUserService(repo, &auditRepoMock{}, &txManagerMock{})

	allowed := uuid.New()
	forbidden := uuid.New()
	caps := access.Capabilities{
		CanCreateUser:        true,
		AllowedRolesToCreate: []uuid.UUID{allowed},
	}

	_, err := svc.UpdateUser(context.Background(), target.ID.String(), UpdateUserRequest{
		RoleIDs: []string{forbidden.String()},
	}, caps, nil)
	if err == nil {
		t.Fatalf("expected role outside the allowed list to be rejected")
	}
	if len(repo.roleSets) != 0 {
		t.Fatalf("roles were replaced despite the allowed-list violation")
	}
}

func TestUpdateUserReplacesRoleList(t *testing.T) {
	target := &model.User{
		ID:       uuid.New(),
		Username: "ayse",
		Status:   model.UserStatusActive,
	}
	repo := newUserRepoMock(target)
	audit := &auditRepoMock{}
	svc := NewUserService(repo, audit, &txManagerMock{})

	newRole := uuid.New()
	caps := access.Capabilities{CanCreateUser: true} // empty allowed list is unrestricted

	_, err := svc.UpdateUser(context.Background(), target.ID.String(), UpdateUserRequest{
		FirstName: "Ayşe",
		RoleIDs:   []string{newRole.String()},
	}, caps, nil)
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got := repo.roleSets[target.ID]
	if len(got) != 1 || got[0] != newRole {
		t.Fatalf("role list not replaced, got %v", got)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != model.ActionUpdateUser {
		t.Fatalf("expected one update audit entry, got %v", audit.entries)
	}
}
