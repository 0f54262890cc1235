package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fabrikaops/internal/access"
	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateUserRequest struct {
	FirstName    string   `json:"first_name" binding:"required"`
	LastName     string   `json:"last_name" binding:"required"`
	Username     string   `json:"username" binding:"required"`
	Password     string   `json:"password" binding:"required,min=6"`
	RoleIDs      []string `json:"role_ids" binding:"required,min=1"` // order matters
	DepartmentID string   `json:"department_id"`
}

type UpdateUserRequest struct {
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Status       string   `json:"status" binding:"omitempty,oneof=aktif pasif"`
	RoleIDs      []string `json:"role_ids"`
	DepartmentID string   `json:"department_id"`
}

type UserResponse struct {
	ID         string   `json:"id"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Username   string   `json:"username"`
	Status     string   `json:"status"`
	Roles      []string `json:"roles"`
	RoleIDs    []string `json:"role_ids"`
	Department string   `json:"department,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

// UserService defines user management gated by resolved HR capabilities.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest, caps access.Capabilities, actorID *uuid.UUID) (*UserResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest, caps access.Capabilities, actorID *uuid.UUID) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string, caps access.Capabilities, actorID *uuid.UUID) error
}

type userService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewUserService(userRepo repository.UserRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) UserService {
	return &userService{userRepo: userRepo, auditRepo: auditRepo, txManager: txManager}
}

func toUserResponse(u *model.User) *UserResponse {
	roles := make([]string, 0, len(u.Roles))
	roleIDs := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name)
		roleIDs = append(roleIDs, r.ID.String())
	}
	resp := &UserResponse{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Status:    u.Status,
		Roles:     roles,
		RoleIDs:   roleIDs,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if u.Department != nil {
		resp.Department = u.Department.Name
	}
	return resp
}

func parseRoleIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid role id '%s': %w", r, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// allowedRole checks the capability's allowed-role list. An empty list means
// the capability is unrestricted (Admin's list carries every role).
func allowedRole(allowed []uuid.UUID, roleID uuid.UUID) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, id := range allowed {
		if id == roleID {
			return true
		}
	}
	return false
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest, caps access.Capabilities, actorID *uuid.UUID) (*UserResponse, error) {
	if !caps.CanCreateUser {
		return nil, access.ErrForbidden
	}

	roleIDs, err := parseRoleIDs(req.RoleIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range roleIDs {
		if !allowedRole(caps.AllowedRolesToCreate, id) {
			return nil, fmt.Errorf("not allowed to create users with role %s", id)
		}
	}

	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, errors.New("username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  string(hashed),
		Status:    model.UserStatusActive,
	}
	if req.DepartmentID != "" {
		depID, parseErr := uuid.Parse(req.DepartmentID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid department id: %w", parseErr)
		}
		user.DepartmentID = &depID
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if err := s.userRepo.ReplaceRoles(txCtx, user.ID, roleIDs); err != nil {
			return fmt.Errorf("failed to assign roles: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"username": req.Username, "roles": req.RoleIDs})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionCreateUser,
			EntityID:   user.ID.String(),
			EntityName: req.Username,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return toUserResponse(created), nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	offset := (page - 1) * limit
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, *toUserResponse(&users[i]))
	}
	return res, total, nil
}

// UpdateUser rewrites a user's profile and, when RoleIDs is set, their ordered
// role list. Role assignment is as sensitive as creation, so it demands the
// create-user capability and the same allowed-role list.
func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest, caps access.Capabilities, actorID *uuid.UUID) (*UserResponse, error) {
	if !caps.CanCreateUser {
		return nil, access.ErrForbidden
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Status != "" {
		user.Status = req.Status
	}
	if req.DepartmentID != "" {
		depID, parseErr := uuid.Parse(req.DepartmentID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid department id: %w", parseErr)
		}
		user.DepartmentID = &depID
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if req.RoleIDs != nil {
			roleIDs, parseErr := parseRoleIDs(req.RoleIDs)
			if parseErr != nil {
				return parseErr
			}
			for _, rid := range roleIDs {
				if !allowedRole(caps.AllowedRolesToCreate, rid) {
					return fmt.Errorf("not allowed to assign role %s", rid)
				}
			}
			if err := s.userRepo.ReplaceRoles(txCtx, user.ID, roleIDs); err != nil {
				return fmt.Errorf("failed to update roles: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{"username": user.Username})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionUpdateUser,
			EntityID:   user.ID.String(),
			EntityName: user.Username,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetUserByID(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, id string, caps access.Capabilities, actorID *uuid.UUID) error {
	if !caps.CanDeleteUser {
		return access.ErrForbidden
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	for _, r := range user.Roles {
		if !allowedRole(caps.AllowedRolesToDelete, r.ID) {
			return fmt.Errorf("not allowed to delete users with role '%s'", r.Name)
		}
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.DeleteRefreshTokensForUser(txCtx, userID); err != nil {
			return err
		}
		if err := s.userRepo.Delete(txCtx, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"username": user.Username})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionDeleteUser,
			EntityID:   userID.String(),
			EntityName: user.Username,
			Details:    string(details),
		})
	})
}
