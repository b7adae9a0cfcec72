package service

import (
	"context"
	"strings"
	"time"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"
	"learnlink_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// tempPassword is handed out with admin-created accounts; the owner is
// expected to change it on first login.
const tempPassword = "Temp123!"

// UserService is the administrator's view of accounts: creation, role
// changes, suspension, reactivation and deletion.
type UserService struct {
	Users    UserStore
	Activity ActivityStore
	Notify   *NotificationService
}

func NewUserService(users UserStore, activity ActivityStore, notify *NotificationService) *UserService {
	return &UserService{Users: users, Activity: activity, Notify: notify}
}

// List pages through accounts, optionally filtered by role or a name/email
// search.
func (s *UserService) List(ctx context.Context, actorRole model.UserRole, role model.UserRole, search string, page, pageSize int) ([]model.User, int64, error) {
	if !isModerator(actorRole) {
		return nil, 0, util.ErrPermissionDenied
	}
	return s.Users.List(role, search, page, pageSize)
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, actorRole model.UserRole, id uint) (*model.User, error) {
	if !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}
	return s.Users.FindByID(id)
}

// AddUserInput is the admin's add-account form.
type AddUserInput struct {
	Name            string         `json:"name" binding:"required,min=2,max=100"`
	Email           string         `json:"email" binding:"required,email"`
	Role            model.UserRole `json:"role"`
	GradeOrPosition string         `json:"gradeOrPosition"`
}

// Add creates an account on a user's behalf with a temporary password.
// Super admin only. Returns the temporary password so the admin can hand it
// over out of band.
func (s *UserService) Add(ctx context.Context, actorRole model.UserRole, input AddUserInput) (*model.User, string, error) {
	if actorRole != model.SuperAdmin {
		return nil, "", util.ErrPermissionDenied
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.Users.FindByEmail(email); err == nil {
		return nil, "", util.ErrEmailRegistered
	} else if !util.IsNotFound(err) {
		return nil, "", err
	}

	role := input.Role
	if role == "" {
		role = model.Student
	}
	switch role {
	case model.SuperAdmin, model.Manager, model.Contributor, model.Student:
	default:
		return nil, "", util.Validationf("unknown role %q", role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	name := strings.TrimSpace(input.Name)
	user := &model.User{
		Name:            name,
		Email:           email,
		Password:        string(hashed),
		Role:            role,
		Status:          model.UserActive,
		Initials:        initialsOf(name),
		AvatarColor:     avatarPalette[len(name)%len(avatarPalette)],
		GradeOrPosition: input.GradeOrPosition,
	}
	if err := s.Users.Create(user); err != nil {
		return nil, "", err
	}

	logger.Log.Info("user added by admin", zap.Uint("userId", user.ID), zap.String("role", string(role)))
	return user, tempPassword, nil
}

// Edit updates another account's display fields. Super admin only.
func (s *UserService) Edit(ctx context.Context, actorRole model.UserRole, id uint, name, gradeOrPosition *string) (*model.User, error) {
	if actorRole != model.SuperAdmin {
		return nil, util.ErrPermissionDenied
	}

	user, err := s.Users.FindByID(id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, util.Validationf("name is required")
		}
		user.Name = trimmed
		user.Initials = initialsOf(trimmed)
	}
	if gradeOrPosition != nil {
		user.GradeOrPosition = *gradeOrPosition
	}

	if err := s.Users.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes accounts, skipping ids that no longer exist and refusing to
// let the admin delete themselves. Super admin only. Returns how many
// accounts were removed.
func (s *UserService) Delete(ctx context.Context, actorID uint, actorRole model.UserRole, ids []uint) (int, error) {
	if actorRole != model.SuperAdmin {
		return 0, util.ErrPermissionDenied
	}
	if len(ids) == 0 {
		return 0, util.Validationf("no users selected")
	}

	deleted := 0
	for _, id := range ids {
		if id == actorID {
			continue
		}
		user, err := s.Users.FindByID(id)
		if util.IsNotFound(err) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		if err := s.Users.Delete(id); err != nil {
			return deleted, err
		}
		deleted++

		if err := s.Activity.Log(&model.UserActivityLog{
			UserID:       actorID,
			ActivityType: model.ActivityDeleteUser,
			TargetTitle:  user.Email,
			ActivityDate: time.Now(),
		}); err != nil {
			logger.Log.Warn("activity log failed", zap.Error(err))
		}
	}

	logger.Log.Info("users deleted", zap.Int("count", deleted), zap.Uint("actorId", actorID))
	return deleted, nil
}

// ChangeRole reassigns an account's role. Only a super admin can grant or
// revoke super admin, and nobody can demote the last one.
func (s *UserService) ChangeRole(ctx context.Context, actorID uint, actorRole model.UserRole, id uint, role model.UserRole) (*model.User, error) {
	if !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}
	switch role {
	case model.SuperAdmin, model.Manager, model.Contributor, model.Student:
	default:
		return nil, util.Validationf("unknown role %q", role)
	}

	user, err := s.Users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if (role == model.SuperAdmin || user.Role == model.SuperAdmin) && actorRole != model.SuperAdmin {
		return nil, util.ErrPermissionDenied
	}
	if user.ID == actorID && user.Role == model.SuperAdmin && role != model.SuperAdmin {
		return nil, util.Validationf("you cannot demote your own super admin account")
	}

	user.Role = role
	if err := s.Users.Save(user); err != nil {
		return nil, err
	}

	if s.Notify != nil {
		if err := s.Notify.Notify(ctx, &model.Notification{
			UserID:  user.ID,
			Title:   "Role updated",
			Message: "Your account role is now " + strings.ReplaceAll(string(role), "_", " ") + ".",
			Type:    model.NotifySystem,
		}); err != nil {
			logger.Log.Warn("role change notification failed", zap.Uint("userId", user.ID), zap.Error(err))
		}
	}
	logger.Log.Info("role changed", zap.Uint("userId", user.ID), zap.String("role", string(role)), zap.Uint("actorId", actorID))
	return user, nil
}

// Suspend locks an account out with a reason shown on the next login
// attempt. Suspending yourself or a super admin is refused.
func (s *UserService) Suspend(ctx context.Context, actorID uint, actorRole model.UserRole, id uint, reason string) (*model.User, error) {
	if !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, util.Validationf("a suspension reason is required")
	}
	if id == actorID {
		return nil, util.Validationf("you cannot suspend your own account")
	}

	user, err := s.Users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user.Role == model.SuperAdmin {
		return nil, util.ErrPermissionDenied
	}

	now := time.Now()
	user.Status = model.UserSuspended
	user.SuspensionReason = &reason
	user.SuspensionDate = &now
	if err := s.Users.Save(user); err != nil {
		return nil, err
	}

	logger.Log.Info("user suspended", zap.Uint("userId", id), zap.Uint("actorId", actorID))
	return user, nil
}

// Reactivate clears a suspension.
func (s *UserService) Reactivate(ctx context.Context, actorID uint, actorRole model.UserRole, id uint) (*model.User, error) {
	if !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}

	user, err := s.Users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user.Status != model.UserSuspended {
		return nil, util.Validationf("user is not suspended")
	}

	user.Status = model.UserActive
	user.SuspensionReason = nil
	user.SuspensionDate = nil
	if err := s.Users.Save(user); err != nil {
		return nil, err
	}

	if s.Notify != nil {
		if err := s.Notify.Notify(ctx, &model.Notification{
			UserID:  user.ID,
			Title:   "Account reactivated",
			Message: "Your account has been reactivated. Welcome back!",
			Type:    model.NotifySystem,
		}); err != nil {
			logger.Log.Warn("reactivation notification failed", zap.Uint("userId", user.ID), zap.Error(err))
		}
	}
	logger.Log.Info("user reactivated", zap.Uint("userId", id), zap.Uint("actorId", actorID))
	return user, nil
}
