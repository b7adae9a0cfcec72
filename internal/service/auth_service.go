package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"learnlink_backend/internal/config"
	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"
	"learnlink_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var avatarPalette = []string{
	"linear-gradient(135deg, #667eea, #764ba2)",
	"linear-gradient(135deg, #f093fb, #f5576c)",
	"linear-gradient(135deg, #4facfe, #00f2fe)",
	"linear-gradient(135deg, #43e97b, #38f9d7)",
	"linear-gradient(135deg, #fa709a, #fee140)",
	"linear-gradient(135deg, #30cfd0, #330867)",
}

// AuthService handles registration, login and profile management.
type AuthService struct {
	Users    UserStore
	Activity ActivityStore
	Config   *config.Config
}

func NewAuthService(users UserStore, activity ActivityStore, cfg *config.Config) *AuthService {
	return &AuthService{Users: users, Activity: activity, Config: cfg}
}

type RegisterInput struct {
	Name            string `json:"name" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	GradeOrPosition string `json:"gradeOrPosition"`
}

// Register creates a student account. Privileged roles are only ever granted
// by an administrator afterwards.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.Users.FindByEmail(email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !util.IsNotFound(err) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	user := &model.User{
		Name:            name,
		Email:           email,
		Password:        string(hashed),
		Role:            model.Student,
		Status:          model.UserActive,
		Initials:        initialsOf(name),
		AvatarColor:     avatarPalette[len(name)%len(avatarPalette)],
		GradeOrPosition: input.GradeOrPosition,
	}
	if err := s.Users.Create(user); err != nil {
		return nil, err
	}

	if err := s.Activity.Log(&model.UserActivityLog{
		UserID:       user.ID,
		ActivityType: model.ActivityRegister,
		TargetTitle:  user.Name,
		ActivityDate: time.Now(),
	}); err != nil {
		logger.Log.Warn("activity log failed", zap.Error(err))
	}

	logger.Log.Info("user registered", zap.Uint("userId", user.ID), zap.String("email", email))
	return user, nil
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and issues a JWT. Suspended accounts are refused
// before the password is even checked.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, *model.User, error) {
	user, err := s.Users.FindByEmail(strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if util.IsNotFound(err) {
			return "", nil, util.ErrUnauthorized
		}
		return "", nil, err
	}

	if user.Status == model.UserSuspended {
		return "", nil, util.ErrUserSuspended
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return "", nil, util.ErrUnauthorized
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	user.Status = model.UserActive
	user.LastLogin = time.Now()
	if err := s.Users.Save(user); err != nil {
		logger.Log.Warn("last login update failed", zap.Uint("userId", user.ID), zap.Error(err))
	}
	if err := s.Activity.Log(&model.UserActivityLog{
		UserID:       user.ID,
		ActivityType: model.ActivityLogin,
		TargetTitle:  user.Name,
		ActivityDate: time.Now(),
	}); err != nil {
		logger.Log.Warn("activity log failed", zap.Error(err))
	}

	return token, user, nil
}

// Logout marks the account Inactive. A suspension is never overwritten, so
// logging out of a freshly suspended session keeps the account locked.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return err
	}
	if user.Status != model.UserActive {
		return nil
	}
	user.Status = model.UserInactive
	return s.Users.Save(user)
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	return s.Users.FindByID(userID)
}

type UpdateProfileInput struct {
	Name            *string `json:"name"`
	GradeOrPosition *string `json:"gradeOrPosition"`
}

// UpdateProfile edits the caller's display fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*model.User, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, util.Validationf("name is required")
		}
		user.Name = name
		user.Initials = initialsOf(name)
	}
	if input.GradeOrPosition != nil {
		user.GradeOrPosition = *input.GradeOrPosition
	}

	if err := s.Users.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if len(next) < 8 {
		return util.Validationf("password must be at least 8 characters")
	}

	user, err := s.Users.FindByID(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return util.Validationf("current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.Users.Save(user)
}

func initialsOf(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "?"
	case 1:
		return strings.ToUpper(firstRune(parts[0]))
	default:
		return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[len(parts)-1]))
	}
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}
