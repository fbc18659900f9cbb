package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-pms/auth"
	"hotel-pms/models"
	"hotel-pms/utils"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Active      *bool  `json:"active"`
	AccessLevel string `json:"accessLevel"`
	Department  string `json:"department"`
	ServiceArea string `json:"serviceArea"`
	Shift       string `json:"shift"`
	DeskNumber  string `json:"deskNumber"`
}

// LoginResult is what a successful login hands back to the portal.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type UserService struct {
	DB          *gorm.DB
	Tokens      *auth.Service
	Mailer      *utils.Mailer
	BcryptCost  int
	FrontendURL string
}

func NewUserService(db *gorm.DB, tokens *auth.Service, mailer *utils.Mailer, bcryptCost int, frontendURL string) *UserService {
	return &UserService{DB: db, Tokens: tokens, Mailer: mailer, BcryptCost: bcryptCost, FrontendURL: frontendURL}
}

// Authenticate checks a username/password pair against active accounts.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active || !auth.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token, err := s.Tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.DB.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
	log.WithFields(log.Fields{"user_id": user.ID, "role": user.Role}).Info("user logged in")
	return &LoginResult{Token: token, ExpiresAt: now.Add(s.Tokens.Expiry()), User: user}, nil
}

func (s *UserService) List(ctx context.Context, role string) ([]models.User, error) {
	users := []models.User{}
	if err := s.DB.WithContext(ctx).Where("role = ?", role).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, role string, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("role = ?", role).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetByID loads any account regardless of role.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserService) Create(ctx context.Context, role string, in UserInput) (*models.User, error) {
	utils.TrimStrings(&in)
	switch {
	case in.Username == "":
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	case len(in.Password) < 8:
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	case in.Email != "" && !utils.IsValidEmail(in.Email):
		return nil, fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	hash, err := auth.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username: in.Username,
		Password: hash,
		Role:     role,
		Active:   true,
	}
	applyUserInput(&user, in)

	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: username '%s' is taken", ErrConflict, user.Username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.WithFields(log.Fields{"user_id": user.ID, "role": role}).Info("staff account created")

	if user.Email != "" {
		go func(u models.User) {
			link := strings.TrimRight(s.FrontendURL, "/") + "/login"
			if err := s.Mailer.SendStaffWelcome(u.Email, u.FullName, u.Role, link); err != nil {
				log.WithError(err).WithField("user_id", u.ID).Warn("welcome email failed")
			}
		}(user)
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, role string, id uint, in UserInput) (*models.User, error) {
	utils.TrimStrings(&in)
	if in.Email != "" && !utils.IsValidEmail(in.Email) {
		return nil, fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	user, err := s.Get(ctx, role, id)
	if err != nil {
		return nil, err
	}
	if in.Username != "" {
		user.Username = in.Username
	}
	if in.Password != "" {
		if len(in.Password) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
		}
		hash, err := auth.HashPassword(in.Password, s.BcryptCost)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	applyUserInput(user, in)

	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		if IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: username '%s' is taken", ErrConflict, user.Username)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes an account; the last active system admin cannot be removed.
func (s *UserService) Delete(ctx context.Context, role string, id uint) error {
	db := s.DB.WithContext(ctx)
	user, err := s.Get(ctx, role, id)
	if err != nil {
		return err
	}
	if user.Role == models.RoleSystemAdmin {
		var admins int64
		if err := db.Model(&models.User{}).
			Where("role = ? AND active = ?", models.RoleSystemAdmin, true).
			Count(&admins).Error; err != nil {
			return err
		}
		if admins <= 1 {
			return fmt.Errorf("%w: cannot delete the last system admin", ErrConflict)
		}
	}
	return db.Delete(user).Error
}

// applyUserInput copies profile fields and keeps only the columns that
// belong to the user's role.
func applyUserInput(u *models.User, in UserInput) {
	u.FullName = in.FullName
	u.Email = in.Email
	u.Phone = in.Phone
	if in.Active != nil {
		u.Active = *in.Active
	}
	u.AccessLevel, u.Department, u.ServiceArea, u.Shift, u.DeskNumber = "", "", "", "", ""
	switch u.Role {
	case models.RoleSystemAdmin:
		u.AccessLevel = in.AccessLevel
	case models.RoleOperationalManager:
		u.Department = in.Department
	case models.RoleServiceManager:
		u.ServiceArea = in.ServiceArea
	case models.RoleReceptionist:
		u.Shift = in.Shift
		u.DeskNumber = in.DeskNumber
	}
}
