package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"travelshare/backend/internal/config"
	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"
	"travelshare/backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(fullName, email, password string) (*model.User, string, error)
	Login(email, password string) (*model.User, string, error)
	GetProfile(userID string) (*model.User, error)
	UpdateProfile(userID string, fullName *string, bio *string) (*model.User, error)
	UpdateAvatar(userID string, fileData []byte, filename string) (*model.User, error)
	ChangePassword(userID, oldPassword, newPassword string) error
	RequestPasswordReset(email string) error
	VerifyResetCode(email, code string) error
	ResetPassword(email, code, newPassword string) error
}

type authService struct {
	userRepo     repository.UserRepository
	resetRepo    repository.ResetTokenRepository
	emailService EmailService
	cloudinary   *util.CloudinaryClient
	cfg          *config.Config
}

const resetTokenTTL = 15 * time.Minute

func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.ResetTokenRepository,
	emailService EmailService,
	cloudinary *util.CloudinaryClient,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		resetRepo:    resetRepo,
		emailService: emailService,
		cloudinary:   cloudinary,
		cfg:          cfg,
	}
}

// Register creates an account and returns the user with a fresh token
func (s *authService) Register(fullName, email, password string) (*model.User, string, error) {
	if len(password) < 8 {
		return nil, "", fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, "", fmt.Errorf("email already registered: %w", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := util.GenerateToken(user.ID, user.Email, user.Role, s.cfg.JWTSecret, s.cfg.JWTExpiryHours)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	// Welcome mail goes out async via the queue
	if s.emailService != nil {
		go s.emailService.QueueWelcomeEmail(user.Email, user.FullName)
	}

	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token
func (s *authService) Login(email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}

	if !user.IsActive {
		return nil, "", fmt.Errorf("account is deactivated: %w", ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", fmt.Errorf("failed to update last login: %w", err)
	}

	token, err := util.GenerateToken(user.ID, user.Email, user.Role, s.cfg.JWTSecret, s.cfg.JWTExpiryHours)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// GetProfile returns a user's profile
func (s *authService) GetProfile(userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update
func (s *authService) UpdateProfile(userID string, fullName *string, bio *string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}

	if fullName != nil {
		if *fullName == "" {
			return nil, fmt.Errorf("full name cannot be empty: %w", ErrValidation)
		}
		user.FullName = *fullName
	}
	if bio != nil {
		user.Bio = bio
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdateAvatar uploads the image to Cloudinary and stores the URL
func (s *authService) UpdateAvatar(userID string, fileData []byte, filename string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}

	if s.cloudinary == nil {
		return nil, fmt.Errorf("image uploads are not configured: %w", ErrValidation)
	}

	imageURL, err := s.cloudinary.ProcessFileFromMemory(fileData, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	user.AvatarURL = &imageURL
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the old password before setting the new one
func (s *authService) ChangePassword(userID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	return s.userRepo.Update(user)
}

// RequestPasswordReset mints a 6 digit code, invalidating earlier codes,
// and mails it. An unknown email is not revealed to the caller.
func (s *authService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := s.resetRepo.InvalidateAllForUser(user.ID); err != nil {
		return fmt.Errorf("failed to invalidate previous tokens: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	token := &model.PasswordResetToken{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(token); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.emailService != nil {
		go s.emailService.QueuePasswordResetEmail(user.Email, user.FullName, code)
	}

	return nil
}

// VerifyResetCode checks a code without consuming it, so the client can
// validate before asking for the new password
func (s *authService) VerifyResetCode(email, code string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("invalid reset code: %w", ErrUnauthorized)
	}

	token, err := s.resetRepo.FindByUserAndCode(user.ID, code)
	if err != nil {
		return fmt.Errorf("invalid reset code: %w", ErrUnauthorized)
	}

	if !token.IsValid() {
		return fmt.Errorf("reset code expired: %w", ErrUnauthorized)
	}
	return nil
}

// ResetPassword redeems a reset code. Codes are single use and expire.
func (s *authService) ResetPassword(email, code, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("invalid reset code: %w", ErrUnauthorized)
	}

	token, err := s.resetRepo.FindByUserAndCode(user.ID, code)
	if err != nil {
		return fmt.Errorf("invalid reset code: %w", ErrUnauthorized)
	}

	if !token.IsValid() {
		return fmt.Errorf("reset code expired: %w", ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return s.resetRepo.MarkUsed(token.ID)
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
