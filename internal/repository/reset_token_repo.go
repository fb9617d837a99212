package repository

import (
	"travelshare/backend/internal/model"

	"gorm.io/gorm"
)

type ResetTokenRepository interface {
	Create(token *model.PasswordResetToken) error
	FindByUserAndCode(userID, code string) (*model.PasswordResetToken, error)
	InvalidateAllForUser(userID string) error
	MarkUsed(id string) error
	DeleteAllForUser(userID string) error
}

type resetTokenRepository struct {
	db *gorm.DB
}

func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Create stores a reset token
func (r *resetTokenRepository) Create(token *model.PasswordResetToken) error {
	return r.db.Create(token).Error
}

// FindByUserAndCode finds the newest unused token matching the code
func (r *resetTokenRepository) FindByUserAndCode(userID, code string) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	err := r.db.Where("user_id = ? AND code = ? AND used = ?", userID, code, false).
		Order("created_at DESC").
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// InvalidateAllForUser marks every outstanding token for the user as used
func (r *resetTokenRepository) InvalidateAllForUser(userID string) error {
	return r.db.Model(&model.PasswordResetToken{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error
}

// MarkUsed consumes a token
func (r *resetTokenRepository) MarkUsed(id string) error {
	return r.db.Model(&model.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used", true).Error
}

// DeleteAllForUser removes every reset token belonging to a user
func (r *resetTokenRepository) DeleteAllForUser(userID string) error {
	return r.db.Where("user_id = ?", userID).
		Delete(&model.PasswordResetToken{}).Error
}
