package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

// IPasswordResetTokenRepository persists single-use reset tokens
type IPasswordResetTokenRepository interface {
	CreateToken(ctx context.Context, userID int64, token string, expiryDate time.Time) error
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, token string) error
}

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	db db.Handle
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(h db.Handle) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: h}
}

// CreateToken stores a new password reset token
func (r *PasswordResetTokenRepository) CreateToken(ctx context.Context, userID int64, token string, expiryDate time.Time) error {
	_, err := r.db.Conn(ctx).Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token, expiry_date)
		VALUES ($1, $2, $3)`, userID, token, expiryDate)
	if err != nil {
		return fmt.Errorf("error creating password reset token: %w", err)
	}
	return nil
}

// GetByToken retrieves a reset token
func (r *PasswordResetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	t := &models.PasswordResetToken{}
	err := r.db.Conn(ctx).QueryRow(ctx, `
		SELECT id, token, user_id, expiry_date, used, created_at
		FROM password_reset_tokens
		WHERE token = $1`, token).Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiryDate, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvalidPasswordResetToken
		}
		return nil, fmt.Errorf("error retrieving password reset token: %w", err)
	}
	return t, nil
}

// MarkUsed flips the token to used; a token can only be used once
func (r *PasswordResetTokenRepository) MarkUsed(ctx context.Context, token string) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE token = $1 AND used = FALSE`, token)
	if err != nil {
		return fmt.Errorf("error marking password reset token as used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPasswordResetTokenUsed
	}
	return nil
}
