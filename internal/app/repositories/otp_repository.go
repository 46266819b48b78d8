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

// IOTPRepository persists hashed one-time passwords
type IOTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) error
	GetActive(ctx context.Context, userID int64, purpose models.OTPPurpose) (*models.OTP, error)
	IncrementAttempts(ctx context.Context, id int64) (int, error)
	Consume(ctx context.Context, id int64) error
	InvalidateAll(ctx context.Context, userID int64, purpose models.OTPPurpose) error
}

// OTPRepository stores OTP hashes
type OTPRepository struct {
	db db.Handle
}

// NewOTPRepository creates a new OTPRepository
func NewOTPRepository(h db.Handle) *OTPRepository {
	return &OTPRepository{db: h}
}

// Create stores an OTP hash
func (r *OTPRepository) Create(ctx context.Context, otp *models.OTP) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO otps (user_id, purpose, code_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, attempts, created_at`,
		otp.UserID, otp.Purpose, otp.CodeHash, otp.ExpiresAt).Scan(&otp.ID, &otp.Attempts, &otp.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating otp: %w", err)
	}
	return nil
}

// GetActive returns the newest unconsumed OTP, expired or not
func (r *OTPRepository) GetActive(ctx context.Context, userID int64, purpose models.OTPPurpose) (*models.OTP, error) {
	o := &models.OTP{}
	err := r.db.Conn(ctx).QueryRow(ctx, `
		SELECT id, user_id, purpose, code_hash, expires_at, attempts, consumed_at, created_at
		FROM otps
		WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, userID, purpose).
		Scan(&o.ID, &o.UserID, &o.Purpose, &o.CodeHash, &o.ExpiresAt, &o.Attempts, &o.ConsumedAt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvalidOTP
		}
		return nil, fmt.Errorf("error retrieving otp: %w", err)
	}
	return o, nil
}

// IncrementAttempts records a failed verification and returns the new count
func (r *OTPRepository) IncrementAttempts(ctx context.Context, id int64) (int, error) {
	var attempts int
	err := r.db.Conn(ctx).QueryRow(ctx,
		`UPDATE otps SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts`, id).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrInvalidOTP
		}
		return 0, fmt.Errorf("error incrementing otp attempts: %w", err)
	}
	return attempts, nil
}

// Consume marks an OTP as used
func (r *OTPRepository) Consume(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE otps SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL`, id, time.Now())
	if err != nil {
		return fmt.Errorf("error consuming otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidOTP
	}
	return nil
}

// InvalidateAll consumes every outstanding OTP of a user for a purpose
func (r *OTPRepository) InvalidateAll(ctx context.Context, userID int64, purpose models.OTPPurpose) error {
	_, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE otps SET consumed_at = $3 WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL`,
		userID, purpose, time.Now())
	if err != nil {
		return fmt.Errorf("error invalidating otps: %w", err)
	}
	return nil
}
