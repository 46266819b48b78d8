package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/email"
	"github.com/yigit/unicampus/internal/pkg/events"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/validation"
)

// AuthService handles sign-in, token rotation and password recovery
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error)
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
}

type authServiceImpl struct {
	userRepo    repositories.IUserRepository
	tokenRepo   repositories.ITokenRepository
	otpRepo     repositories.IOTPRepository
	resetRepo   repositories.IPasswordResetTokenRepository
	studentRepo repositories.IStudentRepository
	facultyRepo repositories.IFacultyRepository
	tx          db.Transactor
	jwtService  *auth.JWTService
	mailer      *Mailer
	publisher   events.Publisher
	audit       AuditService
	opts        Options
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	otpRepo repositories.IOTPRepository,
	resetRepo repositories.IPasswordResetTokenRepository,
	studentRepo repositories.IStudentRepository,
	facultyRepo repositories.IFacultyRepository,
	tx db.Transactor,
	jwtService *auth.JWTService,
	mailer *Mailer,
	publisher events.Publisher,
	audit AuditService,
	opts Options,
	logger zerolog.Logger,
) AuthService {
	if opts.OTPLength == 0 {
		opts.OTPLength = 6
	}
	if opts.OTPTTL == 0 {
		opts.OTPTTL = 10 * time.Minute
	}
	if opts.OTPMaxAttempts == 0 {
		opts.OTPMaxAttempts = 5
	}
	if opts.ResetTokenTTL == 0 {
		opts.ResetTokenTTL = 30 * time.Minute
	}

	return &authServiceImpl{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		otpRepo:     otpRepo,
		resetRepo:   resetRepo,
		studentRepo: studentRepo,
		facultyRepo: facultyRepo,
		tx:          tx,
		jwtService:  jwtService,
		mailer:      mailer,
		publisher:   publisher,
		audit:       audit,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// Login authenticates a user by email and password
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, helpers.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Info().Int64("userID", user.ID).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")
	return resp, nil
}

// RefreshToken rotates a refresh token: the presented token is revoked and a new pair issued
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored.IsRevoked {
		s.logger.Warn().Int64("userID", stored.UserID).Msg("Revoked refresh token presented")
		return nil, apperrors.ErrTokenRevoked
	}
	if s.now().After(stored.ExpiryDate) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error finding token owner: %w", err)
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountDisabled
	}

	var resp *dto.TokenResponse
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
			return err
		}
		resp, err = s.issueTokens(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout revokes a refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.RevokeToken(ctx, refreshToken)
}

// ForgotPassword issues an OTP by email. Unknown or disabled accounts are silently ignored.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, helpers.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("error finding user: %w", err)
	}
	if !user.IsActive() {
		s.logger.Info().Int64("userID", user.ID).Msg("Password reset requested for inactive account")
		return nil
	}

	code, err := auth.GenerateOTP(s.opts.OTPLength)
	if err != nil {
		return fmt.Errorf("error generating otp: %w", err)
	}
	hash, err := auth.HashPassword(code)
	if err != nil {
		return fmt.Errorf("error hashing otp: %w", err)
	}

	otp := &models.OTP{
		UserID:    user.ID,
		Purpose:   models.OTPPurposePasswordReset,
		CodeHash:  hash,
		ExpiresAt: s.now().Add(s.opts.OTPTTL),
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.otpRepo.InvalidateAll(ctx, user.ID, models.OTPPurposePasswordReset); err != nil {
			return err
		}
		return s.otpRepo.Create(ctx, otp)
	})
	if err != nil {
		return fmt.Errorf("error storing otp: %w", err)
	}

	ttl := s.opts.OTPTTL
	s.mailer.Go("otp", func(ctx context.Context, svc email.EmailService) error {
		return svc.SendOTPEmail(ctx, user.Email, user.FullName(), code, ttl)
	})

	s.logger.Info().Int64("userID", user.ID).Msg("Password reset OTP issued")
	return nil
}

// VerifyOTP exchanges a valid OTP for a single-use password reset token
func (s *authServiceImpl) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, helpers.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidOTP
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	otp, err := s.otpRepo.GetActive(ctx, user.ID, models.OTPPurposePasswordReset)
	if err != nil {
		return nil, err
	}
	if s.now().After(otp.ExpiresAt) {
		return nil, apperrors.ErrInvalidOTP
	}
	if otp.Attempts >= s.opts.OTPMaxAttempts {
		return nil, apperrors.ErrOTPAttemptsExceeded
	}

	if !auth.CheckPassword(otp.CodeHash, req.OTP) {
		attempts, err := s.otpRepo.IncrementAttempts(ctx, otp.ID)
		if err != nil {
			return nil, fmt.Errorf("error recording otp attempt: %w", err)
		}
		if attempts >= s.opts.OTPMaxAttempts {
			if err := s.otpRepo.Consume(ctx, otp.ID); err != nil && !errors.Is(err, apperrors.ErrInvalidOTP) {
				s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to expire exhausted otp")
			}
			s.logger.Warn().Int64("userID", user.ID).Msg("OTP attempts exhausted")
			return nil, apperrors.ErrOTPAttemptsExceeded
		}
		return nil, apperrors.ErrInvalidOTP
	}

	token := uuid.New().String()
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.otpRepo.Consume(ctx, otp.ID); err != nil {
			return err
		}
		return s.resetRepo.CreateToken(ctx, user.ID, token, s.now().Add(s.opts.ResetTokenTTL))
	})
	if err != nil {
		return nil, err
	}

	return &dto.VerifyOTPResponse{
		ResetToken: token,
		ExpiresIn:  int64(s.opts.ResetTokenTTL.Seconds()),
	}, nil
}

// ResetPassword sets a new password with a reset token and signs the user out everywhere
func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if !validation.IsStrongPassword(req.NewPassword) {
		return apperrors.ErrInvalidPassword
	}

	stored, err := s.resetRepo.GetByToken(ctx, req.Token)
	if err != nil {
		return err
	}
	if stored.Used {
		return apperrors.ErrPasswordResetTokenUsed
	}
	if s.now().After(stored.ExpiryDate) {
		return apperrors.ErrInvalidPasswordResetToken
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return fmt.Errorf("error finding user: %w", err)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.resetRepo.MarkUsed(ctx, req.Token); err != nil {
			return err
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
			return err
		}
		if err := s.otpRepo.InvalidateAll(ctx, user.ID, models.OTPPurposePasswordReset); err != nil {
			return err
		}
		return s.tokenRepo.RevokeAllUserTokens(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, ActionPassword, "user", user.ID, map[string]string{"via": "reset"})
	events.Emit(ctx, s.publisher, s.logger, events.New(events.PasswordReset, user.ID, map[string]int64{"userId": user.ID}))
	s.mailer.Go("password_changed", func(ctx context.Context, svc email.EmailService) error {
		return svc.SendPasswordChangedEmail(ctx, user.Email, user.FullName())
	})

	s.logger.Info().Int64("userID", user.ID).Msg("Password reset completed")
	return nil
}

// GetProfile returns the user with permissions and linked student or faculty record
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms, err := s.userRepo.GetPermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading permissions: %w", err)
	}

	profile := &dto.ProfileResponse{User: user, Permissions: perms}

	if student, err := s.studentRepo.GetByUserID(ctx, userID); err == nil {
		profile.Student = student
	} else if !errors.Is(err, apperrors.ErrStudentNotFound) {
		return nil, fmt.Errorf("error loading student record: %w", err)
	}

	if member, err := s.facultyRepo.GetByUserID(ctx, userID); err == nil {
		profile.Faculty = member
	} else if !errors.Is(err, apperrors.ErrFacultyNotFound) {
		return nil, fmt.Errorf("error loading faculty record: %w", err)
	}

	return profile, nil
}

// ChangePassword replaces the caller's password after checking the current one
func (s *authServiceImpl) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	if !validation.IsStrongPassword(req.NewPassword) {
		return apperrors.ErrInvalidPassword
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}
		return s.tokenRepo.RevokeAllUserTokens(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, ActionPassword, "user", userID, map[string]string{"via": "change"})
	s.mailer.Go("password_changed", func(ctx context.Context, svc email.EmailService) error {
		return svc.SendPasswordChangedEmail(ctx, user.Email, user.FullName())
	})
	return nil
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
	}, nil
}
