package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@unicampus.app"`
	Password string `json:"password" binding:"required" example:"Admin123!"`
}

// RefreshTokenRequest carries a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse is returned after login or refresh
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int64  `json:"expiresIn" example:"3600"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn" example:"2592000"`
}

// ForgotPasswordRequest starts the OTP reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest exchanges an OTP for a reset token
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,numeric,min=4,max=10" example:"482913"`
}

// VerifyOTPResponse carries the single-use reset token
type VerifyOTPResponse struct {
	ResetToken string `json:"resetToken"`
	ExpiresIn  int64  `json:"expiresIn" example:"1800"`
}

// ResetPasswordRequest completes the reset flow
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,password"`
}

// ChangePasswordRequest changes the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
}

// ProfileResponse is the signed-in user's profile
type ProfileResponse struct {
	User        interface{} `json:"user"`
	Permissions []string    `json:"permissions"`
	Student     interface{} `json:"student,omitempty"`
	Faculty     interface{} `json:"faculty,omitempty"`
}
