package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" validate:"required,max=200"`
	Password string `json:"password" validate:"required,max=200"`
	Portal   string `json:"portal"   validate:"required,oneof=admin user creator"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=200"`
	NewPassword     string `json:"newPassword"     validate:"required,max=200"`
}

type recoveryVerifyRequest struct {
	Portal      string `json:"portal"      validate:"required,oneof=admin user creator"`
	Name        string `json:"name"        validate:"max=200"`
	Email       string `json:"email"       validate:"max=200"`
	PhoneNumber string `json:"phoneNumber" validate:"max=50"`
	OldPassword string `json:"oldPassword" validate:"max=200"`
}

type recoveryVerifyResponse struct {
	OK         bool   `json:"ok"`
	ResetToken string `json:"resetToken"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken"  validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=200"`
}

type meResponse struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
}
