package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"secondchance/internal/middleware"
	"secondchance/internal/service"
)

// EmailHeader carries the legacy, deprecated identity for PUT /auth/update.
const EmailHeader = "email"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

// RegisterResponse is returned after registration.
type RegisterResponse struct {
	Email     string `json:"email"`
	AuthToken string `json:"authtoken"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after login.
type LoginResponse struct {
	AuthToken string `json:"authtoken"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// UpdateRequest represents a profile update. Empty fields are left unchanged.
type UpdateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password" validate:"omitempty,min=6,max=72"`
}

// UpdateResponse carries a fresh token, plus a message when nothing changed.
type UpdateResponse struct {
	Message   string `json:"message,omitempty"`
	AuthToken string `json:"authtoken"`
}

// UpdateProfileRequest represents a first name change.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"required"`
}

// UpdateProfileResponse is returned after a first name change.
type UpdateProfileResponse struct {
	Message   string `json:"message"`
	FirstName string `json:"firstName"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 200 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, RegisterResponse{
		Email:     res.Email,
		AuthToken: res.Token,
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		AuthToken: res.Token,
		UserName:  res.FirstName,
		UserEmail: res.Email,
	})
}

// Update godoc
// @Summary Update name and/or password
// @Description Identifies the user by bearer token. The "email" header is a deprecated fallback used only when no token is sent.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param email header string false "Deprecated: user email"
// @Param request body UpdateRequest true "Fields to change"
// @Success 200 {object} UpdateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/update [put]
func (h *AuthHandler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	identity := service.ProfileIdentity{
		Email: strings.TrimSpace(c.Request().Header.Get(EmailHeader)),
	}
	if id, ok := middleware.UserID(c); ok {
		identity.UserID = id
	}

	res, err := h.authService.UpdateProfile(c.Request().Context(), identity, service.ProfileChanges{
		FirstName: optional(req.FirstName),
		LastName:  optional(req.LastName),
		Password:  nonEmpty(req.Password),
	})
	if err != nil {
		return respondError(err)
	}

	resp := UpdateResponse{AuthToken: res.Token}
	if !res.Updated {
		resp.Message = "no changes applied"
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateProfile godoc
// @Summary Update first name of the authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "New first name"
// @Success 200 {object} UpdateProfileResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/update-profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, _ := middleware.UserID(c)
	res, err := h.authService.UpdateProfile(c.Request().Context(),
		service.ProfileIdentity{UserID: id},
		service.ProfileChanges{FirstName: optional(req.FirstName)},
	)
	if err != nil {
		return respondError(err)
	}

	msg := "Profile updated successfully"
	if !res.Updated {
		msg = "no changes applied"
	}
	return c.JSON(http.StatusOK, UpdateProfileResponse{
		Message:   msg,
		FirstName: res.User.FirstName,
	})
}

// nonEmpty keeps s byte for byte. Passwords are never trimmed.
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optional trims a name field and drops it when blank.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
