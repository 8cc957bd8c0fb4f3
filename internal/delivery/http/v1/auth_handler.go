package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"resume-management-backend/internal/delivery/http/response"
	"resume-management-backend/internal/domain"
	"resume-management-backend/pkg/apperror"
	"resume-management-backend/pkg/logger"
	"resume-management-backend/pkg/security"
	"resume-management-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
	logins *security.LoginTracker
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, authUC domain.AuthUsecase, logins *security.LoginTracker) {
	handler := &AuthHandler{authUC: authUC, logins: logins}

	publicUser := public.Group("/user")
	{
		publicUser.POST("/register", handler.Register)
		publicUser.POST("/login", handler.Login)
	}

	protectedUser := protected.Group("/user")
	{
		protectedUser.GET("/me", handler.Me)
	}
}

// Register godoc
// @Summary      User Registration
// @Description  Create an account with username, email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      domain.RegisterRequest  true  "Registration Details"
// @Success      201    {object}  response.Response{data=domain.User}
// @Failure      400    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	user, err := h.authUC.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Registration successful", user)
}

// Login godoc
// @Summary      User Login
// @Description  Exchange email and password for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginRequest  true  "Login Credentials"
// @Success      200    {object}  response.Response{data=domain.TokenResponse}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	blockedFor, err := h.logins.BlockedFor(ctx, email)
	if err != nil {
		logger.Log.Warn("Login tracker unavailable", "error", err)
	}
	if blockedFor > 0 {
		c.Header("Retry-After", strconv.Itoa(int(blockedFor.Seconds())+1))
		response.Error(c, http.StatusTooManyRequests, "Too many failed login attempts. Please try again later.", nil)
		return
	}

	token, err := h.authUC.Login(ctx, &req)
	if err != nil {
		if apperror.Is(err, apperror.KindUnauthorized) {
			if _, trackErr := h.logins.RecordFailure(ctx, email, c.ClientIP()); trackErr != nil {
				logger.Log.Warn("Failed to record login failure", "error", trackErr)
			}
		}
		c.Error(err)
		return
	}

	if err := h.logins.Clear(ctx, email); err != nil {
		logger.Log.Warn("Failed to clear login failures", "error", err)
	}

	response.Success(c, http.StatusOK, "Login successful", token)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200    {object}  response.Response{data=domain.User}
// @Failure      401    {object}  response.Response
// @Router       /user/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User details", user)
}

// bindError keeps validator messages readable and hides JSON decoder internals.
func bindError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.BadRequest(strings.Join(validation.FormatValidationErrors(verrs), "; "))
	}
	return apperror.BadRequest("Invalid request body")
}
