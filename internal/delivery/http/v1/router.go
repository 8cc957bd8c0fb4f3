package v1

import (
	"net/http"

	"resume-management-backend/config"
	"resume-management-backend/internal/delivery/http/middleware"
	"resume-management-backend/internal/delivery/http/response"
	"resume-management-backend/internal/domain"
	"resume-management-backend/internal/usecase"
	"resume-management-backend/pkg/auth"
	"resume-management-backend/pkg/security"
	"resume-management-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	ResumeUC      domain.ResumeUsecase
	HealthUC      usecase.HealthUsecase
	Tokens        *auth.TokenIssuer
	UploadLimiter *security.UploadLimiter
	LoginTracker  *security.LoginTracker
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Request DTOs use the same custom rules as resume patches
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		NewAuthHandler(v1, protected, deps.AuthUC, deps.LoginTracker)
		NewResumeHandler(protected, deps.ResumeUC, deps.Config.MaxUploadBytes, middleware.UploadRateLimit(deps.UploadLimiter))
	}

	return r
}
