package v1

import (
	"errors"
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/gin-gonic/gin"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	var transientErr *service.TransientError
	if errors.As(err, &transientErr) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: transientErr.Error(),
			Code:  "STORE_UNAVAILABLE",
		})
		return
	}

	switch {
	case errors.Is(err, citizen.ErrCitizenNotFound),
		errors.Is(err, institute.ErrInstituteNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrSuperseded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "SUPERSEDED"})

	case errors.Is(err, service.ErrAccountExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, hr.ErrInvalidRecordKind),
		errors.Is(err, institute.ErrInvalidType),
		errors.Is(err, institute.ErrInvalidOwnership):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, institute.ErrInstituteInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "account is deactivated", Code: "ACCOUNT_INACTIVE"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

// actorFrom builds the audit identity for the authenticated caller. The
// route group guarantees claims are present.
func actorFrom(c *gin.Context) (*domain.Claims, service.Actor) {
	claims, _ := middleware.ClaimsFrom(c)
	actor := service.Actor{
		IPAddress: c.ClientIP(),
		RequestID: middleware.GetRequestID(c),
	}
	if claims != nil {
		actor.AccountID = claims.AccountID
		actor.Role = claims.Role
	}
	return claims, actor
}
