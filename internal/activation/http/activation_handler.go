// Package http provides HTTP handlers for the account activation API.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activationDomain "github.com/allisson/activation/internal/activation/domain"
	"github.com/allisson/activation/internal/activation/http/dto"
	activationUseCase "github.com/allisson/activation/internal/activation/usecase"
	"github.com/allisson/activation/internal/httputil"
)

// User-facing messages for the set-password page. The page renders these
// verbatim, so keep them presentable.
const (
	// MsgInvalidLink is returned for every unusable-token cause during
	// validation: unknown account, wrong secret, expired or consumed
	// invitation. One message for all causes, so the endpoint cannot be used
	// to probe invitation state.
	MsgInvalidLink = "This activation link is invalid or has expired."

	// MsgTokenUsed is returned when a create-password call hits an already
	// consumed invitation.
	MsgTokenUsed = "Token already used"
)

// ActivationHandler handles the three HTTP calls of the set-password flow.
type ActivationHandler struct {
	useCase activationUseCase.UseCase
	logger  *slog.Logger
}

// NewActivationHandler creates a new activation handler.
func NewActivationHandler(useCase activationUseCase.UseCase, logger *slog.Logger) *ActivationHandler {
	return &ActivationHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// ValidateTokenHandler checks an activation link.
// POST /api/auth/validate-password-token/:account_id/:secret/
//
// Always answers 200 with a valid flag: an unusable token is a normal outcome
// for this endpoint, not an HTTP error. Internal failures also answer
// valid=false (the page cannot do anything more useful with a 500) and are
// logged server-side.
func (h *ActivationHandler) ValidateTokenHandler(c *gin.Context) {
	accountID, secret, ok := h.linkParams(c)
	if !ok {
		c.JSON(http.StatusOK, dto.ValidateTokenResponse{Valid: false, Message: MsgInvalidLink})
		return
	}

	user, err := h.useCase.ValidateToken(c.Request.Context(), &activationDomain.ValidateTokenInput{
		AccountID: accountID,
		Secret:    secret,
	})
	if err != nil {
		if !errors.Is(err, activationDomain.ErrInvitationInvalid) {
			h.logger.Error("token validation failed", slog.Any("error", err))
		}
		c.JSON(http.StatusOK, dto.ValidateTokenResponse{Valid: false, Message: MsgInvalidLink})
		return
	}

	c.JSON(http.StatusOK, dto.ValidateTokenResponse{
		Valid: true,
		User:  dto.ToUserResponse(user),
	})
}

// CreatePasswordHandler sets the account's first password and consumes the invitation.
// POST /api/auth/create-password/:account_id/:secret/
//
// Returns 204 on success. Failure responses carry a message field the page
// shows verbatim in its error banner.
func (h *ActivationHandler) CreatePasswordHandler(c *gin.Context) {
	accountID, secret, ok := h.linkParams(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httputil.ErrorResponse{
			Error:   "invalid_token",
			Message: MsgInvalidLink,
		})
		return
	}

	var req dto.CreatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, err, h.logger)
		return
	}

	err := h.useCase.CreatePassword(c.Request.Context(), &activationDomain.CreatePasswordInput{
		AccountID: accountID,
		Secret:    secret,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, activationDomain.ErrInvitationConsumed):
			c.JSON(http.StatusConflict, httputil.ErrorResponse{
				Error:   "token_used",
				Message: MsgTokenUsed,
			})
		case errors.Is(err, activationDomain.ErrInvitationInvalid):
			c.JSON(http.StatusUnauthorized, httputil.ErrorResponse{
				Error:   "invalid_token",
				Message: MsgInvalidLink,
			})
		default:
			httputil.HandleError(c, err, h.logger)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// LoginHandler authenticates with the just-created credentials.
// POST /login/
func (h *ActivationHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, err, h.logger)
		return
	}

	user, err := h.useCase.Login(c.Request.Context(), req.ToLoginInput())
	if err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{User: *dto.ToUserResponse(user)})
}

// linkParams extracts and parses the activation link path parameters.
func (h *ActivationHandler) linkParams(c *gin.Context) (uuid.UUID, string, bool) {
	accountID, err := uuid.Parse(c.Param("account_id"))
	if err != nil {
		return uuid.Nil, "", false
	}

	secret := c.Param("secret")
	if secret == "" {
		return uuid.Nil, "", false
	}

	return accountID, secret, true
}
