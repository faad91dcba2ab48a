package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fruit-api/common"
	"fruit-api/model"
	"fruit-api/service"
	"net/http"
)

// PasswordResetter is the reset workflow as seen by the HTTP layer.
type PasswordResetter interface {
	RequestReset(ctx context.Context, email string) (*service.IssuedReset, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// PasswordHandler serves the forgot/reset password endpoints.
type PasswordHandler struct {
	service         PasswordResetter
	exposeTestToken bool
}

// NewPasswordHandler creates a PasswordHandler. With exposeTestToken the
// issued token is echoed in the forgot-password response.
func NewPasswordHandler(s PasswordResetter, exposeTestToken bool) *PasswordHandler {
	return &PasswordHandler{service: s, exposeTestToken: exposeTestToken}
}

// ForgotPassword godoc
// @Summary      Request a password reset link
// @Description  Issues a single-use reset token valid for a short window and emails a link to it.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body model.ForgotPasswordRequest true "Account email"
// @Success      200  {object}  model.ForgotPasswordResponse
// @Failure      400  {object}  common.AppError "Invalid request body"
// @Failure      404  {object}  common.AppError "Email not found"
// @Failure      429  {object}  common.AppError "Too many reset requests"
// @Failure      503  {object}  common.AppError "Reset email could not be sent"
// @Router       /users/forgot-password [post]
func (h *PasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ForgotPasswordRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	issued, err := h.service.RequestReset(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotFound):
			return common.NewAppError(http.StatusNotFound, "Email not found", nil)
		case errors.Is(err, service.ErrTooManyResetRequests):
			return common.NewAppError(http.StatusTooManyRequests, "Too many password reset requests, try again later", nil)
		case errors.Is(err, service.ErrNotificationFailed):
			return common.NewAppError(http.StatusServiceUnavailable, "Could not send password reset email", err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not process password reset request", err)
		}
	}

	resp := model.ForgotPasswordResponse{Msg: "Password reset link sent to " + issued.Email}
	if h.exposeTestToken {
		resp.TestToken = issued.Token
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
	return nil
}

// ResetPassword godoc
// @Summary      Reset a password with a reset token
// @Description  Consumes the token and sets the new password. A password that fails the complexity policy uses up one of the token's attempts.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body model.ResetPasswordRequest true "Reset token and new password"
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError "Invalid, expired or locked token, password format violation, invalid user id"
// @Failure      404  {object}  common.AppError "User not found"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /users/reset-password [post]
func (h *PasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ResetPasswordRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		var formatErr *service.PasswordFormatError
		switch {
		case errors.As(err, &formatErr):
			return common.NewAppError(http.StatusBadRequest, formatErr.Error(), nil).
				WithDetail("remaining_attempts", formatErr.Remaining)
		case errors.Is(err, service.ErrInvalidToken):
			return common.NewAppError(http.StatusBadRequest, "Invalid or expired token", nil)
		case errors.Is(err, service.ErrResetTokenExpired):
			return common.NewAppError(http.StatusBadRequest, "Reset token has expired, request a new one", nil)
		case errors.Is(err, service.ErrResetAttemptsExhausted):
			return common.NewAppError(http.StatusBadRequest, "Too many failed attempts, request a new reset link", nil)
		case errors.Is(err, service.ErrInvalidUserID):
			return common.NewAppError(http.StatusBadRequest, "Invalid user id in token", nil)
		case errors.Is(err, service.ErrUserNotFound):
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not reset password", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.MessageResponse{Msg: "Password has been reset successfully"})
	return nil
}
