package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "campus-market.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. AppErrors carry their own status; bare
// domain sentinels are mapped here so handlers do not repeat the taxonomy.
// Anything unrecognized becomes a 500 with a generic message, keeping
// repository details out of client responses.
func Error(c *gin.Context, err error) {
	appErr := toAppError(err)
	c.JSON(appErr.Code, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

func toAppError(err error) *domainerrors.AppError {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound("resource not found")
	case errors.Is(err, domainerrors.ErrInvalidInput):
		return domainerrors.BadRequest(err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized("unauthorized")
	case errors.Is(err, domainerrors.ErrForbidden):
		return domainerrors.Forbidden("forbidden")
	case errors.Is(err, domainerrors.ErrPinNotSet):
		return domainerrors.BadRequest("transaction pin not set")
	case errors.Is(err, domainerrors.ErrInvalidPin):
		return domainerrors.NewAppError(http.StatusUnauthorized, "invalid transaction pin", err)
	case errors.Is(err, domainerrors.ErrInsufficientFunds),
		errors.Is(err, domainerrors.ErrInsufficientStock),
		errors.Is(err, domainerrors.ErrListingUnavailable),
		errors.Is(err, domainerrors.ErrSelfPurchase):
		return domainerrors.UnprocessableEntity(err.Error(), err)
	case errors.Is(err, domainerrors.ErrInvalidState),
		errors.Is(err, domainerrors.ErrAlreadySigned),
		errors.Is(err, domainerrors.ErrAlreadyExists):
		return domainerrors.Conflict(err.Error(), err)
	case errors.Is(err, domainerrors.ErrInvalidSignature):
		return domainerrors.NewAppError(http.StatusUnauthorized, "invalid webhook signature", err)
	case errors.Is(err, domainerrors.ErrGatewayFailure):
		return domainerrors.BadGateway("payment gateway failure", err)
	default:
		return domainerrors.InternalError(err)
	}
}
