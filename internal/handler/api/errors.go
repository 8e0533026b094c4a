package api

import (
	"errors"
	"net/http"

	"class-booking/internal/handler/httperr"
	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

// abortWithUseCaseError maps booking errors onto HTTP statuses. detail is
// attached to the body so clients can re-render after a failure.
func abortWithUseCaseError(c *gin.Context, err error, detail any) {
	var (
		submitErr *shared.SubmitError
		fetchErr  *shared.FetchError
	)
	switch {
	case errs.Is(err, errs.ErrSessionNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Session not found", detail)
	case errs.Is(err, errs.ErrSlotNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Slot not found", detail)
	case errs.Is(err, errs.ErrSlotFull):
		httperr.AbortWithError(c, http.StatusConflict, err, "Slot is fully booked", detail)
	case errs.Is(err, errs.ErrStaleSlot):
		httperr.AbortWithError(c, http.StatusConflict, err, "Slot changed, refresh and try again", detail)
	case errs.Is(err, errs.ErrSubmitInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Submit already in progress", detail)
	case errs.Is(err, errs.ErrNotSelecting):
		httperr.AbortWithError(c, http.StatusConflict, err, "No slot selected", detail)
	case errs.Is(err, errs.ErrStudentNameRequired):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Student name is required", detail)
	case errs.Is(err, errs.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", detail)
	case errors.As(err, &submitErr):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Error submitting booking", detail)
	case errors.As(err, &fetchErr):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Error fetching slots", detail)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", detail)
	}
}
