package api

import (
	"net/http"

	resdto "class-booking/internal/handler/dto/response"
	"class-booking/internal/usecase/catalog"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	catalog catalog.Catalog
}

func NewBookingHandler(cat catalog.Catalog) *BookingHandler {
	return &BookingHandler{catalog: cat}
}

// @Summary List bookings
// @Tags bookings
// @Produce json
// @Success 200 {array} resdto.BookingResponse
// @Failure 502 {object} httperr.Response
// @Router /api/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	records, err := h.catalog.ListBookings(c.Request.Context())
	if err != nil {
		abortWithUseCaseError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookings(records))
}

// @Summary Export bookings
// @Tags bookings
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /api/bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	writeWorkbook(c, "bookings.xlsx", h.catalog.ExportBookings)
}
