package api

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"class-booking/internal/domain/slot"
	reqdto "class-booking/internal/handler/dto/request"
	resdto "class-booking/internal/handler/dto/response"
	"class-booking/internal/handler/httperr"
	"class-booking/internal/usecase/catalog"
	"class-booking/internal/usecase/state"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SlotState is the read side of the booking state store.
type SlotState interface {
	Slots() []*slot.Slot
	Version() uint64
	Load(ctx context.Context) error
	Watch(fn func(state.Snapshot)) *state.Subscription
}

type SlotHandler struct {
	state   SlotState
	catalog catalog.Catalog
}

func NewSlotHandler(st SlotState, cat catalog.Catalog) *SlotHandler {
	return &SlotHandler{state: st, catalog: cat}
}

// @Summary List slots
// @Description Current class slots as held by the server
// @Tags slots
// @Produce json
// @Success 200 {object} resdto.SlotListResponse
// @Router /api/slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, resdto.FromSlots(h.state.Slots(), h.state.Version()))
}

// @Summary Refresh slots
// @Description Refetch the slot collection from the store (poll mode)
// @Tags slots
// @Produce json
// @Success 200 {object} resdto.SlotListResponse
// @Failure 502 {object} httperr.Response
// @Router /api/slots/refresh [post]
func (h *SlotHandler) Refresh(c *gin.Context) {
	if err := h.state.Load(c.Request.Context()); err != nil {
		abortWithUseCaseError(c, err, resdto.FromSlots(h.state.Slots(), h.state.Version()))
		return
	}
	c.JSON(http.StatusOK, resdto.FromSlots(h.state.Slots(), h.state.Version()))
}

// @Summary Create slot
// @Tags slots
// @Accept json
// @Produce json
// @Param request body reqdto.CreateSlotRequest true "Slot"
// @Success 201 {object} resdto.SlotResponse
// @Failure 400 {object} httperr.Response
// @Router /api/slots [post]
func (h *SlotHandler) Create(c *gin.Context) {
	var req reqdto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	created, err := h.catalog.CreateSlot(c.Request.Context(), req.Day, req.Time, *req.SlotsLeft)
	if err != nil {
		abortWithUseCaseError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromSlot(created))
}

// @Summary Import slots
// @Description Import slots from the first sheet of an xlsx workbook (Day, Time, Slots Left)
// @Tags slots
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook"
// @Success 200 {object} resdto.ImportResponse
// @Failure 400 {object} httperr.Response
// @Router /api/slots/import [post]
func (h *SlotHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "File is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable file", nil)
		return
	}
	defer f.Close()

	result, err := h.catalog.ImportSlots(c.Request.Context(), f)
	if err != nil {
		abortWithUseCaseError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromImportResult(result))
}

// @Summary Export slots
// @Tags slots
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /api/slots/export [get]
func (h *SlotHandler) Export(c *gin.Context) {
	writeWorkbook(c, "slots.xlsx", h.catalog.ExportSlots)
}

// @Summary Stream slots
// @Description Server-sent events; an "slots" event carries the full list on every change
// @Tags slots
// @Produce text/event-stream
// @Router /api/slots/stream [get]
func (h *SlotHandler) Stream(c *gin.Context) {
	updates := make(chan state.Snapshot, 1)
	sub := h.state.Watch(func(snap state.Snapshot) {
		// keep only the newest snapshot
		for {
			select {
			case updates <- snap:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer sub.Unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("slots", resdto.FromSlots(h.state.Slots(), h.state.Version()))
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap := <-updates:
			c.SSEvent("slots", resdto.FromSlots(snap.Slots, snap.Version))
			return true
		}
	})
}

type exportFunc func(ctx context.Context, w io.Writer) (int, error)

func writeWorkbook(c *gin.Context, filename string, export exportFunc) {
	var buf bytes.Buffer
	if _, err := export(c.Request.Context(), &buf); err != nil {
		abortWithUseCaseError(c, err, nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
