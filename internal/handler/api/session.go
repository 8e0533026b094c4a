package api

import (
	"net/http"

	reqdto "class-booking/internal/handler/dto/request"
	resdto "class-booking/internal/handler/dto/response"
	"class-booking/internal/handler/httperr"
	"class-booking/internal/usecase/session"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions session.Registry
}

func NewSessionHandler(sessions session.Registry) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// @Summary Open session
// @Description Start a booking session; the response carries the session view
// @Tags sessions
// @Produce json
// @Success 201 {object} resdto.SessionResponse
// @Router /api/sessions [post]
func (h *SessionHandler) Open(c *gin.Context) {
	s := h.sessions.Open()
	c.Header("Location", "/api/sessions/"+s.ID)
	c.Header(sessionIDHeader, s.ID)
	h.render(c, http.StatusCreated, s)
}

// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} resdto.SessionResponse
// @Failure 404 {object} httperr.Response
// @Router /api/sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, s)
}

// @Summary Close session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /api/sessions/{id} [delete]
func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		abortWithUseCaseError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Select slot
// @Description Make a slot the pending selection; its displayed count drops by one
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body reqdto.SelectSlotRequest true "Slot"
// @Success 200 {object} resdto.SessionResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/sessions/{id}/select [post]
func (h *SessionHandler) Select(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req reqdto.SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	if err := s.Controller.Select(req.SlotID); err != nil {
		h.abort(c, s, err)
		return
	}
	h.render(c, http.StatusOK, s)
}

// @Summary Set student name
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body reqdto.SetStudentNameRequest true "Name"
// @Success 200 {object} resdto.SessionResponse
// @Router /api/sessions/{id}/name [put]
func (h *SessionHandler) SetName(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req reqdto.SetStudentNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	if err := s.Controller.SetStudentName(req.StudentName); err != nil {
		h.abort(c, s, err)
		return
	}
	h.render(c, http.StatusOK, s)
}

// @Summary Cancel selection
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} resdto.SessionResponse
// @Router /api/sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := s.Controller.Cancel(); err != nil {
		h.abort(c, s, err)
		return
	}
	h.render(c, http.StatusOK, s)
}

// @Summary Submit booking
// @Description Book the pending slot. On a write failure the selection stays so the client can retry.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body reqdto.SubmitRequest false "Student name"
// @Success 200 {object} resdto.SessionResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/sessions/{id}/submit [post]
func (h *SessionHandler) Submit(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req reqdto.SubmitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
			return
		}
	}
	if err := s.Controller.Submit(c.Request.Context(), req.StudentName); err != nil {
		h.abort(c, s, err)
		return
	}
	h.render(c, http.StatusOK, s)
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		abortWithUseCaseError(c, err, nil)
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) render(c *gin.Context, status int, s *session.Session) {
	resp, err := resdto.FromSessionView(s.ID, s.Controller.View())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(status, resp)
}

// abort attaches the current session view so the form can be re-rendered.
func (h *SessionHandler) abort(c *gin.Context, s *session.Session, err error) {
	view, viewErr := resdto.FromSessionView(s.ID, s.Controller.View())
	if viewErr != nil {
		abortWithUseCaseError(c, err, nil)
		return
	}
	abortWithUseCaseError(c, err, view)
}
