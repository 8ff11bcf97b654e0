package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dindin/internal/errors"
	"dindin/internal/services"
	"dindin/internal/session"
)

// SessionHandler exposes session state: selected period, selected view,
// and the derived monthly summary.
type SessionHandler struct {
	sessions *session.Registry
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Registry) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// SetViewRequest selects the active view.
type SetViewRequest struct {
	View string `json:"view" binding:"required,app_view"`
}

// SetPeriodRequest selects the aggregation period, either absolutely or by
// a month offset from the current selection (prev/next navigation).
type SetPeriodRequest struct {
	Month  string `json:"month" binding:"omitempty,period"`
	Offset int    `json:"offset" binding:"min=-120,max=120"`
}

// GetSession returns the session overview.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := getSession(c, h.sessions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := sess.Overview()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": overview})
}

// SetView selects the active view.
func (h *SessionHandler) SetView(c *gin.Context) {
	sess, err := getSession(c, h.sessions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := sess.SetView(req.View); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": req.View})
}

// SetPeriod changes the selected period; the summary is recomputed before
// the response is sent.
func (h *SessionHandler) SetPeriod(c *gin.Context) {
	sess, err := getSession(c, h.sessions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var period string
	switch {
	case req.Month != "":
		if err := sess.SetPeriod(req.Month); err != nil {
			respondWithError(c, err)
			return
		}
		period = req.Month
	case req.Offset != 0:
		period, err = sess.ShiftPeriod(req.Offset)
		if err != nil {
			respondWithError(c, err)
			return
		}
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "month or offset is required"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":       period,
		"period_label": services.PeriodLabel(period),
	})
}

// GetSummary returns the monthly summary for the requested month, or for
// the session's selected period when no month is given.
func (h *SessionHandler) GetSummary(c *gin.Context) {
	sess, err := getSession(c, h.sessions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month := c.Query("month")
	if month != "" && !services.IsValidPeriod(month) {
		respondWithError(c, apperrors.ErrInvalidPeriod)
		return
	}

	summary, err := sess.Summary(month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
