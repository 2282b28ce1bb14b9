package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-billing/internal/domain"
	"parking-billing/internal/service"
)

// startSessionRequest binds from the query string or a JSON body.
type startSessionRequest struct {
	Plate  string `form:"plate" json:"plate" binding:"required"`
	ZoneID int64  `form:"zone_id" json:"zone_id" binding:"required"`
}

type SessionResponse struct {
	ID         int64                `json:"id"`
	UserID     int64                `json:"user_id"`
	VehicleID  int64                `json:"vehicle_id"`
	ZoneID     int64                `json:"zone_id"`
	StartedAt  *string              `json:"started_at"`
	EndedAt    *string              `json:"ended_at"`
	Minutes    *int                 `json:"minutes"`
	Cost       *float64             `json:"cost"`
	Status     domain.SessionStatus `json:"status"`
	Collected  bool                 `json:"collected"`
	RatePerMin *float64             `json:"rate_per_min,omitempty"`
}

type SessionViewResponse struct {
	ID        int64                `json:"id"`
	VehicleID int64                `json:"vehicle_id"`
	ZoneID    int64                `json:"zone_id"`
	StartedAt *string              `json:"started_at"`
	EndedAt   *string              `json:"ended_at"`
	Minutes   int                  `json:"minutes"`
	Cost      float64              `json:"cost"`
	Fined     bool                 `json:"fined"`
	Fine      float64              `json:"fine"`
	CostTotal float64              `json:"cost_total"`
	Status    domain.SessionStatus `json:"status"`
	Collected bool                 `json:"collected"`
}

func sessionToResponse(s domain.ParkingSession) SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		VehicleID:  s.VehicleID,
		ZoneID:     s.ZoneID,
		StartedAt:  formatTime(&s.StartedAt),
		EndedAt:    formatTime(s.EndedAt),
		Minutes:    s.Minutes,
		Cost:       s.Cost,
		Status:     s.Status,
		Collected:  s.Collected,
		RatePerMin: s.RatePerMin,
	}
}

func viewToResponse(v service.SessionView) SessionViewResponse {
	return SessionViewResponse{
		ID:        v.Session.ID,
		VehicleID: v.Session.VehicleID,
		ZoneID:    v.Session.ZoneID,
		StartedAt: formatTime(&v.Session.StartedAt),
		EndedAt:   formatTime(v.Session.EndedAt),
		Minutes:   v.Minutes,
		Cost:      v.BaseCost,
		Fined:     v.Fined,
		Fine:      v.Fine,
		CostTotal: v.CostTotal,
		Status:    v.Session.Status,
		Collected: v.Session.Collected,
	}
}

func (h *Handler) startSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), currentUser(c).ID, req.Plate, req.ZoneID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(*session))
}

func (h *Handler) stopSession(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	session, err := h.sessions.Stop(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(*session))
}

func (h *Handler) getSession(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.sessions.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewToResponse(*view))
}

func (h *Handler) listSessions(c *gin.Context) {
	views, err := h.sessions.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]SessionViewResponse, len(views))
	for i := range views {
		resp[i] = viewToResponse(views[i])
	}
	c.JSON(http.StatusOK, resp)
}
