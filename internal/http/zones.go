package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-billing/internal/domain"
)

type createZoneRequest struct {
	Name       string   `json:"name" binding:"required"`
	RatePerMin *float64 `json:"rate_per_min" binding:"required"`
	MaxMinutes *int     `json:"max_minutes" binding:"required"`
}

type ZoneResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	RatePerMin float64 `json:"rate_per_min"`
	MaxMinutes int     `json:"max_minutes"`
}

func zoneToResponse(zone domain.Zone) ZoneResponse {
	return ZoneResponse{
		ID:         zone.ID,
		Name:       zone.Name,
		RatePerMin: zone.RatePerMin,
		MaxMinutes: zone.MaxMinutes,
	}
}

func (h *Handler) listZones(c *gin.Context) {
	zones, err := h.zones.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ZoneResponse, len(zones))
	for i := range zones {
		resp[i] = zoneToResponse(zones[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createZone(c *gin.Context) {
	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zone, err := h.zones.Create(c.Request.Context(), req.Name, *req.RatePerMin, *req.MaxMinutes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, zoneToResponse(*zone))
}

func (h *Handler) getZone(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	zone, err := h.zones.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, zoneToResponse(*zone))
}

func (h *Handler) deleteZone(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.zones.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
