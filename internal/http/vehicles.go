package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-billing/internal/domain"
)

type registerVehicleRequest struct {
	Plate string `json:"plate" binding:"required"`
}

type VehicleResponse struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Plate  string `json:"plate"`
}

func vehicleToResponse(v domain.Vehicle) VehicleResponse {
	return VehicleResponse{ID: v.ID, UserID: v.UserID, Plate: v.Plate}
}

func (h *Handler) registerVehicle(c *gin.Context) {
	var req registerVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle, err := h.vehicles.Register(c.Request.Context(), currentUser(c).ID, req.Plate)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicleToResponse(*vehicle))
}

func (h *Handler) listVehicles(c *gin.Context) {
	vehicles, err := h.vehicles.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]VehicleResponse, len(vehicles))
	for i := range vehicles {
		resp[i] = vehicleToResponse(vehicles[i])
	}
	c.JSON(http.StatusOK, resp)
}
