package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type depositRequest struct {
	Amount *float64 `form:"amount" json:"amount" binding:"required"`
}

func (h *Handler) deposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.wallet.Deposit(c.Request.Context(), currentUser(c).ID, *req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *Handler) balance(c *gin.Context) {
	balance, err := h.wallet.Balance(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
