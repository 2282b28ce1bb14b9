package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parking-billing/internal/storage"
)

const receiptURLTTL = 15 * time.Minute

type ReceiptResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
	URL          string  `json:"url,omitempty"`
}

func (h *Handler) listReceipts(c *gin.Context) {
	if h.storage == nil || h.bucket == "" || h.receipts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "receipt archive not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	objects, err := h.storage.ListObjects(ctx, h.bucket, h.receipts.UserPrefix(currentUser(c).ID))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ReceiptResponse, len(objects))
	for i := range objects {
		resp[i] = h.receiptToResponse(ctx, objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) receiptToResponse(ctx context.Context, obj storage.ObjectInfo) ReceiptResponse {
	resp := ReceiptResponse{
		Key:          obj.Key,
		Size:         obj.Size,
		LastModified: formatTime(obj.LastModified),
	}
	url, err := h.storage.GetObjectURL(ctx, h.bucket, obj.Key, receiptURLTTL)
	if err != nil {
		h.logger.WithError(err).WithField("key", obj.Key).Warn("presign receipt")
		return resp
	}
	resp.URL = url
	return resp
}
