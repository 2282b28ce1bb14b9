package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"parking-billing/internal/domain"
	"parking-billing/internal/service"
	"parking-billing/internal/storage"
)

// ReceiptIndex locates archived receipts of a user.
type ReceiptIndex interface {
	UserPrefix(userID int64) string
}

type Deps struct {
	Users    service.UserService
	Zones    service.ZoneService
	Vehicles service.VehicleService
	Sessions service.SessionService
	Wallet   service.WalletService

	// Storage, Bucket and Receipts are optional; without them the receipts
	// endpoint reports the archive as unavailable.
	Storage  storage.Service
	Bucket   string
	Receipts ReceiptIndex

	Logger *logrus.Logger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	zones    service.ZoneService
	vehicles service.VehicleService
	sessions service.SessionService
	wallet   service.WalletService
	storage  storage.Service
	bucket   string
	receipts ReceiptIndex
	logger   *logrus.Logger
}

func NewHandler(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	return &Handler{
		users:    deps.Users,
		zones:    deps.Zones,
		vehicles: deps.Vehicles,
		sessions: deps.Sessions,
		wallet:   deps.Wallet,
		storage:  deps.Storage,
		bucket:   deps.Bucket,
		receipts: deps.Receipts,
		logger:   deps.Logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.POST("/auth/register", h.register)
		api.POST("/auth/token", h.issueToken)
	}

	authed := api.Group("", authMiddleware(h.users))
	{
		authed.GET("/zones", h.listZones)
		authed.POST("/zones", h.createZone)
		authed.GET("/zones/:id", h.getZone)
		authed.DELETE("/zones/:id", h.deleteZone)

		authed.POST("/vehicles", h.registerVehicle)
		authed.GET("/vehicles", h.listVehicles)

		authed.POST("/sessions/start", h.startSession)
		authed.POST("/sessions/stop/:id", h.stopSession)
		authed.GET("/sessions", h.listSessions)
		authed.GET("/sessions/:id", h.getSession)

		authed.POST("/wallet/deposit", h.deposit)
		authed.GET("/wallet", h.balance)

		authed.GET("/receipts", h.listReceipts)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	}
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as an internal error.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnprocessable), errors.Is(err, domain.ErrValidation):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func formatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}
