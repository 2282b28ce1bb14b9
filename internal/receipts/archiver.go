// Package receipts uploads settlement receipts to object storage off the
// request path.
package receipts

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"parking-billing/internal/domain"
	"parking-billing/internal/storage"
)

// Receipt is the archived record of one settlement.
type Receipt struct {
	SessionID  int64                `json:"session_id"`
	UserID     int64                `json:"user_id"`
	VehicleID  int64                `json:"vehicle_id"`
	ZoneID     int64                `json:"zone_id"`
	StartedAt  time.Time            `json:"started_at"`
	EndedAt    time.Time            `json:"ended_at"`
	Minutes    int                  `json:"minutes"`
	RatePerMin float64              `json:"rate_per_min"`
	BaseCost   float64              `json:"base_cost"`
	Fine       float64              `json:"fine"`
	CostTotal  float64              `json:"cost_total"`
	Collected  bool                 `json:"collected"`
	Status     domain.SessionStatus `json:"status"`
}

// Archiver queues receipts and uploads them on a bounded worker pool.
type Archiver interface {
	Run(ctx context.Context) error
	// Enqueue never blocks; it reports false when the receipt was dropped.
	Enqueue(r Receipt) bool
	UserPrefix(userID int64) string
}

type Config struct {
	Bucket        string
	KeyPrefix     string
	Workers       int
	QueueSize     int
	UploadTimeout time.Duration
	Logger        *logrus.Logger
}

type archiver struct {
	cfg     Config
	storage storage.Service

	queue chan Receipt
	sem   chan struct{}
	wg    sync.WaitGroup
}

func NewArchiver(cfg Config, store storage.Service) Archiver {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &archiver{
		cfg:     cfg,
		storage: store,
		queue:   make(chan Receipt, cfg.QueueSize),
		sem:     make(chan struct{}, cfg.Workers),
	}
}

// Run uploads queued receipts until ctx is done, then flushes whatever is
// still queued and waits for in-flight uploads.
func (a *archiver) Run(ctx context.Context) error {
	a.cfg.Logger.Infof("receipt archiver started, bucket: %s", a.cfg.Bucket)
	for {
		select {
		case r := <-a.queue:
			a.dispatch(r)
		case <-ctx.Done():
			a.flush()
			a.cfg.Logger.Info("receipt archiver stopped")
			return nil
		}
	}
}

func (a *archiver) Enqueue(r Receipt) bool {
	select {
	case a.queue <- r:
		return true
	default:
		a.cfg.Logger.WithField("session_id", r.SessionID).Warn("receipt queue full, dropping receipt")
		return false
	}
}

func (a *archiver) UserPrefix(userID int64) string {
	return path.Join(a.cfg.KeyPrefix, "users", strconv.FormatInt(userID, 10)) + "/"
}

func (a *archiver) flush() {
	for {
		select {
		case r := <-a.queue:
			a.dispatch(r)
		default:
			a.wg.Wait()
			return
		}
	}
}

func (a *archiver) dispatch(r Receipt) {
	a.sem <- struct{}{}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() { <-a.sem }()
		a.upload(r)
	}()
}

func (a *archiver) upload(r Receipt) {
	logger := a.cfg.Logger.WithFields(logrus.Fields{
		"session_id": r.SessionID,
		"user_id":    r.UserID,
	})

	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		logger.Errorf("encode receipt: %v", err)
		return
	}

	key := a.UserPrefix(r.UserID) + fmt.Sprintf("session-%d-%s.json", r.SessionID, uuid.NewString())

	// uploads outlive the request and the shutdown signal
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.UploadTimeout)
	defer cancel()

	location, err := a.storage.PutObject(ctx, a.cfg.Bucket, key, "application/json", body)
	if err != nil {
		logger.Errorf("archive receipt: %v", err)
		return
	}
	logger.Infof("receipt archived at %s", location)
}
