package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"parking-billing/internal/domain"
	"parking-billing/internal/repository"
)

// DefaultZones are created on first start when the directory is empty.
var DefaultZones = []domain.Zone{
	{Name: "A", RatePerMin: 1.5, MaxMinutes: 120},
	{Name: "B", RatePerMin: 1.0, MaxMinutes: 180},
}

// ZoneService is the zone directory.
type ZoneService interface {
	List(ctx context.Context) ([]domain.Zone, error)
	Get(ctx context.Context, id int64) (*domain.Zone, error)
	Create(ctx context.Context, name string, ratePerMin float64, maxMinutes int) (*domain.Zone, error)
	Delete(ctx context.Context, id int64) error
	SeedDefaults(ctx context.Context) error
}

type zoneService struct {
	zones repository.ZoneRepository
}

func NewZoneService(zones repository.ZoneRepository) ZoneService {
	return &zoneService{zones: zones}
}

func (s *zoneService) List(ctx context.Context) ([]domain.Zone, error) {
	return s.zones.List(ctx)
}

func (s *zoneService) Get(ctx context.Context, id int64) (*domain.Zone, error) {
	return s.zones.Get(ctx, id)
}

func (s *zoneService) Create(ctx context.Context, name string, ratePerMin float64, maxMinutes int) (*domain.Zone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("zone name is required: %w", domain.ErrValidation)
	}
	if math.IsNaN(ratePerMin) || math.IsInf(ratePerMin, 0) || ratePerMin < 0 {
		return nil, fmt.Errorf("rate per minute must be a non-negative number: %w", domain.ErrValidation)
	}
	if maxMinutes < 0 {
		return nil, fmt.Errorf("max minutes must not be negative: %w", domain.ErrValidation)
	}

	zone := &domain.Zone{
		Name:       name,
		RatePerMin: ratePerMin,
		MaxMinutes: maxMinutes,
	}
	if _, err := s.zones.Create(ctx, zone); err != nil {
		return nil, err
	}
	return zone, nil
}

func (s *zoneService) Delete(ctx context.Context, id int64) error {
	return s.zones.Delete(ctx, id)
}

func (s *zoneService) SeedDefaults(ctx context.Context) error {
	existing, err := s.zones.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, z := range DefaultZones {
		zone := z
		if _, err := s.zones.Create(ctx, &zone); err != nil {
			return fmt.Errorf("seed zone %s: %w", z.Name, err)
		}
	}
	return nil
}
