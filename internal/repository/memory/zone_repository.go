package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"parking-billing/internal/domain"
)

type ZoneRepository struct {
	st *state
}

func (r *ZoneRepository) Init(ctx context.Context) error { return nil }

func (r *ZoneRepository) Create(ctx context.Context, zone *domain.Zone) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	r.st.nextZone++
	zone.ID = r.st.nextZone
	zone.CreatedAt = time.Now().UTC()
	stored := *zone
	r.st.zones[zone.ID] = &stored
	return zone.ID, nil
}

func (r *ZoneRepository) Get(ctx context.Context, id int64) (*domain.Zone, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	z, ok := r.st.zones[id]
	if !ok {
		return nil, fmt.Errorf("zone: %w", domain.ErrNotFound)
	}
	out := *z
	return &out, nil
}

func (r *ZoneRepository) List(ctx context.Context) ([]domain.Zone, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	zones := make([]domain.Zone, 0, len(r.st.zones))
	for _, z := range r.st.zones {
		zones = append(zones, *z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones, nil
}

func (r *ZoneRepository) Delete(ctx context.Context, id int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.zones[id]; !ok {
		return fmt.Errorf("zone %d: %w", id, domain.ErrNotFound)
	}
	delete(r.st.zones, id)
	return nil
}
