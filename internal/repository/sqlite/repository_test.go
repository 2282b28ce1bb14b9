package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-billing/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "parking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(context.Background(), db)
	require.NoError(t, err)
	return store
}

func seedUser(t *testing.T, store *Store, email string, balance float64) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, APIKey: "key-" + email, Balance: balance}
	_, err := store.Users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user := seedUser(t, store, "a@example.com", 300)
	assert.Equal(t, int64(1), user.ID)

	byKey, err := store.Users.GetByAPIKey(ctx, "key-a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byKey.ID)
	assert.Equal(t, 300.0, byKey.Balance)

	byEmail, err := store.Users.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = store.Users.Create(ctx, &domain.User{Email: "a@example.com", APIKey: "other"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	balance, err := store.Users.AdjustBalance(ctx, user.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 350.0, balance)

	_, err = store.Users.AdjustBalance(ctx, 99, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Users.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestZoneRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, z := range []domain.Zone{{Name: "A", RatePerMin: 1.5, MaxMinutes: 120}, {Name: "B", RatePerMin: 1, MaxMinutes: 180}} {
		zone := z
		_, err := store.Zones.Create(ctx, &zone)
		require.NoError(t, err)
	}

	zones, err := store.Zones.List(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, int64(1), zones[0].ID)
	assert.Equal(t, "B", zones[1].Name)

	zone, err := store.Zones.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.5, zone.RatePerMin)
	assert.Equal(t, 120, zone.MaxMinutes)

	require.NoError(t, store.Zones.Delete(ctx, 1))
	_, err = store.Zones.Get(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Zones.Delete(ctx, 1), domain.ErrNotFound)
}

func TestVehicleRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	alice := seedUser(t, store, "alice@example.com", 0)
	bob := seedUser(t, store, "bob@example.com", 0)

	v := &domain.Vehicle{UserID: alice.ID, Plate: "ABC-123"}
	_, err := store.Vehicles.Create(ctx, v)
	require.NoError(t, err)

	_, err = store.Vehicles.Create(ctx, &domain.Vehicle{UserID: alice.ID, Plate: "abc-123"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = store.Vehicles.Create(ctx, &domain.Vehicle{UserID: bob.ID, Plate: "abc-123"})
	require.NoError(t, err)

	got, err := store.Vehicles.GetByPlate(ctx, alice.ID, "Abc-123")
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, "ABC-123", got.Plate)

	_, err = store.Vehicles.GetByPlate(ctx, alice.ID, "XYZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := store.Vehicles.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "abc-123", list[0].Plate)
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := seedUser(t, store, "a@example.com", 300)
	vehicle := &domain.Vehicle{UserID: user.ID, Plate: "ABC"}
	_, err := store.Vehicles.Create(ctx, vehicle)
	require.NoError(t, err)

	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	session := &domain.ParkingSession{
		UserID:    user.ID,
		VehicleID: vehicle.ID,
		ZoneID:    1,
		StartedAt: started,
		Status:    domain.SessionStatusActive,
	}
	_, err = store.Sessions.Create(ctx, session)
	require.NoError(t, err)

	_, err = store.Sessions.Create(ctx, &domain.ParkingSession{
		UserID: user.ID, VehicleID: vehicle.ID, ZoneID: 2, StartedAt: started, Status: domain.SessionStatusActive,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	active, err := store.Sessions.ActiveForVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, active.ID)
	assert.True(t, started.Equal(active.StartedAt))
	assert.Nil(t, active.EndedAt)
	assert.Nil(t, active.Minutes)
	assert.Nil(t, active.Cost)

	ended := started.Add(130 * time.Minute)
	minutes, maxMinutes := 130, 120
	cost, fine, rate := 195.0, 100.0, 1.5
	session.EndedAt = &ended
	session.Minutes = &minutes
	session.Cost = &cost
	session.Fine = &fine
	session.RatePerMin = &rate
	session.MaxMinutes = &maxMinutes
	session.Collected = true
	session.Status = domain.SessionStatusFined
	require.NoError(t, store.Sessions.Settle(ctx, session, 295))

	got, err := store.Sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusFined, got.Status)
	require.NotNil(t, got.EndedAt)
	assert.True(t, ended.Equal(*got.EndedAt))
	assert.Equal(t, 130, *got.Minutes)
	assert.Equal(t, 195.0, *got.Cost)
	assert.Equal(t, 100.0, *got.Fine)
	assert.Equal(t, 1.5, *got.RatePerMin)
	assert.Equal(t, 120, *got.MaxMinutes)
	assert.True(t, got.Collected)

	u, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, u.Balance, 1e-9)

	// settling twice neither re-writes the session nor debits again
	assert.ErrorIs(t, store.Sessions.Settle(ctx, session, 295), domain.ErrUnprocessable)
	u, err = store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, u.Balance, 1e-9)

	_, err = store.Sessions.ActiveForVehicle(ctx, vehicle.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// vehicle is free again
	next := &domain.ParkingSession{UserID: user.ID, VehicleID: vehicle.ID, ZoneID: 1, StartedAt: ended, Status: domain.SessionStatusActive}
	_, err = store.Sessions.Create(ctx, next)
	require.NoError(t, err)

	list, err := store.Sessions.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, next.ID, list[0].ID)
}

func TestSessionRepository_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Sessions.Get(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
