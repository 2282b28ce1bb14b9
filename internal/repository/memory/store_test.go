package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-billing/internal/domain"
)

func TestSessionRepository_SettleOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	user := &domain.User{Email: "a@example.com", APIKey: "a", Balance: 300}
	_, err := store.Users.Create(ctx, user)
	require.NoError(t, err)

	session := &domain.ParkingSession{UserID: user.ID, VehicleID: 1, ZoneID: 1, StartedAt: time.Now(), Status: domain.SessionStatusActive}
	_, err = store.Sessions.Create(ctx, session)
	require.NoError(t, err)

	_, err = store.Sessions.Create(ctx, &domain.ParkingSession{UserID: user.ID, VehicleID: 1, Status: domain.SessionStatusActive})
	assert.ErrorIs(t, err, domain.ErrConflict)

	cost := 15.0
	session.Cost = &cost
	session.Status = domain.SessionStatusPaid
	require.NoError(t, store.Sessions.Settle(ctx, session, 15))
	assert.ErrorIs(t, store.Sessions.Settle(ctx, session, 15), domain.ErrUnprocessable)

	u, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 285.0, u.Balance)

	// callers must not be able to mutate stored state through returned values
	got, err := store.Sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	*got.Cost = 999
	again, err := store.Sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, *again.Cost)
}

func TestIDsAreMonotonic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for want := int64(1); want <= 3; want++ {
		zone := &domain.Zone{Name: "z"}
		id, err := store.Zones.Create(ctx, zone)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	require.NoError(t, store.Zones.Delete(ctx, 3))

	id, err := store.Zones.Create(ctx, &domain.Zone{Name: "z"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}
