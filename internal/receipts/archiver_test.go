package receipts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-billing/internal/domain"
	"parking-billing/internal/storage"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) PutObject(ctx context.Context, bucket, key, contentType string, body []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("boom")
	}
	f.objects[key] = body
	return "s3://" + bucket + "/" + key, nil
}

func (f *fakeStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.ObjectInfo
	for k, v := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (f *fakeStorage) GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return "https://example.invalid/" + key, nil
}

func (f *fakeStorage) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

func TestArchiver_UserPrefix(t *testing.T) {
	a := NewArchiver(Config{KeyPrefix: "/receipts/"}, newFakeStorage())
	assert.Equal(t, "receipts/users/7/", a.UserPrefix(7))

	bare := NewArchiver(Config{}, newFakeStorage())
	assert.Equal(t, "users/7/", bare.UserPrefix(7))
}

func TestArchiver_UploadsQueuedReceipts(t *testing.T) {
	store := newFakeStorage()
	a := NewArchiver(Config{Bucket: "b", KeyPrefix: "receipts", Workers: 2}, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	for i := int64(1); i <= 5; i++ {
		require.True(t, a.Enqueue(Receipt{SessionID: i, UserID: 3, Status: domain.SessionStatusPaid, CostTotal: 15}))
	}

	cancel()
	require.NoError(t, <-done)

	keys := store.keys()
	require.Len(t, keys, 5)
	for _, k := range keys {
		assert.True(t, strings.HasPrefix(k, "receipts/users/3/session-"), k)
		assert.True(t, strings.HasSuffix(k, ".json"), k)
	}

	var r Receipt
	require.NoError(t, json.Unmarshal(store.objects[keys[0]], &r))
	assert.Equal(t, int64(3), r.UserID)
	assert.Equal(t, domain.SessionStatusPaid, r.Status)
}

func TestArchiver_DropsWhenQueueFull(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := NewArchiver(Config{Bucket: "b", QueueSize: 1, Logger: logger}, newFakeStorage())

	assert.True(t, a.Enqueue(Receipt{SessionID: 1}))
	assert.False(t, a.Enqueue(Receipt{SessionID: 2}))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestArchiver_StorageFailureIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := newFakeStorage()
	store.fail = true
	a := NewArchiver(Config{Bucket: "b", Logger: logger}, store)

	ctx, cancel := context.WithCancel(context.Background())
	a.Enqueue(Receipt{SessionID: 9, UserID: 1})
	cancel()
	require.NoError(t, a.Run(ctx))

	assert.Empty(t, store.keys())
	var errs int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}
