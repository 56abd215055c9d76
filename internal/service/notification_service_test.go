package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

type syncNotificationStore struct {
	mu      sync.Mutex
	created []models.Notification
}

func (m *syncNotificationStore) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *n)
	return nil
}

func (m *syncNotificationStore) ListByRecipient(_ context.Context, email string) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.created {
		if n.RecipientEmail == email {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *syncNotificationStore) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.created {
		if m.created[i].ID == id {
			m.created[i].Read = true
		}
	}
	return nil
}

func (m *syncNotificationStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

func TestNotifyDeliversThroughQueue(t *testing.T) {
	store := &syncNotificationStore{}
	svc := NewNotificationService(store, 2, 8, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify("a@uni.edu", "you were assigned to proctor %s", "CS315")

	require.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 10*time.Millisecond)

	got, err := svc.ListForRecipient(context.Background(), "a@uni.edu")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "you were assigned to proctor CS315", got[0].Message)
	assert.False(t, got[0].Read)
}

func TestNotifyFallsBackInlineWhenQueueStopped(t *testing.T) {
	store := &syncNotificationStore{}
	svc := NewNotificationService(store, 1, 1, nil)

	// queue never started, so delivery happens synchronously
	svc.Notify("b@uni.edu", "plain message")

	assert.Equal(t, 1, store.count())
}

func TestMarkRead(t *testing.T) {
	store := &syncNotificationStore{}
	svc := NewNotificationService(store, 1, 1, nil)
	svc.Notify("c@uni.edu", "message")

	got, err := svc.ListForRecipient(context.Background(), "c@uni.edu")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, svc.MarkRead(context.Background(), got[0].ID))
	got, err = svc.ListForRecipient(context.Background(), "c@uni.edu")
	require.NoError(t, err)
	assert.True(t, got[0].Read)
}
