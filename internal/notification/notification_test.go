package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"el-diego/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMailer captures sends for assertions.
type recordingMailer struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (m *recordingMailer) SendOrderCreated(_ context.Context, order *model.Order, recipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, recipient)
	return nil
}

func (m *recordingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func TestDispatcher_EnqueueSendsAfterDelay(t *testing.T) {
	mailer := &recordingMailer{}
	dispatcher := NewDispatcher(mailer, 10*time.Millisecond, zerolog.Nop())

	order := &model.Order{ID: uuid.New()}

	start := time.Now()
	dispatcher.Enqueue(order, "buyer@example.com")

	// Enqueue returns immediately; the send happens after the delay
	assert.Empty(t, mailer.recipients())

	dispatcher.Wait()
	require.Equal(t, []string{"buyer@example.com"}, mailer.recipients())
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestDispatcher_SendFailureIsSwallowed(t *testing.T) {
	mailer := &recordingMailer{sendErr: errors.New("smtp unavailable")}
	dispatcher := NewDispatcher(mailer, time.Millisecond, zerolog.Nop())

	dispatcher.Enqueue(&model.Order{ID: uuid.New()}, "buyer@example.com")

	// Wait returns normally even though the send failed
	dispatcher.Wait()
	assert.Empty(t, mailer.recipients())
}

func TestDispatcher_MultipleEnqueues(t *testing.T) {
	mailer := &recordingMailer{}
	dispatcher := NewDispatcher(mailer, time.Millisecond, zerolog.Nop())

	for i := 0; i < 5; i++ {
		dispatcher.Enqueue(&model.Order{ID: uuid.New()}, "buyer@example.com")
	}

	dispatcher.Wait()
	assert.Len(t, mailer.recipients(), 5)
}

func TestLogMailer(t *testing.T) {
	mailer := NewLogMailer(zerolog.Nop())
	err := mailer.SendOrderCreated(context.Background(), &model.Order{ID: uuid.New()}, "buyer@example.com")
	assert.NoError(t, err)
}
