package eventbus

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/org-console/pkg/logging"
)

type recordDeleted struct {
	kind string
	id   int64
}

type favoriteToggled struct {
	id string
}

func TestPublisher_DispatchesByArgumentType(t *testing.T) {
	publisher := NewEventPublisher(logging.DiscardLogger())

	var deleted []*recordDeleted
	publisher.Subscribe(func(e *recordDeleted) {
		deleted = append(deleted, e)
	})
	publisher.Subscribe(func(e *favoriteToggled) {
		t.Error("toggle handler must not receive delete events")
	})

	publisher.Publish(&recordDeleted{kind: "department", id: 7})

	require.Len(t, deleted, 1)
	assert.Equal(t, int64(7), deleted[0].id)
}

func TestPublisher_NoSubscribersIsLogged(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.DebugLevel)

	publisher := NewEventPublisher(log)
	publisher.Publish(&favoriteToggled{id: "tenant"})

	assert.Contains(t, logBuffer.String(), "no matching subscribers")
}

func TestPublisher_HandlerPanicIsRecovered(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.ErrorLevel)

	publisher := NewEventPublisher(log)
	called := false
	publisher.Subscribe(func(e *recordDeleted) {
		panic("boom")
	})
	publisher.Subscribe(func(e *recordDeleted) {
		called = true
	})

	require.NotPanics(t, func() {
		publisher.Publish(&recordDeleted{kind: "tenant", id: 1})
	})
	assert.True(t, called, "later handlers still run")
	assert.Contains(t, logBuffer.String(), "panicked")
	assert.Contains(t, logBuffer.String(), "boom")
}

func TestPublisher_UnsubscribeAndClear(t *testing.T) {
	publisher := NewEventPublisher(logging.DiscardLogger())
	var calls int
	handler := func(e *recordDeleted) { calls++ }
	publisher.Subscribe(handler)
	publisher.Subscribe(func(e *favoriteToggled) {})
	require.Equal(t, 2, publisher.SubscribersCount())

	publisher.Unsubscribe(handler)
	publisher.Publish(&recordDeleted{})
	assert.Zero(t, calls)
	assert.Equal(t, 1, publisher.SubscribersCount())

	publisher.Clear()
	assert.Zero(t, publisher.SubscribersCount())
}

func TestPublisher_ConcurrentPublish(t *testing.T) {
	publisher := NewEventPublisher(logging.DiscardLogger())
	var calls atomic.Int64
	publisher.Subscribe(func(e *recordDeleted) { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			publisher.Publish(&recordDeleted{kind: "position", id: id})
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, int64(50), calls.Load())
}

func TestMatchSignature(t *testing.T) {
	assert.True(t, MatchSignature(func(e *recordDeleted) {}, []interface{}{&recordDeleted{}}))
	assert.False(t, MatchSignature(func(e *recordDeleted) {}, []interface{}{&favoriteToggled{}}))
	assert.False(t, MatchSignature(func(e *recordDeleted) {}, []interface{}{}))
	assert.False(t, MatchSignature(func(e *recordDeleted) {}, []interface{}{&recordDeleted{}, &recordDeleted{}}))
	assert.True(t, MatchSignature(func(ctx context.Context) {}, []interface{}{context.Background()}))
	assert.True(t, MatchSignature(func(e *recordDeleted) {}, []interface{}{nil}))
	assert.False(t, MatchSignature("not a func", nil))
}
