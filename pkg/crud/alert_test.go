package crud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_SuppressesRepeatInsideWindow(t *testing.T) {
	clock := newFakeClock()
	n := NewNotifier(clock.Now, DuplicateWindow)

	require.True(t, n.Show(SeverityError, "Duplicate code"))
	clock.Advance(time.Second)
	assert.False(t, n.Show(SeverityError, "Duplicate code"))
	assert.True(t, n.Show(SeverityError, "another message"))

	clock.Advance(DuplicateWindow)
	assert.True(t, n.Show(SeverityError, "another message"))
}

func TestNotifier_DismissForgetsLastMessage(t *testing.T) {
	clock := newFakeClock()
	n := NewNotifier(clock.Now, DuplicateWindow)

	require.True(t, n.Show(SeverityWarning, "same"))
	n.Dismiss()
	assert.Nil(t, n.Current())
	assert.True(t, n.Show(SeverityWarning, "same"))
}

func TestNotifier_AlertExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	n := NewNotifier(clock.Now, 0)

	n.Show(SeveritySuccess, "saved")
	a := n.Current()
	require.NotNil(t, a)
	assert.Equal(t, AlertTTL, a.DismissAfter)

	clock.Advance(AlertTTL - time.Millisecond)
	assert.NotNil(t, n.Current())
	clock.Advance(time.Millisecond)
	assert.Nil(t, n.Current())
}

func TestNotifier_WithoutWindowRepeatsAreShown(t *testing.T) {
	n := NewNotifier(nil, 0)
	assert.True(t, n.Show(SeverityInfo, "x"))
	assert.True(t, n.Show(SeverityInfo, "x"))
}
