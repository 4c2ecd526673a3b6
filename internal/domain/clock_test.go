package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestSetClock(t *testing.T) {
	fixed := time.Date(2024, 4, 27, 6, 0, 0, 0, time.UTC)
	fake := clockwork.NewFakeClockAt(fixed)
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, fixed, Now())
	fake.Advance(90 * time.Second)
	assert.Equal(t, 90*time.Second, Since(fixed))
}
