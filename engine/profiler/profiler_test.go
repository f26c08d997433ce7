package profiler

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/trackball/engine/timer"
)

func TestProfilerLogsEveryInterval(t *testing.T) {
	clock := timer.NewManualClock(time.Unix(0, 0))
	logs := &bytes.Buffer{}
	p := NewProfiler(WithClock(clock.Now), WithLogger(log.New(logs, "", 0)), WithInterval(500*time.Millisecond))

	for i := 0; i < 9; i++ {
		clock.Advance(50 * time.Millisecond)
		assert.False(t, p.Tick(1))
	}
	assert.Empty(t, logs.String())

	clock.Advance(50 * time.Millisecond)
	assert.True(t, p.Tick(0))
	assert.Contains(t, logs.String(), "[Profiler] FPS: 20.00 | Redraws: 18.00/s")

	logs.Reset()
	clock.Advance(250 * time.Millisecond)
	assert.False(t, p.Tick(0))
	clock.Advance(250 * time.Millisecond)
	assert.True(t, p.Tick(0))
	assert.Contains(t, logs.String(), "FPS: 4.00 | Redraws: 0.00/s")
}

func TestProfilerIgnoresInvalidInterval(t *testing.T) {
	p := NewProfiler(WithInterval(-time.Second))
	assert.Equal(t, time.Second, p.updateInterval)
}
