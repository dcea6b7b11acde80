package trace

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/trafficsim/pkg/core"
)

func TestRecorder_WritesReadableStream(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	rec.OnSimulationStarted("run-1")
	rec.OnArrival(core.East, 2)
	rec.OnQueueChanged(core.East, 2)
	rec.OnLightChanged(core.East, core.Green)
	rec.OnCarPassing(core.East)
	rec.OnPhaseSkipped(core.South, 1)
	rec.OnSimulationStopped("run-1")

	require.NoError(t, rec.Err())
	assert.Equal(t, uint64(7), rec.Count())

	records, err := ReadAll(&buf)
	require.NoError(t, err)
	require.Len(t, records, 7)

	for i, r := range records {
		assert.Equal(t, uint64(i+1), r.Seq)
		assert.False(t, r.Time.IsZero())
	}

	assert.Equal(t, "simulation_started", records[0].Kind)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.Empty(t, records[0].Direction)
	assert.Empty(t, records[6].Direction)
	assert.Equal(t, "GREEN", records[3].State)
	assert.Equal(t, "East", records[4].Direction)

	arrivals := Filter(records, core.Arrival)
	require.Len(t, arrivals, 1)
	assert.Equal(t, 2, arrivals[0].Count)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRecorder_KeepsFirstError(t *testing.T) {
	rec := NewRecorder(failingWriter{})
	rec.OnCarPassing(core.North)
	rec.OnCarPassing(core.North)

	require.Error(t, rec.Err())
	assert.Contains(t, rec.Err().Error(), "trace record 1")
	assert.Equal(t, uint64(1), rec.Count())
}

func TestReadAll_Corrupt(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	rec.OnLightChanged(core.West, core.Red)

	// 0xc1 is never used by msgpack
	buf.WriteByte(0xc1)

	records, err := ReadAll(&buf)
	assert.Error(t, err)
	assert.Len(t, records, 1)
}
