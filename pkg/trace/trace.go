// Package trace records the notification stream of a simulation as a
// sequence of msgpack records, so that a run can be inspected or compared
// after the fact.
package trace

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/anggasct/trafficsim/pkg/core"
)

// Record is one traced notification
type Record struct {
	Seq       uint64    `msgpack:"seq"`
	Kind      string    `msgpack:"kind"`
	Direction string    `msgpack:"direction,omitempty"`
	State     string    `msgpack:"state,omitempty"`
	Count     int       `msgpack:"count,omitempty"`
	RunID     string    `msgpack:"run_id,omitempty"`
	Error     string    `msgpack:"error,omitempty"`
	Time      time.Time `msgpack:"time"`
}

// Recorder is an observer that encodes every notification to a writer.
// The first write error is kept and later records are dropped.
type Recorder struct {
	encoder *msgpack.Encoder
	seq     uint64
	err     error
	mutex   sync.Mutex
}

// NewRecorder creates a recorder writing to w
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{encoder: msgpack.NewEncoder(w)}
}

func (r *Recorder) write(rec Record) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.err != nil {
		return
	}
	r.seq++
	rec.Seq = r.seq
	rec.Time = time.Now()
	if err := r.encoder.Encode(&rec); err != nil {
		r.err = fmt.Errorf("trace record %d: %w", rec.Seq, err)
	}
}

// Err returns the first write error
func (r *Recorder) Err() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.err
}

// Count returns the number of records written
func (r *Recorder) Count() uint64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.seq
}

// OnLightChanged records a light transition
func (r *Recorder) OnLightChanged(direction core.Direction, state core.LightState) {
	r.write(Record{Kind: core.LightChanged.String(), Direction: direction.String(), State: state.String()})
}

// OnQueueChanged records a queue count
func (r *Recorder) OnQueueChanged(direction core.Direction, count int) {
	r.write(Record{Kind: core.QueueChanged.String(), Direction: direction.String(), Count: count})
}

// OnCarPassing records a drained car
func (r *Recorder) OnCarPassing(direction core.Direction) {
	r.write(Record{Kind: core.CarPassing.String(), Direction: direction.String()})
}

// OnArrival records arrivals
func (r *Recorder) OnArrival(direction core.Direction, added int) {
	r.write(Record{Kind: core.Arrival.String(), Direction: direction.String(), Count: added})
}

// OnPhaseSkipped records a lock timeout
func (r *Recorder) OnPhaseSkipped(direction core.Direction, consecutive int) {
	r.write(Record{Kind: core.PhaseSkipped.String(), Direction: direction.String(), Count: consecutive})
}

// OnSimulationStarted records the start of a run
func (r *Recorder) OnSimulationStarted(runID string) {
	r.write(Record{Kind: core.SimulationStarted.String(), RunID: runID})
}

// OnSimulationStopped records the end of a run
func (r *Recorder) OnSimulationStopped(runID string) {
	r.write(Record{Kind: core.SimulationStopped.String(), RunID: runID})
}

// OnError records an observer error
func (r *Recorder) OnError(err error) {
	r.write(Record{Kind: "error", Error: err.Error()})
}

// ReadAll decodes every record from r until EOF
func ReadAll(r io.Reader) ([]Record, error) {
	decoder := msgpack.NewDecoder(r)

	var records []Record
	for {
		var rec Record
		if err := decoder.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return records, fmt.Errorf("decoding trace record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
}

// Filter returns the records of one kind
func Filter(records []Record, kind core.EventKind) []Record {
	name := kind.String()
	var result []Record
	for _, rec := range records {
		if rec.Kind == name {
			result = append(result, rec)
		}
	}
	return result
}
