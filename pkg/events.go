package evtdata

import "fmt"

// NumPads is the number of readout pads on the pad plane.
const NumPads = 10240

// Trace holds the samples of one electronics channel, indexed by time bucket.
type Trace struct {
	CoBo    uint8
	AsAd    uint8
	Aget    uint8
	Channel uint8
	Pad     uint16
	Data    []int16 // NumTimeBuckets amplitudes
}

// Event is one merged event: identifier, DAQ timestamp and the traces in
// on-disk order.
type Event struct {
	EventId   uint32
	Timestamp uint64
	Traces    []Trace
}

func NewEvent(evtID uint32, timestamp uint64) *Event {
	return &Event{EventId: evtID, Timestamp: timestamp}
}

func (e *Event) String() string {
	return fmt.Sprintf("Event %d, timestamp %d.\nContains %d traces.", e.EventId, e.Timestamp, len(e.Traces))
}

// Hits returns the total activation of each pad, summed over all time
// buckets, as a NumPads-length slice indexed by pad number. When two traces
// carry the same pad number the later one wins. Traces with a pad number
// beyond the pad plane are skipped.
func (e *Event) Hits() []float64 {
	hits := make([]float64, NumPads)
	for _, trace := range e.Traces {
		if int(trace.Pad) >= NumPads {
			continue
		}
		sum := 0.0
		for _, val := range trace.Data {
			sum += float64(val)
		}
		hits[trace.Pad] = sum
	}
	return hits
}

// XYZs returns the scatter points of the event in space, one row
// (x, y, time bucket, amplitude) per nonzero sample. The pad-plane geometry
// is supplied by the caller as a pad-center lookup.
func (e *Event) XYZs(padCenter func(pad uint16) (x, y float64)) [][4]float64 {
	var points [][4]float64
	for _, trace := range e.Traces {
		x, y := padCenter(trace.Pad)
		for tb, val := range trace.Data {
			if val == 0 {
				continue
			}
			points = append(points, [4]float64{x, y, float64(tb), float64(val)})
		}
	}
	return points
}
