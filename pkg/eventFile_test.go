package evtdata

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testSample struct {
	tb  uint16
	val int
}

func encodeTrace(pad uint16, samples []testSample) []byte {
	var buf bytes.Buffer
	header := TraceHeaderStruct{
		TraceSize: uint32(10 + 3*len(samples)),
		CoBo:      1,
		AsAd:      2,
		Aget:      3,
		Channel:   4,
		Pad:       pad,
	}
	binary.Write(&buf, binary.LittleEndian, header)
	for _, s := range samples {
		packed := PackSample(s.tb, s.val)
		buf.Write([]byte{byte(packed), byte(packed >> 8), byte(packed >> 16)})
	}
	return buf.Bytes()
}

func encodeEvent(id uint32, timestamp uint64, traces ...[]byte) []byte {
	var buf bytes.Buffer
	size := 19
	for _, trace := range traces {
		size += len(trace)
	}
	header := EventHeaderStruct{
		Magic:     0xEE,
		EventSize: uint32(size),
		EventId:   id,
		Timestamp: timestamp,
		NumTraces: uint16(len(traces)),
	}
	binary.Write(&buf, binary.LittleEndian, header)
	for _, trace := range traces {
		buf.Write(trace)
	}
	return buf.Bytes()
}

func writeTestFile(t *testing.T, magic uint32, events ...[]byte) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "run.evt")
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, magic)
	for _, event := range events {
		buf.Write(event)
	}
	require.NoError(t, os.WriteFile(name, buf.Bytes(), 0644))
	return name
}

// threeEventFile makes a file with three events of one trace each.
func threeEventFile(t *testing.T) string {
	t.Helper()
	return writeTestFile(t, FileMagic,
		encodeEvent(100, 10, encodeTrace(5, []testSample{{3, 7}, {4, 9}})),
		encodeEvent(101, 20, encodeTrace(6, []testSample{{0, -12}})),
		encodeEvent(102, 30, encodeTrace(7, nil)),
	)
}

func TestOpenEventFileBuildsLookup(t *testing.T) {
	name := threeEventFile(t)
	f, err := OpenEventFile(name)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, 3, f.NumEvents())
	// Event sizes are 19+10+6, 19+10+3 and 19+10 bytes.
	require.Equal(t, []int64{4, 39, 71}, f.Lookup())
	require.Equal(t, 0, f.CurrentEvent())

	// The table is saved next to the data file.
	_, err = os.Stat(lookupFilename(name))
	require.NoError(t, err)
}

func TestOpenEventFileUsesSidecar(t *testing.T) {
	name := threeEventFile(t)
	f, err := OpenEventFile(name)
	require.NoError(t, err)
	lookup := append([]int64(nil), f.Lookup()...)
	require.NoError(t, f.Close())

	// A reopened file trusts the sidecar table.
	require.NoError(t, os.WriteFile(lookupFilename(name), []byte("4\n"), 0644))
	f, err = OpenEventFile(name)
	require.NoError(t, err)
	require.Equal(t, 1, f.NumEvents())
	require.NoError(t, f.Close())

	os.Remove(lookupFilename(name))
	f, err = OpenEventFile(name)
	require.NoError(t, err)
	require.Equal(t, lookup, f.Lookup())
	require.NoError(t, f.Close())
}

func TestReadEventByNumber(t *testing.T) {
	f, err := OpenEventFile(threeEventFile(t))
	require.NoError(t, err)
	defer f.Close()

	event, err := f.ReadEventByNumber(1)
	require.NoError(t, err)
	require.Equal(t, uint32(101), event.EventId)
	require.Equal(t, uint64(20), event.Timestamp)
	require.Len(t, event.Traces, 1)

	trace := event.Traces[0]
	require.Equal(t, uint8(1), trace.CoBo)
	require.Equal(t, uint16(6), trace.Pad)
	require.Len(t, trace.Data, NumTimeBuckets)
	require.Equal(t, int16(-12), trace.Data[0])
	require.Equal(t, int16(0), trace.Data[1])

	event, err = f.ReadEventByNumber(0)
	require.NoError(t, err)
	require.Equal(t, uint32(100), event.EventId)
	require.Equal(t, int16(7), event.Traces[0].Data[3])
	require.Equal(t, int16(9), event.Traces[0].Data[4])
}

func TestReadEventByNumberOutOfRange(t *testing.T) {
	f, err := OpenEventFile(threeEventFile(t))
	require.NoError(t, err)
	defer f.Close()

	var oor *ErrOutOfRange
	_, err = f.ReadEventByNumber(-1)
	require.ErrorAs(t, err, &oor)
	_, err = f.ReadEventByNumber(3)
	require.ErrorAs(t, err, &oor)
	require.Equal(t, 3, oor.Index)
	require.Equal(t, 3, oor.NumEvents)

	// A failed read does not move the cursor.
	require.Equal(t, 0, f.CurrentEvent())
}

func TestReadNextPrevious(t *testing.T) {
	f, err := OpenEventFile(threeEventFile(t))
	require.NoError(t, err)
	defer f.Close()

	var oor *ErrOutOfRange
	_, err = f.ReadPrevious()
	require.ErrorAs(t, err, &oor)

	event, err := f.ReadNext()
	require.NoError(t, err)
	require.Equal(t, uint32(101), event.EventId)

	event, err = f.ReadNext()
	require.NoError(t, err)
	require.Equal(t, uint32(102), event.EventId)

	_, err = f.ReadNext()
	require.ErrorAs(t, err, &oor)
	require.Equal(t, 2, f.CurrentEvent())

	event, err = f.ReadPrevious()
	require.NoError(t, err)
	require.Equal(t, uint32(101), event.EventId)

	event, err = f.ReadCurrent()
	require.NoError(t, err)
	require.Equal(t, uint32(101), event.EventId)
}

func TestAllIsRestartable(t *testing.T) {
	f, err := OpenEventFile(threeEventFile(t))
	require.NoError(t, err)
	defer f.Close()

	collect := func() []uint32 {
		var ids []uint32
		for event := range f.All() {
			ids = append(ids, event.EventId)
		}
		return ids
	}
	require.Equal(t, []uint32{100, 101, 102}, collect())
	require.Equal(t, []uint32{100, 101, 102}, collect())
}

func TestSlice(t *testing.T) {
	f, err := OpenEventFile(threeEventFile(t))
	require.NoError(t, err)
	defer f.Close()

	events, err := f.Slice(0, 5, 2)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, uint32(100), events[0].EventId)
	require.Equal(t, uint32(102), events[1].EventId)
	require.Nil(t, events[2])

	events, err = f.Slice(2, -1, -1)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, uint32(102), events[0].EventId)
	require.Equal(t, uint32(100), events[2].EventId)

	_, err = f.Slice(0, 3, 0)
	require.Error(t, err)
}

func TestBadFileMagicTolerated(t *testing.T) {
	name := writeTestFile(t, 0xdeadbeef,
		encodeEvent(100, 10, encodeTrace(5, []testSample{{3, 7}})))

	f, err := OpenEventFile(name)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, 1, f.NumEvents())
}

func TestBadFileMagicStrict(t *testing.T) {
	config := GetConfiguration()
	config.StrictMagic = true
	SetConfiguration(config)
	defer SetConfiguration(Configuration{})

	name := writeTestFile(t, 0xdeadbeef,
		encodeEvent(100, 10, encodeTrace(5, []testSample{{3, 7}})))

	var posErr *ErrFilePos
	_, err := OpenEventFile(name)
	require.ErrorAs(t, err, &posErr)
	require.Equal(t, int64(0), posErr.Offset)
}

func TestCorruptEventMagic(t *testing.T) {
	good := encodeEvent(100, 10, encodeTrace(5, []testSample{{3, 7}}))
	bad := encodeEvent(101, 20, encodeTrace(6, nil))
	bad[0] = 0x42
	name := writeTestFile(t, FileMagic, good, bad)

	var posErr *ErrFilePos
	_, err := OpenEventFile(name)
	require.ErrorAs(t, err, &posErr)
	require.Equal(t, int64(4+len(good)), posErr.Offset)
}

func TestReadEventAtWrongOffset(t *testing.T) {
	f, err := OpenEventFile(threeEventFile(t))
	require.NoError(t, err)
	defer f.Close()

	offset := f.Lookup()[0] + 1
	var posErr *ErrFilePos
	_, err = f.readEventAt(offset)
	require.ErrorAs(t, err, &posErr)
	require.Equal(t, offset, posErr.Offset)

	// The stream position is restored so the caller can retry.
	pos, err := f.file.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, offset, pos)
}
