package evtdata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileMagic is the little-endian magic number at the start of every merged
// event file.
const FileMagic uint32 = 0x6e7ef11e

// eventMagic marks the first byte of every event record.
const eventMagic byte = 0xEE

// LookupExt is the extension of the sidecar file holding the lookup table.
const LookupExt = ".lookup"

// EventHeaderStruct is the fixed-size record header preceding the traces.
type EventHeaderStruct struct {
	Magic     uint8
	EventSize uint32
	EventId   uint32
	Timestamp uint64
	NumTraces uint16
}

// TraceHeaderStruct is the fixed-size header of one trace sub-record.
type TraceHeaderStruct struct {
	TraceSize uint32
	CoBo      uint8
	AsAd      uint8
	Aget      uint8
	Channel   uint8
	Pad       uint16
}

// EventFile reads merged event files. Opening a file indexes it: the lookup
// table (one byte offset per event) is loaded from the sidecar file if one
// exists, otherwise it is built by scanning the file and saved alongside it.
//
// The reader owns one file handle and one cursor; concurrent use needs
// external synchronization. The lookup table is immutable once built.
type EventFile struct {
	file    *os.File
	lookup  []int64
	current int
}

// OpenEventFile opens and indexes an event file. A wrong file magic number is
// logged but tolerated, matching the legacy readers, unless StrictMagic is
// set in the configuration.
func OpenEventFile(filename string) (*EventFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}

	f := &EventFile{file: file}

	var magic uint32
	if err := binary.Read(file, binary.LittleEndian, &magic); err != nil {
		file.Close()
		return nil, fmt.Errorf("error reading magic number of %s: %w", filename, err)
	}
	if magic != FileMagic {
		if configuration.StrictMagic {
			file.Close()
			return nil, &ErrFilePos{
				Filename: filename,
				Offset:   0,
				Details:  fmt.Sprintf("file magic number 0x%08x, expected 0x%08x", magic, FileMagic),
			}
		}
		logger.Error(fmt.Sprintf("bad file %s: magic number is 0x%08x, expected 0x%08x", filename, magic, FileMagic))
	}

	if err := f.loadLookupTable(lookupFilename(filename)); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			file.Close()
			return nil, err
		}
		if err := f.makeLookupTable(); err != nil {
			file.Close()
			return nil, err
		}
	}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Opened file %s with %d events", filename, len(f.lookup)), "eventFile")
	}
	return f, nil
}

// Close releases the file handle. The lookup table stays valid.
func (f *EventFile) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// NumEvents returns the number of indexed events.
func (f *EventFile) NumEvents() int {
	return len(f.lookup)
}

// Lookup returns the table of event byte offsets, in event-number order.
func (f *EventFile) Lookup() []int64 {
	return f.lookup
}

// CurrentEvent returns the event number the cursor points at.
func (f *EventFile) CurrentEvent() int {
	return f.current
}

// makeLookupTable scans the file and records the byte offset of every event.
// Each record starts with the event magic byte followed by its total size,
// which is also the distance to the next record. The table is saved to the
// sidecar file if none exists yet.
func (f *EventFile) makeLookupTable() error {
	if _, err := f.file.Seek(4, io.SeekStart); err != nil {
		return err
	}
	f.lookup = f.lookup[:0]

	pos := int64(4)
	magic := make([]byte, 1)
	for {
		if _, err := io.ReadFull(f.file, magic); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("error scanning for event at offset %d: %w", pos, err)
		}
		if magic[0] != eventMagic {
			return &ErrFilePos{
				Filename: f.file.Name(),
				Offset:   pos,
				Details:  fmt.Sprintf("bad magic number 0x%02x, expected 0x%02x", magic[0], eventMagic),
			}
		}
		f.lookup = append(f.lookup, pos)

		var size uint32
		if err := binary.Read(f.file, binary.LittleEndian, &size); err != nil {
			return fmt.Errorf("error reading event size at offset %d: %w", pos, err)
		}
		pos += int64(size)
		if _, err := f.file.Seek(pos, io.SeekStart); err != nil {
			return err
		}
	}

	if _, err := f.file.Seek(4, io.SeekStart); err != nil {
		return err
	}
	f.current = 0

	name := lookupFilename(f.file.Name())
	if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
		if err := f.writeLookupTable(name); err != nil {
			logger.Error(fmt.Sprintf("error writing lookup table %s: %v", name, err))
		}
	}
	return nil
}

// loadLookupTable reads a saved lookup table, one decimal offset per line.
// A missing file surfaces as fs.ErrNotExist so the caller can fall back to
// makeLookupTable.
func (f *EventFile) loadLookupTable(filename string) error {
	in, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer in.Close()

	f.lookup = f.lookup[:0]
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		offset, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return fmt.Errorf("error parsing lookup table %s: %w", filename, err)
		}
		f.lookup = append(f.lookup, offset)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading lookup table %s: %w", filename, err)
	}
	f.current = 0
	return nil
}

func (f *EventFile) writeLookupTable(filename string) error {
	out, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for _, offset := range f.lookup {
		fmt.Fprintf(w, "%d\n", offset)
	}
	return w.Flush()
}

// readEventAt decodes the event record starting at the given byte offset.
// If the record magic does not match, the stream position is restored to
// offset before returning, so the caller can retry at a corrected offset.
func (f *EventFile) readEventAt(offset int64) (*Event, error) {
	if _, err := f.file.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	var header EventHeaderStruct
	headerSize := binary.Size(header)
	headerBinary := make([]byte, headerSize)
	if _, err := io.ReadFull(f.file, headerBinary); err != nil {
		return nil, fmt.Errorf("error reading event header at offset %d: %w", offset, err)
	}
	binary.Read(bytes.NewReader(headerBinary), binary.LittleEndian, &header)

	if header.Magic != eventMagic {
		// This is not the beginning of an event. Seek back and fail.
		f.file.Seek(int64(-headerSize), io.SeekCurrent)
		return nil, &ErrFilePos{
			Filename: f.file.Name(),
			Offset:   offset,
			Details:  "event magic number was wrong",
		}
	}

	event := NewEvent(header.EventId, header.Timestamp)
	event.Traces = make([]Trace, header.NumTraces)

	var th TraceHeaderStruct
	thSize := binary.Size(th)
	thBinary := make([]byte, thSize)
	for n := 0; n < int(header.NumTraces); n++ {
		if _, err := io.ReadFull(f.file, thBinary); err != nil {
			return nil, fmt.Errorf("error reading header of trace %d in event %d: %w", n, header.EventId, err)
		}
		binary.Read(bytes.NewReader(thBinary), binary.LittleEndian, &th)

		numSamples := (int(th.TraceSize) - thSize) / 3
		if numSamples < 0 {
			return nil, &ErrFilePos{
				Filename: f.file.Name(),
				Offset:   offset,
				Details:  fmt.Sprintf("trace %d in event %d has bad size %d", n, header.EventId, th.TraceSize),
			}
		}
		raw := make([]byte, 3*numSamples)
		if _, err := io.ReadFull(f.file, raw); err != nil {
			return nil, fmt.Errorf("error reading samples of trace %d in event %d: %w", n, header.EventId, err)
		}

		packed := make([]uint32, numSamples)
		for i := range packed {
			packed[i] = uint32(raw[3*i]) | uint32(raw[3*i+1])<<8 | uint32(raw[3*i+2])<<16
		}

		event.Traces[n] = Trace{
			CoBo:    th.CoBo,
			AsAd:    th.AsAd,
			Aget:    th.Aget,
			Channel: th.Channel,
			Pad:     th.Pad,
			Data:    UnpackSamples(packed),
		}
	}
	return event, nil
}

// ReadEventByNumber reads the event with the given event number. The cursor
// moves to that event. Numbers outside the lookup table bounds return
// ErrOutOfRange without touching the cursor.
func (f *EventFile) ReadEventByNumber(num int) (*Event, error) {
	if num < 0 || num >= len(f.lookup) {
		if configuration.Verbosity > 0 {
			logger.Info(fmt.Sprintf("event number %d is outside the range of event numbers", num), "eventFile")
		}
		return nil, &ErrOutOfRange{Index: num, NumEvents: len(f.lookup)}
	}
	f.current = num
	return f.readEventAt(f.lookup[num])
}

// ReadCurrent reads the event the cursor points at.
func (f *EventFile) ReadCurrent() (*Event, error) {
	return f.ReadEventByNumber(f.current)
}

// ReadNext advances the cursor and reads. At the last event it reports
// ErrOutOfRange and leaves the cursor alone.
func (f *EventFile) ReadNext() (*Event, error) {
	if f.current+1 >= len(f.lookup) {
		if configuration.Verbosity > 0 {
			logger.Info("at last event", "eventFile")
		}
		return nil, &ErrOutOfRange{Index: f.current + 1, NumEvents: len(f.lookup)}
	}
	return f.ReadEventByNumber(f.current + 1)
}

// ReadPrevious moves the cursor back and reads. At the first event it reports
// ErrOutOfRange and leaves the cursor alone.
func (f *EventFile) ReadPrevious() (*Event, error) {
	if f.current-1 < 0 {
		if configuration.Verbosity > 0 {
			logger.Info("at first event", "eventFile")
		}
		return nil, &ErrOutOfRange{Index: f.current - 1, NumEvents: len(f.lookup)}
	}
	return f.ReadEventByNumber(f.current - 1)
}

// All returns an iterator over every event in event-number order. Starting
// the iteration resets the cursor to the first event, so the sequence is
// restartable.
func (f *EventFile) All() iter.Seq[*Event] {
	return func(yield func(*Event) bool) {
		f.current = 0
		for f.current < len(f.lookup) {
			event, err := f.readEventAt(f.lookup[f.current])
			if err != nil {
				logger.Error(fmt.Sprintf("error reading event %d: %v", f.current, err))
				return
			}
			f.current++
			if !yield(event) {
				return
			}
		}
	}
}

// Slice reads the events selected by (start, stop, step) over the event
// number domain. Out-of-range numbers produce nil entries, keeping the
// positional correspondence with the requested indices.
func (f *EventFile) Slice(start, stop, step int) ([]*Event, error) {
	if step == 0 {
		return nil, errors.New("slice step must not be zero")
	}
	var events []*Event
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		event, err := f.ReadEventByNumber(i)
		if err != nil {
			var oor *ErrOutOfRange
			if errors.As(err, &oor) {
				events = append(events, nil)
				continue
			}
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func lookupFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + LookupExt
}
