package evtdata

import (
	"errors"
	"fmt"
	"sort"

	hdf5 "github.com/next-exp/hdf5-go"
)

type Writer struct {
	File            *hdf5.File
	Filename        string
	FirstEvt        bool
	RunGroup        *hdf5.Group
	RDGroup         *hdf5.Group
	SensorsGroup    *hdf5.Group
	EventTable      *hdf5.Dataset
	PadMappingTable *hdf5.Dataset
	Waveforms       *hdf5.Dataset
	EvtCounter      int
}

func NewWriter(filename string) *Writer {
	if configuration.UseBlosc {
		blosc_version, blosc_date, err := hdf5.RegisterBlosc()
		fmt.Println("Blosc version: ", blosc_version, " date: ", blosc_date)
		if err != nil {
			logger.Error(err.Error())
		}
	}

	writer := &Writer{}
	fmt.Println("hdf5writer: Creating file: ", filename)
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.RDGroup = createGroup(writer.File, "RD")
	writer.SensorsGroup = createGroup(writer.File, "Sensors")
	writer.EventTable = createTable(writer.RunGroup, "events", EventDataHDF5{})
	writer.PadMappingTable = createTable(writer.SensorsGroup, "DataPads", PadMappingHDF5{})
	writer.EvtCounter = 0
	return writer
}

func sortPadMapping(padMap map[HWAddress]uint16) []PadMappingHDF5 {
	// The array MUST be allocated at creation, if not, HDF5 will panic
	// doing appends will not work
	sorted := make([]PadMappingHDF5, len(padMap))
	count := 0
	for addr, pad := range padMap {
		entry := PadMappingHDF5{
			cobo:    int32(addr.CoBo),
			asad:    int32(addr.AsAd),
			aget:    int32(addr.Aget),
			channel: int32(addr.Channel),
			pad:     int32(pad),
		}
		sorted[count] = entry
		count++
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].pad < sorted[j].pad
	})
	return sorted
}

// WriteEvent appends one event to the file. Traces are scattered into a
// dense (NumPads x NumTimeBuckets) block by their pad number; pads without
// a trace stay zero.
func (w *Writer) WriteEvent(event *Event, padMap map[HWAddress]uint16) {
	evtData := EventDataHDF5{
		evt_number: int32(event.EventId),
		timestamp:  event.Timestamp,
	}

	if !w.FirstEvt {
		padsSorted := sortPadMapping(padMap)
		writeArrayToTable(w.PadMappingTable, &padsSorted, w.EvtCounter)
		w.Waveforms = create3dArray(w.RDGroup, "padrwf", NumPads, NumTimeBuckets)
		w.FirstEvt = true
	}

	writeEntryToTable(w.EventTable, evtData, w.EvtCounter)

	data := make([]int16, NumPads*NumTimeBuckets)
	for _, trace := range event.Traces {
		if int(trace.Pad) >= NumPads {
			fmt.Println("Pad out of range: ", trace.Pad)
			continue
		}
		copy(data[int(trace.Pad)*NumTimeBuckets:], trace.Data)
	}
	write3dArray(w.Waveforms, &data, w.EvtCounter, NumPads, NumTimeBuckets)

	w.EvtCounter++
}

func (w *Writer) Close() error {
	fmt.Println("Closing file hdf writer ", w.Filename)
	var errs []error

	if err := w.EventTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing event table: %w", err))
	}
	if err := w.PadMappingTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing pad mapping table: %w", err))
	}
	if w.Waveforms != nil {
		if err := w.Waveforms.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing waveforms: %w", err))
		}
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.RDGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing RD group: %w", err))
	}
	if err := w.SensorsGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing sensors group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
