package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	evtdata "github.com/attpc/evtdata_go/pkg"
	"github.com/dustin/go-humanize"
)

var configuration evtdata.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	evtdata.SetConfiguration(configuration)
	evtdata.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	padMap, err := loadPadMap()
	if err != nil {
		logger.Error(err.Error())
		return
	}

	var pedestals map[evtdata.HWAddress]int16
	if configuration.SubtractPeds {
		pedestals, err = evtdata.LoadPedestals(configuration.PedestalsFile)
		if err != nil {
			message := fmt.Errorf("Error reading pedestals: %w", err)
			logger.Error(message.Error())
			return
		}
	}

	fileInfo, err := os.Stat(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening file: %w", err)
		logger.Error(message.Error())
		return
	}
	message := fmt.Sprintf("File size: %s", humanize.Bytes(uint64(fileInfo.Size())))
	logger.Info(message, "main")

	file, err := evtdata.OpenEventFile(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening event file: %w", err)
		logger.Error(message.Error())
		return
	}
	defer file.Close()

	message = fmt.Sprintf("Number of events: %d", file.NumEvents())
	logger.Info(message, "main")

	var writer *evtdata.Writer
	if configuration.WriteData {
		writer = evtdata.NewWriter(configuration.FileOut)
		defer writer.Close()
	}

	start := time.Now()
	evtCount := -1
	evtsProcessed := 0
	for event := range file.All() {
		evtCount++
		if evtCount < configuration.Skip {
			continue
		}
		if evtsProcessed >= configuration.MaxEvents {
			break
		}
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Processing event %d (id %d)", evtCount, event.EventId)
			logger.Info(message, "main")
		}
		if configuration.SubtractPeds {
			subtractPedestals(event, pedestals)
		}
		if configuration.WriteData {
			writer.WriteEvent(event, padMap)
		}
		evtsProcessed++
	}

	duration := time.Since(start)
	fmt.Println("Total events processed: ", evtsProcessed)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

// loadPadMap reads the pad mapping either from the run database or, in no-DB
// mode, from the CSV file named in the configuration.
func loadPadMap() (map[evtdata.HWAddress]uint16, error) {
	if configuration.NoDB {
		padMap, err := evtdata.LoadPadMap(configuration.PadMapFile)
		if err != nil {
			return nil, fmt.Errorf("Error reading pad map: %w", err)
		}
		return padMap, nil
	}

	dbConn, err := evtdata.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return nil, fmt.Errorf("Error connecting to database: %w", err)
	}
	defer dbConn.Close()

	padMap, err := evtdata.GetPadMapFromDB(dbConn, configuration.RunNumber)
	if err != nil {
		return nil, fmt.Errorf("Error reading pad map from DB: %w", err)
	}
	return padMap, nil
}

func subtractPedestals(event *evtdata.Event, pedestals map[evtdata.HWAddress]int16) {
	for n := range event.Traces {
		trace := &event.Traces[n]
		addr := evtdata.HWAddress{
			CoBo:    trace.CoBo,
			AsAd:    trace.AsAd,
			Aget:    trace.Aget,
			Channel: trace.Channel,
		}
		pedestal, ok := pedestals[addr]
		if !ok {
			continue
		}
		for i := range trace.Data {
			trace.Data[i] -= pedestal
		}
	}
}
