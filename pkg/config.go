package evtdata

import (
	"encoding/json"
	"fmt"

	"github.com/next-exp/hdf5-go"
)

type Configuration struct {
	MaxEvents   int    `json:"max_events"`
	Verbosity   int    `json:"verbosity"`
	FileIn      string `json:"file_in"`
	FileOut     string `json:"file_out"`
	Skip        int    `json:"skip"`
	StrictMagic bool   `json:"strict_magic"`
	WriteData   bool   `json:"write_data"`

	NoDB      bool   `json:"no_db"`
	Host      string `json:"host"`
	User      string `json:"user"`
	Passwd    string `json:"pass"`
	DBName    string `json:"dbname"`
	RunNumber int    `json:"run_number"`

	PadMapFile    string `json:"pad_map_file"`
	PedestalsFile string `json:"pedestals_file"`
	SubtractPeds  bool   `json:"subtract_peds"`

	UseBlosc         bool           `json:"use_blosc"`
	CompressionLevel int            `json:"compression_level"`
	BloscAlgorithm   BloscAlgorithm `json:"blosc_algorithm"`
	BloscShuffle     BloscShuffle   `json:"blosc_shuffle"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// BloscAlgorithm selects the Blosc compressor used by the HDF5 writer. It
// marshals to/from the algorithm name in JSON configuration files.
type BloscAlgorithm struct {
	Name string
	Code hdf5.BloscFilter
}

var bloscAlgorithmStrings = []string{"blosclz", "lz4", "lz4hc", "snappy", "zlib", "zstd"}

func (b BloscAlgorithm) String() string {
	if b.Code < hdf5.BLOSC_BLOSCLZ || b.Code > hdf5.BLOSC_ZSTD {
		return "UNKNOWN"
	}
	return bloscAlgorithmStrings[b.Code]
}

func (b BloscAlgorithm) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BloscAlgorithm) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range bloscAlgorithmStrings {
		if v == s {
			*b = BloscAlgorithm{Name: s, Code: hdf5.BloscFilter(i)}
			return nil
		}
	}
	return fmt.Errorf("invalid BloscAlgorithm: %s", s)
}

// BloscShuffle selects the Blosc shuffle mode.
type BloscShuffle struct {
	Name string
	Code hdf5.BloscShuffle
}

var bloscShuffleStrings = []string{"no-shuffle", "byte-shuffle", "bit-shuffle"}

func (b BloscShuffle) String() string {
	if b.Code < hdf5.BLOSC_NOSHUFFLE || b.Code > hdf5.BLOSC_BITSHUFFLE {
		return "UNKNOWN"
	}
	return bloscShuffleStrings[b.Code]
}

func (b BloscShuffle) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BloscShuffle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range bloscShuffleStrings {
		if v == s {
			*b = BloscShuffle{Name: s, Code: hdf5.BloscShuffle(i)}
			return nil
		}
	}
	return fmt.Errorf("invalid BloscShuffle: %s", s)
}
