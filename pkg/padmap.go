package evtdata

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadPadMap loads a pad mapping from a CSV file with columns
// cobo, asad, aget, channel, pad.
func LoadPadMap(filename string) (map[HWAddress]uint16, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	padMap := make(map[HWAddress]uint16)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		vals, err := parseCSVInts(scanner.Text(), 5)
		if err != nil {
			return nil, fmt.Errorf("error parsing pad map %s: %w", filename, err)
		}
		addr := HWAddress{
			CoBo:    uint8(vals[0]),
			AsAd:    uint8(vals[1]),
			Aget:    uint8(vals[2]),
			Channel: uint8(vals[3]),
		}
		padMap[addr] = uint16(vals[4])
	}
	return padMap, scanner.Err()
}

// LoadPedestals loads per-channel pedestals from a CSV file with columns
// cobo, asad, aget, channel, pedestal. The pedestal applies to every time
// bucket of the channel.
func LoadPedestals(filename string) (map[HWAddress]int16, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	pedestals := make(map[HWAddress]int16)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		vals, err := parseCSVInts(scanner.Text(), 5)
		if err != nil {
			return nil, fmt.Errorf("error parsing pedestals %s: %w", filename, err)
		}
		addr := HWAddress{
			CoBo:    uint8(vals[0]),
			AsAd:    uint8(vals[1]),
			Aget:    uint8(vals[2]),
			Channel: uint8(vals[3]),
		}
		pedestals[addr] = int16(vals[4])
	}
	return pedestals, scanner.Err()
}

// parseCSVInts splits a comma-separated line and truncates the first n
// fields to integers. Values may be written as floats.
func parseCSVInts(line string, n int) ([]int, error) {
	subs := strings.Split(strings.TrimSpace(line), ",")
	if len(subs) < n {
		return nil, fmt.Errorf("expected %d fields, got %d", n, len(subs))
	}
	vals := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(subs[i]), 64)
		if err != nil {
			return nil, err
		}
		vals[i] = int(v)
	}
	return vals, nil
}
