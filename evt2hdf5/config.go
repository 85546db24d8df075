package main

import (
	"encoding/json"
	"fmt"
	"os"

	evtdata "github.com/attpc/evtdata_go/pkg"
)

func LoadConfiguration(filename string) (evtdata.Configuration, error) {
	var config evtdata.Configuration

	// Set default values
	config.MaxEvents = 1000000000
	config.Verbosity = 0
	config.Skip = 0
	config.StrictMagic = false
	config.WriteData = true
	config.NoDB = true
	config.Host = "localhost"
	config.User = "attpcreader"
	config.Passwd = "readonly"
	config.DBName = "ATTPC"
	config.RunNumber = 0
	config.SubtractPeds = false
	config.UseBlosc = false
	config.CompressionLevel = 4

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config evtdata.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Strict magic: %t", config.StrictMagic), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Pad map file: %s", config.PadMapFile), "config")
	logger.Info(fmt.Sprintf("Pedestals file: %s", config.PedestalsFile), "config")
	logger.Info(fmt.Sprintf("Subtract pedestals: %t", config.SubtractPeds), "config")
	logger.Info(fmt.Sprintf("Use blosc: %t", config.UseBlosc), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Blosc algorithm: %s", config.BloscAlgorithm), "config")
	logger.Info(fmt.Sprintf("Blosc shuffle: %s", config.BloscShuffle), "config")
}
