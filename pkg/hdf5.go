package evtdata

import (
	"github.com/next-exp/hdf5-go"
)

type EventDataHDF5 struct {
	evt_number int32
	timestamp  uint64
}

type PadMappingHDF5 struct {
	cobo    int32
	asad    int32
	aget    int32
	channel int32
	pad     int32
}

func openFile(fname string) *hdf5.File {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		panic(err)
	}
	return f
}

func createGroup(file *hdf5.File, groupName string) *hdf5.Group {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		panic(err)
	}
	return g
}

// create3dArray makes an extendable (events x nPads x nSamples) int16
// dataset, chunked in blocks of 50 pads.
func create3dArray(group *hdf5.Group, name string, nPads int, nSamples int) *hdf5.Dataset {
	dims := []uint{0, 0, 0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims), uint(nPads), uint(nSamples)}
	chunks := []uint{1, 50, uint(nSamples)}
	return createArray(group, name, dims, maxDims, chunks)
}

func createArray(group *hdf5.Group, name string, dims []uint, maxDims []uint, chunks []uint) *hdf5.Dataset {
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(err)
	}

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}
	plist.SetChunk(chunks)

	if configuration.UseBlosc {
		hdf5.ConfigureBloscFilter(plist, configuration.BloscAlgorithm.Code,
			configuration.CompressionLevel, configuration.BloscShuffle.Code)
	} else {
		plist.SetDeflate(configuration.CompressionLevel)
	}

	dset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_INT16, fileSpace, plist)
	if err != nil {
		panic(err)
	}
	return dset
}

func createTable(group *hdf5.Group, name string, datatype interface{}) *hdf5.Dataset {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(err)
	}

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}
	plist.SetChunk([]uint{32768})

	if configuration.UseBlosc {
		hdf5.ConfigureBloscFilter(plist, configuration.BloscAlgorithm.Code,
			configuration.CompressionLevel, configuration.BloscShuffle.Code)
	} else {
		plist.SetDeflate(configuration.CompressionLevel)
	}

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		panic(err)
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		panic(err)
	}
	return dset
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, evtCounter int) {
	array := []T{data}
	writeArrayToTable(dataset, &array, evtCounter)
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, evtCounter int) {
	length := uint(len(*data))
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		panic(err)
	}

	entriesInFile := uint(evtCounter)
	dataset.Resize([]uint{entriesInFile + length})
	filespace := dataset.Space()

	filespace.SelectHyperslab([]uint{entriesInFile}, nil, []uint{length}, nil)

	if err := dataset.WriteSubset(data, dataspace, filespace); err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}

func write3dArray(dataset *hdf5.Dataset, data *[]int16, evtCounter int, nPads int, nSamples int) {
	dataset.Resize([]uint{uint(evtCounter) + 1, uint(nPads), uint(nSamples)})
	filespace := dataset.Space()

	start := []uint{uint(evtCounter), 0, 0}
	count := []uint{1, uint(nPads), uint(nSamples)}
	filespace.SelectHyperslab(start, nil, count, nil)

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		panic(err)
	}

	if err := dataset.WriteSubset(data, dataspace, filespace); err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}
