package tuflowfv

import (
	"github.com/notargets/gomdal/cf"
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
)

/*
Dataset3D is one timestep of a layered dataset. Each face owns NL[face] stacked volumes; idx3 gives a face's
first volume and idx2 a volume's face, both 1-based on disk. layerface_Z holds the interface elevations of all
faces concatenated, NL[face]+1 per face.

Every read clamps its window to the extent of the array it serves and returns 0 when the array is absent or
the timestep has no data.
*/
type Dataset3D struct {
	mesh.DatasetBase
	src  *cf.SourceRef
	info cf.GroupInfo
	ts   int

	facesCount      int
	levelFacesCount int

	arrLevels, arrLevelZ, arrVolumeToFace, arrFaceToVolume int
}

func newDataset3D(g *mesh.DatasetGroup, ts int, info cf.GroupInfo, dims *cf.Dimensions, maxLevels int,
	src *cf.SourceRef) (ds *Dataset3D) {
	ds = &Dataset3D{
		DatasetBase:     mesh.NewDataset3DBase(g, dims.Size(cf.Volume3D), maxLevels),
		src:             src,
		info:            info,
		ts:              ts,
		facesCount:      dims.Size(cf.Face2D),
		levelFacesCount: dims.Size(cf.StackedFace3D),
		arrLevels:       src.ArrayID(arrayLevels),
		arrLevelZ:       src.ArrayID(arrayLevelZ),
		arrVolumeToFace: src.ArrayID(arrayVolumeToFace),
		arrFaceToVolume: src.ArrayID(arrayFaceToVolume),
	}
	ds.SetSupportsActiveFlag(true)
	return
}

// hasTimestep is false once ts runs past the file's records
func (ds *Dataset3D) hasTimestep() bool {
	return ds.ts < ds.info.Timesteps
}

func (ds *Dataset3D) VerticalLevelCountData(indexStart, count int, buffer []int) (n int, err error) {
	if ds.arrLevels == cf.NoArray {
		return 0, nil
	}
	if n = mesh.CopyCount(indexStart, count, ds.facesCount); n == 0 {
		return
	}
	vals, err := ds.src.ReadInts(ds.arrLevels, indexStart, n)
	if err != nil {
		return 0, types.Wrap(types.ErrInvalidData, err, "reading %s", arrayLevels)
	}
	copy(buffer, vals)
	return
}

// VerticalLevelData reads layer interface elevations of the current timestep
func (ds *Dataset3D) VerticalLevelData(indexStart, count int, buffer []float64) (n int, err error) {
	if !ds.hasTimestep() || ds.arrLevelZ == cf.NoArray {
		return 0, nil
	}
	if n = mesh.CopyCount(indexStart, count, ds.levelFacesCount); n == 0 {
		return
	}
	vals, err := ds.src.ReadDoublesAt(ds.arrLevelZ, ds.ts, indexStart, 1, n)
	if err != nil {
		return 0, types.Wrap(types.ErrInvalidData, err, "reading %s", arrayLevelZ)
	}
	copy(buffer, vals)
	return
}

// FaceToVolumeData gives each face's first (bottom-most index) volume, 0-based
func (ds *Dataset3D) FaceToVolumeData(indexStart, count int, buffer []int) (int, error) {
	return ds.readIndices(ds.arrFaceToVolume, arrayFaceToVolume, ds.facesCount, indexStart, count, buffer)
}

// VolumeToFaceData gives the face owning each volume, 0-based
func (ds *Dataset3D) VolumeToFaceData(indexStart, count int, buffer []int) (int, error) {
	return ds.readIndices(ds.arrVolumeToFace, arrayVolumeToFace, ds.VolumesCount(), indexStart, count, buffer)
}

func (ds *Dataset3D) readIndices(id int, name string, extent, indexStart, count int, buffer []int) (n int, err error) {
	if id == cf.NoArray {
		return 0, nil
	}
	if n = mesh.CopyCount(indexStart, count, extent); n == 0 {
		return
	}
	vals, err := ds.src.ReadInts(id, indexStart, n)
	if err != nil {
		return 0, types.Wrap(types.ErrInvalidData, err, "reading %s", name)
	}
	for i, v := range vals {
		buffer[i] = v - 1
	}
	return
}

func (ds *Dataset3D) ScalarVolumesData(indexStart, count int, buffer []float64) (n int, err error) {
	if ds.info.IsVector || !ds.hasTimestep() {
		return 0, nil
	}
	if n = mesh.CopyCount(indexStart, count, ds.VolumesCount()); n == 0 {
		return
	}
	vals, err := ds.readValues(ds.info.ArrayX, indexStart, n)
	if err != nil {
		return 0, err
	}
	copy(buffer, vals)
	return
}

// VectorVolumesData interleaves the x and y arrays, count is in pairs
func (ds *Dataset3D) VectorVolumesData(indexStart, count int, buffer []float64) (n int, err error) {
	if !ds.info.IsVector || !ds.hasTimestep() {
		return 0, nil
	}
	if n = mesh.CopyCount(indexStart, count, ds.VolumesCount()); n == 0 {
		return
	}
	var xs, ys []float64
	if xs, err = ds.readValues(ds.info.ArrayX, indexStart, n); err != nil {
		return 0, err
	}
	if ys, err = ds.readValues(ds.info.ArrayY, indexStart, n); err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		buffer[2*i], buffer[2*i+1] = xs[i], ys[i]
	}
	return
}

func (ds *Dataset3D) readValues(id, start, count int) (vals []float64, err error) {
	if ds.info.TimeDependent {
		vals, err = ds.src.ReadDoublesAt(id, ds.ts, start, 1, count)
	} else {
		vals, err = ds.src.ReadDoubles(id, start, count)
	}
	return vals, types.Wrap(types.ErrInvalidData, err, "reading timestep %d", ds.ts)
}

// ActiveData reports every requested face as active, the stat array is not interpreted
func (ds *Dataset3D) ActiveData(indexStart, count int, buffer []int) (n int, err error) {
	n = mesh.CopyCount(indexStart, count, ds.facesCount)
	for i := 0; i < n; i++ {
		buffer[i] = 1
	}
	return
}

func (ds *Dataset3D) Close() error {
	return ds.src.Close()
}
