package cf

import (
	"math"
	"strconv"
	"strings"

	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
)

// GroupInfo is what the loader learnt about one dataset group before any dataset is built
type GroupInfo struct {
	Name          string
	Location      types.DataLocation
	IsVector      bool
	ArrayX        int // Array holding the scalar, or the x component
	ArrayY        int // NoArray for scalars
	FillX, FillY  float64
	TimeDependent bool
	Timesteps     int // 1 for time independent variables
}

// Dataset2D reads one timestep of a vertex or face dataset straight from the source
type Dataset2D struct {
	mesh.DatasetBase
	src  *SourceRef
	info GroupInfo
	ts   int
}

func NewDataset2D(g *mesh.DatasetGroup, ts int, info GroupInfo, src *SourceRef) *Dataset2D {
	return &Dataset2D{
		DatasetBase: mesh.NewDatasetBase(g),
		src:         src,
		info:        info,
		ts:          ts,
	}
}

func (ds *Dataset2D) ScalarData(indexStart, count int, buffer []float64) (n int, err error) {
	if ds.info.IsVector {
		return 0, nil
	}
	if n = mesh.CopyCount(indexStart, count, ds.ValuesCount()); n == 0 {
		return
	}
	vals, err := ds.read(ds.info.ArrayX, ds.info.FillX, indexStart, n)
	if err != nil {
		return 0, err
	}
	copy(buffer, vals)
	return
}

func (ds *Dataset2D) VectorData(indexStart, count int, buffer []float64) (n int, err error) {
	if !ds.info.IsVector {
		return 0, nil
	}
	if n = mesh.CopyCount(indexStart, count, ds.ValuesCount()); n == 0 {
		return
	}
	var xs, ys []float64
	if xs, err = ds.read(ds.info.ArrayX, ds.info.FillX, indexStart, n); err != nil {
		return 0, err
	}
	if ys, err = ds.read(ds.info.ArrayY, ds.info.FillY, indexStart, n); err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		buffer[2*i], buffer[2*i+1] = xs[i], ys[i]
	}
	return
}

func (ds *Dataset2D) read(id int, fill float64, start, count int) (vals []float64, err error) {
	if ds.info.TimeDependent {
		vals, err = ds.src.ReadDoublesAt(id, ds.ts, start, 1, count)
	} else {
		vals, err = ds.src.ReadDoubles(id, start, count)
	}
	if err != nil {
		return nil, types.Wrap(types.ErrInvalidData, err, "reading timestep %d", ds.ts)
	}
	if !math.IsNaN(fill) {
		for i, v := range vals {
			if v == fill {
				vals[i] = math.NaN()
			}
		}
	}
	return
}

// Close releases the dataset's hold on the source
func (ds *Dataset2D) Close() error {
	return ds.src.Close()
}

// FillValue parses the _FillValue attribute of an array, NaN when it has none
func FillValue(src ArraySource, id int) float64 {
	if id == NoArray {
		return math.NaN()
	}
	attr := strings.TrimSpace(src.Attribute("_FillValue", id))
	if attr == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(attr, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
