package mesh

import (
	"math"

	"github.com/notargets/gomdal/types"
	"gonum.org/v1/gonum/floats"
)

// StatisticsChunkSize bounds how many values are held in memory while scanning a dataset
const StatisticsChunkSize = 1000

// Statistics is a value range, NaN on both ends when no value has been seen
type Statistics struct {
	Minimum float64
	Maximum float64
}

func NewStatistics() Statistics {
	return Statistics{math.NaN(), math.NaN()}
}

// Combine widens s to cover o, NaN ends are ignored
func (s Statistics) Combine(o Statistics) Statistics {
	return Statistics{
		Minimum: nanMin(s.Minimum, o.Minimum),
		Maximum: nanMax(s.Maximum, o.Maximum),
	}
}

func nanMin(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Min(a, b)
}

func nanMax(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Max(a, b)
}

/*
CalculateDatasetStatistics streams the dataset's values through Data in chunks of StatisticsChunkSize and
returns their range. Vector values contribute their magnitude. NaN values are skipped, so an all-NaN dataset
yields NaN for both ends. The scan stops at the first read failure.
*/
func CalculateDatasetStatistics(ds Dataset) (st Statistics, err error) {
	var (
		kind     types.DataType
		elements int
		g        = ds.Group()
	)
	st = NewStatistics()
	if g == nil {
		return st, types.Errorf(types.ErrIncompatibleDataset, "dataset has no group")
	}
	switch {
	case g.DataLocation() == types.DataOnVolumes3D && g.IsScalar():
		kind, elements = types.ScalarVolumesDouble, ds.VolumesCount()
	case g.DataLocation() == types.DataOnVolumes3D:
		kind, elements = types.Vector2DVolumesDouble, ds.VolumesCount()
	case g.IsScalar():
		kind, elements = types.ScalarDouble, ds.ValuesCount()
	default:
		kind, elements = types.Vector2DDouble, ds.ValuesCount()
	}
	var (
		comps   = kind.Components()
		buffer  = make([]float64, StatisticsChunkSize*comps)
		scratch = make([]float64, 0, StatisticsChunkSize)
	)
	for indexStart := 0; indexStart < elements; {
		count := min(StatisticsChunkSize, elements-indexStart)
		var n int
		if n, err = Data(ds, kind, indexStart, count, buffer); err != nil {
			return
		}
		if n == 0 {
			break
		}
		scratch = scratch[:0]
		for i := 0; i < n; i++ {
			var val float64
			if comps == 2 {
				val = math.Hypot(buffer[2*i], buffer[2*i+1])
			} else {
				val = buffer[i]
			}
			if !math.IsNaN(val) {
				scratch = append(scratch, val)
			}
		}
		if len(scratch) != 0 {
			st = st.Combine(Statistics{floats.Min(scratch), floats.Max(scratch)})
		}
		indexStart += n
	}
	return
}

// CalculateGroupStatistics combines the cached statistics of the group's datasets
func CalculateGroupStatistics(g *DatasetGroup) (st Statistics) {
	st = NewStatistics()
	for _, ds := range g.Datasets {
		st = st.Combine(ds.Statistics())
	}
	return
}
