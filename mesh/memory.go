package mesh

import (
	"github.com/notargets/gomdal/types"
)

// MemoryDataset2D keeps all values of a 2D dataset in memory, vectors interleaved as (x,y)
type MemoryDataset2D struct {
	DatasetBase
	values []float64
	active []int // One flag per face, nil when the dataset has no active flags
}

// NewMemoryDataset2D sizes the value storage from the group's mesh, all values start at zero
func NewMemoryDataset2D(g *DatasetGroup, hasActiveFlag bool) (md *MemoryDataset2D) {
	md = &MemoryDataset2D{DatasetBase: NewDatasetBase(g)}
	n := md.ValuesCount()
	if !g.IsScalar() {
		n *= 2
	}
	md.values = make([]float64, n)
	if hasActiveFlag && g.Mesh() != nil {
		md.active = make([]int, g.Mesh().FacesCount())
		for i := range md.active {
			md.active[i] = 1
		}
		md.SetSupportsActiveFlag(true)
	}
	return
}

// Values exposes the backing store, len is ValuesCount or 2*ValuesCount for vectors
func (md *MemoryDataset2D) Values() []float64 { return md.values }

func (md *MemoryDataset2D) Active() []int { return md.active }

func (md *MemoryDataset2D) SetValues(vals []float64) error {
	if len(vals) != len(md.values) {
		return types.Errorf(types.ErrInvalidData, "expected %d values, got %d", len(md.values), len(vals))
	}
	copy(md.values, vals)
	return nil
}

func (md *MemoryDataset2D) SetActive(active []int) error {
	if !md.SupportsActiveFlag() {
		return types.Errorf(types.ErrIncompatibleDataset, "dataset has no active flags")
	}
	if len(active) != len(md.active) {
		return types.Errorf(types.ErrInvalidData, "expected %d active flags, got %d", len(md.active), len(active))
	}
	copy(md.active, active)
	return nil
}

func (md *MemoryDataset2D) ScalarData(indexStart, count int, buffer []float64) (int, error) {
	if !md.group.IsScalar() {
		return 0, nil
	}
	n := CopyCount(indexStart, count, md.ValuesCount())
	copy(buffer[:n], md.values[indexStart:indexStart+n])
	return n, nil
}

func (md *MemoryDataset2D) VectorData(indexStart, count int, buffer []float64) (int, error) {
	if md.group.IsScalar() {
		return 0, nil
	}
	n := CopyCount(indexStart, count, md.ValuesCount())
	copy(buffer[:2*n], md.values[2*indexStart:2*(indexStart+n)])
	return n, nil
}

func (md *MemoryDataset2D) ActiveData(indexStart, count int, buffer []int) (int, error) {
	if !md.SupportsActiveFlag() {
		return 0, nil
	}
	n := CopyCount(indexStart, count, len(md.active))
	copy(buffer[:n], md.active[indexStart:indexStart+n])
	return n, nil
}

// AddBedElevationDatasetGroup attaches the vertex elevations as a scalar, time independent group
func AddBedElevationDatasetGroup(m *Mesh) (g *DatasetGroup) {
	if m.VerticesCount() == 0 {
		return nil
	}
	g = NewDatasetGroup(m.DriverName(), m.URI(), "Bed Elevation", types.DataOnVertices2D, true)
	m.AddDatasetGroup(g)
	g.StartEditing()
	ds := NewMemoryDataset2D(g, false)
	for i, v := range m.Vertices {
		ds.values[i] = v.Z
	}
	if st, err := CalculateDatasetStatistics(ds); err == nil {
		ds.SetStatistics(st)
	}
	_ = g.AddDataset(ds)
	g.SetStatistics(CalculateGroupStatistics(g))
	g.StopEditing()
	return
}
