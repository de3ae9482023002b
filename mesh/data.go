package mesh

import (
	"github.com/notargets/gomdal/types"
)

/*
Data is the single windowed read entry point for every dataset variant.

The request is checked against the group before anything is read: the kind's scalar/vector expectation and
data location must match the group, and the window [indexStart, indexStart+count) must lie inside the total
the kind implies:

	ScalarDouble, Vector2DDouble       values count (vertices or faces)
	ActiveInteger                      faces count, only for datasets with active flags
	VerticalLevelCountInteger          faces count
	VerticalLevelDouble                faces count + volumes count
	FaceIndexToVolumeIndexInteger      faces count
	ScalarVolumesDouble                volumes count
	Vector2DVolumesDouble              2 * volumes count

buffer is []int for the integer kinds and []float64 otherwise, holding at least count values, 2*count for
vectors. A rejected request returns 0 and leaves buffer untouched; the returned count is otherwise the number of
elements the dataset copied, which may be less than count.
*/
func Data(ds Dataset, kind types.DataType, indexStart, count int, buffer any) (n int, err error) {
	if ds == nil || ds.Group() == nil || ds.Mesh() == nil {
		return 0, types.Errorf(types.ErrIncompatibleDataset, "dataset is not attached to a group and mesh")
	}
	var (
		g           = ds.Group()
		m           = ds.Mesh()
		loc         = g.DataLocation()
		valuesCount int
	)
	incompatible := func(reason string) (int, error) {
		return 0, types.Errorf(types.ErrIncompatibleDataset, "%s request on group %q: %s", kind, g.Name(), reason)
	}
	switch kind {
	case types.ScalarDouble, types.Vector2DDouble:
		if g.IsScalar() != (kind == types.ScalarDouble) {
			return incompatible("scalar/vector mismatch")
		}
		if !loc.Is2D() {
			return incompatible("group is not on 2D vertices or faces")
		}
		valuesCount = ds.ValuesCount()
	case types.ActiveInteger:
		if !ds.SupportsActiveFlag() {
			return incompatible("dataset has no active flags")
		}
		valuesCount = m.FacesCount()
	case types.VerticalLevelCountInteger, types.FaceIndexToVolumeIndexInteger:
		if loc != types.DataOnVolumes3D {
			return incompatible("group is not on 3D volumes")
		}
		valuesCount = m.FacesCount()
	case types.VerticalLevelDouble:
		if loc != types.DataOnVolumes3D {
			return incompatible("group is not on 3D volumes")
		}
		valuesCount = m.FacesCount() + ds.VolumesCount()
	case types.ScalarVolumesDouble, types.Vector2DVolumesDouble:
		if loc != types.DataOnVolumes3D {
			return incompatible("group is not on 3D volumes")
		}
		if g.IsScalar() != (kind == types.ScalarVolumesDouble) {
			return incompatible("scalar/vector mismatch")
		}
		valuesCount = ds.VolumesCount()
		if kind == types.Vector2DVolumesDouble {
			valuesCount *= 2
		}
	default:
		return 0, types.Errorf(types.ErrInvalidData, "unknown data type %d", kind)
	}

	if indexStart < 0 || count < 0 {
		return incompatible("negative window")
	}
	if valuesCount <= indexStart {
		return incompatible("start index past the end of the data")
	}
	if valuesCount < indexStart+count {
		return incompatible("window reaches past the end of the data")
	}

	need := count * kind.Components()
	if kind.IsInteger() {
		buf, ok := buffer.([]int)
		if !ok || len(buf) < need {
			return 0, types.Errorf(types.ErrInvalidData, "%s needs an []int buffer of %d values", kind, need)
		}
		switch kind {
		case types.ActiveInteger:
			return ds.ActiveData(indexStart, count, buf)
		case types.VerticalLevelCountInteger:
			return ds.VerticalLevelCountData(indexStart, count, buf)
		default:
			return ds.FaceToVolumeData(indexStart, count, buf)
		}
	}
	buf, ok := buffer.([]float64)
	if !ok || len(buf) < need {
		return 0, types.Errorf(types.ErrInvalidData, "%s needs a []float64 buffer of %d values", kind, need)
	}
	switch kind {
	case types.ScalarDouble:
		return ds.ScalarData(indexStart, count, buf)
	case types.Vector2DDouble:
		return ds.VectorData(indexStart, count, buf)
	case types.VerticalLevelDouble:
		return ds.VerticalLevelData(indexStart, count, buf)
	case types.ScalarVolumesDouble:
		return ds.ScalarVolumesData(indexStart, count, buf)
	default:
		return ds.VectorVolumesData(indexStart, count, buf)
	}
}
