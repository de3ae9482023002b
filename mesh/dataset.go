package mesh

import (
	"time"
)

/*
Dataset is the set of values for all mesh elements at one point in time.

Every variant (2D on vertices, 2D on faces, 3D on volumes) implements the full set of windowed reads. A read
copies at most count elements starting at indexStart and returns how many were copied; reads that make no
sense for a variant, or windows starting past the end, copy nothing and return 0 without an error. Errors
are reserved for failures of the underlying file.

Vector reads write interleaved (x,y) pairs, so the buffer holds 2*count values.
*/
type Dataset interface {
	Group() *DatasetGroup
	Mesh() *Mesh
	Time() time.Duration
	SetTime(t time.Duration)
	IsValid() bool
	SetIsValid(valid bool)
	ValuesCount() int
	VolumesCount() int
	MaximumVerticalLevelsCount() int
	Statistics() Statistics
	SetStatistics(s Statistics)
	SupportsActiveFlag() bool

	ScalarData(indexStart, count int, buffer []float64) (int, error)
	VectorData(indexStart, count int, buffer []float64) (int, error)
	ActiveData(indexStart, count int, buffer []int) (int, error)
	VerticalLevelCountData(indexStart, count int, buffer []int) (int, error)
	VerticalLevelData(indexStart, count int, buffer []float64) (int, error)
	FaceToVolumeData(indexStart, count int, buffer []int) (int, error)
	ScalarVolumesData(indexStart, count int, buffer []float64) (int, error)
	VectorVolumesData(indexStart, count int, buffer []float64) (int, error)
}

// DatasetBase carries the state shared by all variants and the "nothing to copy" reads they don't override
type DatasetBase struct {
	group          *DatasetGroup
	time           time.Duration
	isValid        bool
	stats          Statistics
	supportsActive bool
	volumesCount   int
	maxLevels      int
}

func NewDatasetBase(g *DatasetGroup) DatasetBase {
	return DatasetBase{
		group:   g,
		isValid: true,
		stats:   NewStatistics(),
	}
}

func NewDataset3DBase(g *DatasetGroup, volumesCount, maximumLevelsCount int) (db DatasetBase) {
	db = NewDatasetBase(g)
	db.volumesCount = volumesCount
	db.maxLevels = maximumLevelsCount
	return
}

func (db *DatasetBase) Group() *DatasetGroup { return db.group }

func (db *DatasetBase) Mesh() *Mesh {
	if db.group == nil {
		return nil
	}
	return db.group.mesh
}

func (db *DatasetBase) Time() time.Duration { return db.time }

func (db *DatasetBase) SetTime(t time.Duration) { db.time = t }

func (db *DatasetBase) IsValid() bool { return db.isValid }

func (db *DatasetBase) SetIsValid(valid bool) { db.isValid = valid }

func (db *DatasetBase) Statistics() Statistics { return db.stats }

func (db *DatasetBase) SetStatistics(s Statistics) { db.stats = s }

func (db *DatasetBase) SupportsActiveFlag() bool { return db.supportsActive }

func (db *DatasetBase) SetSupportsActiveFlag(b bool) { db.supportsActive = b }

func (db *DatasetBase) VolumesCount() int { return db.volumesCount }

func (db *DatasetBase) MaximumVerticalLevelsCount() int { return db.maxLevels }

// ValuesCount follows the group location: vertices or faces for 2D, volumes for 3D
func (db *DatasetBase) ValuesCount() int {
	if db.group == nil {
		return 0
	}
	if db.group.location.Is2D() {
		if m := db.group.mesh; m != nil {
			return m.ValuesCount(db.group.location)
		}
		return 0
	}
	return db.volumesCount
}

func (db *DatasetBase) ScalarData(int, int, []float64) (int, error) { return 0, nil }

func (db *DatasetBase) VectorData(int, int, []float64) (int, error) { return 0, nil }

func (db *DatasetBase) ActiveData(int, int, []int) (int, error) { return 0, nil }

func (db *DatasetBase) VerticalLevelCountData(int, int, []int) (int, error) { return 0, nil }

func (db *DatasetBase) VerticalLevelData(int, int, []float64) (int, error) { return 0, nil }

func (db *DatasetBase) FaceToVolumeData(int, int, []int) (int, error) { return 0, nil }

func (db *DatasetBase) ScalarVolumesData(int, int, []float64) (int, error) { return 0, nil }

func (db *DatasetBase) VectorVolumesData(int, int, []float64) (int, error) { return 0, nil }

// CopyCount is the pagination rule shared by every windowed read: min(count, extent-indexStart), or 0
// when the window starts outside [0, extent)
func CopyCount(indexStart, count, extent int) int {
	if count < 1 || indexStart < 0 || indexStart >= extent {
		return 0
	}
	return min(count, extent-indexStart)
}
