package mesh

import (
	"time"

	"github.com/notargets/gomdal/types"
)

// Metadata is one key/value pair, kept in insertion order
type Metadata struct {
	Key   string
	Value string
}

/*
DatasetGroup is a named, time ordered collection of datasets sharing one data location and scalar/vector type.
The group name is stored as the "name" metadata entry, which is always the first entry.
*/
type DatasetGroup struct {
	Datasets []Dataset

	mesh          *Mesh
	driverName    string
	uri           string
	location      types.DataLocation
	isScalar      bool
	metadata      []Metadata
	referenceTime time.Time
	stats         Statistics
	inEditMode    bool
}

func NewDatasetGroup(driverName, uri, name string, location types.DataLocation, isScalar bool) (g *DatasetGroup) {
	g = &DatasetGroup{
		driverName: driverName,
		uri:        uri,
		location:   location,
		isScalar:   isScalar,
		stats:      NewStatistics(),
	}
	g.SetMetadata("name", name)
	return
}

func (g *DatasetGroup) Mesh() *Mesh { return g.mesh }

func (g *DatasetGroup) DriverName() string { return g.driverName }

func (g *DatasetGroup) URI() string { return g.uri }

func (g *DatasetGroup) DataLocation() types.DataLocation { return g.location }

func (g *DatasetGroup) IsScalar() bool { return g.isScalar }

func (g *DatasetGroup) Name() string { return g.GetMetadata("name") }

func (g *DatasetGroup) SetName(name string) { g.SetMetadata("name", name) }

// Metadata returns the pairs in insertion order
func (g *DatasetGroup) Metadata() []Metadata { return g.metadata }

func (g *DatasetGroup) GetMetadata(key string) string {
	for _, md := range g.metadata {
		if md.Key == key {
			return md.Value
		}
	}
	return ""
}

// SetMetadata replaces the value of an existing key in place, otherwise appends
func (g *DatasetGroup) SetMetadata(key, val string) {
	for i := range g.metadata {
		if g.metadata[i].Key == key {
			g.metadata[i].Value = val
			return
		}
	}
	g.metadata = append(g.metadata, Metadata{Key: key, Value: val})
}

func (g *DatasetGroup) ReferenceTime() time.Time { return g.referenceTime }

func (g *DatasetGroup) SetReferenceTime(t time.Time) { g.referenceTime = t }

func (g *DatasetGroup) Statistics() Statistics { return g.stats }

func (g *DatasetGroup) SetStatistics(s Statistics) { g.stats = s }

func (g *DatasetGroup) IsInEditMode() bool { return g.inEditMode }

func (g *DatasetGroup) StartEditing() { g.inEditMode = true }

func (g *DatasetGroup) StopEditing() { g.inEditMode = false }

func (g *DatasetGroup) DatasetsCount() int { return len(g.Datasets) }

func (g *DatasetGroup) Dataset(index int) (Dataset, error) {
	if index < 0 || index >= len(g.Datasets) {
		return nil, types.Errorf(types.ErrIncompatibleDatasetGroup,
			"dataset index %d out of range [0,%d)", index, len(g.Datasets))
	}
	return g.Datasets[index], nil
}

// MaximumVerticalLevelsCount is the largest level count over the group's datasets, 0 for 2D groups
func (g *DatasetGroup) MaximumVerticalLevelsCount() (maxLevels int) {
	for _, ds := range g.Datasets {
		if n := ds.MaximumVerticalLevelsCount(); n > maxLevels {
			maxLevels = n
		}
	}
	return
}

// AddDataset appends ds while the group is in edit mode and ds has the shape the group demands
func (g *DatasetGroup) AddDataset(ds Dataset) error {
	if !g.inEditMode {
		return types.Errorf(types.ErrIncompatibleDataset, "group %q is not in edit mode", g.Name())
	}
	if ds.Group() != g {
		return types.Errorf(types.ErrIncompatibleDataset, "dataset belongs to another group")
	}
	switch {
	case g.location == types.DataOnVolumes3D:
		if ds.ValuesCount() != ds.VolumesCount() {
			return types.Errorf(types.ErrIncompatibleDataset,
				"3D dataset has %d values for %d volumes", ds.ValuesCount(), ds.VolumesCount())
		}
	case g.location.Is2D():
		if g.mesh == nil {
			return types.Errorf(types.ErrIncompatibleDatasetGroup, "group %q is not attached to a mesh", g.Name())
		}
		if want := g.mesh.ValuesCount(g.location); ds.ValuesCount() != want {
			return types.Errorf(types.ErrIncompatibleDataset,
				"dataset has %d values, %s needs %d", ds.ValuesCount(), g.location, want)
		}
	default:
		return types.Errorf(types.ErrIncompatibleDatasetGroup, "group %q has no valid location", g.Name())
	}
	g.Datasets = append(g.Datasets, ds)
	return nil
}
