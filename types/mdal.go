package types

import "strings"

// DataLocation is where the values of a dataset group live on the mesh
type DataLocation uint8

const (
	DataInvalidLocation DataLocation = iota
	DataOnVertices2D
	DataOnFaces2D
	DataOnVolumes3D
)

func (dl DataLocation) String() string {
	switch dl {
	case DataOnVertices2D:
		return "OnVertices2D"
	case DataOnFaces2D:
		return "OnFaces2D"
	case DataOnVolumes3D:
		return "OnVolumes3D"
	}
	return "InvalidLocation"
}

// Is2D reports whether the location is on the horizontal mesh
func (dl DataLocation) Is2D() bool {
	return dl == DataOnVertices2D || dl == DataOnFaces2D
}

var DataLocationNameMap = map[string]DataLocation{
	"vertices": DataOnVertices2D,
	"vertex":   DataOnVertices2D,
	"faces":    DataOnFaces2D,
	"face":     DataOnFaces2D,
	"volumes":  DataOnVolumes3D,
	"volume":   DataOnVolumes3D,
}

func NewDataLocation(label string) (dl DataLocation) {
	var ok bool
	if dl, ok = DataLocationNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		dl = DataInvalidLocation
	}
	return
}

// DataType is the kind of data requested from a dataset window
type DataType uint8

const (
	ScalarDouble DataType = iota
	Vector2DDouble
	ActiveInteger
	VerticalLevelCountInteger
	VerticalLevelDouble
	FaceIndexToVolumeIndexInteger
	ScalarVolumesDouble
	Vector2DVolumesDouble
)

func (dt DataType) String() string {
	return [...]string{
		"ScalarDouble",
		"Vector2DDouble",
		"ActiveInteger",
		"VerticalLevelCountInteger",
		"VerticalLevelDouble",
		"FaceIndexToVolumeIndexInteger",
		"ScalarVolumesDouble",
		"Vector2DVolumesDouble",
	}[dt]
}

// IsInteger reports whether the kind is read into an []int buffer, otherwise []float64
func (dt DataType) IsInteger() bool {
	switch dt {
	case ActiveInteger, VerticalLevelCountInteger, FaceIndexToVolumeIndexInteger:
		return true
	}
	return false
}

// Components is the number of buffer slots written per element
func (dt DataType) Components() int {
	if dt == Vector2DDouble || dt == Vector2DVolumesDouble {
		return 2
	}
	return 1
}

var DataTypeNameMap = map[string]DataType{
	"scalar":   ScalarDouble,
	"vector":   Vector2DDouble,
	"active":   ActiveInteger,
	"levels":   VerticalLevelCountInteger,
	"levelz":   VerticalLevelDouble,
	"f2v":      FaceIndexToVolumeIndexInteger,
	"scalar3d": ScalarVolumesDouble,
	"vector3d": Vector2DVolumesDouble,
}

// Capability is a bit set of what a driver can do
type Capability uint8

const (
	ReadMesh Capability = 1 << iota
	SaveMesh
	WriteDatasetsOnVertices2D
	WriteDatasetsOnFaces2D
	WriteDatasetsOnVolumes3D
	ReadDatasets
)

func (c Capability) Has(o Capability) bool {
	return c&o == o
}

func (c Capability) String() string {
	var names []string
	for _, cn := range []struct {
		c    Capability
		name string
	}{
		{ReadMesh, "ReadMesh"},
		{SaveMesh, "SaveMesh"},
		{WriteDatasetsOnVertices2D, "WriteDatasetsOnVertices2D"},
		{WriteDatasetsOnFaces2D, "WriteDatasetsOnFaces2D"},
		{WriteDatasetsOnVolumes3D, "WriteDatasetsOnVolumes3D"},
		{ReadDatasets, "ReadDatasets"},
	} {
		if c.Has(cn.c) {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, "|")
}

// WriteCapability maps a data location onto the capability needed to write datasets there
func WriteCapability(dl DataLocation) Capability {
	switch dl {
	case DataOnVertices2D:
		return WriteDatasetsOnVertices2D
	case DataOnFaces2D:
		return WriteDatasetsOnFaces2D
	case DataOnVolumes3D:
		return WriteDatasetsOnVolumes3D
	}
	return 0
}
