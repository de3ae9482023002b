// Package tuflowfv reads TUFLOW FV NetCDF results: a 2D cell mesh with optional vertically layered 3D output.
package tuflowfv

import (
	"github.com/notargets/gomdal/cf"
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
)

const (
	DriverName = "TUFLOWFV"
	LongName   = "TUFLOW FV"
	Filters    = "*.nc"
)

var dimensionNames = map[cf.DimensionType]string{
	cf.Face2D:            "NumCells2D",
	cf.MaxVerticesInFace: "MaxNumCellVert",
	cf.Vertex2D:          "NumVert2D",
	cf.Volume3D:          "NumCells3D",
	cf.StackedFace3D:     "NumLayerFaces3D",
	cf.Time:              "Time",
}

// Auxiliary arrays of the 3D layering
const (
	arrayLevels       = "NL"
	arrayLevelZ       = "layerface_Z"
	arrayActive       = "stat"
	arrayVolumeToFace = "idx2"
	arrayFaceToVolume = "idx3"
)

func NewDriver(opts cf.Options) *cf.Driver {
	return cf.NewDriver(DriverName, LongName, Filters, func() cf.Format { return &format{} }, opts)
}

// format holds the state of one load
type format struct {
	dims   *cf.Dimensions
	src    cf.ArraySource
	levels levelCount
}

// PopulateDimensions requires the 2D topology dimensions, layering and time are optional
func (f *format) PopulateDimensions(src cf.ArraySource) (dims *cf.Dimensions, err error) {
	dims = cf.NewDimensions()
	if err = dims.Populate(src, dimensionNames); err != nil {
		return nil, err
	}
	for _, dt := range []cf.DimensionType{cf.Face2D, cf.MaxVerticesInFace, cf.Vertex2D} {
		if dims.ID(dt) == cf.NoArray {
			return nil, types.Errorf(types.ErrIncompatibleMesh, "missing dimension %s", dimensionNames[dt])
		}
	}
	f.dims, f.src = dims, src
	return
}

func (f *format) PopulateFacesAndVertices(src cf.ArraySource, dims *cf.Dimensions) (verts []mesh.Vertex, faces []mesh.Face, err error) {
	var (
		nv     = dims.Size(cf.Vertex2D)
		nf     = dims.Size(cf.Face2D)
		stride = dims.Size(cf.MaxVerticesInFace)
	)
	coords := make([][]float64, 3)
	for i, name := range []string{"node_X", "node_Y", "node_Zb"} {
		if coords[i], err = readDoubles(src, name, nv); err != nil {
			return
		}
	}
	if verts, err = cf.BuildVertices(coords[0], coords[1], coords[2]); err != nil {
		return
	}
	conn, err := readInts(src, "cell_node", nf*stride)
	if err != nil {
		return
	}
	counts, err := readInts(src, "cell_Nvert", nf)
	if err != nil {
		return
	}
	faces, err = cf.BuildFaces(conn, counts, stride, nv)
	return
}

func readDoubles(src cf.ArraySource, name string, count int) ([]float64, error) {
	id := src.ArrayID(name)
	if id == cf.NoArray {
		return nil, types.Errorf(types.ErrInvalidData, "missing array %s", name)
	}
	vals, err := src.ReadDoubles(id, 0, count)
	return vals, types.Wrap(types.ErrInvalidData, err, "reading %s", name)
}

func readInts(src cf.ArraySource, name string, count int) ([]int, error) {
	id := src.ArrayID(name)
	if id == cf.NoArray {
		return nil, types.Errorf(types.ErrInvalidData, "missing array %s", name)
	}
	vals, err := src.ReadInts(id, 0, count)
	return vals, types.Wrap(types.ErrInvalidData, err, "reading %s", name)
}

func (f *format) AddBedElevation(m *mesh.Mesh) {
	mesh.AddBedElevationDatasetGroup(m)
}

func (f *format) CoordinateSystemVariableName() string { return "" }

func (f *format) TimeVariableName() string { return "ResTime" }

func (f *format) IgnoreVariables() map[string]bool {
	ignore := map[string]bool{f.TimeVariableName(): true}
	for _, name := range []string{
		arrayLevels, "cell_Nvert", "cell_node", arrayVolumeToFace, arrayFaceToVolume,
		"cell_X", "cell_Y", "cell_Zb", "cell_A", "node_X", "node_Y", "node_Zb", arrayLevelZ, arrayActive,
	} {
		ignore[name] = true
	}
	return ignore
}

func (f *format) ParseVariableName(src cf.ArraySource, id int, varName string) (string, bool, bool) {
	return ParseVariableName(src.Attribute("long_name", id), varName)
}

func (f *format) Create3DDataset(g *mesh.DatasetGroup, ts int, info cf.GroupInfo, src *cf.SourceRef) (mesh.Dataset, error) {
	maxLevels, err := f.levels.get(f.src, f.dims.Size(cf.Face2D))
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	ds := newDataset3D(g, ts, info, f.dims, maxLevels, src)
	st, err := mesh.CalculateDatasetStatistics(ds)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	ds.SetStatistics(st)
	return ds, nil
}
