// Package mesh holds the driver independent topology and dataset model.
package mesh

import (
	"io"
	"math"

	"github.com/notargets/gomdal/types"
	"gonum.org/v1/gonum/floats"
)

// Vertex is a 2D mesh node with its elevation
type Vertex struct {
	X, Y, Z float64
}

// Face is an ordered list of 0-based vertex indices
type Face []int

// BBox is the horizontal extent of the mesh
type BBox struct {
	MinX, MaxX, MinY, MaxY float64
}

// Mesh is the topology produced by a driver plus the dataset groups attached to it
type Mesh struct {
	Vertices      []Vertex
	Faces         []Face
	DatasetGroups []*DatasetGroup

	driverName      string
	uri             string
	crs             string
	faceVerticesMax int
	source          io.Closer // Shared handle reference held by the mesh itself
}

func NewMesh(driverName, uri string, vertices []Vertex, faces []Face) (m *Mesh) {
	m = &Mesh{
		Vertices:   vertices,
		Faces:      faces,
		driverName: driverName,
		uri:        uri,
	}
	for _, f := range faces {
		if len(f) > m.faceVerticesMax {
			m.faceVerticesMax = len(f)
		}
	}
	return
}

func (m *Mesh) DriverName() string { return m.driverName }

func (m *Mesh) URI() string { return m.uri }

func (m *Mesh) CRS() string { return m.crs }

func (m *Mesh) SetCRS(crs string) { m.crs = crs }

func (m *Mesh) VerticesCount() int { return len(m.Vertices) }

func (m *Mesh) FacesCount() int { return len(m.Faces) }

func (m *Mesh) FaceVerticesMaximumCount() int { return m.faceVerticesMax }

// SetSource hands the mesh one reference to the open file it was read from, released on Close
func (m *Mesh) SetSource(src io.Closer) {
	m.source = src
}

// Extent is NaN on every side for a mesh without vertices
func (m *Mesh) Extent() (bb BBox) {
	if len(m.Vertices) == 0 {
		nan := math.NaN()
		return BBox{nan, nan, nan, nan}
	}
	var (
		x = make([]float64, len(m.Vertices))
		y = make([]float64, len(m.Vertices))
	)
	for i, v := range m.Vertices {
		x[i], y[i] = v.X, v.Y
	}
	bb.MinX, bb.MaxX = floats.Min(x), floats.Max(x)
	bb.MinY, bb.MaxY = floats.Min(y), floats.Max(y)
	return
}

// ValuesCount is the number of elements a 2D dataset at dl carries on this mesh
func (m *Mesh) ValuesCount(dl types.DataLocation) int {
	switch dl {
	case types.DataOnVertices2D:
		return m.VerticesCount()
	case types.DataOnFaces2D:
		return m.FacesCount()
	}
	return 0
}

func (m *Mesh) DatasetGroup(index int) (*DatasetGroup, error) {
	if index < 0 || index >= len(m.DatasetGroups) {
		return nil, types.Errorf(types.ErrIncompatibleMesh,
			"dataset group index %d out of range [0,%d)", index, len(m.DatasetGroups))
	}
	return m.DatasetGroups[index], nil
}

// FindGroup returns nil when no group carries the name
func (m *Mesh) FindGroup(name string) *DatasetGroup {
	for _, g := range m.DatasetGroups {
		if g.Name() == name {
			return g
		}
	}
	return nil
}

// AddDatasetGroup appends g and makes this mesh its owner
func (m *Mesh) AddDatasetGroup(g *DatasetGroup) {
	g.mesh = m
	m.DatasetGroups = append(m.DatasetGroups, g)
}

// Close releases the file references held by the mesh and its datasets. The mesh is unusable afterwards.
func (m *Mesh) Close() (err error) {
	for _, g := range m.DatasetGroups {
		for _, ds := range g.Datasets {
			if c, ok := ds.(io.Closer); ok {
				if cerr := c.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}
	}
	if m.source != nil {
		if cerr := m.source.Close(); cerr != nil && err == nil {
			err = cerr
		}
		m.source = nil
	}
	m.DatasetGroups = nil
	return
}
