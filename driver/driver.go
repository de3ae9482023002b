// Package driver defines what a mesh format driver offers and how drivers are picked for a file.
package driver

import (
	"time"

	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
)

// Driver reads (and optionally writes) one family of mesh files
type Driver interface {
	Name() string
	LongName() string
	// Filters is the file pattern list the driver is meant for, e.g. "*.nc"
	Filters() string
	Capabilities() types.Capability
	HasCapability(c types.Capability) bool
	HasWriteDatasetCapability(dl types.DataLocation) bool
	// FaceVerticesMaximumCount is the widest face the driver can save, 0 for readers
	FaceVerticesMaximumCount() int

	CanReadMesh(uri string) bool
	CanReadDatasets(uri string) bool
	Load(uri string) (*mesh.Mesh, error)
	LoadDatasets(uri string, m *mesh.Mesh) error

	// CreateDatasetGroup appends a group in edit mode to m
	CreateDatasetGroup(m *mesh.Mesh, name string, dl types.DataLocation, isScalar bool, uri string) (*mesh.DatasetGroup, error)
	// CreateDataset appends a dataset built from values (and per face active flags, may be nil) to g
	CreateDataset(g *mesh.DatasetGroup, t time.Duration, values []float64, active []int) (mesh.Dataset, error)
	// Persist writes g to its URI
	Persist(g *mesh.DatasetGroup) error
}

// Base answers every driver call a concrete driver doesn't implement with a capability error
type Base struct {
	name, longName, filters string
	caps                    types.Capability
	faceVerticesMax         int
}

func NewBase(name, longName, filters string, caps types.Capability) Base {
	return Base{name: name, longName: longName, filters: filters, caps: caps}
}

func (b *Base) Name() string { return b.name }

func (b *Base) LongName() string { return b.longName }

func (b *Base) Filters() string { return b.filters }

func (b *Base) Capabilities() types.Capability { return b.caps }

func (b *Base) HasCapability(c types.Capability) bool { return b.caps.Has(c) }

func (b *Base) HasWriteDatasetCapability(dl types.DataLocation) bool {
	wc := types.WriteCapability(dl)
	return wc != 0 && b.caps.Has(wc)
}

func (b *Base) FaceVerticesMaximumCount() int { return b.faceVerticesMax }

func (b *Base) SetFaceVerticesMaximumCount(n int) { b.faceVerticesMax = n }

func (b *Base) CanReadMesh(string) bool { return false }

func (b *Base) CanReadDatasets(string) bool { return false }

func (b *Base) Load(string) (*mesh.Mesh, error) {
	return nil, b.missing(types.ReadMesh)
}

func (b *Base) LoadDatasets(string, *mesh.Mesh) error {
	return b.missing(types.ReadDatasets)
}

func (b *Base) CreateDatasetGroup(_ *mesh.Mesh, _ string, dl types.DataLocation, _ bool, _ string) (*mesh.DatasetGroup, error) {
	return nil, b.missing(types.WriteCapability(dl))
}

func (b *Base) CreateDataset(g *mesh.DatasetGroup, _ time.Duration, _ []float64, _ []int) (mesh.Dataset, error) {
	return nil, b.missing(types.WriteCapability(g.DataLocation()))
}

func (b *Base) Persist(g *mesh.DatasetGroup) error {
	return b.missing(types.WriteCapability(g.DataLocation()))
}

func (b *Base) missing(c types.Capability) error {
	return types.Errorf(types.ErrMissingDriverCapability, "driver %s lacks %s", b.name, c)
}
