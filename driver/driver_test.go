package driver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver recognises files whose content starts with its magic
type fakeDriver struct {
	Base
	magic string
	loads int
}

func newFakeDriver(name, magic string, caps types.Capability) *fakeDriver {
	return &fakeDriver{Base: NewBase(name, name+" files", "*.fake", caps), magic: magic}
}

func (d *fakeDriver) sniff(uri string) bool {
	raw, err := os.ReadFile(uri)
	return err == nil && len(raw) >= len(d.magic) && string(raw[:len(d.magic)]) == d.magic
}

func (d *fakeDriver) CanReadMesh(uri string) bool { return d.sniff(uri) }

func (d *fakeDriver) CanReadDatasets(uri string) bool { return d.sniff(uri) }

func (d *fakeDriver) Load(uri string) (*mesh.Mesh, error) {
	d.loads++
	return mesh.NewMesh(d.Name(), uri, []mesh.Vertex{{}, {X: 1}, {Y: 1}}, []mesh.Face{{0, 1, 2}}), nil
}

func (d *fakeDriver) LoadDatasets(uri string, m *mesh.Mesh) error {
	d.loads++
	m.AddDatasetGroup(mesh.NewDatasetGroup(d.Name(), uri, "extra", types.DataOnFaces2D, true))
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	uri := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(uri, []byte(content), 0644))
	return uri
}

func TestBase(t *testing.T) {
	b := NewBase("B", "Base driver", "*.b", types.ReadMesh|types.WriteDatasetsOnFaces2D)
	assert.Equal(t, "B", b.Name())
	assert.Equal(t, "Base driver", b.LongName())
	assert.Equal(t, "*.b", b.Filters())
	assert.Equal(t, "ReadMesh|WriteDatasetsOnFaces2D", b.Capabilities().String())
	assert.True(t, b.HasWriteDatasetCapability(types.DataOnFaces2D))
	assert.False(t, b.HasWriteDatasetCapability(types.DataOnVertices2D))
	assert.False(t, b.HasWriteDatasetCapability(types.DataInvalidLocation))
	assert.Equal(t, 0, b.FaceVerticesMaximumCount())
	b.SetFaceVerticesMaximumCount(4)
	assert.Equal(t, 4, b.FaceVerticesMaximumCount())
	assert.False(t, b.CanReadMesh("x"))
	assert.False(t, b.CanReadDatasets("x"))

	var d Driver = &b
	_, err := d.Load("x")
	assert.Equal(t, types.ErrMissingDriverCapability, types.StatusOf(err))
	assert.Equal(t, types.ErrMissingDriverCapability, types.StatusOf(d.LoadDatasets("x", nil)))
	m := mesh.NewMesh("B", "x", nil, nil)
	_, err = d.CreateDatasetGroup(m, "g", types.DataOnFaces2D, true, "x")
	assert.Equal(t, types.ErrMissingDriverCapability, types.StatusOf(err))
	g := mesh.NewDatasetGroup("B", "x", "g", types.DataOnVertices2D, true)
	_, err = d.CreateDataset(g, time.Second, nil, nil)
	assert.Equal(t, types.ErrMissingDriverCapability, types.StatusOf(err))
	assert.Equal(t, types.ErrMissingDriverCapability, types.StatusOf(d.Persist(g)))
}

func TestManager(t *testing.T) {
	var (
		dir   = t.TempDir()
		alpha = newFakeDriver("ALPHA", "alpha", types.ReadMesh)
		beta  = newFakeDriver("BETA", "beta", types.ReadMesh|types.ReadDatasets)
		// Same magic as alpha but can't read meshes, must never be picked for Load
		gamma = newFakeDriver("GAMMA", "alpha", types.ReadDatasets)
		dm    = NewManager(nil, gamma, alpha, beta)
	)
	assert.Equal(t, 3, dm.Count())
	assert.Equal(t, beta, dm.Driver("BETA"))
	assert.Nil(t, dm.Driver("DELTA"))
	assert.Len(t, dm.Drivers(), 3)
	{
		m, err := dm.Load(writeFile(t, dir, "a.fake", "alpha mesh"))
		require.NoError(t, err)
		assert.Equal(t, "ALPHA", m.DriverName())
		assert.Equal(t, 1, alpha.loads)
		assert.Equal(t, 0, gamma.loads)
	}
	{
		m, err := dm.Load(writeFile(t, dir, "b.fake", "beta mesh"))
		require.NoError(t, err)
		assert.Equal(t, "BETA", m.DriverName())

		require.NoError(t, dm.LoadDatasets(writeFile(t, dir, "b2.fake", "beta results"), m))
		require.Len(t, m.DatasetGroups, 1)
		assert.Equal(t, "extra", m.DatasetGroups[0].Name())
		assert.Equal(t, 2, beta.loads)
	}
	{
		_, err := dm.Load(writeFile(t, dir, "c.fake", "unknown"))
		assert.Equal(t, types.ErrIncompatibleMesh, types.StatusOf(err))
		_, err = dm.Load(filepath.Join(dir, "missing.fake"))
		assert.Equal(t, types.ErrFileNotFound, types.StatusOf(err))
		_, err = dm.Load("")
		assert.Equal(t, types.ErrFileNotFound, types.StatusOf(err))

		m := mesh.NewMesh("T", "", nil, nil)
		err = dm.LoadDatasets(writeFile(t, dir, "d.fake", "unknown"), m)
		assert.Equal(t, types.ErrIncompatibleMesh, types.StatusOf(err))
		err = dm.LoadDatasets(filepath.Join(dir, "missing.fake"), m)
		assert.Equal(t, types.ErrFileNotFound, types.StatusOf(err))
	}
}
