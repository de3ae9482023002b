package boltstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSquareMesh() *mesh.Mesh {
	return mesh.NewMesh("TEST", "square.nc",
		[]mesh.Vertex{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 2}, {X: 1, Y: 1, Z: 3}, {X: 0, Y: 1, Z: 4}},
		[]mesh.Face{{0, 1, 2}, {0, 2, 3}})
}

func TestDriver(t *testing.T) {
	d := NewDriver(Options{Timeout: time.Second})
	assert.True(t, d.HasCapability(types.ReadDatasets))
	assert.True(t, d.HasWriteDatasetCapability(types.DataOnVertices2D))
	assert.True(t, d.HasWriteDatasetCapability(types.DataOnFaces2D))
	assert.False(t, d.HasWriteDatasetCapability(types.DataOnVolumes3D))
	assert.False(t, d.HasCapability(types.ReadMesh))

	m := newSquareMesh()
	_, err := d.CreateDatasetGroup(m, "layers", types.DataOnVolumes3D, true, "x.gmdb")
	assert.Equal(t, types.ErrMissingDriverCapability, types.StatusOf(err))
	_, err = d.Load("x.gmdb")
	assert.Equal(t, types.ErrMissingDriverCapability, types.StatusOf(err))
}

func TestPersistAndLoad(t *testing.T) {
	var (
		d   = NewDriver(Options{Timeout: time.Second})
		uri = filepath.Join(t.TempDir(), "results.gmdb")
		ref = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	)
	assert.False(t, d.CanReadDatasets(uri))
	{
		m := newSquareMesh()
		g, err := d.CreateDatasetGroup(m, "depth", types.DataOnVertices2D, true, uri)
		require.NoError(t, err)
		assert.True(t, g.IsInEditMode())
		g.SetMetadata("units", "m")
		g.SetReferenceTime(ref)

		_, err = d.CreateDataset(g, 0, []float64{0, 1, 2, 3}, nil)
		require.NoError(t, err)
		ds, err := d.CreateDataset(g, time.Hour, []float64{1, 2, 3, 4}, []int{1, 0})
		require.NoError(t, err)
		assert.Equal(t, mesh.Statistics{Minimum: 1, Maximum: 4}, ds.Statistics())
		assert.True(t, ds.SupportsActiveFlag())

		_, err = d.CreateDataset(g, 2*time.Hour, []float64{1, 2}, nil)
		assert.Equal(t, types.ErrInvalidData, types.StatusOf(err))
		assert.Equal(t, 2, g.DatasetsCount())

		// Still being edited
		assert.Equal(t, types.ErrIncompatibleDatasetGroup, types.StatusOf(d.Persist(g)))
		g.StopEditing()
		require.NoError(t, d.Persist(g))

		v, err := d.CreateDatasetGroup(m, "velocity", types.DataOnFaces2D, false, uri)
		require.NoError(t, err)
		_, err = d.CreateDataset(v, 0, []float64{3, 4, 0, 1}, nil)
		require.NoError(t, err)
		v.StopEditing()
		require.NoError(t, d.Persist(v))
	}
	assert.True(t, d.CanReadDatasets(uri))
	{
		m := newSquareMesh()
		require.NoError(t, d.LoadDatasets(uri, m))
		require.Len(t, m.DatasetGroups, 2)

		g := m.DatasetGroups[0]
		assert.Equal(t, "depth", g.Name())
		assert.Equal(t, "m", g.GetMetadata("units"))
		assert.Equal(t, []mesh.Metadata{{Key: "name", Value: "depth"}, {Key: "units", Value: "m"}}, g.Metadata())
		assert.Equal(t, DriverName, g.DriverName())
		assert.Equal(t, uri, g.URI())
		assert.True(t, ref.Equal(g.ReferenceTime()))
		assert.False(t, g.IsInEditMode())
		assert.Equal(t, mesh.Statistics{Minimum: 0, Maximum: 4}, g.Statistics())
		require.Equal(t, 2, g.DatasetsCount())
		assert.Equal(t, time.Hour, g.Datasets[1].Time())

		vals := make([]float64, 4)
		n, err := mesh.Data(g.Datasets[1], types.ScalarDouble, 0, 4, vals)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, []float64{1, 2, 3, 4}, vals)
		active := make([]int, 2)
		n, err = mesh.Data(g.Datasets[1], types.ActiveInteger, 0, 2, active)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []int{1, 0}, active)
		assert.False(t, g.Datasets[0].SupportsActiveFlag())

		v := m.DatasetGroups[1]
		assert.Equal(t, "velocity", v.Name())
		assert.False(t, v.IsScalar())
		assert.Equal(t, types.DataOnFaces2D, v.DataLocation())
		assert.Equal(t, mesh.Statistics{Minimum: 1, Maximum: 5}, v.Statistics())
	}
	{
		// A mesh with another vertex count can't take the stored groups
		m := mesh.NewMesh("TEST", "", make([]mesh.Vertex, 3), []mesh.Face{{0, 1, 2}})
		err := d.LoadDatasets(uri, m)
		assert.Equal(t, types.ErrIncompatibleMesh, types.StatusOf(err))
		assert.Empty(t, m.DatasetGroups)
	}
	{
		err := d.LoadDatasets(filepath.Join(t.TempDir(), "none.gmdb"), newSquareMesh())
		assert.Equal(t, types.ErrFileNotFound, types.StatusOf(err))
	}
}
