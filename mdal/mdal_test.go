package mdal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/notargets/gomdal/cf/cftest"
	"github.com/notargets/gomdal/drivers/boltstore"
	"github.com/notargets/gomdal/drivers/su2"
	"github.com/notargets/gomdal/drivers/tuflowfv"
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSquareSource is a 2 triangle TUFLOW FV result with one face dataset over 2 timesteps
func newSquareSource() *cftest.Source {
	src := cftest.NewSource().
		AddDimension("NumCells2D", 2).
		AddDimension("MaxNumCellVert", 3).
		AddDimension("NumVert2D", 4).
		AddDimension("Time", 2)
	verts := []string{"NumVert2D"}
	src.AddDoubles("ResTime", []string{"Time"}, []float64{0, 1},
		map[string]string{"units": "hours since 2000-01-01 00:00:00"})
	src.AddDoubles("node_X", verts, []float64{0, 1, 1, 0}, nil)
	src.AddDoubles("node_Y", verts, []float64{0, 0, 1, 1}, nil)
	src.AddDoubles("node_Zb", verts, []float64{-1, -2, -3, -4}, nil)
	src.AddInts("cell_node", []string{"NumCells2D", "MaxNumCellVert"}, []int{1, 2, 3, 1, 3, 4}, nil)
	src.AddInts("cell_Nvert", []string{"NumCells2D"}, []int{3, 3}, nil)
	src.AddDoubles("H", []string{"Time", "NumCells2D"}, []float64{1, 2, 3, 4},
		map[string]string{"long_name": "water depth"})
	return src
}

func TestLibrary(t *testing.T) {
	var (
		dir      = t.TempDir()
		meshURI  = filepath.Join(dir, "square.nc")
		storeURI = filepath.Join(dir, "edits.gmdb")
		lib      = New(Options{Open: cftest.Opener(newSquareSource()), StoreTimeout: time.Second})
	)
	require.NoError(t, os.WriteFile(meshURI, nil, 0644))
	{
		var names []string
		for _, d := range lib.Drivers() {
			names = append(names, d.Name())
		}
		assert.Equal(t, []string{tuflowfv.DriverName, su2.DriverName, boltstore.DriverName}, names)
		_, err := lib.Driver("NOPE")
		assert.Equal(t, types.ErrMissingDriver, types.StatusOf(err))
	}
	m, err := lib.LoadMesh(meshURI)
	require.NoError(t, err)
	assert.Equal(t, tuflowfv.DriverName, m.DriverName())
	require.Len(t, m.DatasetGroups, 2)
	{ // Group creation failures
		check := func(status types.Status, m *mesh.Mesh, name string, dl types.DataLocation, drv, uri string) {
			_, err := lib.AddDatasetGroup(m, name, dl, true, drv, uri)
			assert.Equal(t, status, types.StatusOf(err), name)
		}
		check(types.ErrIncompatibleMesh, nil, "a", types.DataOnFaces2D, boltstore.DriverName, storeURI)
		check(types.ErrInvalidData, m, "", types.DataOnFaces2D, boltstore.DriverName, storeURI)
		check(types.ErrInvalidData, m, "b", types.DataOnFaces2D, boltstore.DriverName, "")
		check(types.ErrMissingDriver, m, "c", types.DataOnFaces2D, "NOPE", storeURI)
		check(types.ErrMissingDriverCapability, m, "d", types.DataOnFaces2D, tuflowfv.DriverName, storeURI)
		check(types.ErrMissingDriverCapability, m, "e", types.DataOnVolumes3D, boltstore.DriverName, storeURI)
		assert.Len(t, m.DatasetGroups, 2)
	}
	g, err := lib.AddDatasetGroup(m, "depth change", types.DataOnVertices2D, true, boltstore.DriverName, storeURI)
	require.NoError(t, err)
	assert.True(t, g.IsInEditMode())
	assert.Len(t, m.DatasetGroups, 3)
	{
		assert.Equal(t, types.ErrInvalidData, types.StatusOf(lib.SetMetadata(g, "", "m")))
		assert.Equal(t, types.ErrIncompatibleDataset, types.StatusOf(lib.SetMetadata(nil, "units", "m")))
		require.NoError(t, lib.SetMetadata(g, "units", "m"))
	}
	{
		_, err = lib.AddDataset(nil, 0, []float64{0, 1, 2, 3}, nil)
		assert.Equal(t, types.ErrIncompatibleDataset, types.StatusOf(err))
		_, err = lib.AddDataset(g, 0, nil, nil)
		assert.Equal(t, types.ErrInvalidData, types.StatusOf(err))

		_, err = lib.AddDataset(g, 0, []float64{0, 1, 2, 3}, []int{1, 1})
		require.NoError(t, err)
		_, err = lib.AddDataset(g, time.Hour, []float64{4, 3, 2, 1}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, g.DatasetsCount())
	}
	f, err := lib.AddDatasetGroup(m, "flag", types.DataOnFaces2D, true, boltstore.DriverName, storeURI)
	require.NoError(t, err)
	{
		// Active flags are only taken on vertex groups
		_, err = lib.AddDataset(f, 0, []float64{1, 2}, []int{1, 0})
		assert.Equal(t, types.ErrIncompatibleDataset, types.StatusOf(err))
		_, err = lib.AddDataset(f, 0, []float64{1, 2}, nil)
		require.NoError(t, err)
	}
	{
		require.NoError(t, lib.CloseEditMode(g))
		assert.False(t, g.IsInEditMode())
		assert.Equal(t, mesh.Statistics{Minimum: 0, Maximum: 4}, g.Statistics())
		_, err = lib.AddDataset(g, 2*time.Hour, []float64{0, 0, 0, 0}, nil)
		assert.Equal(t, types.ErrIncompatibleDataset, types.StatusOf(err))
		// Closing twice is a no-op
		require.NoError(t, lib.CloseEditMode(g))
		assert.Equal(t, types.ErrIncompatibleDataset, types.StatusOf(lib.CloseEditMode(nil)))
		require.NoError(t, lib.CloseEditMode(f))
	}
	{
		// The store path is a directory, persisting fails
		bad, err := lib.AddDatasetGroup(m, "broken", types.DataOnFaces2D, true, boltstore.DriverName, dir)
		require.NoError(t, err)
		_, err = lib.AddDataset(bad, 0, []float64{1, 2}, nil)
		require.NoError(t, err)
		assert.Equal(t, types.ErrInvalidData, types.StatusOf(lib.CloseEditMode(bad)))
		assert.False(t, bad.IsInEditMode())
	}
	require.NoError(t, m.Close())

	m, err = lib.LoadMesh(meshURI)
	require.NoError(t, err)
	require.NoError(t, lib.LoadDatasets(m, storeURI))
	require.Len(t, m.DatasetGroups, 4)
	{
		g := m.FindGroup("depth change")
		require.NotNil(t, g)
		assert.Equal(t, boltstore.DriverName, g.DriverName())
		assert.Equal(t, "m", g.GetMetadata("units"))
		require.Equal(t, 2, g.DatasetsCount())
		active := make([]int, 2)
		n, err := lib.Data(g.Datasets[0], types.ActiveInteger, 0, 2, active)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []int{1, 1}, active)
		vals := make([]float64, 4)
		n, err = lib.Data(g.Datasets[1], types.ScalarDouble, 0, 4, vals)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, []float64{4, 3, 2, 1}, vals)
		assert.Equal(t, time.Hour, g.Datasets[1].Time())

		_, err = lib.Data(g.Datasets[1], types.Vector2DDouble, 0, 4, vals)
		assert.Equal(t, types.ErrIncompatibleDataset, types.StatusOf(err))
	}
	assert.Equal(t, "flag", m.DatasetGroups[3].Name())
	{
		assert.Equal(t, types.ErrIncompatibleMesh, types.StatusOf(lib.LoadDatasets(nil, storeURI)))
		// No driver reads datasets out of the mesh file
		assert.Equal(t, types.ErrIncompatibleMesh, types.StatusOf(lib.LoadDatasets(m, meshURI)))
		assert.Equal(t, types.ErrFileNotFound, types.StatusOf(lib.LoadDatasets(m, filepath.Join(dir, "none.gmdb"))))
	}
	require.NoError(t, m.Close())
}
