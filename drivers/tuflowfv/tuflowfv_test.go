package tuflowfv

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/notargets/gomdal/cf"
	"github.com/notargets/gomdal/cf/cftest"
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
newLayeredSource is a 3 face, 6 vertex file with 2 timesteps. Face layer counts are [2,1,3], so the 6 volumes
belong to faces [0,0,1,2,2,2] and the faces start at volumes [0,2,3].
*/
func newLayeredSource() *cftest.Source {
	nan := math.NaN()
	var (
		cells  = []string{"NumCells2D"}
		vols   = []string{"NumCells3D"}
		verts  = []string{"NumVert2D"}
		tCells = []string{"Time", "NumCells2D"}
		tVols  = []string{"Time", "NumCells3D"}
	)
	src := cftest.NewSource().
		AddDimension("NumCells2D", 3).
		AddDimension("MaxNumCellVert", 4).
		AddDimension("NumVert2D", 6).
		AddDimension("NumCells3D", 6).
		AddDimension("NumLayerFaces3D", 9).
		AddDimension("Time", 2)
	src.AddDoubles("ResTime", []string{"Time"}, []float64{0, 1.5},
		map[string]string{"units": "hours since 1990-01-01 00:00:00"})
	src.AddDoubles("node_X", verts, []float64{0, 1, 2, 0, 1, 2}, nil)
	src.AddDoubles("node_Y", verts, []float64{0, 0, 0, 1, 1, 1}, nil)
	src.AddDoubles("node_Zb", verts, []float64{-1, -2, -3, -4, -5, -6}, nil)
	src.AddInts("cell_node", []string{"NumCells2D", "MaxNumCellVert"},
		[]int{1, 2, 4, 0, 2, 5, 4, 0, 2, 3, 6, 5}, nil)
	src.AddInts("cell_Nvert", cells, []int{3, 3, 4}, nil)
	src.AddDoubles("cell_X", cells, []float64{0.3, 0.7, 1.5}, nil)
	src.AddInts("NL", cells, []int{2, 1, 3}, nil)
	// idx2 maps each volume to its 1-based face, read back through VolumeToFaceData as [0,0,1,2,2,2]
	src.AddInts("idx2", vols, []int{1, 1, 2, 3, 3, 3}, nil)
	// idx3 is each face's first 1-based volume, the FaceIndexToVolumeIndex source
	src.AddInts("idx3", cells, []int{1, 3, 4}, nil)
	src.AddDoubles("layerface_Z", []string{"Time", "NumLayerFaces3D"}, []float64{
		0, -1, -2, 0, -2, 0, -1, -2, -3,
		0.5, -0.5, -1.5, 0.5, -1.5, 0.5, -0.5, -1.5, -2.5,
	}, nil)
	src.AddDoubles("H", tCells, []float64{1, 2, 3, 4, 5, 6},
		map[string]string{"long_name": "water surface elevation"})
	src.AddDoubles("V_x", tVols, []float64{3, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1},
		map[string]string{"long_name": "x_velocity"})
	src.AddDoubles("V_y", tVols, []float64{4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		map[string]string{"long_name": "y_velocity"})
	src.AddDoubles("SAL", tVols, []float64{10, 11, 12, 13, 14, 15, nan, nan, nan, nan, nan, nan},
		map[string]string{"long_name": "salinity"})
	src.AddDoubles("H_MAX", cells, []float64{4, 5, 6},
		map[string]string{"long_name": "maximum value of water surface elevation"})
	src.AddDoubles("W_x", cells, []float64{1, 1, 1}, map[string]string{"long_name": "x_wind"})
	src.AddDoubles("weird", []string{"Other"}, []float64{1, 2}, nil)
	return src
}

func TestParseVariableName(t *testing.T) {
	check := func(longName, varName, name string, isVector, isX bool) {
		n, v, x := ParseVariableName(longName, varName)
		assert.Equal(t, name, n, longName)
		assert.Equal(t, isVector, v, longName)
		assert.Equal(t, isX, x, longName)
	}
	check("", "H", "H", false, true)
	check("water depth", "D", "water depth", false, true)
	check("x_Velocity", "V_x", "Velocity", true, true)
	check("y_Velocity", "V_y", "Velocity", true, false)
	check("maximum value of Velocity", "V_MAX", "Velocity/Maximums", false, true)
	check("minimum value of water depth", "D_MIN", "water depth/Minimums", false, true)
	check("time at maximum value of water depth", "D_TMAX", "water depth/Time at Maximums", false, true)
	check("time at minimum value of water depth", "D_TMIN", "water depth/Time at Minimums", false, true)
	check("maximum value of x_Velocity", "V_x_MAX", "Velocity/Maximums", true, true)
	check("x_maximum value of Velocity", "V_x_MAX", "maximum value of Velocity", true, true)
	check("maximum value of y_Velocity", "V_y_MAX", "Velocity/Maximums", true, false)
}

func TestLevelCount(t *testing.T) {
	{
		faces := 2500
		nl := make([]int, faces)
		for i := range nl {
			nl[i] = i % 7
		}
		nl[2100] = 42
		src := cftest.NewSource().AddDimension("NumCells2D", faces)
		src.AddInts("NL", []string{"NumCells2D"}, nl, nil)
		var lc levelCount
		n, err := lc.get(src, faces)
		require.NoError(t, err)
		assert.Equal(t, 42, n)
		assert.Equal(t, 3, src.Reads["NL"])
		assert.Equal(t, levelsKnown, lc.state)
		n, err = lc.get(src, faces)
		require.NoError(t, err)
		assert.Equal(t, 42, n)
		assert.Equal(t, 3, src.Reads["NL"])
	}
	{
		src := cftest.NewSource()
		var lc levelCount
		n, err := lc.get(src, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, levelsNone, lc.state)
	}
	{
		src := cftest.NewSource()
		src.AddInts("NL", []string{"NumCells2D"}, []int{0, 0}, nil)
		var lc levelCount
		n, err := lc.get(src, 2)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, levelsNone, lc.state)
		_, _ = lc.get(src, 2)
		assert.Equal(t, 1, src.Reads["NL"])
	}
	{
		src := cftest.NewSource()
		src.AddInts("NL", []string{"NumCells2D"}, []int{1, 2}, nil)
		src.FailOn["NL"] = assert.AnError
		var lc levelCount
		_, err := lc.get(src, 2)
		assert.Equal(t, types.ErrInvalidData, types.StatusOf(err))
		assert.Equal(t, levelsUnknown, lc.state)
	}
}

func TestLoad(t *testing.T) {
	src := newLayeredSource()
	d := NewDriver(cf.Options{Open: cftest.Opener(src)})
	assert.Equal(t, DriverName, d.Name())
	assert.True(t, d.HasCapability(types.ReadMesh))
	assert.False(t, d.HasWriteDatasetCapability(types.DataOnVolumes3D))
	assert.True(t, d.CanReadMesh("layered.nc"))
	src.Closed = 0

	m, err := d.Load("layered.nc")
	require.NoError(t, err)
	defer m.Close()
	// The level scan ran once for all four volume datasets
	assert.Equal(t, 1, src.Reads["NL"])
	{
		assert.Equal(t, DriverName, m.DriverName())
		assert.Equal(t, 6, m.VerticesCount())
		assert.Equal(t, 3, m.FacesCount())
		assert.Equal(t, 4, m.FaceVerticesMaximumCount())
		assert.Equal(t, []mesh.Face{{0, 1, 3}, {1, 4, 3}, {1, 2, 5, 4}}, m.Faces)
		assert.Equal(t, mesh.Vertex{X: 2, Y: 1, Z: -6}, m.Vertices[5])
		assert.Equal(t, "", m.CRS())
	}
	var names []string
	for _, g := range m.DatasetGroups {
		names = append(names, g.Name())
		assert.False(t, g.IsInEditMode())
		assert.Equal(t, DriverName, g.DriverName())
	}
	assert.Equal(t, []string{"Bed Elevation", "water surface elevation", "velocity", "salinity",
		"water surface elevation/Maximums"}, names)
	{
		g := m.FindGroup("Bed Elevation")
		assert.Equal(t, mesh.Statistics{Minimum: -6, Maximum: -1}, g.Statistics())
	}
	ref := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	{
		g := m.FindGroup("water surface elevation")
		assert.Equal(t, types.DataOnFaces2D, g.DataLocation())
		assert.True(t, g.IsScalar())
		assert.Equal(t, ref, g.ReferenceTime())
		require.Equal(t, 2, g.DatasetsCount())
		assert.Equal(t, 90*time.Minute, g.Datasets[1].Time())
		assert.Equal(t, mesh.Statistics{Minimum: 1, Maximum: 6}, g.Statistics())
		buf := make([]float64, 3)
		n, err := mesh.Data(g.Datasets[1], types.ScalarDouble, 0, 3, buf)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []float64{4, 5, 6}, buf)
		_, err = mesh.Data(g.Datasets[1], types.ScalarVolumesDouble, 0, 1, buf)
		assert.Equal(t, types.ErrIncompatibleDataset, types.StatusOf(err))
	}
	{
		g := m.FindGroup("water surface elevation/Maximums")
		require.Equal(t, 1, g.DatasetsCount())
		assert.Equal(t, time.Duration(0), g.Datasets[0].Time())
		assert.Equal(t, mesh.Statistics{Minimum: 4, Maximum: 6}, g.Statistics())
	}
	{
		g := m.FindGroup("velocity")
		assert.Equal(t, types.DataOnVolumes3D, g.DataLocation())
		assert.False(t, g.IsScalar())
		require.Equal(t, 2, g.DatasetsCount())
		assert.Equal(t, 3, g.MaximumVerticalLevelsCount())
		assert.Equal(t, mesh.Statistics{Minimum: 0, Maximum: 5}, g.Datasets[0].Statistics())
		assert.Equal(t, mesh.Statistics{Minimum: 1, Maximum: 1}, g.Datasets[1].Statistics())
		assert.Equal(t, mesh.Statistics{Minimum: 0, Maximum: 5}, g.Statistics())

		ds := g.Datasets[0]
		assert.Equal(t, 6, ds.ValuesCount())
		assert.Equal(t, 6, ds.VolumesCount())
		buf := make([]float64, 12)
		n, err := mesh.Data(ds, types.Vector2DVolumesDouble, 0, 6, buf)
		require.NoError(t, err)
		assert.Equal(t, 6, n)
		assert.Equal(t, []float64{3, 4, 0, 0}, buf[:4])

		_, err = mesh.Data(ds, types.ScalarVolumesDouble, 0, 1, buf)
		assert.Equal(t, types.ErrIncompatibleDataset, types.StatusOf(err))
	}
	{
		g := m.FindGroup("salinity")
		require.Equal(t, 2, g.DatasetsCount())
		st := g.Datasets[1].Statistics()
		assert.True(t, math.IsNaN(st.Minimum) && math.IsNaN(st.Maximum))
		assert.Equal(t, mesh.Statistics{Minimum: 10, Maximum: 15}, g.Statistics())

		ds := g.Datasets[1]
		{
			ints := make([]int, 6)
			n, err := mesh.Data(ds, types.VerticalLevelCountInteger, 0, 3, ints)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			assert.Equal(t, []int{2, 1, 3}, ints[:3])

			n, err = mesh.Data(ds, types.FaceIndexToVolumeIndexInteger, 0, 3, ints)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			assert.Equal(t, []int{0, 2, 3}, ints[:3])

			n, err = ds.(*Dataset3D).VolumeToFaceData(0, 6, ints)
			require.NoError(t, err)
			assert.Equal(t, 6, n)
			assert.Equal(t, []int{0, 0, 1, 2, 2, 2}, ints)

			n, err = mesh.Data(ds, types.ActiveInteger, 1, 2, ints)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, []int{1, 1}, ints[:2])
		}
		{
			levels := make([]float64, 9)
			n, err := mesh.Data(ds, types.VerticalLevelDouble, 0, 9, levels)
			require.NoError(t, err)
			assert.Equal(t, 9, n)
			assert.Equal(t, []float64{0.5, -0.5, -1.5, 0.5, -1.5, 0.5, -0.5, -1.5, -2.5}, levels)
		}
		{
			vals := make([]float64, 6)
			n, err := mesh.Data(g.Datasets[0], types.ScalarVolumesDouble, 4, 2, vals)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, []float64{14, 15}, vals[:2])
		}
	}
	assert.Equal(t, 0, src.Closed)
	require.NoError(t, m.Close())
	assert.Equal(t, 1, src.Closed)
}

func TestDataset3DPagination(t *testing.T) {
	src := newLayeredSource()
	m, err := NewDriver(cf.Options{Open: cftest.Opener(src)}).Load("layered.nc")
	require.NoError(t, err)
	defer m.Close()
	ds := m.FindGroup("salinity").Datasets[0].(*Dataset3D)
	var (
		ints   = make([]int, 10)
		floats = make([]float64, 20)
	)
	// Every accessor copies min(count, extent-start) and nothing from the extent on
	for _, tc := range []struct {
		name   string
		extent int
		read   func(start, count int) (int, error)
	}{
		{"levels", 3, func(s, c int) (int, error) { return ds.VerticalLevelCountData(s, c, ints) }},
		{"f2v", 3, func(s, c int) (int, error) { return ds.FaceToVolumeData(s, c, ints) }},
		{"v2f", 6, func(s, c int) (int, error) { return ds.VolumeToFaceData(s, c, ints) }},
		{"active", 3, func(s, c int) (int, error) { return ds.ActiveData(s, c, ints) }},
		{"levelz", 9, func(s, c int) (int, error) { return ds.VerticalLevelData(s, c, floats) }},
		{"scalar3d", 6, func(s, c int) (int, error) { return ds.ScalarVolumesData(s, c, floats) }},
	} {
		for start := 0; start <= tc.extent+1; start++ {
			for _, count := range []int{0, 1, 2, 10} {
				n, err := tc.read(start, count)
				require.NoError(t, err)
				want := 0
				if start < tc.extent {
					want = min(count, tc.extent-start)
				}
				assert.Equal(t, want, n, "%s start=%d count=%d", tc.name, start, count)
			}
		}
	}
	{
		n, err := ds.VectorVolumesData(0, 3, floats)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}
	{
		vds := m.FindGroup("velocity").Datasets[1].(*Dataset3D)
		n, err := vds.VectorVolumesData(4, 10, floats)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []float64{1, 0, 1, 0}, floats[:4])
		n, err = vds.ScalarVolumesData(0, 1, floats)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}
	{
		// A timestep past the file's records has no values and no layer geometry
		late := newDataset3D(ds.Group(), 5, ds.info, cf.NewDimensions(), 0, cf.NewSharedSource(src).Acquire())
		n, err := late.ScalarVolumesData(0, 1, floats)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		n, err = late.VerticalLevelData(0, 1, floats)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		require.NoError(t, late.Close())
	}
}

func TestLoad2DOnly(t *testing.T) {
	src := cftest.NewSource().
		AddDimension("NumCells2D", 1).
		AddDimension("MaxNumCellVert", 3).
		AddDimension("NumVert2D", 3)
	src.AddDoubles("node_X", []string{"NumVert2D"}, []float64{0, 1, 0}, nil)
	src.AddDoubles("node_Y", []string{"NumVert2D"}, []float64{0, 0, 1}, nil)
	src.AddDoubles("node_Zb", []string{"NumVert2D"}, []float64{1, 1, 1}, nil)
	src.AddInts("cell_node", []string{"NumCells2D", "MaxNumCellVert"}, []int{1, 2, 3}, nil)
	src.AddInts("cell_Nvert", []string{"NumCells2D"}, []int{3}, nil)
	src.AddDoubles("D", []string{"NumCells2D"}, []float64{0.25}, nil)

	m, err := NewDriver(cf.Options{Open: cftest.Opener(src)}).Load("flat.nc")
	require.NoError(t, err)
	defer m.Close()
	require.Len(t, m.DatasetGroups, 2)
	g := m.FindGroup("D")
	require.NotNil(t, g)
	assert.True(t, g.ReferenceTime().IsZero())
	assert.Equal(t, mesh.Statistics{Minimum: 0.25, Maximum: 0.25}, g.Statistics())
	assert.Equal(t, 0, g.MaximumVerticalLevelsCount())
}

func TestLoadFailures(t *testing.T) {
	{
		src := newLayeredSource()
		// The connectivity now points past the last vertex
		src.AddDimension("NumVert2D", 3)
		m, err := NewDriver(cf.Options{Open: cftest.Opener(src)}).Load("bad.nc")
		assert.Nil(t, m)
		assert.Equal(t, types.ErrInvalidData, types.StatusOf(err))
		assert.Equal(t, 1, src.Closed)
	}
	{
		src := cftest.NewSource().AddDimension("NumVert2D", 3)
		d := NewDriver(cf.Options{Open: cftest.Opener(src)})
		assert.False(t, d.CanReadMesh("other.nc"))
		m, err := d.Load("other.nc")
		assert.Nil(t, m)
		assert.Equal(t, types.ErrIncompatibleMesh, types.StatusOf(err))
		assert.Equal(t, 2, src.Closed)
	}
	{
		src := newLayeredSource()
		src.FailOn["cell_Nvert"] = assert.AnError
		m, err := NewDriver(cf.Options{Open: cftest.Opener(src)}).Load("broken.nc")
		assert.Nil(t, m)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 1, src.Closed)
	}
	{
		src := newLayeredSource()
		src.FailOn["V_y"] = assert.AnError
		m, err := NewDriver(cf.Options{Open: cftest.Opener(src)}).Load("broken.nc")
		assert.Nil(t, m)
		assert.Equal(t, types.ErrInvalidData, types.StatusOf(err))
		assert.Equal(t, 1, src.Closed)
	}
	{
		d := NewDriver(cf.Options{Open: func(string) (cf.ArraySource, error) { return nil, assert.AnError }})
		assert.False(t, d.CanReadMesh("missing.nc"))
		_, err := d.Load("missing.nc")
		assert.Equal(t, types.ErrFileNotFound, types.StatusOf(err))

		// A file that exists but does not open is not a mesh this driver reads
		other := filepath.Join(t.TempDir(), "notes.nc")
		require.NoError(t, os.WriteFile(other, []byte("hello\n"), 0644))
		_, err = d.Load(other)
		assert.Equal(t, types.ErrIncompatibleMesh, types.StatusOf(err))
		assert.ErrorIs(t, err, assert.AnError)
	}
}
