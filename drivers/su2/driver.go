/*
Package su2 reads 2D SU2 native meshes (https://su2code.github.io/docs_v7/Mesh-File/).

A loaded mesh carries a flat "Bed Elevation" group and, when the file tags boundaries, a "Boundary Markers"
group on vertices: each vertex on a marker holds that marker's 1-based position in the file, other vertices
hold 0. The group's metadata maps "marker:N" to the tag.
*/
package su2

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/notargets/gomdal/driver"
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
)

const (
	DriverName = "SU2"
	LongName   = "SU2 native mesh"
	Filters    = "*.su2"

	MarkersGroupName = "Boundary Markers"
)

type Options struct {
	Logger *slog.Logger
}

type Driver struct {
	driver.Base
	logger *slog.Logger
}

func NewDriver(opts Options) (d *Driver) {
	d = &Driver{
		Base:   driver.NewBase(DriverName, LongName, Filters, types.ReadMesh),
		logger: opts.Logger,
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	d.logger = d.logger.With("driver", DriverName)
	return
}

// CanReadMesh sniffs the first section keyword, the whole file is only parsed by Load
func (d *Driver) CanReadMesh(uri string) bool {
	file, err := os.Open(uri)
	if err != nil {
		return false
	}
	defer file.Close()
	gr := &gridReader{reader: bufio.NewReader(file)}
	key, _, err := gr.getToken()
	if err != nil {
		return false
	}
	switch key {
	case "NDIME", "NELEM", "NPOIN":
		return true
	}
	return false
}

func (d *Driver) Load(uri string) (m *mesh.Mesh, err error) {
	file, err := os.Open(uri)
	if err != nil {
		return nil, types.Wrap(types.ErrFileNotFound, err, "opening %s", uri)
	}
	defer file.Close()
	g, err := ReadGrid(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", uri, err)
	}
	m = mesh.NewMesh(DriverName, uri, g.Vertices, g.Faces)
	mesh.AddBedElevationDatasetGroup(m)
	if err = addMarkersGroup(m, g.Markers); err != nil {
		return nil, err
	}
	d.logger.Debug("loaded mesh", "uri", uri,
		"vertices", m.VerticesCount(), "faces", m.FacesCount(), "markers", len(g.Markers))
	return
}

func addMarkersGroup(m *mesh.Mesh, markers []Marker) error {
	if len(markers) == 0 || m.VerticesCount() == 0 {
		return nil
	}
	g := mesh.NewDatasetGroup(DriverName, m.URI(), MarkersGroupName, types.DataOnVertices2D, true)
	m.AddDatasetGroup(g)
	g.StartEditing()
	defer g.StopEditing()
	values := make([]float64, m.VerticesCount())
	for n, mk := range markers {
		g.SetMetadata(fmt.Sprintf("marker:%d", n+1), mk.Tag)
		for _, e := range mk.Edges {
			values[e[0]], values[e[1]] = float64(n+1), float64(n+1)
		}
	}
	ds := mesh.NewMemoryDataset2D(g, false)
	if err := ds.SetValues(values); err != nil {
		return err
	}
	st, err := mesh.CalculateDatasetStatistics(ds)
	if err != nil {
		return err
	}
	ds.SetStatistics(st)
	if err = g.AddDataset(ds); err != nil {
		return err
	}
	g.SetStatistics(mesh.CalculateGroupStatistics(g))
	return nil
}

// MarkerTags lists the tags recorded on a markers group, in file order
func MarkerTags(g *mesh.DatasetGroup) (tags []string) {
	for _, md := range g.Metadata() {
		if strings.HasPrefix(md.Key, "marker:") {
			tags = append(tags, md.Value)
		}
	}
	return
}
