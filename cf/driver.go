package cf

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/notargets/gomdal/driver"
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
)

/*
Format is the part of a CF driver that knows one file convention. The driver builds a fresh Format for every
load so a Format may keep per file state (dimensions, memoised scans) in its fields.
*/
type Format interface {
	PopulateDimensions(src ArraySource) (*Dimensions, error)
	PopulateFacesAndVertices(src ArraySource, dims *Dimensions) ([]mesh.Vertex, []mesh.Face, error)
	AddBedElevation(m *mesh.Mesh)
	// CoordinateSystemVariableName is "" when the convention carries no CRS variable
	CoordinateSystemVariableName() string
	IgnoreVariables() map[string]bool
	ParseVariableName(src ArraySource, id int, varName string) (name string, isVector, isX bool)
	TimeVariableName() string
	// Create3DDataset builds timestep ts of a volume group. The dataset owns src from then on, on error src is
	// already released.
	Create3DDataset(g *mesh.DatasetGroup, ts int, info GroupInfo, src *SourceRef) (mesh.Dataset, error)
}

type Options struct {
	Logger *slog.Logger
	// Open opens uri as an ArraySource, required
	Open func(uri string) (ArraySource, error)
}

// Driver loads meshes and their datasets from any file convention described by a Format
type Driver struct {
	driver.Base
	newFormat func() Format
	logger    *slog.Logger
	open      func(uri string) (ArraySource, error)
}

func NewDriver(name, longName, filters string, newFormat func() Format, opts Options) (d *Driver) {
	d = &Driver{
		Base:      driver.NewBase(name, longName, filters, types.ReadMesh),
		newFormat: newFormat,
		logger:    opts.Logger,
		open:      opts.Open,
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	d.logger = d.logger.With("driver", name)
	return
}

// CanReadMesh accepts any file that opens and has the dimensions the format needs
func (d *Driver) CanReadMesh(uri string) bool {
	src, err := d.open(uri)
	if err != nil {
		return false
	}
	defer src.Close()
	_, err = d.newFormat().PopulateDimensions(src)
	return err == nil
}

/*
Load reads topology, bed elevation and every recognised dataset group of uri. The returned mesh and each of its
datasets hold a reference to the one open source, which closes when the last of them is closed. A failed load
closes everything it opened and returns no mesh.
*/
func (d *Driver) Load(uri string) (m *mesh.Mesh, err error) {
	raw, err := d.open(uri)
	if err != nil {
		if _, statErr := os.Stat(uri); statErr == nil {
			return nil, types.Wrap(types.ErrIncompatibleMesh, err, "opening %s", uri)
		}
		return nil, types.Wrap(types.ErrFileNotFound, err, "opening %s", uri)
	}
	var (
		shared = NewSharedSource(raw)
		src    = shared.Acquire()
		f      = d.newFormat()
	)
	defer func() {
		if err == nil {
			return
		}
		if m != nil {
			_ = m.Close()
			m = nil
			return
		}
		_ = src.Close()
	}()

	dims, err := f.PopulateDimensions(src)
	if err != nil {
		return nil, types.Wrap(types.ErrIncompatibleMesh, err, "%s", uri)
	}
	d.logger.Debug("dimensions", "uri", uri, "dims", dims.String())

	verts, faces, err := f.PopulateFacesAndVertices(src, dims)
	if err != nil {
		if types.StatusOf(err) == types.ErrInvalidData {
			return nil, err
		}
		return nil, types.Wrap(types.ErrInvalidData, err, "reading topology of %s", uri)
	}
	m = mesh.NewMesh(d.Name(), uri, verts, faces)
	m.SetSource(src)
	m.SetCRS(d.readCRS(src, f.CoordinateSystemVariableName()))
	f.AddBedElevation(m)

	offsets, ref, err := d.readTimes(src, f.TimeVariableName(), dims)
	if err != nil {
		return
	}
	infos := d.parseGroups(src, f, dims)
	for _, info := range infos {
		if err = d.addGroup(m, f, shared, info, offsets, ref); err != nil {
			return
		}
	}
	return
}

func (d *Driver) readCRS(src ArraySource, varName string) string {
	if varName == "" {
		return ""
	}
	id := src.ArrayID(varName)
	if id == NoArray {
		return ""
	}
	if wkt := src.Attribute("crs_wkt", id); wkt != "" {
		return wkt
	}
	if wkt := src.Attribute("spatial_ref", id); wkt != "" {
		return wkt
	}
	if epsg := src.Attribute("epsg", id); epsg != "" {
		return "EPSG:" + epsg
	}
	return ""
}

func (d *Driver) readTimes(src ArraySource, varName string, dims *Dimensions) (offsets []time.Duration, ref time.Time, err error) {
	nt := dims.Size(Time)
	id := src.ArrayID(varName)
	if nt == 0 || id == NoArray {
		return nil, ref, nil
	}
	raw, err := src.ReadDoubles(id, 0, nt)
	if err != nil {
		return nil, ref, types.Wrap(types.ErrInvalidData, err, "reading time variable %s", varName)
	}
	unit, ref, perr := ParseTimeUnits(src.Attribute("units", id))
	if perr != nil {
		d.logger.Warn("time units not understood, assuming hours", "variable", varName, "err", perr)
		unit, ref = time.Hour, time.Time{}
	}
	return Offsets(raw, unit), ref, nil
}

/*
parseGroups walks the file's variables in order and merges x/y components into vector groups. A variable
qualifies when its last dimension is a vertex, face or volume dimension, optionally preceded by time.
*/
func (d *Driver) parseGroups(src ArraySource, f Format, dims *Dimensions) (infos []GroupInfo) {
	var (
		ignore = f.IgnoreVariables()
		byName = make(map[string]int)
	)
	for _, v := range src.Variables() {
		if ignore[v.Name] {
			continue
		}
		info, ok := d.classify(v, dims)
		if !ok {
			continue
		}
		name, isVector, isX := f.ParseVariableName(src, v.ID, v.Name)
		if name == "" {
			name = v.Name
		}
		fill := FillValue(src, v.ID)
		idx, seen := byName[name]
		if !seen {
			info.Name, info.IsVector = name, isVector
			info.ArrayX, info.ArrayY = NoArray, NoArray
			info.FillX, info.FillY = math.NaN(), math.NaN()
			infos = append(infos, info)
			idx = len(infos) - 1
			byName[name] = idx
		}
		gi := &infos[idx]
		if gi.Location != info.Location || gi.IsVector != isVector {
			d.logger.Warn("variable clashes with an existing group", "variable", v.Name, "group", name)
			continue
		}
		if isVector && !isX {
			gi.ArrayY, gi.FillY = v.ID, fill
		} else {
			gi.ArrayX, gi.FillX = v.ID, fill
		}
	}
	complete := infos[:0]
	for _, gi := range infos {
		if gi.ArrayX == NoArray || (gi.IsVector && gi.ArrayY == NoArray) {
			d.logger.Warn("skipping vector with a missing component", "group", gi.Name)
			continue
		}
		complete = append(complete, gi)
	}
	return complete
}

func (d *Driver) classify(v Variable, dims *Dimensions) (info GroupInfo, ok bool) {
	if len(v.Dimensions) == 0 || len(v.Dimensions) > 2 {
		d.logger.Debug("skipping variable", "variable", v.Name, "dims", strings.Join(v.Dimensions, ","))
		return
	}
	info.Timesteps = 1
	if len(v.Dimensions) == 2 {
		if dims.TypeOf(v.Dimensions[0]) != Time {
			d.logger.Warn("skipping variable with an unknown leading dimension",
				"variable", v.Name, "dim", v.Dimensions[0])
			return
		}
		info.TimeDependent = true
		info.Timesteps = dims.Size(Time)
	}
	spatial := dims.TypeOf(v.Dimensions[len(v.Dimensions)-1])
	switch spatial {
	case Vertex2D:
		info.Location = types.DataOnVertices2D
	case Face2D:
		info.Location = types.DataOnFaces2D
	case Volume3D:
		info.Location = types.DataOnVolumes3D
	default:
		d.logger.Debug("skipping variable", "variable", v.Name, "dim", spatial.String())
		return
	}
	return info, true
}

func (d *Driver) addGroup(m *mesh.Mesh, f Format, shared *SharedSource, info GroupInfo,
	offsets []time.Duration, ref time.Time) (err error) {
	g := mesh.NewDatasetGroup(d.Name(), m.URI(), info.Name, info.Location, !info.IsVector)
	g.SetReferenceTime(ref)
	m.AddDatasetGroup(g)
	g.StartEditing()
	for ts := 0; ts < info.Timesteps; ts++ {
		var ds mesh.Dataset
		if info.Location == types.DataOnVolumes3D {
			if ds, err = f.Create3DDataset(g, ts, info, shared.Acquire()); err != nil {
				return fmt.Errorf("group %s timestep %d: %w", info.Name, ts, err)
			}
		} else {
			ds2 := NewDataset2D(g, ts, info, shared.Acquire())
			ds = ds2
			st, serr := mesh.CalculateDatasetStatistics(ds2)
			if serr != nil {
				_ = ds2.Close()
				return fmt.Errorf("group %s timestep %d: %w", info.Name, ts, serr)
			}
			ds2.SetStatistics(st)
		}
		if info.TimeDependent && ts < len(offsets) {
			ds.SetTime(offsets[ts])
		}
		if err = g.AddDataset(ds); err != nil {
			closeDataset(ds)
			return
		}
	}
	g.SetStatistics(mesh.CalculateGroupStatistics(g))
	g.StopEditing()
	d.logger.Debug("dataset group", "name", info.Name, "location", info.Location.String(),
		"vector", info.IsVector, "datasets", g.DatasetsCount())
	return
}

func closeDataset(ds mesh.Dataset) {
	if c, ok := ds.(io.Closer); ok {
		_ = c.Close()
	}
}
