/*
Package mdal is the public entry point: it owns the registered drivers and exposes loading, edit mode and
windowed reads with explicit error results. Every failure carries a types.Status, recover it with
types.StatusOf.
*/
package mdal

import (
	"log/slog"
	"time"

	"github.com/notargets/gomdal/cf"
	"github.com/notargets/gomdal/driver"
	"github.com/notargets/gomdal/drivers/boltstore"
	"github.com/notargets/gomdal/drivers/su2"
	"github.com/notargets/gomdal/drivers/tuflowfv"
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/netcdf"
	"github.com/notargets/gomdal/types"
)

const Version = "0.1.0"

type Options struct {
	Logger *slog.Logger
	// Open backs the NetCDF based drivers, netcdf.Opener(Logger) when nil
	Open func(uri string) (cf.ArraySource, error)
	// StoreTimeout bounds the wait for a dataset store's file lock
	StoreTimeout time.Duration
}

type Library struct {
	manager *driver.Manager
	logger  *slog.Logger
}

// DefaultDrivers lists the built in drivers in probing order
func DefaultDrivers(opts Options) []driver.Driver {
	open := opts.Open
	if open == nil {
		open = netcdf.Opener(opts.Logger)
	}
	return []driver.Driver{
		tuflowfv.NewDriver(cf.Options{Logger: opts.Logger, Open: open}),
		su2.NewDriver(su2.Options{Logger: opts.Logger}),
		boltstore.NewDriver(boltstore.Options{Logger: opts.Logger, Timeout: opts.StoreTimeout}),
	}
}

func New(opts Options) *Library {
	return NewWithDrivers(opts.Logger, DefaultDrivers(opts)...)
}

func NewWithDrivers(logger *slog.Logger, drivers ...driver.Driver) *Library {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Library{
		manager: driver.NewManager(logger, drivers...),
		logger:  logger,
	}
}

func (l *Library) Drivers() []driver.Driver { return l.manager.Drivers() }

func (l *Library) Driver(name string) (driver.Driver, error) {
	d := l.manager.Driver(name)
	if d == nil {
		return nil, types.Errorf(types.ErrMissingDriver, "no driver named %q", name)
	}
	return d, nil
}

// LoadMesh opens uri with the first driver that recognises it. Close the mesh to release the file.
func (l *Library) LoadMesh(uri string) (*mesh.Mesh, error) {
	return l.manager.Load(uri)
}

// LoadDatasets appends the dataset groups stored in uri to m
func (l *Library) LoadDatasets(m *mesh.Mesh, uri string) error {
	if m == nil {
		return types.Errorf(types.ErrIncompatibleMesh, "no mesh")
	}
	return l.manager.LoadDatasets(uri, m)
}

// AddDatasetGroup appends a new group in edit mode to m, stored by the named driver at uri
func (l *Library) AddDatasetGroup(m *mesh.Mesh, name string, dl types.DataLocation, isScalar bool,
	driverName, uri string) (*mesh.DatasetGroup, error) {
	switch {
	case m == nil:
		return nil, types.Errorf(types.ErrIncompatibleMesh, "no mesh")
	case name == "":
		return nil, types.Errorf(types.ErrInvalidData, "empty group name")
	case uri == "":
		return nil, types.Errorf(types.ErrInvalidData, "empty dataset group file")
	}
	d, err := l.Driver(driverName)
	if err != nil {
		return nil, err
	}
	if !d.HasWriteDatasetCapability(dl) {
		return nil, types.Errorf(types.ErrMissingDriverCapability, "driver %s cannot write datasets %s", d.Name(), dl)
	}
	return d.CreateDatasetGroup(m, name, dl, isScalar, uri)
}

/*
AddDataset appends one timestep to a group in edit mode. values holds one value per element, interleaved (x,y)
for vectors. active holds one flag per face and is only accepted for groups on vertices, pass nil otherwise.
*/
func (l *Library) AddDataset(g *mesh.DatasetGroup, t time.Duration, values []float64, active []int) (mesh.Dataset, error) {
	switch {
	case g == nil:
		return nil, types.Errorf(types.ErrIncompatibleDataset, "no dataset group")
	case values == nil:
		return nil, types.Errorf(types.ErrInvalidData, "no values")
	case !g.IsInEditMode():
		return nil, types.Errorf(types.ErrIncompatibleDataset, "group %q is not in edit mode", g.Name())
	}
	d, err := l.Driver(g.DriverName())
	if err != nil {
		return nil, err
	}
	if !d.HasWriteDatasetCapability(g.DataLocation()) || g.DataLocation() == types.DataOnVolumes3D {
		return nil, types.Errorf(types.ErrMissingDriverCapability, "driver %s cannot write datasets %s",
			d.Name(), g.DataLocation())
	}
	if active != nil && g.DataLocation() != types.DataOnVertices2D {
		return nil, types.Errorf(types.ErrIncompatibleDataset, "active flags need a group on vertices")
	}
	return d.CreateDataset(g, t, values, active)
}

// CloseEditMode computes the group statistics, leaves edit mode and has the driver persist the group
func (l *Library) CloseEditMode(g *mesh.DatasetGroup) error {
	if g == nil {
		return types.Errorf(types.ErrIncompatibleDataset, "no dataset group")
	}
	if !g.IsInEditMode() {
		return nil
	}
	g.SetStatistics(mesh.CalculateGroupStatistics(g))
	g.StopEditing()
	d, err := l.Driver(g.DriverName())
	if err != nil {
		return err
	}
	if !d.HasWriteDatasetCapability(g.DataLocation()) {
		return types.Errorf(types.ErrMissingDriverCapability, "driver %s cannot write datasets %s", d.Name(), g.DataLocation())
	}
	if err = d.Persist(g); err != nil {
		return types.Wrap(types.ErrInvalidData, err, "persisting group %q", g.Name())
	}
	l.logger.Debug("closed edit mode", "group", g.Name(), "uri", g.URI(), "datasets", g.DatasetsCount())
	return nil
}

func (l *Library) SetMetadata(g *mesh.DatasetGroup, key, val string) error {
	switch {
	case g == nil:
		return types.Errorf(types.ErrIncompatibleDataset, "no dataset group")
	case key == "":
		return types.Errorf(types.ErrInvalidData, "empty metadata key")
	}
	g.SetMetadata(key, val)
	return nil
}

// Data forwards to mesh.Data
func (l *Library) Data(ds mesh.Dataset, kind types.DataType, indexStart, count int, buffer any) (int, error) {
	return mesh.Data(ds, kind, indexStart, count, buffer)
}
