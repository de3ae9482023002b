package driver

import (
	"log/slog"
	"os"

	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
)

// Manager holds the drivers known to one library instance, in probing order
type Manager struct {
	drivers []Driver
	logger  *slog.Logger
}

func NewManager(logger *slog.Logger, drivers ...Driver) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{drivers: drivers, logger: logger}
}

func (dm *Manager) Drivers() []Driver { return dm.drivers }

func (dm *Manager) Count() int { return len(dm.drivers) }

// Driver returns nil when no driver is registered under name
func (dm *Manager) Driver(name string) Driver {
	for _, d := range dm.drivers {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// Load opens uri with the first mesh reading driver that recognises it
func (dm *Manager) Load(uri string) (*mesh.Mesh, error) {
	if err := fileExists(uri); err != nil {
		return nil, err
	}
	for _, d := range dm.drivers {
		if !d.HasCapability(types.ReadMesh) || !d.CanReadMesh(uri) {
			continue
		}
		dm.logger.Debug("loading mesh", "uri", uri, "driver", d.Name())
		return d.Load(uri)
	}
	return nil, types.Errorf(types.ErrIncompatibleMesh, "no driver recognises %s", uri)
}

// LoadDatasets attaches the dataset groups stored in uri to m
func (dm *Manager) LoadDatasets(uri string, m *mesh.Mesh) error {
	if err := fileExists(uri); err != nil {
		return err
	}
	for _, d := range dm.drivers {
		if !d.HasCapability(types.ReadDatasets) || !d.CanReadDatasets(uri) {
			continue
		}
		dm.logger.Debug("loading datasets", "uri", uri, "driver", d.Name())
		return d.LoadDatasets(uri, m)
	}
	return types.Errorf(types.ErrIncompatibleMesh, "no driver reads datasets from %s", uri)
}

func fileExists(uri string) error {
	if uri == "" {
		return types.Errorf(types.ErrFileNotFound, "empty file name")
	}
	if _, err := os.Stat(uri); err != nil {
		return types.Wrap(types.ErrFileNotFound, err, "%s", uri)
	}
	return nil
}
