/*
Package boltstore keeps 2D dataset groups in a bbolt file, one msgpack record per group.

The store holds datasets only, the mesh they belong to comes from another driver. Loading checks that every
stored group has as many values per dataset as the mesh has vertices or faces.
*/
package boltstore

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/notargets/gomdal/driver"
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

const (
	DriverName = "BOLTSTORE"
	LongName   = "Bolt dataset store"
	Filters    = "*.gmdb"
)

var groupsBucket = []byte("groups")

type metaRecord struct {
	Key   string `msgpack:"k"`
	Value string `msgpack:"v"`
}

type datasetRecord struct {
	Time   time.Duration `msgpack:"t"`
	Valid  bool          `msgpack:"ok"`
	Values []float64     `msgpack:"v"`
	Active []int         `msgpack:"a,omitempty"`
}

type groupRecord struct {
	Location      types.DataLocation `msgpack:"l"`
	Scalar        bool               `msgpack:"s"`
	Metadata      []metaRecord       `msgpack:"m"`
	ReferenceTime time.Time          `msgpack:"rt"`
	ValuesCount   int                `msgpack:"vc"`
	Datasets      []datasetRecord    `msgpack:"d"`
}

type Options struct {
	Logger *slog.Logger
	// Timeout bounds the wait for the file lock, zero waits forever
	Timeout time.Duration
}

type Driver struct {
	driver.Base
	logger  *slog.Logger
	timeout time.Duration
}

func NewDriver(opts Options) (d *Driver) {
	d = &Driver{
		Base: driver.NewBase(DriverName, LongName, Filters,
			types.ReadDatasets|types.WriteDatasetsOnVertices2D|types.WriteDatasetsOnFaces2D),
		logger:  opts.Logger,
		timeout: opts.Timeout,
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	d.logger = d.logger.With("driver", DriverName)
	return
}

func (d *Driver) open(uri string, readOnly bool) (*bbolt.DB, error) {
	if readOnly {
		// bbolt creates missing files even when opening read only
		if _, err := os.Stat(uri); err != nil {
			return nil, err
		}
	}
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = d.timeout
	bopt.ReadOnly = readOnly
	return bbolt.Open(uri, 0666, &bopt)
}

// CreateDatasetGroup starts a new group in edit mode, bound to the store at uri
func (d *Driver) CreateDatasetGroup(m *mesh.Mesh, name string, dl types.DataLocation, isScalar bool, uri string) (*mesh.DatasetGroup, error) {
	if !d.HasWriteDatasetCapability(dl) {
		return nil, types.Errorf(types.ErrMissingDriverCapability, "%s cannot write datasets %s", DriverName, dl)
	}
	g := mesh.NewDatasetGroup(DriverName, uri, name, dl, isScalar)
	m.AddDatasetGroup(g)
	g.StartEditing()
	return g, nil
}

// CreateDataset copies values (interleaved for vectors) and optional per face active flags into a new dataset
func (d *Driver) CreateDataset(g *mesh.DatasetGroup, t time.Duration, values []float64, active []int) (mesh.Dataset, error) {
	if !d.HasWriteDatasetCapability(g.DataLocation()) {
		return nil, types.Errorf(types.ErrMissingDriverCapability, "%s cannot write datasets %s", DriverName, g.DataLocation())
	}
	ds := mesh.NewMemoryDataset2D(g, active != nil)
	if err := ds.SetValues(values); err != nil {
		return nil, err
	}
	if active != nil {
		if err := ds.SetActive(active); err != nil {
			return nil, err
		}
	}
	ds.SetTime(t)
	st, err := mesh.CalculateDatasetStatistics(ds)
	if err != nil {
		return nil, err
	}
	ds.SetStatistics(st)
	if err = g.AddDataset(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Persist appends g to the store at its URI, creating the file when needed
func (d *Driver) Persist(g *mesh.DatasetGroup) (err error) {
	if g.IsInEditMode() {
		return types.Errorf(types.ErrIncompatibleDatasetGroup, "group %q is still being edited", g.Name())
	}
	rec, err := newGroupRecord(g)
	if err != nil {
		return
	}
	raw, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding group %q: %w", g.Name(), err)
	}
	db, err := d.open(g.URI(), false)
	if err != nil {
		return fmt.Errorf("opening %s: %w", g.URI(), err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(groupsBucket)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(sequenceKey(seq), raw)
	})
	if err == nil {
		d.logger.Debug("persisted group", "uri", g.URI(), "group", g.Name(), "datasets", g.DatasetsCount())
	}
	return
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func newGroupRecord(g *mesh.DatasetGroup) (rec groupRecord, err error) {
	rec = groupRecord{
		Location:      g.DataLocation(),
		Scalar:        g.IsScalar(),
		ReferenceTime: g.ReferenceTime(),
	}
	for _, md := range g.Metadata() {
		rec.Metadata = append(rec.Metadata, metaRecord{Key: md.Key, Value: md.Value})
	}
	if m := g.Mesh(); m != nil {
		rec.ValuesCount = m.ValuesCount(g.DataLocation())
	}
	for i, ds := range g.Datasets {
		md, ok := ds.(*mesh.MemoryDataset2D)
		if !ok {
			return rec, types.Errorf(types.ErrIncompatibleDataset, "dataset %d of %q is not held in memory", i, g.Name())
		}
		rec.Datasets = append(rec.Datasets, datasetRecord{
			Time:   md.Time(),
			Valid:  md.IsValid(),
			Values: md.Values(),
			Active: md.Active(),
		})
	}
	return
}

func (d *Driver) CanReadDatasets(uri string) (ok bool) {
	db, err := d.open(uri, true)
	if err != nil {
		return false
	}
	defer db.Close()
	_ = db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(groupsBucket) != nil
		return nil
	})
	return
}

// LoadDatasets appends every stored group to m, nothing is appended when any group doesn't fit the mesh
func (d *Driver) LoadDatasets(uri string, m *mesh.Mesh) (err error) {
	db, err := d.open(uri, true)
	if err != nil {
		return types.Wrap(types.ErrFileNotFound, err, "opening %s", uri)
	}
	defer db.Close()

	var recs []groupRecord
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(groupsBucket)
		if b == nil {
			return types.Errorf(types.ErrIncompatibleMesh, "%s holds no dataset groups", uri)
		}
		return b.ForEach(func(k, v []byte) error {
			var rec groupRecord
			if err := msgpack.Unmarshal(v, &rec); err != nil {
				return types.Wrap(types.ErrInvalidData, err, "decoding group %x", k)
			}
			if !rec.Location.Is2D() || rec.ValuesCount != m.ValuesCount(rec.Location) {
				return types.Errorf(types.ErrIncompatibleMesh, "group needs %d values %s, mesh has %d",
					rec.ValuesCount, rec.Location, m.ValuesCount(rec.Location))
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return
	}
	for _, rec := range recs {
		if err = d.addGroup(m, uri, rec); err != nil {
			return
		}
	}
	return
}

func (d *Driver) addGroup(m *mesh.Mesh, uri string, rec groupRecord) error {
	g := mesh.NewDatasetGroup(DriverName, uri, "", rec.Location, rec.Scalar)
	for _, md := range rec.Metadata {
		g.SetMetadata(md.Key, md.Value)
	}
	if !rec.ReferenceTime.IsZero() {
		g.SetReferenceTime(rec.ReferenceTime.UTC())
	}
	m.AddDatasetGroup(g)
	g.StartEditing()
	defer g.StopEditing()
	for _, dr := range rec.Datasets {
		ds := mesh.NewMemoryDataset2D(g, dr.Active != nil)
		if err := ds.SetValues(dr.Values); err != nil {
			return err
		}
		if dr.Active != nil {
			if err := ds.SetActive(dr.Active); err != nil {
				return err
			}
		}
		ds.SetTime(dr.Time)
		ds.SetIsValid(dr.Valid)
		st, err := mesh.CalculateDatasetStatistics(ds)
		if err != nil {
			return err
		}
		ds.SetStatistics(st)
		if err = g.AddDataset(ds); err != nil {
			return err
		}
	}
	g.SetStatistics(mesh.CalculateGroupStatistics(g))
	d.logger.Debug("loaded group", "uri", uri, "group", g.Name(), "datasets", g.DatasetsCount())
	return nil
}
