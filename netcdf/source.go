// Package netcdf exposes NetCDF (classic CDF and HDF5 based) files as a cf.ArraySource.
package netcdf

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"

	nc "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/notargets/gomdal/cf"
)

/*
Source reads variables through the library's sliced getters, so a read only pulls the records (slices along
the leading dimension) its window touches.

The library does not list dimensions, their sizes are recovered from the shapes of the variables that use
them. A dimension no variable uses is reported absent. Variables without numeric values (char arrays,
compound types) are left out of the index.
*/
type Source struct {
	logger   *slog.Logger
	group    api.Group
	vars     []cf.Variable
	getters  []api.VarGetter
	ids      map[string]int
	dimNames []string
	dims     map[string]int
}

// Open is the cf.Options.Open for NetCDF files
func Open(uri string) (cf.ArraySource, error) {
	return Opener(nil)(uri)
}

// Opener is Open with skipped variables logged at Debug to logger
func Opener(logger *slog.Logger) func(uri string) (cf.ArraySource, error) {
	return func(uri string) (cf.ArraySource, error) {
		src, err := OpenSource(uri, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

func OpenSource(uri string, logger *slog.Logger) (src *Source, err error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g, err := nc.Open(uri)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", uri, err)
	}
	src = &Source{
		logger: logger.With("uri", uri),
		group:  g,
		ids:    make(map[string]int),
		dims:   make(map[string]int),
	}
	src.index()
	return
}

func (s *Source) index() {
	for _, name := range s.group.ListVariables() {
		vg, err := s.group.GetVarGetter(name)
		if err == nil {
			err = s.learnDimensions(vg)
		}
		if err != nil {
			s.logger.Debug("skipping variable", "variable", name, "err", err)
			continue
		}
		v := cf.Variable{Name: name, ID: len(s.vars), Dimensions: vg.Dimensions()}
		s.ids[name] = v.ID
		s.vars = append(s.vars, v)
		s.getters = append(s.getters, vg)
	}
}

// learnDimensions checks the first record is numeric and of the declared rank before recording any sizes
func (s *Source) learnDimensions(vg api.VarGetter) error {
	names := vg.Dimensions()
	switch {
	case len(names) == 0:
		return nil
	case vg.Len() == 0:
		s.addDimension(names[0], 0)
		return nil
	}
	first, err := vg.GetSlice(0, 1)
	if err != nil {
		return err
	}
	if !Numeric(first) {
		return fmt.Errorf("non numeric values of type %s", vg.GoType())
	}
	shape := Shape(first)
	if len(shape) != len(names) {
		return fmt.Errorf("has %d dimensions but a rank %d record", len(names), len(shape))
	}
	s.addDimension(names[0], int(vg.Len()))
	for i, name := range names[1:] {
		s.addDimension(name, shape[i+1])
	}
	return nil
}

func (s *Source) addDimension(name string, count int) {
	if _, ok := s.dims[name]; !ok {
		s.dimNames = append(s.dimNames, name)
		s.dims[name] = count
	}
}

func (s *Source) Dimension(name string) (count, id int, err error) {
	for i, n := range s.dimNames {
		if n == name {
			return s.dims[n], i, nil
		}
	}
	return 0, cf.NoArray, nil
}

func (s *Source) ArrayID(name string) int {
	if id, ok := s.ids[name]; ok {
		return id
	}
	return cf.NoArray
}

func (s *Source) Variables() []cf.Variable { return s.vars }

// recordSize is the flattened length of one slice along the leading dimension
func (s *Source) recordSize(id int) int {
	n := 1
	for _, d := range s.vars[id].Dimensions[min(1, len(s.vars[id].Dimensions)):] {
		n *= s.dims[d]
	}
	return n
}

// readFlat returns count values from the row-major flattening of the array, starting at start
func (s *Source) readFlat(id, start, count int) ([]float64, error) {
	if id < 0 || id >= len(s.getters) {
		return nil, fmt.Errorf("no array with id %d", id)
	}
	if count <= 0 {
		return nil, nil
	}
	var (
		rs    = s.recordSize(id)
		first = start / rs
		last  = (start + count - 1) / rs
	)
	raw, err := s.getters[id].GetSlice(int64(first), int64(last+1))
	if err != nil {
		return nil, fmt.Errorf("%s[%d:%d]: %w", s.vars[id].Name, first, last+1, err)
	}
	flat, err := Flatten(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.vars[id].Name, err)
	}
	off := start - first*rs
	if off+count > len(flat) {
		return nil, fmt.Errorf("%s: short read, %d values for window %d+%d", s.vars[id].Name, len(flat), off, count)
	}
	return flat[off : off+count], nil
}

func (s *Source) readStrided(id, ts, start, stride, count int) ([]float64, error) {
	if id < 0 || id >= len(s.getters) {
		return nil, fmt.Errorf("no array with id %d", id)
	}
	if stride < 1 {
		stride = 1
	}
	base := ts*s.recordSize(id) + start
	span, err := s.readFlat(id, base, (count-1)*stride+1)
	if err != nil || stride == 1 {
		return span, err
	}
	vals := make([]float64, count)
	for i := range vals {
		vals[i] = span[i*stride]
	}
	return vals, nil
}

func (s *Source) ReadDoubles(id, start, count int) ([]float64, error) {
	return s.readFlat(id, start, count)
}

func (s *Source) ReadInts(id, start, count int) ([]int, error) {
	vals, err := s.readFlat(id, start, count)
	return toInts(vals), err
}

func (s *Source) ReadDoublesAt(id, ts, start, stride, count int) ([]float64, error) {
	return s.readStrided(id, ts, start, stride, count)
}

func (s *Source) ReadIntsAt(id, ts, start, stride, count int) ([]int, error) {
	vals, err := s.readStrided(id, ts, start, stride, count)
	return toInts(vals), err
}

func toInts(vals []float64) (ints []int) {
	if vals == nil {
		return nil
	}
	ints = make([]int, len(vals))
	for i, v := range vals {
		ints[i] = int(v)
	}
	return
}

func (s *Source) Attribute(name string, id int) string {
	var attrs api.AttributeMap
	switch {
	case id == cf.NoArray:
		attrs = s.group.Attributes()
	case id >= 0 && id < len(s.getters):
		attrs = s.getters[id].Attributes()
	}
	if attrs == nil {
		return ""
	}
	val, ok := attrs.Get(name)
	if !ok {
		return ""
	}
	return AttributeString(val)
}

func (s *Source) Close() error {
	s.group.Close()
	return nil
}

// AttributeString renders an attribute value, single element arrays as their element
func AttributeString(val any) string {
	v := reflect.ValueOf(val)
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		if v.Type().Elem().Kind() == reflect.Uint8 && v.Kind() == reflect.Slice {
			return string(v.Bytes())
		}
		if v.Len() != 1 {
			return fmt.Sprint(val)
		}
		v = v.Index(0)
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	}
	return fmt.Sprint(v.Interface())
}

// Shape is the length of each nesting level of a (possibly nested) slice
func Shape(val any) (shape []int) {
	v := reflect.ValueOf(val)
	for v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) {
		shape = append(shape, v.Len())
		if v.Len() == 0 {
			break
		}
		v = v.Index(0)
	}
	return
}

// Numeric reports whether the innermost element type of val is an integer or float
func Numeric(val any) bool {
	t := reflect.TypeOf(val)
	for t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
		t = t.Elem()
	}
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// Flatten converts a numeric scalar or (nested) slice into row-major float64 values
func Flatten(val any) (flat []float64, err error) {
	err = flatten(reflect.ValueOf(val), &flat)
	return
}

func flatten(v reflect.Value, flat *[]float64) error {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := flatten(v.Index(i), flat); err != nil {
				return err
			}
		}
	case reflect.Float32, reflect.Float64:
		*flat = append(*flat, v.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		*flat = append(*flat, float64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		*flat = append(*flat, float64(v.Uint()))
	case reflect.Interface:
		return flatten(v.Elem(), flat)
	default:
		return fmt.Errorf("non numeric value of kind %s", v.Kind())
	}
	return nil
}
