// Package cftest provides an in-memory cf.ArraySource that counts its reads.
package cftest

import (
	"fmt"

	"github.com/notargets/gomdal/cf"
)

type array struct {
	cf.Variable
	ints    []int
	doubles []float64
	attrs   map[string]string
}

func (a *array) len() int {
	if a.ints != nil {
		return len(a.ints)
	}
	return len(a.doubles)
}

// Source holds dimensions and arrays in memory. Arrays are row-major, the leading dimension is the record.
type Source struct {
	dimNames []string
	dims     map[string]int
	arrays   []*array
	global   map[string]string

	Reads  map[string]int   // Read calls per array name
	FailOn map[string]error // Reads of these arrays fail with the error
	Closed int              // Close calls
}

func NewSource() *Source {
	return &Source{
		dims:   make(map[string]int),
		global: make(map[string]string),
		Reads:  make(map[string]int),
		FailOn: make(map[string]error),
	}
}

func (s *Source) AddDimension(name string, count int) *Source {
	if _, ok := s.dims[name]; !ok {
		s.dimNames = append(s.dimNames, name)
	}
	s.dims[name] = count
	return s
}

func (s *Source) add(name string, dims []string, attrs map[string]string) *array {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	a := &array{Variable: cf.Variable{Name: name, ID: len(s.arrays), Dimensions: dims}, attrs: attrs}
	s.arrays = append(s.arrays, a)
	return a
}

func (s *Source) AddInts(name string, dims []string, vals []int, attrs map[string]string) *Source {
	s.add(name, dims, attrs).ints = vals
	return s
}

func (s *Source) AddDoubles(name string, dims []string, vals []float64, attrs map[string]string) *Source {
	s.add(name, dims, attrs).doubles = vals
	return s
}

// SetAttribute sets a global attribute
func (s *Source) SetAttribute(key, val string) *Source {
	s.global[key] = val
	return s
}

func (s *Source) Dimension(name string) (count, id int, err error) {
	for i, n := range s.dimNames {
		if n == name {
			return s.dims[name], i, nil
		}
	}
	return 0, cf.NoArray, nil
}

func (s *Source) ArrayID(name string) int {
	for _, a := range s.arrays {
		if a.Name == name {
			return a.ID
		}
	}
	return cf.NoArray
}

func (s *Source) Variables() (vars []cf.Variable) {
	for _, a := range s.arrays {
		vars = append(vars, a.Variable)
	}
	return
}

func (s *Source) lookup(id int) (*array, error) {
	if id < 0 || id >= len(s.arrays) {
		return nil, fmt.Errorf("no array with id %d", id)
	}
	a := s.arrays[id]
	s.Reads[a.Name]++
	if err := s.FailOn[a.Name]; err != nil {
		return nil, err
	}
	return a, nil
}

// recordSize is the element count of one slice along the leading dimension
func (s *Source) recordSize(a *array) int {
	if len(a.Dimensions) < 2 {
		return 1
	}
	n := 1
	for _, d := range a.Dimensions[1:] {
		n *= s.dims[d]
	}
	return n
}

func (s *Source) window(a *array, ts, start, stride, count int) (idx []int, err error) {
	base := ts * s.recordSize(a)
	idx = make([]int, count)
	for i := range idx {
		idx[i] = base + start + i*stride
		if idx[i] < 0 || idx[i] >= a.len() {
			return nil, fmt.Errorf("%s: element %d outside [0,%d)", a.Name, idx[i], a.len())
		}
	}
	return
}

func (s *Source) ReadInts(id, start, count int) ([]int, error) {
	return s.ReadIntsAt(id, 0, start, 1, count)
}

func (s *Source) ReadDoubles(id, start, count int) ([]float64, error) {
	return s.ReadDoublesAt(id, 0, start, 1, count)
}

func (s *Source) ReadIntsAt(id, ts, start, stride, count int) (vals []int, err error) {
	a, err := s.lookup(id)
	if err != nil {
		return
	}
	idx, err := s.window(a, ts, start, stride, count)
	if err != nil {
		return
	}
	vals = make([]int, count)
	for i, j := range idx {
		if a.ints != nil {
			vals[i] = a.ints[j]
		} else {
			vals[i] = int(a.doubles[j])
		}
	}
	return
}

func (s *Source) ReadDoublesAt(id, ts, start, stride, count int) (vals []float64, err error) {
	a, err := s.lookup(id)
	if err != nil {
		return
	}
	idx, err := s.window(a, ts, start, stride, count)
	if err != nil {
		return
	}
	vals = make([]float64, count)
	for i, j := range idx {
		if a.doubles != nil {
			vals[i] = a.doubles[j]
		} else {
			vals[i] = float64(a.ints[j])
		}
	}
	return
}

func (s *Source) Attribute(name string, id int) string {
	if id == cf.NoArray {
		return s.global[name]
	}
	if id < 0 || id >= len(s.arrays) {
		return ""
	}
	return s.arrays[id].attrs[name]
}

func (s *Source) Close() error {
	s.Closed++
	return nil
}

// Opener returns an open function that hands out src for any uri
func Opener(src *Source) func(string) (cf.ArraySource, error) {
	return func(string) (cf.ArraySource, error) { return src, nil }
}
