// Package cf is the framework shared by drivers of array oriented ("common format") scientific files.
package cf

// NoArray is the identifier of an array the file does not carry
const NoArray = -1

// Variable describes one named array of the file
type Variable struct {
	Name       string
	ID         int
	Dimensions []string // Slowest varying first
}

/*
ArraySource is an opened array file. Arrays are addressed by the identifier ArrayID hands out and read in
row-major order over their flattened extent. The At reads address one record along the leading (time)
dimension: element i of the result is record[start+i*stride].

Reads are not bounds checked against the logical mesh; callers clamp windows before reading.
*/
type ArraySource interface {
	// Dimension returns the length of the named dimension and its identifier, or 0 and NoArray when absent
	Dimension(name string) (count, id int, err error)
	// ArrayID returns NoArray when the file has no such array
	ArrayID(name string) int
	Variables() []Variable
	ReadInts(id, start, count int) ([]int, error)
	ReadDoubles(id, start, count int) ([]float64, error)
	ReadIntsAt(id, ts, start, stride, count int) ([]int, error)
	ReadDoublesAt(id, ts, start, stride, count int) ([]float64, error)
	// Attribute returns "" for a missing attribute; id NoArray addresses the file's global attributes
	Attribute(name string, id int) string
	Close() error
}

// SharedSource counts the holders of one open ArraySource and closes it when the last one lets go
type SharedSource struct {
	src  ArraySource
	refs int
}

func NewSharedSource(src ArraySource) *SharedSource {
	return &SharedSource{src: src}
}

// Acquire hands out a new reference, each reference is released once by its Close
func (ss *SharedSource) Acquire() *SourceRef {
	ss.refs++
	return &SourceRef{ArraySource: ss.src, shared: ss}
}

// Refs is the number of live references
func (ss *SharedSource) Refs() int { return ss.refs }

func (ss *SharedSource) release() error {
	ss.refs--
	if ss.refs == 0 {
		return ss.src.Close()
	}
	return nil
}

// SourceRef is one holder's view of a SharedSource
type SourceRef struct {
	ArraySource
	shared   *SharedSource
	released bool
}

func (sr *SourceRef) Close() error {
	if sr.released {
		return nil
	}
	sr.released = true
	return sr.shared.release()
}
