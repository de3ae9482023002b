package cf

import (
	"fmt"
	"strings"
)

// DimensionType is the topological role of a file dimension
type DimensionType uint8

const (
	UnknownDimension DimensionType = iota
	Vertex2D
	Face2D
	MaxVerticesInFace
	Volume3D
	StackedFace3D
	Time
)

func (dt DimensionType) String() string {
	return [...]string{"Unknown", "Vertex2D", "Face2D", "MaxVerticesInFace", "Volume3D", "StackedFace3D", "Time"}[dt]
}

type dimension struct {
	name  string
	count int
	id    int
}

// Dimensions maps the roles a driver discovered onto the file's dimensions
type Dimensions struct {
	dims map[DimensionType]dimension
}

func NewDimensions() *Dimensions {
	return &Dimensions{dims: make(map[DimensionType]dimension)}
}

func (d *Dimensions) SetDimension(dt DimensionType, name string, count, id int) {
	d.dims[dt] = dimension{name: name, count: count, id: id}
}

// Size is 0 for a role that was never set
func (d *Dimensions) Size(dt DimensionType) int {
	return d.dims[dt].count
}

func (d *Dimensions) ID(dt DimensionType) int {
	if dim, ok := d.dims[dt]; ok {
		return dim.id
	}
	return NoArray
}

// TypeOf returns the role of the file dimension called name
func (d *Dimensions) TypeOf(name string) DimensionType {
	for dt, dim := range d.dims {
		if dim.name == name && name != "" {
			return dt
		}
	}
	return UnknownDimension
}

func (d *Dimensions) String() string {
	var sb strings.Builder
	for dt := Vertex2D; dt <= Time; dt++ {
		if dim, ok := d.dims[dt]; ok {
			fmt.Fprintf(&sb, "%s(%s)=%d ", dt, dim.name, dim.count)
		}
	}
	return strings.TrimSpace(sb.String())
}

// Populate reads each named dimension into its role, absent dimensions get size 0
func (d *Dimensions) Populate(src ArraySource, names map[DimensionType]string) error {
	for dt := Vertex2D; dt <= Time; dt++ {
		name, ok := names[dt]
		if !ok {
			continue
		}
		count, id, err := src.Dimension(name)
		if err != nil {
			return fmt.Errorf("reading dimension %s: %w", name, err)
		}
		d.SetDimension(dt, name, count, id)
	}
	return nil
}
