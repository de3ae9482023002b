package su2

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type ElementType uint8

const (
	ELType_LINE          ElementType = 3
	ELType_Triangle      ElementType = 5
	ELType_Quadrilateral ElementType = 9
	ELType_Tetrahedral   ElementType = 10
	ELType_Hexahedral    ElementType = 12
	ELType_Prism         ElementType = 13
	ELType_Pyramid       ElementType = 14
)

// VertexCount is the number of vertices an element of this type lists, 0 for unknown types
func (et ElementType) VertexCount() int {
	switch et {
	case ELType_LINE:
		return 2
	case ELType_Triangle:
		return 3
	case ELType_Quadrilateral, ELType_Tetrahedral:
		return 4
	case ELType_Pyramid:
		return 5
	case ELType_Prism:
		return 6
	case ELType_Hexahedral:
		return 8
	}
	return 0
}

// Marker is a tagged boundary, a list of line elements in 2D
type Marker struct {
	Tag   string
	Edges [][2]int
}

// Grid is the content of a 2D SU2 file, indices are 0-based as on disk
type Grid struct {
	Dimensions int
	Vertices   []mesh.Vertex
	Faces      []mesh.Face
	Markers    []Marker
}

var errEarlyEOF = errors.New("early end of file")

type gridReader struct {
	reader *bufio.Reader
	line   int
}

/*
ReadGrid parses a 2D SU2 mesh. The NDIME, NELEM, NPOIN and NMARK sections may come in any order, comment lines
starting with % may appear between sections. Only triangles and quadrilaterals are accepted as elements.
*/
func ReadGrid(r io.Reader) (g *Grid, err error) {
	var (
		gr           = &gridReader{reader: bufio.NewReader(r)}
		seenElements bool
		seenPoints   bool
	)
	g = &Grid{}
	for {
		var key, val string
		if key, val, err = gr.getToken(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		switch key {
		case "NDIME":
			if g.Dimensions, err = gr.number(key, val); err != nil {
				return nil, err
			}
			if g.Dimensions != 2 {
				return nil, types.Errorf(types.ErrIncompatibleMesh, "only 2D meshes are supported, file has NDIME=%d", g.Dimensions)
			}
		case "NELEM":
			if err = gr.readElements(g, key, val); err != nil {
				return nil, err
			}
			seenElements = true
		case "NPOIN":
			if err = gr.readVertices(g, key, val); err != nil {
				return nil, err
			}
			seenPoints = true
		case "NMARK":
			if err = gr.readMarkers(g, key, val); err != nil {
				return nil, err
			}
		default:
			return nil, gr.errorf("unexpected section %s", key)
		}
	}
	switch {
	case g.Dimensions == 0:
		return nil, types.Errorf(types.ErrIncompatibleMesh, "no NDIME section")
	case !seenElements || !seenPoints:
		return nil, types.Errorf(types.ErrInvalidData, "NELEM and NPOIN sections are both required")
	}
	return g, g.validate()
}

func (g *Grid) validate() error {
	nv := len(g.Vertices)
	for k, f := range g.Faces {
		for _, v := range f {
			if v < 0 || v >= nv {
				return types.Errorf(types.ErrInvalidData, "element %d references vertex %d, mesh has %d", k, v, nv)
			}
		}
	}
	var edges map[edgeKey]int
	for _, m := range g.Markers {
		for _, e := range m.Edges {
			if e[0] < 0 || e[0] >= nv || e[1] < 0 || e[1] >= nv {
				return types.Errorf(types.ErrInvalidData, "marker %s references edge %v, mesh has %d vertices", m.Tag, e, nv)
			}
			if edges == nil {
				edges = faceEdges(g.Faces)
			}
			if ek, _ := newEdgeKey(e); edges[ek] == 0 {
				return types.Errorf(types.ErrInvalidData, "marker %s edge %v is not an element edge", m.Tag, ek.vertices())
			}
		}
	}
	return nil
}

func (gr *gridReader) errorf(format string, args ...any) error {
	return types.Errorf(types.ErrInvalidData, "line %d: %s", gr.line, fmt.Sprintf(format, args...))
}

func (gr *gridReader) getLine() (line string, err error) {
	line, err = gr.reader.ReadString('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return "", err
	}
	gr.line++
	return strings.TrimRight(line, "\r\n"), nil
}

func (gr *gridReader) getDataLine() (line string, err error) {
	if line, err = gr.getLine(); errors.Is(err, io.EOF) {
		return "", gr.errorf("%v", errEarlyEOF)
	}
	return
}

// getLineNoComments skips blank lines and lines starting with %
func (gr *gridReader) getLineNoComments() (line string, err error) {
	for {
		if line, err = gr.getLine(); err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

// getToken splits a "KEY= value" line
func (gr *gridReader) getToken() (key, val string, err error) {
	line, err := gr.getLineNoComments()
	if err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		return "", "", gr.errorf("badly formed input line [%s], should have an =", line)
	}
	return strings.TrimSpace(line[:ind]), strings.TrimSpace(line[ind+1:]), nil
}

func (gr *gridReader) number(key, val string) (num int, err error) {
	if _, err = fmt.Sscanf(val, "%d", &num); err != nil || num < 0 {
		return 0, gr.errorf("unable to read %s from token [%s]", key, val)
	}
	return
}

func (gr *gridReader) expect(key string) (val string, err error) {
	k, val, err := gr.getToken()
	if errors.Is(err, io.EOF) {
		return "", gr.errorf("%v, expected %s", errEarlyEOF, key)
	}
	if err == nil && k != key {
		err = gr.errorf("expected %s, found %s", key, k)
	}
	return
}

func (gr *gridReader) readElements(g *Grid, key, val string) error {
	K, err := gr.number(key, val)
	if err != nil {
		return err
	}
	g.Faces = make([]mesh.Face, K)
	for k := 0; k < K; k++ {
		line, err := gr.getDataLine()
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return gr.errorf("empty element line")
		}
		var nType int
		if _, err = fmt.Sscanf(fields[0], "%d", &nType); err != nil {
			return gr.errorf("unable to read element type from [%s]", line)
		}
		et := ElementType(nType)
		if et != ELType_Triangle && et != ELType_Quadrilateral {
			return types.Errorf(types.ErrIncompatibleMesh, "line %d: element type %d is not a 2D cell", gr.line, nType)
		}
		nv := et.VertexCount()
		if len(fields) < nv+1 {
			return gr.errorf("element %d lists %d vertices, type %d needs %d", k, len(fields)-1, nType, nv)
		}
		face := make(mesh.Face, nv)
		for i := range face {
			if _, err = fmt.Sscanf(fields[i+1], "%d", &face[i]); err != nil {
				return gr.errorf("unable to read vertices from [%s]", line)
			}
		}
		g.Faces[k] = face
	}
	return nil
}

func (gr *gridReader) readVertices(g *Grid, key, val string) error {
	Nv, err := gr.number(key, val)
	if err != nil {
		return err
	}
	g.Vertices = make([]mesh.Vertex, Nv)
	for i := 0; i < Nv; i++ {
		line, err := gr.getDataLine()
		if err != nil {
			return err
		}
		var (
			n    int
			x, y float64
		)
		if n, err = fmt.Sscanf(line, "%g %g", &x, &y); err != nil || n != 2 {
			return gr.errorf("unable to read coordinates from [%s]", line)
		}
		g.Vertices[i].X, g.Vertices[i].Y = x, y
	}
	return nil
}

func (gr *gridReader) readMarkers(g *Grid, key, val string) error {
	NBCs, err := gr.number(key, val)
	if err != nil {
		return err
	}
	for n := 0; n < NBCs; n++ {
		tag, err := gr.expect("MARKER_TAG")
		if err != nil {
			return err
		}
		if tag == "" {
			return gr.errorf("empty marker tag")
		}
		val, err := gr.expect("MARKER_ELEMS")
		if err != nil {
			return err
		}
		nEdges, err := gr.number("MARKER_ELEMS", val)
		if err != nil {
			return err
		}
		m := Marker{Tag: tag, Edges: make([][2]int, nEdges)}
		for i := 0; i < nEdges; i++ {
			line, err := gr.getDataLine()
			if err != nil {
				return err
			}
			var nType, v1, v2 int
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				return gr.errorf("unable to read marker element from [%s]", line)
			}
			if ElementType(nType) != ELType_LINE {
				return gr.errorf("markers should only contain line elements in 2D, found type %d", nType)
			}
			m.Edges[i] = [2]int{v1, v2}
		}
		g.Markers = append(g.Markers, m)
	}
	return nil
}
