package cf

import (
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
)

// BuildVertices zips parallel coordinate arrays, z may be nil for flat meshes
func BuildVertices(x, y, z []float64) (verts []mesh.Vertex, err error) {
	if len(x) != len(y) || (z != nil && len(z) != len(x)) {
		return nil, types.Errorf(types.ErrInvalidData,
			"coordinate arrays differ in length: x=%d y=%d z=%d", len(x), len(y), len(z))
	}
	verts = make([]mesh.Vertex, len(x))
	for i := range x {
		verts[i].X, verts[i].Y = x[i], y[i]
		if z != nil {
			verts[i].Z = z[i]
		}
	}
	return
}

/*
BuildFaces unpacks fixed stride, 1-based connectivity into 0-based faces.
Face i uses the first counts[i] entries of conn[i*stride:(i+1)*stride]. Any index that doesn't address one of
the vertexCount vertices makes the whole topology invalid.
*/
func BuildFaces(conn, counts []int, stride, vertexCount int) (faces []mesh.Face, err error) {
	if len(conn) < len(counts)*stride {
		return nil, types.Errorf(types.ErrInvalidData,
			"connectivity holds %d entries, need %d", len(conn), len(counts)*stride)
	}
	faces = make([]mesh.Face, len(counts))
	for i, nv := range counts {
		if nv < 0 || nv > stride {
			return nil, types.Errorf(types.ErrInvalidData, "face %d has %d vertices, max is %d", i, nv, stride)
		}
		face := make(mesh.Face, nv)
		for j := 0; j < nv; j++ {
			idx := conn[i*stride+j] - 1
			if idx < 0 || idx >= vertexCount {
				return nil, types.Errorf(types.ErrInvalidData,
					"face %d references vertex %d, mesh has %d", i, idx+1, vertexCount)
			}
			face[j] = idx
		}
		faces[i] = face
	}
	return
}
