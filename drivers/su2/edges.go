package su2

import (
	"math"

	"github.com/notargets/gomdal/mesh"
)

/*
edgeKey stores an edge's vertices as indices in a way that can be compared
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values
*/
type edgeKey uint64

// newEdgeKey packs two indices into 32 bits each, ok is false when an index doesn't fit
func newEdgeKey(verts [2]int) (packed edgeKey, ok bool) {
	for _, vert := range verts {
		if vert < 0 || vert > math.MaxUint32 {
			return 0, false
		}
	}
	i1, i2 := verts[0], verts[1]
	if i1 > i2 {
		i1, i2 = i2, i1
	}
	return edgeKey(uint64(i1) | uint64(i2)<<32), true
}

func (ek edgeKey) vertices() (verts [2]int) {
	verts[0] = int(ek & math.MaxUint32)
	verts[1] = int(ek >> 32)
	return
}

// faceEdges counts the faces sharing each edge
func faceEdges(faces []mesh.Face) (edges map[edgeKey]int) {
	edges = make(map[edgeKey]int)
	for _, f := range faces {
		for i := range f {
			if ek, ok := newEdgeKey([2]int{f[i], f[(i+1)%len(f)]}); ok {
				edges[ek]++
			}
		}
	}
	return
}
