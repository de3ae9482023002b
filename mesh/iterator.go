package mesh

// VertexIterator pages through the mesh vertices as packed x,y,z triples
type VertexIterator struct {
	m    *Mesh
	next int
}

func (m *Mesh) VertexIterator() *VertexIterator {
	return &VertexIterator{m: m}
}

// Next copies up to count vertices into coordinates (3 values each) and returns how many were copied
func (it *VertexIterator) Next(count int, coordinates []float64) (n int) {
	n = CopyCount(it.next, min(count, len(coordinates)/3), it.m.VerticesCount())
	for i := 0; i < n; i++ {
		v := it.m.Vertices[it.next+i]
		coordinates[3*i], coordinates[3*i+1], coordinates[3*i+2] = v.X, v.Y, v.Z
	}
	it.next += n
	return
}

// FaceIterator pages through faces as an offsets array plus a flat vertex index array
type FaceIterator struct {
	m    *Mesh
	next int
}

func (m *Mesh) FaceIterator() *FaceIterator {
	return &FaceIterator{m: m}
}

/*
Next fills faceOffsets and vertexIndices with as many whole faces as both buffers hold. faceOffsets[i] is the
position in vertexIndices one past the last vertex of face i of this batch. Returns the number of faces copied.
*/
func (it *FaceIterator) Next(faceOffsets, vertexIndices []int) (n int) {
	var used int
	for it.next < it.m.FacesCount() && n < len(faceOffsets) {
		f := it.m.Faces[it.next]
		if used+len(f) > len(vertexIndices) {
			break
		}
		used += copy(vertexIndices[used:], f)
		faceOffsets[n] = used
		n++
		it.next++
	}
	return
}
