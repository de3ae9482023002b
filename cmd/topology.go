/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/notargets/gomdal/mesh"
	"github.com/spf13/cobra"
)

type Topology struct {
	Vertices [][3]float64 `json:"vertices"`
	Faces    [][]int      `json:"faces"`
}

func newTopologyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "topology <mesh file>",
		Short: "Export vertices and faces as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.lib.LoadMesh(args[0])
			if err != nil {
				return err
			}
			defer m.Close()
			return writeYAML(cmd.OutOrStdout(), ExportTopology(m, a.chunkSize()))
		},
	}
}

// ExportTopology walks the mesh iterators chunk vertices or faces at a time
func ExportTopology(m *mesh.Mesh, chunk int) (tp Topology) {
	var (
		coords  = make([]float64, 3*chunk)
		vit     = m.VertexIterator()
		offsets = make([]int, chunk)
		indices = make([]int, chunk*max(1, m.FaceVerticesMaximumCount()))
		fit     = m.FaceIterator()
	)
	for n := vit.Next(chunk, coords); n > 0; n = vit.Next(chunk, coords) {
		for i := 0; i < n; i++ {
			tp.Vertices = append(tp.Vertices, [3]float64{coords[3*i], coords[3*i+1], coords[3*i+2]})
		}
	}
	for n := fit.Next(offsets, indices); n > 0; n = fit.Next(offsets, indices) {
		prev := 0
		for _, off := range offsets[:n] {
			tp.Faces = append(tp.Faces, append([]int(nil), indices[prev:off]...))
			prev = off
		}
	}
	return
}
