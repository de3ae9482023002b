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
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ghodss/yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/notargets/gomdal/mesh"
	"github.com/spf13/cobra"
)

type GroupInfo struct {
	Index         int               `json:"index"`
	Name          string            `json:"name"`
	Location      string            `json:"location"`
	Scalar        bool              `json:"scalar"`
	Datasets      int               `json:"datasets"`
	Minimum       *float64          `json:"minimum,omitempty"`
	Maximum       *float64          `json:"maximum,omitempty"`
	MaxLevels     int               `json:"maxLevels,omitempty"`
	ReferenceTime string            `json:"referenceTime,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type MeshInfo struct {
	Driver          string      `json:"driver"`
	URI             string      `json:"uri"`
	CRS             string      `json:"crs,omitempty"`
	Vertices        int         `json:"vertices"`
	Faces           int         `json:"faces"`
	MaxFaceVertices int         `json:"maxFaceVertices"`
	Extent          *[4]float64 `json:"extent,omitempty"` // MinX, MaxX, MinY, MaxY
	DatasetGroups   []GroupInfo `json:"groups"`
}

func newInfoCmd(a *app) *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info <mesh file>",
		Short: "Summarise a mesh and its dataset groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadMesh(cmd, args[0])
			if err != nil {
				return err
			}
			defer m.Close()
			mi := NewMeshInfo(m)
			if a.format() == "yaml" {
				return writeYAML(cmd.OutOrStdout(), mi)
			}
			mi.Render(cmd.OutOrStdout())
			return nil
		},
	}
	infoCmd.Flags().StringSliceP("datasets", "D", nil, "dataset files to attach to the mesh")
	return infoCmd
}

// loadMesh loads the mesh file and attaches the files named by the datasets flag
func (a *app) loadMesh(cmd *cobra.Command, uri string) (m *mesh.Mesh, err error) {
	if m, err = a.lib.LoadMesh(uri); err != nil {
		return nil, err
	}
	extra, _ := cmd.Flags().GetStringSlice("datasets")
	for _, ds := range extra {
		if err = a.lib.LoadDatasets(m, ds); err != nil {
			m.Close()
			return nil, fmt.Errorf("attaching %s: %w", ds, err)
		}
	}
	return
}

func NewMeshInfo(m *mesh.Mesh) (mi MeshInfo) {
	bb := m.Extent()
	mi = MeshInfo{
		Driver:          m.DriverName(),
		URI:             m.URI(),
		CRS:             m.CRS(),
		Vertices:        m.VerticesCount(),
		Faces:           m.FacesCount(),
		MaxFaceVertices: m.FaceVerticesMaximumCount(),
	}
	if !math.IsNaN(bb.MinX) {
		mi.Extent = &[4]float64{bb.MinX, bb.MaxX, bb.MinY, bb.MaxY}
	}
	for i, g := range m.DatasetGroups {
		gi := GroupInfo{
			Index:     i,
			Name:      g.Name(),
			Location:  g.DataLocation().String(),
			Scalar:    g.IsScalar(),
			Datasets:  g.DatasetsCount(),
			Minimum:   finite(g.Statistics().Minimum),
			Maximum:   finite(g.Statistics().Maximum),
			MaxLevels: g.MaximumVerticalLevelsCount(),
		}
		if !g.ReferenceTime().IsZero() {
			gi.ReferenceTime = g.ReferenceTime().Format(time.RFC3339)
		}
		for _, md := range g.Metadata() {
			if md.Key == "name" {
				continue
			}
			if gi.Metadata == nil {
				gi.Metadata = make(map[string]string)
			}
			gi.Metadata[md.Key] = md.Value
		}
		mi.DatasetGroups = append(mi.DatasetGroups, gi)
	}
	return
}

// finite is nil for NaN, which JSON can't carry
func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

func (mi MeshInfo) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Mesh")
	extent := "-"
	if e := mi.Extent; e != nil {
		extent = fmt.Sprintf("x [%g, %g] y [%g, %g]", e[0], e[1], e[2], e[3])
	}
	t.AppendRows([]table.Row{
		{"Driver", mi.Driver},
		{"File", mi.URI},
		{"CRS", mi.CRS},
		{"Vertices", mi.Vertices},
		{"Faces", mi.Faces},
		{"Max face vertices", mi.MaxFaceVertices},
		{"Extent", extent},
	})
	t.Render()

	g := table.NewWriter()
	g.SetOutputMirror(w)
	g.SetStyle(table.StyleLight)
	g.SetTitle("Dataset groups")
	g.AppendHeader(table.Row{"#", "Name", "Location", "Type", "Datasets", "Min", "Max", "Levels"})
	for _, gi := range mi.DatasetGroups {
		kind := "vector"
		if gi.Scalar {
			kind = "scalar"
		}
		g.AppendRow(table.Row{gi.Index, gi.Name, gi.Location, kind, gi.Datasets,
			formatValue(gi.Minimum), formatValue(gi.Maximum), gi.MaxLevels})
	}
	g.Render()
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func writeYAML(w io.Writer, v any) error {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}
