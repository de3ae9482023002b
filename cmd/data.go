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
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/notargets/gomdal/mesh"
	"github.com/notargets/gomdal/types"
	"github.com/spf13/cobra"
)

// DataWindow is what the data command prints, NaN values are left out as null
type DataWindow struct {
	Group   string       `json:"group"`
	Dataset int          `json:"dataset"`
	Time    string       `json:"time"`
	Kind    string       `json:"kind"`
	Start   int          `json:"start"`
	Values  [][]*float64 `json:"values"`
}

func newDataCmd(a *app) *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data <mesh file>",
		Short: "Print a window of one dataset",
		Long: `
Reads [start, start+count) of one dataset through the generic access path. Kinds are
` + strings.Join(kindNames(), ", ") + `

gomdal data results.nc -g 1 -d 0 -k scalar --start 10 --count 5
gomdal data results.nc -g 1 -k levelz -r 0:20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				gi, _    = cmd.Flags().GetInt("group")
				di, _    = cmd.Flags().GetInt("dataset")
				kn, _    = cmd.Flags().GetString("kind")
				start, _ = cmd.Flags().GetInt("start")
				count, _ = cmd.Flags().GetInt("count")
			)
			kind, ok := types.DataTypeNameMap[strings.ToLower(kn)]
			if !ok {
				return fmt.Errorf("unknown kind [%s], use one of %s", kn, strings.Join(kindNames(), ", "))
			}
			m, err := a.loadMesh(cmd, args[0])
			if err != nil {
				return err
			}
			defer m.Close()
			g, err := m.DatasetGroup(gi)
			if err != nil {
				return err
			}
			ds, err := g.Dataset(di)
			if err != nil {
				return err
			}
			total := kindTotal(ds, kind)
			if rng, _ := cmd.Flags().GetString("range"); rng != "" {
				var end int
				if start, end, err = ParseRange(rng, total); err != nil {
					return err
				}
				count = end - start
			}
			if count < 0 {
				count = max(0, total-start)
			}
			dw := DataWindow{Group: g.Name(), Dataset: di, Time: ds.Time().String(), Kind: kind.String(), Start: start}
			if dw.Values, err = a.readWindow(ds, kind, start, count); err != nil {
				return err
			}
			if a.format() == "yaml" {
				return writeYAML(cmd.OutOrStdout(), dw)
			}
			dw.Render(cmd)
			return nil
		},
	}
	dataCmd.Flags().IntP("group", "g", 0, "dataset group index")
	dataCmd.Flags().IntP("dataset", "d", 0, "dataset index within the group")
	dataCmd.Flags().StringP("kind", "k", "scalar", "kind of data to read")
	dataCmd.Flags().Int("start", 0, "first element")
	dataCmd.Flags().Int("count", -1, "number of elements, all remaining when negative")
	dataCmd.Flags().StringP("range", "r", "", `window as "i1:i2", "N", "end" or ":", overrides start and count`)
	dataCmd.Flags().StringSliceP("datasets", "D", nil, "dataset files to attach to the mesh")
	return dataCmd
}

func kindNames() (names []string) {
	for n := range types.DataTypeNameMap {
		names = append(names, n)
	}
	sort.Strings(names)
	return
}

// kindTotal is the number of elements the dispatcher accepts for kind
func kindTotal(ds mesh.Dataset, kind types.DataType) int {
	m := ds.Mesh()
	switch kind {
	case types.ScalarDouble, types.Vector2DDouble:
		return ds.ValuesCount()
	case types.ActiveInteger, types.VerticalLevelCountInteger, types.FaceIndexToVolumeIndexInteger:
		return m.FacesCount()
	case types.VerticalLevelDouble:
		return m.FacesCount() + ds.VolumesCount()
	case types.Vector2DVolumesDouble:
		return 2 * ds.VolumesCount()
	}
	return ds.VolumesCount()
}

// readWindow pages through the window chunk-size elements at a time
func (a *app) readWindow(ds mesh.Dataset, kind types.DataType, start, count int) (vals [][]*float64, err error) {
	var (
		chunk = a.chunkSize()
		comps = kind.Components()
		ints  []int
		dbls  []float64
	)
	if kind.IsInteger() {
		ints = make([]int, chunk*comps)
	} else {
		dbls = make([]float64, chunk*comps)
	}
	for next := start; next < start+count; {
		var n int
		want := min(chunk, start+count-next)
		if kind.IsInteger() {
			n, err = mesh.Data(ds, kind, next, want, ints)
		} else {
			n, err = mesh.Data(ds, kind, next, want, dbls)
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			row := make([]*float64, comps)
			for c := range row {
				if kind.IsInteger() {
					x := float64(ints[i*comps+c])
					row[c] = &x
				} else {
					row[c] = finite(dbls[i*comps+c])
				}
			}
			vals = append(vals, row)
		}
		next += n
	}
	return
}

// Render prints the title on its own line, a table title wraps to the width of its narrow columns
func (dw DataWindow) Render(cmd *cobra.Command) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [%d] at %s: %s\n", dw.Group, dw.Dataset, dw.Time, dw.Kind)
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	header := table.Row{"Index", "Value"}
	if len(dw.Values) != 0 && len(dw.Values[0]) == 2 {
		header = table.Row{"Index", "X", "Y"}
	}
	t.AppendHeader(header)
	for i, row := range dw.Values {
		r := table.Row{dw.Start + i}
		for _, v := range row {
			r = append(r, formatValue(v))
		}
		t.AppendRow(r)
	}
	t.Render()
}
