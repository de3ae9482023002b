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
	"os"

	"github.com/notargets/gomdal/InputParameters"
	"github.com/notargets/gomdal/drivers/boltstore"
	"github.com/notargets/gomdal/mesh"
	"github.com/spf13/cobra"
)

const exampleGroupFile = `
########################################
Name: depth change
Location: vertices # or faces
Vector: false # values are interleaved x,y pairs when true
Driver: BOLTSTORE
File: results.gmdb
ReferenceTime: "2020-01-01T00:00:00Z"
Metadata:
  units: m
Datasets:
  - Time: 0 # hours
    Values: [0, 0.1, 0.2, 0.1]
########################################
`

func newAddCmd(a *app) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add <mesh file>",
		Short: "Write a dataset group described by a YAML file next to a mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			icFile, _ := cmd.Flags().GetString("inputConditionsFile")
			if len(icFile) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Example File:%s\n", exampleGroupFile)
				return fmt.Errorf("must supply a group input file (-I, --inputConditionsFile)")
			}
			var data []byte
			if data, err = os.ReadFile(icFile); err != nil {
				return
			}
			gi := &InputParameters.GroupInput{}
			if err = gi.Parse(data); err != nil {
				return
			}
			if gi.Driver == "" {
				gi.Driver = boltstore.DriverName
			}
			gi.Print(cmd.OutOrStdout())

			m, err := a.lib.LoadMesh(args[0])
			if err != nil {
				return
			}
			defer m.Close()
			g, err := a.addGroup(m, gi)
			if err != nil {
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %q with %d datasets to %s\n", g.Name(), g.DatasetsCount(), g.URI())
			return
		},
	}
	addCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file describing the group and its datasets")
	return addCmd
}

func (a *app) addGroup(m *mesh.Mesh, gi *InputParameters.GroupInput) (g *mesh.DatasetGroup, err error) {
	if g, err = a.lib.AddDatasetGroup(m, gi.Name, gi.DataLocation(), !gi.Vector, gi.Driver, gi.File); err != nil {
		return
	}
	if gi.ReferenceTime != nil {
		g.SetReferenceTime(*gi.ReferenceTime)
	}
	for _, key := range gi.MetadataKeys() {
		if err = a.lib.SetMetadata(g, key, gi.Metadata[key]); err != nil {
			return
		}
	}
	for i, di := range gi.Datasets {
		if _, err = a.lib.AddDataset(g, di.DatasetTime(), di.Values, di.Active); err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
	}
	err = a.lib.CloseEditMode(g)
	return
}
