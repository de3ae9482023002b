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
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type DriverInfo struct {
	Name         string `json:"name"`
	LongName     string `json:"longName"`
	Filters      string `json:"filters"`
	Capabilities string `json:"capabilities"`
}

func newDriversCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List the registered drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []DriverInfo
			for _, d := range a.lib.Drivers() {
				infos = append(infos, DriverInfo{
					Name:         d.Name(),
					LongName:     d.LongName(),
					Filters:      d.Filters(),
					Capabilities: d.Capabilities().String(),
				})
			}
			if a.format() == "yaml" {
				return writeYAML(cmd.OutOrStdout(), infos)
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Description", "Files", "Capabilities"})
			for _, di := range infos {
				t.AppendRow(table.Row{di.Name, di.LongName, di.Filters, di.Capabilities})
			}
			t.Render()
			return nil
		},
	}
}
