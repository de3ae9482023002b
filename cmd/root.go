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
	"log/slog"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/notargets/gomdal/mdal"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyLogLevel  = "log-level"
	keyChunkSize = "chunk-size"
	keyFormat    = "format"
)

// app is the state shared by the subcommands of one root command
type app struct {
	v        *viper.Viper
	cfgFile  string
	logger   *slog.Logger
	lib      *mdal.Library
	profiler interface{ Stop() }
}

// NewRootCmd builds the gomdal command tree with its own configuration
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	rootCmd := &cobra.Command{
		Use:   "gomdal",
		Short: "Inspect mesh result files through one topology and dataset model",
		Long: `
Reads simulation result meshes (TUFLOW FV NetCDF, SU2) and their dataset groups, and stores added
dataset groups in bolt files.

gomdal info results.nc`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.gomdal.yaml)")
	flags.String(keyLogLevel, "warn", "log level: debug, info, warn or error")
	flags.Int(keyChunkSize, 1000, "number of elements read per request")
	flags.String(keyFormat, "table", "output format: table or yaml")
	flags.String("cpuprofile", "", "write a CPU profile into this directory")
	for _, key := range []string{keyLogLevel, keyChunkSize, keyFormat} {
		if err := a.v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
	rootCmd.AddCommand(
		newInfoCmd(a),
		newDataCmd(a),
		newTopologyCmd(a),
		newDriversCmd(a),
		newAddCmd(a),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set
func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".gomdal")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix("GOMDAL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || a.cfgFile != "" {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, args []string) (err error) {
	if err = a.initConfig(); err != nil {
		return
	}
	var level slog.Level
	if err = level.UnmarshalText([]byte(a.v.GetString(keyLogLevel))); err != nil {
		return fmt.Errorf("bad %s: %w", keyLogLevel, err)
	}
	if a.chunkSize() < 1 {
		return fmt.Errorf("%s must be positive, got %d", keyChunkSize, a.chunkSize())
	}
	switch a.format() {
	case "table", "yaml":
	default:
		return fmt.Errorf("unknown %s [%s], use table or yaml", keyFormat, a.format())
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("using config file", "file", used)
	}
	a.lib = mdal.New(mdal.Options{Logger: a.logger})
	if dir, _ := cmd.Flags().GetString("cpuprofile"); dir != "" {
		a.profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
	}
	return
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.profiler != nil {
		a.profiler.Stop()
		a.profiler = nil
	}
	return nil
}

func (a *app) chunkSize() int { return a.v.GetInt(keyChunkSize) }

func (a *app) format() string { return strings.ToLower(a.v.GetString(keyFormat)) }
