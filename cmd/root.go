// Copyright 2025 The refsync Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd wires refsync's cobra subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/refsync/refsync/logger"
)

var rootCmd = &cobra.Command{
	Use:   "refsync",
	Short: "Synchronize refs between two git smart-transport peers",
}

var logOpt logger.Options
var configPath string
var loadedConfig *fileConfig

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML configuration file; flags always take precedence")
	rootCmd.PersistentFlags().BoolVar(&logOpt.Stdout, "log.stdout", true, "Log to stdout instead of a file")
	rootCmd.PersistentFlags().StringVar(&logOpt.Level, "log.level", "info", "Log level [debug|info|warn|error]")
	rootCmd.PersistentFlags().StringVar(&logOpt.Filename, "log.file", "refsync.log", "Log file path, used when log.stdout is false")
	rootCmd.PersistentFlags().IntVar(&logOpt.MaxSize, "log.maxSize", 100, "Maximum size of the log file in MB")
	rootCmd.PersistentFlags().IntVar(&logOpt.MaxAge, "log.maxAge", 7, "Maximum age of the log file in days")
	rootCmd.PersistentFlags().IntVar(&logOpt.MaxBackups, "log.maxBackups", 10, "Maximum number of old log files to retain")

	cobra.OnInitialize(func() {
		if configPath != "" {
			fc, err := loadFileConfig(configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", configPath, err)
				os.Exit(1)
			}
			loadedConfig = fc
			if fc.Logger != (logger.Options{}) {
				flagOpt := logOpt
				logOpt = fc.Logger
				for name, keep := range map[string]func(){
					"log.stdout":     func() { logOpt.Stdout = flagOpt.Stdout },
					"log.level":      func() { logOpt.Level = flagOpt.Level },
					"log.file":       func() { logOpt.Filename = flagOpt.Filename },
					"log.maxSize":    func() { logOpt.MaxSize = flagOpt.MaxSize },
					"log.maxAge":     func() { logOpt.MaxAge = flagOpt.MaxAge },
					"log.maxBackups": func() { logOpt.MaxBackups = flagOpt.MaxBackups },
				} {
					if rootCmd.PersistentFlags().Changed(name) {
						keep()
					}
				}
			}
		}
		logger.SetOptions(logOpt)
	})
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
