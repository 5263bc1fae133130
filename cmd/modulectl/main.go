// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/imamangupta/moa-mockup/modules/config"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "modulectl",
		Short:         "Module registry CLI tool",
		Long:          `modulectl inspects module roots, validates registry configuration and manages the Redis module cache.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(modulesCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(cacheCmd())

	return rootCmd
}

// namespaceFlags selects the namespaces a command works on, either from a
// YAML config file or from a single namespace given on the command line
type namespaceFlags struct {
	configFile string
	namespace  string
	root       string
	extensions []string
}

func (f *namespaceFlags) register(cmd *cobra.Command) {
	defaults := config.Default()
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "YAML namespace configuration file")
	cmd.Flags().StringVarP(&f.namespace, "namespace", "n", defaults.Namespace, "Package namespace")
	cmd.Flags().StringVarP(&f.root, "root", "r", defaults.Root, "Module root directory")
	cmd.Flags().StringSliceVar(&f.extensions, "ext", defaults.Extensions, "Module file extensions")
}

func (f *namespaceFlags) configs() ([]*config.Config, error) {
	if f.configFile != "" {
		fileLoader, err := config.NewYAMLConfigFileLoader(f.configFile)
		if err != nil {
			return nil, err
		}
		return fileLoader.LoadNamespaces()
	}

	cfg := config.Default()
	cfg.Namespace = f.namespace
	cfg.Root = f.root
	cfg.Extensions = f.extensions
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return []*config.Config{cfg}, nil
}

// cliLogger reports warnings and errors on stderr so stdout stays parseable
func cliLogger(w io.Writer) *logger.Logger {
	log := logger.NewWithWriter("modulectl", w)
	log.SetLevel(logger.WARN)
	return log
}
