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
	"os"

	"github.com/spf13/cobra"

	"github.com/imamangupta/moa-mockup/modules/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with registry configuration files",
	}

	cmd.AddCommand(configExampleCmd())
	cmd.AddCommand(configValidateCmd())

	return cmd
}

func configExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print an example configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.GenerateExampleConfigFile())
			return err
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a configuration file and list its enabled namespaces",
		Long: `Expand environment variables in a configuration file, validate it and print
the namespaces the registry would initialize.

Examples:
  modulectl config validate modules.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}

			file, err := config.ParseConfigFile(data)
			if err != nil {
				return err
			}
			cfgs, err := file.Configs()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ %s is valid (version %s)\n", args[0], file.Version)
			for _, cfg := range cfgs {
				cache := "disabled"
				if cfg.UseCache {
					cache = fmt.Sprintf("%s:%d prefix=%q", cfg.Cache.Host, cfg.Cache.Port, cfg.Cache.Prefix)
				}
				fmt.Fprintf(out, "  %s  root=%s  collision=%s  cache=%s\n", cfg.Namespace, cfg.Root, cfg.Collision, cache)
			}
			return nil
		},
	}
}
