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
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/imamangupta/moa-mockup/modules/registry"
)

func modulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Inspect the modules found under a module root",
	}

	cmd.AddCommand(modulesListCmd())
	cmd.AddCommand(modulesInspectCmd())

	return cmd
}

func loadRegistry(cmd *cobra.Command, flags *namespaceFlags) (*registry.Registry, error) {
	cfgs, err := flags.configs()
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry(registry.WithLogger(cliLogger(cmd.ErrOrStderr())))
	if err := reg.InitAll(cmd.Context(), cfgs); err != nil {
		_ = reg.Shutdown(cmd.Context())
		return nil, err
	}
	return reg, nil
}

func modulesListCmd() *cobra.Command {
	var flags namespaceFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every module that loads from the module root",
		Long: `Scan the module root, instantiate every module linked into modulectl and
print its qualified type, display name and functions.

Examples:
  modulectl modules list
  modulectl modules list --root ./smartmodules --namespace billing
  modulectl modules list --config modules.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd, &flags)
			if err != nil {
				return err
			}
			defer reg.Shutdown(cmd.Context())

			all := reg.GetAllModules()
			types := make([]string, 0, len(all))
			for qualifiedType := range all {
				types = append(types, qualifiedType)
			}
			sort.Strings(types)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tNAME\tFUNCTIONS")
			for _, qualifiedType := range types {
				desc := all[qualifiedType].Description()
				fmt.Fprintf(tw, "%s\t%s\t%s\n", qualifiedType, desc.DisplayName, strings.Join(desc.FunctionNames(), ","))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d module(s) in %d namespace(s)\n", len(types), len(reg.Namespaces()))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func modulesInspectCmd() *cobra.Command {
	var flags namespaceFlags

	cmd := &cobra.Command{
		Use:   "inspect <type>",
		Short: "Print the description of one module as JSON",
		Long: `Resolve a qualified module type and print its description.

Examples:
  modulectl modules inspect smart-modules.charge`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd, &flags)
			if err != nil {
				return err
			}
			defer reg.Shutdown(cmd.Context())

			mod, err := reg.GetModuleByType(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(mod.Description())
		},
	}

	flags.register(cmd)
	return cmd
}
