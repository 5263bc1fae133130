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

	"github.com/spf13/cobra"

	"github.com/imamangupta/moa-mockup/modules/config"
	"github.com/imamangupta/moa-mockup/modules/loader"
	"github.com/imamangupta/moa-mockup/modules/registry"
)

type cacheFlags struct {
	namespace string
	root      string
	host      string
	port      int
	password  string
	db        int
	prefix    string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	defaults := config.Default()
	cmd.Flags().StringVarP(&f.namespace, "namespace", "n", defaults.Namespace, "Package namespace")
	cmd.Flags().StringVarP(&f.root, "root", "r", defaults.Root, "Module root directory")
	cmd.Flags().StringVar(&f.host, "redis-host", defaults.Cache.Host, "Redis host")
	cmd.Flags().IntVar(&f.port, "redis-port", defaults.Cache.Port, "Redis port")
	cmd.Flags().StringVar(&f.password, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&f.db, "redis-db", 0, "Redis database number")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Key prefix shared with the service")
}

func (f *cacheFlags) backend(cmd *cobra.Command) (loader.Backend, error) {
	cfg := config.Default()
	cfg.Namespace = f.namespace
	cfg.Root = f.root
	cfg.UseCache = true
	cfg.Cache = config.CacheOptions{
		Host:     f.host,
		Port:     f.port,
		Password: f.password,
		DB:       f.db,
		Prefix:   f.prefix,
	}
	return registry.DefaultFactory(cfg, cliLogger(cmd.ErrOrStderr()), nil)
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Redis module cache",
	}

	cmd.AddCommand(cacheWarmCmd())
	cmd.AddCommand(cacheFlushCmd())

	return cmd
}

func cacheWarmCmd() *cobra.Command {
	var flags cacheFlags

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Load a namespace through the cache so the next start skips the scan",
		Long: `Load a namespace through the Redis cache. When the cache is empty the module
root is scanned and every serializable module is written back.

Examples:
  modulectl cache warm --root ./smartmodules --redis-host redis --prefix moduled`,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := flags.backend(cmd)
			if err != nil {
				return err
			}
			defer disconnect(cmd, backend)

			if err := backend.LoadAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s: %d module(s) loaded, %d known\n",
				backend.Namespace(), len(backend.Modules()), len(backend.Known()))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func cacheFlushCmd() *cobra.Command {
	var flags cacheFlags

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Delete the cached modules of a namespace",
		Long: `Delete every cached module under the key prefix and the namespace's
descriptor list. The next service start scans the module root again.

Examples:
  modulectl cache flush --namespace smart-modules --prefix moduled`,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := flags.backend(cmd)
			if err != nil {
				return err
			}
			defer disconnect(cmd, backend)

			if err := backend.FlushAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s: cache flushed\n", backend.Namespace())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func disconnect(cmd *cobra.Command, backend loader.Backend) {
	if d, ok := backend.(loader.Disconnector); ok {
		if err := d.Disconnect(cmd.Context()); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}
}
