package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deividlukks/Fayol-sub007/pkg/config"
	"github.com/deividlukks/Fayol-sub007/pkg/transport"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the client configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default config file",
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.flags.configPath
			if path == "" {
				p, err := config.DefaultPath("")
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config %s already exists (use --force to overwrite)", path)
			}

			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if cfg.Storage.Passphrase != "" {
				cfg.Storage.Passphrase = "********"
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			errs := a.cfg.Validate()
			if len(errs) == 0 {
				if addr := a.cfg.Proxy.SOCKS5Addr; addr != "" && !transport.ProxyReachable(addr) {
					fmt.Fprintf(cmd.OutOrStdout(), "⚠️  Proxy %s is not accepting connections\n", addr)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✅ Configuration is valid")
				return nil
			}
			for _, err := range errs {
				fmt.Fprintf(cmd.OutOrStdout(), "❌ %v\n", err)
			}
			return errors.New("configuration is invalid")
		},
	}

	cmd.AddCommand(initCmd, show, validate)
	return cmd
}
