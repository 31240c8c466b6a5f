package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deividlukks/Fayol-sub007/pkg/logging"
	"github.com/deividlukks/Fayol-sub007/pkg/mockapi"
)

func newMockServerCmd(a *app) *cobra.Command {
	var (
		addr   string
		prefix string
		rate   int
		burst  int
		users  []string
	)
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local in-memory Fayol API",
		Long: `Run an in-memory implementation of the Fayol API for development and
testing. Data lives only as long as the process.`,
		Example: `  fayol mock-server --addr :3333 --user demo@fayol.app:secret123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := logging.New(a.cfg.LoggingOptions())
			if err != nil {
				return err
			}
			a.closers = append(a.closers, func() error {
				_ = logger.Sync()
				return closeLog()
			})

			opts := []mockapi.Option{
				mockapi.WithLogger(logger.Named("mockapi")),
				mockapi.WithPrefix(prefix),
			}
			if rate > 0 {
				opts = append(opts, mockapi.WithRateLimit(rate, burst))
			}
			srv := mockapi.New(opts...)

			for _, u := range users {
				email, password, ok := strings.Cut(u, ":")
				if !ok || email == "" || password == "" {
					return fmt.Errorf("invalid --user %q: expected email:password", u)
				}
				name, _, _ := strings.Cut(email, "@")
				if _, err := srv.RegisterUser(name, email, password); err != nil {
					return fmt.Errorf("failed to seed user %s: %w", email, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "👤 Seeded user %s\n", email)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🚀 Mock API on %s%s (Ctrl+C to stop)\n", addr, prefix)
			return srv.Start(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3333", "listen address")
	cmd.Flags().StringVar(&prefix, "prefix", mockapi.DefaultPrefix, "route prefix")
	cmd.Flags().IntVar(&rate, "rate-limit", 0, "requests per minute per caller (0 disables)")
	cmd.Flags().IntVar(&burst, "burst", 20, "rate limiter burst")
	cmd.Flags().StringArrayVar(&users, "user", nil, "seed a user as email:password (repeatable)")
	return cmd
}
