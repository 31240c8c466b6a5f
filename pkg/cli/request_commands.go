package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deividlukks/Fayol-sub007/pkg/client"
)

func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q: expected key=value", p)
		}
		params.Add(k, v)
	}
	return params, nil
}

// newGetCmd issues a raw GET through the full request pipeline.
func newGetCmd(a *app) *cobra.Command {
	var (
		params   []string
		cacheTTL time.Duration
		repeat   int
		stats    bool
	)
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Issue a GET against the API and print the JSON body",
		Example: `  fayol get /accounts
  fayol get /transactions --param type=EXPENSE --param limit=5
  fayol get /categories --cache 1m --repeat 3 --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.services(ctx); err != nil {
				return err
			}
			values, err := parseParams(params)
			if err != nil {
				return err
			}
			opts := []client.RequestOption{client.WithParams(values)}
			if cacheTTL > 0 {
				opts = append(opts, client.WithCache(cacheTTL))
			}
			if repeat < 1 {
				repeat = 1
			}

			var body json.RawMessage
			for i := 0; i < repeat; i++ {
				if err := a.client.Get(ctx, args[0], &body, opts...); err != nil {
					return err
				}
			}

			var pretty any
			if err := json.Unmarshal(body, &pretty); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
			} else if err := printJSON(cmd.OutOrStdout(), pretty); err != nil {
				return err
			}

			if stats {
				s := a.client.Stats()
				fmt.Fprintf(cmd.ErrOrStderr(), "requests=%d cache_hits=%d retries=%d failures=%d cache_entries=%d\n",
					s.Requests, s.CacheHits, s.Retries, s.Failures, s.Cache.Entries)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value (repeatable)")
	cmd.Flags().DurationVar(&cacheTTL, "cache", 0, "cache the response for this long")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "issue the request n times")
	cmd.Flags().BoolVar(&stats, "stats", false, "print client counters to stderr")
	return cmd
}
