package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	apierrors "github.com/deividlukks/Fayol-sub007/pkg/errors"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func formatMoney(v float64, currency string) string {
	if currency == "" {
		currency = "BRL"
	}
	return fmt.Sprintf("%s %.2f", currency, v)
}

// DescribeError renders err for a terminal, including field errors and
// the retry hint of rate-limited responses.
func DescribeError(err error) string {
	apiErr, ok := apierrors.As(err)
	if !ok {
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", apiErr.Message, apiErr.Code())
	if apiErr.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", apiErr.StatusCode)
	}
	if secs, ok := apiErr.RetryAfterSeconds(); ok {
		fmt.Fprintf(&b, "; retry after %ds", secs)
	}
	fields := make([]string, 0, len(apiErr.FieldErrors))
	for field := range apiErr.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, strings.Join(apiErr.FieldErrors[field], "; "))
	}
	return b.String()
}
