package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/deividlukks/Fayol-sub007/pkg/services"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// endOfDay returns the last instant of t's day, or zero for zero.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func newAccountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account", "contas"},
		Short:   "Manage accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}
			accounts, err := svc.Accounts.List(ctx)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), accounts)
			}
			rows := make([][]string, 0, len(accounts))
			for _, acc := range accounts {
				rows = append(rows, []string{acc.ID, acc.Name, acc.Type, formatMoney(acc.Balance, acc.Currency)})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "TYPE", "BALANCE"}, rows)
		},
	}

	var in services.CreateAccountInput
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}
			in.Name = args[0]
			acc, err := svc.Accounts.Create(ctx, in)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), acc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Account %s created (%s)\n", acc.Name, acc.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.Type, "type", services.AccountChecking, "CHECKING, SAVINGS, INVESTMENT, CASH or CREDIT_CARD")
	create.Flags().Float64Var(&in.Balance, "balance", 0, "opening balance")
	create.Flags().StringVar(&in.Currency, "currency", "", "ISO currency code (default BRL)")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}
			if err := svc.Accounts.Remove(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Account %s removed\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, remove)
	return cmd
}

func newTransactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Manage transactions",
	}

	var (
		filter   services.TransactionFilter
		from, to string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}
			if filter.StartDate, err = parseDate(from); err != nil {
				return err
			}
			end, err := parseDate(to)
			if err != nil {
				return err
			}
			filter.EndDate = endOfDay(end)

			page, err := svc.Transactions.List(ctx, filter)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), page)
			}
			rows := make([][]string, 0, len(page.Items))
			for _, tx := range page.Items {
				rows = append(rows, []string{
					tx.Date.Local().Format(dateLayout),
					tx.Type,
					tx.Description,
					strconv.FormatFloat(tx.Amount, 'f', 2, 64),
					tx.ID,
				})
			}
			if err := printTable(cmd.OutOrStdout(), []string{"DATE", "TYPE", "DESCRIPTION", "AMOUNT", "ID"}, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d total)\n", page.Meta.Page, page.Meta.TotalPages, page.Meta.Total)
			return nil
		},
	}
	list.Flags().StringVar(&filter.AccountID, "account", "", "filter by account ID")
	list.Flags().StringVar(&filter.CategoryID, "category", "", "filter by category ID")
	list.Flags().StringVar(&filter.Type, "type", "", "INCOME, EXPENSE or TRANSFER")
	list.Flags().StringVar(&filter.Search, "search", "", "match description")
	list.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	list.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	list.Flags().IntVar(&filter.Page, "page", 1, "page number")
	list.Flags().IntVar(&filter.Limit, "limit", 20, "page size")

	var (
		in   services.CreateTransactionInput
		date string
	)
	add := &cobra.Command{
		Use:   "add <description> <amount>",
		Short: "Record a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}
			in.Description = args[0]
			if in.Amount, err = strconv.ParseFloat(args[1], 64); err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			if in.Date, err = parseDate(date); err != nil {
				return err
			}
			if in.Date.IsZero() {
				in.Date = time.Now()
			}
			tx, err := svc.Transactions.Create(ctx, in)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), tx)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Transaction %s recorded\n", tx.ID)
			return nil
		},
	}
	add.Flags().StringVar(&in.AccountID, "account", "", "account ID")
	add.Flags().StringVar(&in.CategoryID, "category", "", "category ID")
	add.Flags().StringVar(&in.Type, "type", services.LaunchExpense, "INCOME, EXPENSE or TRANSFER")
	add.Flags().StringVar(&in.DestinationAccountID, "to-account", "", "destination account for transfers")
	add.Flags().BoolVar(&in.IsPaid, "paid", true, "already settled")
	add.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD, default today)")
	_ = add.MarkFlagRequired("account")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}
			if err := svc.Transactions.Remove(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Transaction %s removed\n", args[0])
			return nil
		},
	}

	var sumFrom, sumTo string
	summary := &cobra.Command{
		Use:   "summary",
		Short: "Show income and expense totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}
			start, err := parseDate(sumFrom)
			if err != nil {
				return err
			}
			end, err := parseDate(sumTo)
			if err != nil {
				return err
			}
			s, err := svc.Transactions.Summary(ctx, start, endOfDay(end))
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), s)
			}
			return printTable(cmd.OutOrStdout(),
				[]string{"INCOME", "EXPENSE", "BALANCE", "COUNT"},
				[][]string{{
					formatMoney(s.Income, ""),
					formatMoney(s.Expense, ""),
					formatMoney(s.Balance, ""),
					strconv.Itoa(s.Count),
				}},
			)
		},
	}
	summary.Flags().StringVar(&sumFrom, "from", "", "start date (YYYY-MM-DD)")
	summary.Flags().StringVar(&sumTo, "to", "", "end date (YYYY-MM-DD)")

	cmd.AddCommand(list, add, remove, summary)
	return cmd
}

func newCategoriesCmd(a *app) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}
			cats, err := svc.Categories.List(ctx, typ)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), cats)
			}
			rows := make([][]string, 0, len(cats))
			for _, c := range cats {
				origin := "user"
				if c.IsSystem {
					origin = "system"
				}
				rows = append(rows, []string{c.ID, c.Name, c.Type, origin})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "TYPE", "ORIGIN"}, rows)
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "INCOME or EXPENSE")

	sub := &cobra.Command{
		Use:   "sub <id>",
		Short: "List the subcategories of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}
			cats, err := svc.Categories.Subcategories(ctx, args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), cats)
			}
			rows := make([][]string, 0, len(cats))
			for _, c := range cats {
				rows = append(rows, []string{c.ID, c.Name, c.Type})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "TYPE"}, rows)
		},
	}
	cmd.AddCommand(sub)
	return cmd
}
