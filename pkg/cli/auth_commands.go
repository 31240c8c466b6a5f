package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/deividlukks/Fayol-sub007/pkg/services"
)

// EnvPassword supplies the login password non-interactively.
const EnvPassword = "FAYOL_PASSWORD"

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the local session",
	}
	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRegisterCmd(a),
		newRefreshCmd(a),
		newForgotPasswordCmd(a),
		newResetPasswordCmd(a),
	)
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			if email == "" {
				if email, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "E-mail: "); err != nil {
					return err
				}
			}
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if password == "" {
				if password, err = promptPassword(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			resp, err := svc.Auth.Login(ctx, services.LoginInput{Email: email, Password: password})
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), resp.Data.User)
			}
			name := email
			if resp.Data.User != nil && resp.Data.User.Name != "" {
				name = resp.Data.User.Name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "password (prefer "+EnvPassword+" or the prompt)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			if err := svc.Auth.Logout(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Logout request failed: %s\n", DescribeError(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Local session cleared")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.requireLogin(ctx)
			if err != nil {
				return err
			}

			var user *services.User
			if offline {
				u, ok := svc.Auth.CurrentUser(ctx)
				if !ok {
					return fmt.Errorf("no stored user snapshot")
				}
				user = u
			} else if user, err = svc.Auth.Me(ctx); err != nil {
				return err
			}

			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), user)
			}
			return printTable(cmd.OutOrStdout(),
				[]string{"ID", "NAME", "EMAIL"},
				[][]string{{user.ID, user.Name, user.Email}},
			)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "show the stored snapshot without calling the API")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var in services.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			if in.Password == "" {
				in.Password = os.Getenv(EnvPassword)
			}
			if in.Password == "" {
				if in.Password, err = promptPassword(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			resp, err := svc.Auth.Register(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ User %s created\n", resp.Data.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "e-mail")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (prefer "+EnvPassword+" or the prompt)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			if _, err := svc.Auth.Refresh(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Access token refreshed")
			return nil
		},
	}
}

func newForgotPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset e-mail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			msg, err := svc.Auth.ForgotPassword(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "📧 %s\n", msg)
			return nil
		},
	}
}

func newResetPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <token>",
		Short: "Set a new password using a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			valid, err := svc.Auth.VerifyResetToken(ctx, args[0])
			if err != nil {
				return err
			}
			if !valid {
				return fmt.Errorf("reset token is invalid or expired")
			}
			password := os.Getenv(EnvPassword)
			if password == "" {
				if password, err = promptPassword(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			if err := svc.Auth.ResetPassword(ctx, args[0], password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Password updated")
			return nil
		},
	}
}

func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readLine reads up to a newline one byte at a time so that successive
// prompts on the same reader do not lose buffered input.
func readLine(in io.Reader) (string, error) {
	var (
		sb  strings.Builder
		buf [1]byte
	)
	for {
		n, err := in.Read(buf[:])
		if n > 0 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err == io.EOF && sb.Len() > 0 {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// promptPassword reads without echo when in is a terminal.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return prompt(in, out, "Password: ")
}
