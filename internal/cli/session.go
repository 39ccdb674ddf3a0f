package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	sessiondomain "github.com/Apurer/adoptionos/internal/domains/session/domain"
)

type loginFlags struct {
	email         string
	password      string
	passwordStdin bool
}

func newLoginCommand(rt *runtime) *cobra.Command {
	flags := &loginFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a staff member",
		Long: `Sign in and store the bearer token for later admin commands.

Examples:
  adoptionctl login --email sam@shelter.org --password-stdin < secret.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := flags.password
			if flags.passwordStdin {
				line, err := bufio.NewReader(rt.opts.In).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			ctx := cmd.Context()
			client, err := rt.portal(ctx)
			if err != nil {
				return err
			}
			if err := client.Session.Login(ctx, flags.email, password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			identity, _ := client.Session.Identity()
			return rt.output(identity, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged in as %s <%s>\n", identity.Name, identity.Email)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&flags.email, "email", "", "Staff email")
	cmd.Flags().StringVar(&flags.password, "password", "", "Password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&flags.passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := rt.portal(cmd.Context())
			if err != nil {
				return err
			}
			client.Session.Logout(cmd.Context())
			_, err = fmt.Fprintln(rt.opts.Out, "Logged out.")
			return err
		},
	}
}

type whoami struct {
	Identity  *sessiondomain.Identity `json:"identity"`
	ExpiresAt *time.Time              `json:"expiresAt,omitempty"`
	Expired   bool                    `json:"expired"`
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored identity and token expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := rt.portal(ctx)
			if err != nil {
				return err
			}
			var out whoami
			if identity, ok := client.Session.Identity(); ok {
				out.Identity = &identity
			}
			if token, ok := client.Session.Token(ctx); ok {
				if exp, ok := sessiondomain.TokenExpiry(token); ok {
					out.ExpiresAt = &exp
					out.Expired = sessiondomain.TokenExpired(token, time.Now())
				}
			}
			return rt.output(out, func(w io.Writer) error {
				if out.Identity == nil {
					_, err := fmt.Fprintln(w, "Not logged in.")
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "NAME\t%s\n", out.Identity.Name)
				fmt.Fprintf(tw, "EMAIL\t%s\n", out.Identity.Email)
				fmt.Fprintf(tw, "ROLE\t%s\n", out.Identity.Role)
				switch {
				case out.ExpiresAt == nil:
					fmt.Fprintf(tw, "TOKEN\tno expiry\n")
				case out.Expired:
					fmt.Fprintf(tw, "TOKEN\texpired %s\n", out.ExpiresAt.Format(time.RFC3339))
				default:
					fmt.Fprintf(tw, "TOKEN\texpires %s\n", out.ExpiresAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
}

func newDemoCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:       "demo on|off",
		Short:     "Toggle demo mode; wizard submissions are simulated while on",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := rt.portal(ctx)
			if err != nil {
				return err
			}
			if err := client.Demo.Toggle(ctx, args[0] == "on"); err != nil {
				return err
			}
			_, err = fmt.Fprintf(rt.opts.Out, "Demo mode %s.\n", args[0])
			return err
		},
	}
}

func newProfileCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or save the CLI profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective profile",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return writeJSON(rt.opts.Out, map[string]any{
				"path":     rt.opts.ProfilePath,
				"apiUrl":   rt.profile.APIURL,
				"stateDir": rt.profile.StateDir,
				"timeout":  rt.profile.Timeout.String(),
				"device":   rt.profile.Device,
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the effective profile, including --api-url and --state-dir overrides",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := SaveProfile(rt.opts.FS, rt.opts.ProfilePath, rt.profile); err != nil {
				return err
			}
			_, err := fmt.Fprintf(rt.opts.Out, "Profile saved to %s\n", rt.opts.ProfilePath)
			return err
		},
	})
	return cmd
}
