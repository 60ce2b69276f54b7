package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
)

type loginFlags struct {
	email        string
	passwordFile string
}

func newLoginCmd(g *globalFlags) *cobra.Command {
	f := &loginFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Long: `Sign in with an email and password. The issued token is stored in the
session database and sent as a bearer token by every later command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(ctx context.Context, a *app) error {
				return runLogin(ctx, cmd, a, f)
			})
		},
	}

	cmd.Flags().StringVar(&f.email, "email", "", "account email (prompted when empty)")
	cmd.Flags().StringVar(&f.passwordFile, "password-file", "", `read the password from a file ("-" for stdin)`)

	return cmd
}

func runLogin(ctx context.Context, cmd *cobra.Command, a *app, f *loginFlags) error {
	in := bufio.NewReader(cmd.InOrStdin())

	email := strings.TrimSpace(f.email)
	if email == "" {
		cmd.PrintErr("Email: ")
		line, err := readLine(in)
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}
		email = line
	}
	if email == "" {
		return errors.New("email is required")
	}

	password, err := readPassword(cmd, in, f.passwordFile)
	if err != nil {
		return err
	}

	token, err := a.sessions.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if token == "" {
		return errors.New("another login is already in progress")
	}

	cmd.Printf("logged in as %s\n", email)
	return nil
}

// readPassword reads the password from path, from a no-echo terminal prompt,
// or from the first line of piped stdin.
func readPassword(cmd *cobra.Command, in *bufio.Reader, path string) (string, error) {
	switch path {
	case "":
	case "-":
		line, err := readLine(in)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return line, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read password file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		cmd.PrintErr("Password: ")
		secret, err := term.ReadPassword(int(file.Fd()))
		cmd.PrintErrln()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return line, nil
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned as is.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(ctx context.Context, a *app) error {
				a.sessions.Logout(ctx)
				cmd.Println("logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account bound to the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, g, func(ctx context.Context, a *app) error {
				resp, err := a.client.Auth.Me(ctx)
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			})
		},
	}
}

type statusFlags struct {
	jsonOutput bool
}

// sessionStatus is the local view of the client's state.
type sessionStatus struct {
	APIURL    string `json:"api_url"`
	DBPath    string `json:"db_path"`
	Encrypted bool   `json:"encrypted"`
	LoggedIn  bool   `json:"logged_in"`

	// TokenSavedAt is when the stored token was last written; nil without one.
	TokenSavedAt *time.Time `json:"token_saved_at,omitempty"`
}

func newStatusCmd(g *globalFlags) *cobra.Command {
	f := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the configured backend and whether a session is stored",
		Long: `Show the configured backend, where the session database lives, whether
stored tokens are encrypted and whether a session token is present.
No request is sent to the backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(ctx context.Context, a *app) error {
				st, err := a.status(ctx)
				if err != nil {
					return err
				}
				if f.jsonOutput {
					return printJSON(cmd.OutOrStdout(), st)
				}
				return printStatusTable(cmd.OutOrStdout(), st)
			})
		},
	}

	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

// status reports the configured backend and the stored session.
func (a *app) status(ctx context.Context) (sessionStatus, error) {
	st := sessionStatus{
		APIURL:    a.client.Pipeline().BaseURL(),
		DBPath:    a.db.Path(),
		Encrypted: a.cfg.HasSecretKey(),
		LoggedIn:  a.session.Authenticated(),
	}

	creds, err := a.creds.List(ctx)
	if err != nil {
		return sessionStatus{}, fmt.Errorf("read stored credentials: %w", err)
	}
	for _, cred := range creds {
		if cred.Key == model.TokenKey && cred.Value != "" {
			savedAt := cred.UpdatedAt
			st.TokenSavedAt = &savedAt
		}
	}
	return st, nil
}
