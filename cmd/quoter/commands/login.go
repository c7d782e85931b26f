package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/fivetwenty-io/quoter-client/pkg/quoterclient"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Static errors for err113 compliance.
var (
	ErrClientIDRequired     = errors.New("client ID is required")
	ErrClientSecretRequired = errors.New("client secret is required")
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		baseURL      string
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to Quoter",
		Long:  "Verify client credentials against the Quoter API and store them in the current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			if clientID == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Client ID: ")
				clientID = readLine(reader)
			}

			if clientID == "" {
				return ErrClientIDRequired
			}

			if clientSecret == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Client Secret: ")

				secret, err := readSecret(reader)
				if err != nil {
					return fmt.Errorf("failed to read client secret: %w", err)
				}

				clientSecret = secret

				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}

			if clientSecret == "" {
				return ErrClientSecretRequired
			}

			config := loadConfig()
			profileName := currentProfileName(config)
			profile := ensureProfile(config, profileName)

			if baseURL != "" {
				profile.BaseURL = baseURL
			}

			token, err := verifyCredentials(cmd.Context(), profile.BaseURL, clientID, clientSecret)
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			profile.ClientID = clientID
			profile.ClientSecret = clientSecret

			if profile.TokenStore == "" || profile.TokenStore == TokenStoreConfig {
				profile.AccessToken = token.AccessToken
				profile.RefreshToken = token.RefreshToken
				profile.TokenExpiresAt = token.ExpiresAt.UnixMilli()
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s (profile %s)\n",
				quoterclient.NormalizeBaseURL(profile.BaseURL), clientID, profileName)

			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Quoter API base URL")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")

	return cmd
}

// verifyCredentials performs a client credentials authorization and returns
// the obtained token.
func verifyCredentials(ctx context.Context, baseURL, clientID, clientSecret string) (*quoter.Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	store := quoterclient.NewMemoryTokenStore()

	_, err := quoterclient.NewVerified(ctx, &quoter.Config{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenStore:   store,
		Logger:       newCLILogger(os.Stderr),
	})
	if err != nil {
		return nil, err
	}

	token, err := store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading obtained token: %w", err)
	}

	return token, nil
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}

// readSecret reads without echo from a terminal and falls back to a plain
// line read when stdin is redirected.
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // Fd fits in int on supported platforms
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}

		return strings.TrimSpace(string(secret)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from Quoter",
		Long:  "Remove the credentials and cached tokens of the current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			config := loadConfig()
			profileName := currentProfileName(config)

			profile := config.Profiles[profileName]
			if profile == nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s is not logged in\n", profileName)

				return nil
			}

			// Shared stores outlive the config entry, clear them explicitly.
			if profile.TokenStore == TokenStoreSQLite || profile.TokenStore == TokenStoreNATS {
				store, closeStore, err := newTokenStore(ctx, profileName, profile)
				if err != nil {
					return err
				}

				err = store.Clear(ctx)
				_ = closeStore()

				if err != nil {
					return fmt.Errorf("failed to clear token store: %w", err)
				}
			}

			profile.ClientID = ""
			profile.ClientSecret = ""
			profile.AccessToken = ""
			profile.RefreshToken = ""
			profile.TokenExpiresAt = 0

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged out of profile %s\n", profileName)

			return nil
		},
	}
}
