package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dms-go/internal/app"
	"dms-go/internal/config"
)

var verbose bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads .env, the config file and DMS_* overrides. A missing
// config file means defaults.
func loadConfig() (*config.Config, map[string]string, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, nil, err
	}

	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.NewConfig(defaults["base_dir"])
	} else if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, defaults, nil
}

// newApp reads the config and creates a DMSApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "DocList", "Login").
func newApp(ctx context.Context, operation string) (*app.DMSApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewDMSApp(ctx, cfg, operation, app.Options{Verbose: verbose})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// withApp runs fn against a fresh DMSApp and records a failure on the
// operation before closing it.
func withApp(cmd *cobra.Command, operation string, fn func(ctx context.Context, a *app.DMSApp) error) error {
	a, err := newApp(cmd.Context(), operation)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(cmd.Context(), a); err != nil {
		a.Fail(err)
		return err
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:           "dms",
	Short:         "Document management client",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Server:   %s\n", cfg.ServerURL)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Server:   %s\n", cfg.ServerURL)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Session:  %s\n", cfg.Session.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:    %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

// credentials takes the username from --username or a prompt and always
// prompts for the password.
func credentials(cmd *cobra.Command) (string, string, error) {
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		u, err := app.Prompt("Username: ")
		if err != nil {
			return "", "", err
		}
		username = strings.TrimSpace(u)
	}
	password, err := app.ReadSecret("Password: ")
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, password, err := credentials(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, "Signup", func(ctx context.Context, a *app.DMSApp) error {
			if err := a.Signup(ctx, username, password); err != nil {
				return err
			}
			fmt.Printf("Account %s created. Run dms login to start a session.\n", username)
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, password, err := credentials(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, "Login", func(ctx context.Context, a *app.DMSApp) error {
			u, err := a.Login(ctx, username, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", u.Username)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Logout", func(ctx context.Context, a *app.DMSApp) error {
			if err := a.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "WhoAmI", func(ctx context.Context, a *app.DMSApp) error {
			u, claims, err := a.WhoAmI()
			if err != nil {
				return err
			}
			fmt.Printf("User:    %s (id %d)\n", u.Username, u.ID)
			if u.Role != "" {
				fmt.Printf("Role:    %s\n", u.Role)
			}
			if !claims.ExpiresAt.IsZero() {
				fmt.Printf("Expires: %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also write the log to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// auth
	signupCmd.Flags().StringP("username", "u", "", "Account name")
	loginCmd.Flags().StringP("username", "u", "", "Account name")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(commentCmd)
}
