package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/debtledger/internal/infrastructure/config"
	"github.com/iho/debtledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	token   string
	timeout time.Duration

	bcryptGenerate = bcrypt.GenerateFromPassword
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "debtledger-cli",
		Short:         "Debt ledger CLI tool",
		Long:          `A command line interface for operating the debt ledger and querying its API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the debt ledger API")
	cmd.PersistentFlags().StringVar(&token, "token", os.Getenv("DEBTLEDGER_TOKEN"), "Bearer token (defaults to $DEBTLEDGER_TOKEN)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	cmd.AddCommand(migrateCmd(), hashPasswordCmd(), loginCmd(), debtorCmd(), reportCmd())
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	run := func(fn func(cfg *config.Config) error) func(*cobra.Command, []string) error {
		return func(*cobra.Command, []string) error {
			cfg, err := config.LoadWithEnvFile(".env")
			if err != nil {
				return err
			}
			return fn(cfg)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: run(func(cfg *config.Config) error {
				if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
					return err
				}
				fmt.Println("migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: run(func(cfg *config.Config) error {
				if err := postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
					return err
				}
				fmt.Println("rolled back one migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: run(func(cfg *config.Config) error {
				version, dirty, err := postgres.MigrationVersion(cfg.DatabaseURL, cfg.MigrationsPath)
				if err != nil {
					return err
				}
				fmt.Printf("version: %d dirty: %v\n", version, dirty)
				return nil
			}),
		},
	)
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, _ := json.Marshal(map[string]string{"username": username, "password": password})

			body, err := doRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewReader(payload), false)
			if err != nil {
				return err
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

type debtorRow struct {
	ID      int64               `json:"id"`
	Name    string              `json:"name"`
	Balance decimal.NullDecimal `json:"balance"`
}

type debtorPage struct {
	Count        int                 `json:"count"`
	TotalBalance decimal.NullDecimal `json:"total_balance"`
	Currency     string              `json:"currency"`
	Results      []debtorRow         `json:"results"`
}

func debtorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debtor",
		Short: "Debtor operations",
	}

	var page int
	list := &cobra.Command{
		Use:   "list",
		Short: "List debtors with balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/debtor/?page=" + strconv.Itoa(page)
			body, err := doRequest(http.MethodGet, path, nil, true)
			if err != nil {
				return err
			}

			var result debtorPage
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			printDebtors(os.Stdout, &result)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 1, "Page number")

	cmd.AddCommand(list)
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		debtorID  int64
		extension string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Download a debtor report",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/debtor/%d/report?extension=%s", debtorID, url.QueryEscape(extension))
			body, err := doRequest(http.MethodGet, path, nil, true)
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("report_%s.%s", time.Now().Format("02-01_2006"), extension)
			}
			if err := os.WriteFile(output, body, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("saved %s (%d bytes)\n", output, len(body))
			return nil
		},
	}

	cmd.Flags().Int64Var(&debtorID, "debtor", 0, "Debtor ID")
	cmd.Flags().StringVar(&extension, "extension", "xlsx", "Report format (xlsx, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	_ = cmd.MarkFlagRequired("debtor")
	return cmd
}

func doRequest(method, path string, body io.Reader, authenticated bool) ([]byte, error) {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		if token == "" {
			return nil, errors.New("a bearer token is required, pass --token or set DEBTLEDGER_TOKEN")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(data), 200))
	}
	return data, nil
}

func printDebtors(w io.Writer, page *debtorPage) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBALANCE")
	for _, d := range page.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, truncate(d.Name, 40), formatAmount(d.Balance))
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d debtors, total %s %s\n", page.Count, formatAmount(page.TotalBalance), page.Currency)
}

func formatAmount(v decimal.NullDecimal) string {
	if !v.Valid {
		return "-"
	}
	return v.Decimal.StringFixed(2)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
