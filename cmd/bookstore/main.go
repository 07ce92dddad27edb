package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	stdLog "log"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/Astemirdum/bookstore-service/bookstore/app"
	"github.com/Astemirdum/bookstore-service/bookstore/config"
)

var billsDir string

var rootCmd = &cobra.Command{
	Use:   "bookstore",
	Short: "Bookstore inventory, billing and user management service",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			stdLog.Fatal("load envs from .env ", err)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		app.Run(newConfig())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate(cmd.Context(), newConfig())
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userParams app.UserParams

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a user, e.g. the first admin",
	Long: `Register a user directly in the database.

The password is read from the terminal when --password is not given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if userParams.Password == "" {
			password, err := readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			userParams.Password = password
		}
		if err := app.AddUser(cmd.Context(), newConfig(), userParams); err != nil {
			return err
		}
		fmt.Printf("user %s added\n", userParams.Username)
		return nil
	},
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func newConfig() *config.Config {
	return config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
		config.WithBillsDir(billsDir),
	)
}

func init() {
	serveCmd.Flags().StringVar(&billsDir, "bills-dir", "bills", "directory for bill receipts (BILLS_DIR overrides)")

	f := userAddCmd.Flags()
	f.StringVar(&userParams.FirstName, "first-name", "", "first name")
	f.StringVar(&userParams.LastName, "last-name", "", "last name")
	f.StringVar(&userParams.Email, "email", "", "email")
	f.StringVar(&userParams.Username, "username", "", "username")
	f.StringVar(&userParams.Password, "password", "", "password")
	f.StringVar(&userParams.Gender, "gender", "other", "male, female or other")
	f.StringVar(&userParams.Role, "role", "admin", "admin, manager or librarian")
	for _, name := range []string{"first-name", "last-name", "email", "username"} {
		_ = userAddCmd.MarkFlagRequired(name)
	}

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd)
}

//go:generate go run github.com/swaggo/swag/cmd/swag init -d ../../ -g cmd/bookstore/main.go -o ../../swagger --outputTypes go

// @title Bookstore API
// @version 1.0
// @description Inventory, billing and user management for a bookstore.
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
