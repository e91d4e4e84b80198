package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/andy/tallysheet/internal/config"
	"github.com/andy/tallysheet/internal/crypto"
	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB

	Users      service.UserService
	Clients    service.ClientService
	Entries    service.EntryService
	Timers     service.TimerService
	Timesheets service.TimesheetService
	Reports    service.ReportService
}

// New loads the default config and opens the database, asking for a new
// encryption password on first run.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config, reading the key
// from the keyring.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err != nil {
		if !errors.Is(err, crypto.ErrNoKey) {
			return nil, err
		}
		// first run: nothing stored yet
		fmt.Println("Setting up database encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to set password: %w", err)
		}
		if err := keyring.SetKey(password); err != nil {
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	var logs io.Writer
	if cfg.Log.Enabled {
		logs = os.Stderr
	}
	return Open(cfg, password, logs)
}

// Open opens and migrates the database with the given key and wires the
// services. A nil logs writer disables use-case logging.
func Open(cfg *config.Config, password string, logs io.Writer) (*App, error) {
	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	uow := db.NewUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(logs)
	stores := service.SQLiteStores

	return &App{
		Config:     cfg,
		DB:         database,
		Users:      service.NewUserService(uow, stores, observer),
		Clients:    service.NewClientService(uow, stores, observer),
		Entries:    service.NewEntryService(uow, stores, observer),
		Timers:     service.NewTimerService(uow, stores, nil, observer),
		Timesheets: service.NewTimesheetService(uow, stores, nil, observer),
		Reports:    service.NewReportService(uow, stores),
	}, nil
}

// Owner resolves the acting user: email when given, else the configured
// owner. The user is created on first use.
func (a *App) Owner(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		email = a.Config.Owner.Email
	}
	if email == "" {
		return nil, domain.NewValidationError("no owner: pass --as or set owner.email in the config")
	}
	return a.Users.Ensure(ctx, email)
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

// promptForPassword asks for a new database password twice without echo
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your time tracking data will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured")
	fmt.Println()

	return string(password), nil
}
