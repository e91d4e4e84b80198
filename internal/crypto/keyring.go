package crypto

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "tallysheet"
	KeyName     = "db-encryption-key"

	// EnvKey overrides the system keyring, e.g. on headless machines.
	EnvKey = "TALLYSHEET_DB_KEY"
)

// ErrNoKey is returned when neither the environment nor the keyring holds a key.
var ErrNoKey = errors.New("no database key: none stored in the system keyring and " + EnvKey + " is not set")

type systemKeyring struct {
	getenv func(string) string
}

// NewKeyring returns a keyring backed by the OS secret store (Keychain,
// Secret Service, Credential Manager) with an environment override.
func NewKeyring() Keyring {
	return &systemKeyring{getenv: os.Getenv}
}

// GetKey returns the key from EnvKey when set, else from the system keyring
func (k *systemKeyring) GetKey() (string, error) {
	if key := k.getenv(EnvKey); key != "" {
		return key, nil
	}

	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoKey
		}
		return "", fmt.Errorf("failed to retrieve key from keyring: %w", err)
	}
	if key == "" {
		return "", ErrNoKey
	}
	return key, nil
}

// SetKey stores the key in the system keyring
func (k *systemKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to store key in keyring (set %s instead): %w", EnvKey, err)
	}
	return nil
}

// DeleteKey removes the key from the system keyring. A missing key is not an error.
func (k *systemKeyring) DeleteKey() error {
	err := keyring.Delete(ServiceName, KeyName)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete key from keyring: %w", err)
	}
	return nil
}

// IsAvailable reports whether a key can be stored or is already provided
func (k *systemKeyring) IsAvailable() bool {
	if k.getenv(EnvKey) != "" {
		return true
	}

	testKey := "__tallysheet_availability_test__"
	if err := keyring.Set(ServiceName, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, testKey)
	return true
}
