package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/keyring"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/storage/memory"
	"github.com/julianstephens/tracker/internal/storage/postgres"
	"github.com/julianstephens/tracker/internal/storage/sqlite"
)

// KeyringDatabase is the database setting that reads the connection string
// from the OS keyring.
const KeyringDatabase = "keyring"

// ResolveDatabase picks the database location. The flag wins, then the
// connection environment variable, then the config file.
func ResolveDatabase(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if env := strings.TrimSpace(os.Getenv(constants.ConnectionEnvVar)); env != "" {
		return env
	}
	return cfg.Database.Path
}

// OpenStore returns the provider for a database location without opening
// it. Connection strings given directly must not embed a password; secrets
// belong in the environment or the keyring.
func OpenStore(location string) (storage.Provider, error) {
	switch {
	case location == storage.MemoryPath:
		// nothing outlives the process, so there is no separate init step
		store := memory.NewStore()
		if err := store.Init(); err != nil {
			return nil, err
		}
		return store, nil
	case location == KeyringDatabase:
		connStr, source, err := keyring.ResolveConnectionString()
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("no connection string in keyring, run '%s keyring set' first", constants.AppName)
		}
		if err != nil {
			return nil, err
		}
		logger.Debug("Resolved connection string", "source", source)
		return postgres.New(connStr), nil
	case config.IsPostgres(location):
		if location == os.Getenv(constants.ConnectionEnvVar) {
			return postgres.New(location), nil
		}
		if _, err := postgres.ValidateConnString(location); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: store the connection string with '%s keyring set' or in %s", err, constants.AppName, constants.ConnectionEnvVar)
			}
			return nil, err
		}
		return postgres.New(location), nil
	default:
		return sqlite.NewStore(config.ExpandHome(location)), nil
	}
}
