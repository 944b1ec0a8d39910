package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"

	"roombook/config"
	"roombook/infras/postgres"
	"roombook/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

const sourceName = "iofs"

var ErrUnknownAction = errors.New("unknown migration action")

type step struct {
	run  func(*migrate.Migrate) error
	done string
}

var steps = map[string]step{
	"up":      {run: (*migrate.Migrate).Up, done: "Database migrations completed successfully"},
	"step-up": {run: func(m *migrate.Migrate) error { return m.Steps(1) }, done: "Database migrated one step up"},
	"down":    {run: func(m *migrate.Migrate) error { return m.Steps(-1) }, done: "Database migrated one step down"},
	"drop":    {run: (*migrate.Migrate).Down, done: "Database migrations rolled back successfully"},
}

// connectionString points golang-migrate at the write database, keeping the
// migrations table name from configuration when set.
func connectionString(config *config.Config) (string, error) {
	dsn, err := url.Parse(postgres.DSN(config.DB.Postgres.Write, config.DB.Postgres.Prefix))
	if err != nil {
		return "", fmt.Errorf("error parsing database url: %w", err)
	}

	if table := config.DB.Postgres.MigrationTable; table != "" {
		query := dsn.Query()
		query.Set("x-migrations-table", table)
		dsn.RawQuery = query.Encode()
	}

	return dsn.String(), nil
}

func open(config *config.Config) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.Postgres, migrations.PostgresDir)
	if err != nil {
		return nil, fmt.Errorf("error opening embedded migrations: %w", err)
	}

	dsn, err := connectionString(config)
	if err != nil {
		return nil, err
	}

	mig, err := migrate.NewWithSourceInstance(sourceName, source, dsn)
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

// Runner applies one of up, step-up, down or drop. Having nothing to apply is not
// an error.
func Runner(config *config.Config, action string) error {
	selected, ok := steps[action]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	mig, err := open(config)
	if err != nil {
		return err
	}

	defer func() {
		if sourceErr, dbErr := mig.Close(); sourceErr != nil || dbErr != nil {
			log.Error().AnErr("source", sourceErr).AnErr("database", dbErr).Msg("Failed to close migrate instance")
		}
	}()

	if err = selected.run(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running %s migration: %w", action, err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Warn().Err(err).Msg("Failed to read migration version")
	}

	log.Info().Uint("version", version).Bool("dirty", dirty).Msg(selected.done)

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, "up")
}

func StepUp(config *config.Config) error {
	return Runner(config, "step-up")
}

func Down(config *config.Config) error {
	return Runner(config, "down")
}

func Drop(config *config.Config) error {
	return Runner(config, "drop")
}
