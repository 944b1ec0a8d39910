package postgres

//nolint:revive
import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"time"

	"roombook/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName         = "postgres"
	maxIdleConnections = 10
	maxOpenConnections = 10
	connMaxLifetime    = 30 * time.Minute
)

// Connection splits reads from writes. Without a dedicated read host both sides
// share the write pool.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(config *config.Config) *Connection {
	settings := config.DB.Postgres

	write := connect("write", settings.Write, settings.Prefix, settings.MaxRetry, settings.RetryWaitTime)

	read := write
	if settings.Read.Host != "" {
		read = connect("read", settings.Read, settings.Prefix, settings.MaxRetry, settings.RetryWaitTime)
	}

	return &Connection{Read: read, Write: write}
}

// WithTx runs fn inside a read-committed transaction on the write connection. The
// transaction is rolled back when fn fails and committed otherwise.
func (c *Connection) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := c.Write.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		log.Error().Err(err).Msg("failed to begin transaction")

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit transaction")

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (c *Connection) Close() {
	if err := c.Write.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close write connection")
	}

	if c.Read == c.Write {
		return
	}

	if err := c.Read.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close read connection")
	}
}

// DSN builds a lib/pq connection URL for endpoint, prefixing the database name when
// prefix is set. A non-empty timezone is sent as the session TimeZone so DATE and
// TIME columns round-trip without shifting.
func DSN(endpoint config.PostgresEndpoint, prefix string) string {
	query := url.Values{}
	query.Set("sslmode", endpoint.SSLMode)

	if endpoint.Timezone != "" {
		query.Set("timezone", endpoint.Timezone)
	}

	dsn := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(endpoint.Username, endpoint.Password),
		Host:     net.JoinHostPort(endpoint.Host, endpoint.Port),
		Path:     "/" + prefix + endpoint.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// connect retries until the database answers and exits the process when it never does.
func connect(name string, endpoint config.PostgresEndpoint, prefix string, maxRetry, waitSeconds int) *sqlx.DB {
	logger := log.With().
		Str("name", name).
		Str("host", endpoint.Host).
		Str("port", endpoint.Port).
		Str("dbName", prefix+endpoint.Name).
		Logger()

	var err error

	for attempt := 1; attempt <= max(1, maxRetry); attempt++ {
		var db *sqlx.DB

		db, err = sqlx.Connect(driverName, DSN(endpoint, prefix))
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)
			db.SetConnMaxLifetime(connMaxLifetime)

			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitSeconds) * time.Second)
	}

	logger.Fatal().Err(err).Msg("Giving up connecting to database")

	return nil
}
