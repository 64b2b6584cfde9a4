// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package warehouse

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrConnection reports failures while reaching the warehouse.
	ErrConnection = errors.New("warehouse connection error")
	// ErrQuery reports failures while executing a statement.
	ErrQuery = errors.New("warehouse query error")
)

// Rows is a streamed warehouse result set.
type Rows interface {
	// Columns returns the result column names in select order.
	Columns() ([]string, error)
	// Next advances to the next row, reporting false when exhausted.
	Next() bool
	// Scan returns the values of the current row.
	Scan() ([]any, error)
	// Err returns the first error encountered during iteration.
	Err() error
	// Close releases the result set resources.
	Close() error
}

// Session is an open connection pool towards the warehouse.
type Session interface {
	// Ping verifies connectivity, retrying transient failures.
	Ping(ctx context.Context) error
	// Query executes the statement and streams back its result rows.
	Query(ctx context.Context, query string) (Rows, error)
	// Close tears down the connection pool.
	Close() error
}

var _ Session = &session{}

type session struct {
	db     *sqlx.DB
	config *Config
}

// NewSession opens a connection pool towards the configured warehouse.
// No network traffic happens until Ping or Query is called.
func NewSession(config *Config) Session {
	opts := &clickhouse.Options{
		Addr: []string{config.Host + ":" + strconv.Itoa(config.Port)},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.User,
			Password: config.Password,
		},
		Debug: config.Debug,
	}
	if config.Secure {
		opts.TLS = &tls.Config{
			InsecureSkipVerify: config.SkipTLSVerify,
		}
	}

	conn := clickhouse.OpenDB(opts)
	conn.SetMaxOpenConns(config.MaxOpenConns)
	conn.SetMaxIdleConns(config.MaxIdleConns)
	conn.SetConnMaxLifetime(time.Minute * 10)

	db := sqlx.NewDb(conn, "clickhouse")
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(time.Minute * 10)

	return &session{db: db, config: config}
}

func (s *session) Ping(ctx context.Context) error {
	err := retry.Do(
		func() error {
			return s.db.PingContext(ctx)
		},
		retry.Attempts(s.config.PingRetries),
		retry.Delay(s.config.PingDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return nil
}

func (s *session) Query(ctx context.Context, query string) (Rows, error) {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return &sqlxRows{rows: rows}, nil
}

func (s *session) Close() error {
	return s.db.Close()
}

type sqlxRows struct {
	rows *sqlx.Rows
}

func (r *sqlxRows) Columns() ([]string, error) {
	return r.rows.Columns()
}

func (r *sqlxRows) Next() bool {
	return r.rows.Next()
}

func (r *sqlxRows) Scan() ([]any, error) {
	return r.rows.SliceScan()
}

func (r *sqlxRows) Err() error {
	return r.rows.Err()
}

func (r *sqlxRows) Close() error {
	return r.rows.Close()
}
