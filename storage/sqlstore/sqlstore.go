// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package sqlstore provides an STHStore on top of database/sql. MySQL,
// PostgreSQL and SQLite are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
	"github.com/transparency-dev/ctverify/storage"
	"k8s.io/klog/v2"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/lib/pq"              // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver
)

// Dialect captures the differences between the supported databases.
type Dialect struct {
	// Driver is the database/sql driver name.
	Driver string
	// Blob is the column type for binary data.
	Blob string
	// Numbered placeholders ($1, $2, ...) instead of "?".
	Numbered bool
}

var (
	// MySQL uses github.com/go-sql-driver/mysql.
	MySQL = Dialect{Driver: "mysql", Blob: "MEDIUMBLOB"}
	// Postgres uses github.com/lib/pq.
	Postgres = Dialect{Driver: "postgres", Blob: "BYTEA", Numbered: true}
	// SQLite uses modernc.org/sqlite.
	SQLite = Dialect{Driver: "sqlite", Blob: "BLOB"}
)

// DialectFor returns the dialect with the given driver name.
func DialectFor(driver string) (Dialect, error) {
	for _, d := range []Dialect{MySQL, Postgres, SQLite} {
		if d.Driver == driver {
			return d, nil
		}
	}
	return Dialect{}, fmt.Errorf("unsupported SQL driver %q", driver)
}

// rebind rewrites "?" placeholders for dialects which number them.
func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) schema() []string {
	// The log ID is stored hex encoded so the key works for every dialect.
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS TrustedSTH(
			LogID     VARCHAR(64) NOT NULL,
			TreeSize  BIGINT NOT NULL,
			STHTimestamp BIGINT NOT NULL,
			STH       %s NOT NULL,
			PRIMARY KEY(LogID, TreeSize, STHTimestamp)
		)`, d.Blob),
	}
}

const (
	selectLatestSQL = `SELECT STH FROM TrustedSTH WHERE LogID = ? ORDER BY TreeSize DESC, STHTimestamp DESC LIMIT 1`
	insertSTHSQL    = `INSERT INTO TrustedSTH(LogID, TreeSize, STHTimestamp, STH) VALUES(?, ?, ?, ?)`
)

// STHStore keeps trusted STHs in a SQL table. Every accepted STH is kept as
// a row, the trusted one being the row with the largest tree size and
// timestamp.
type STHStore struct {
	db      *sql.DB
	dialect Dialect
}

// Open opens the database at dsn with the given driver and creates the schema
// if needed.
func Open(ctx context.Context, driver, dsn string) (*STHStore, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open(%s): %v", d.Driver, err)
	}
	s, err := New(ctx, db, d)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New returns a store over an existing database handle, creating the schema
// if needed.
func New(ctx context.Context, db *sql.DB, d Dialect) (*STHStore, error) {
	if d.Driver == SQLite.Driver {
		// SQLite allows a single writer; serialize access rather than
		// returning SQLITE_BUSY to concurrent monitors.
		db.SetMaxOpenConns(1)
	}
	for _, stmt := range d.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating schema: %v", err)
		}
	}
	return &STHStore{db: db, dialect: d}, nil
}

// Close closes the underlying database.
func (s *STHStore) Close() error {
	return s.db.Close()
}

func logKey(id ct.LogID) string {
	return hex.EncodeToString(id[:])
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *STHStore) latest(ctx context.Context, q querier, logID ct.LogID) (*ct.SignedTreeHead, error) {
	var data []byte
	err := q.QueryRowContext(ctx, s.dialect.rebind(selectLatestSQL), logKey(logID)).Scan(&data)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, err
	}
	return storage.UnmarshalSTH(data)
}

// GetTrustedSTH implements storage.STHStore.
func (s *STHStore) GetTrustedSTH(ctx context.Context, logID ct.LogID) (*ct.SignedTreeHead, error) {
	return s.latest(ctx, s.db, logID)
}

// SetTrustedSTH implements storage.STHStore.
func (s *STHStore) SetTrustedSTH(ctx context.Context, logID ct.LogID, sth *ct.SignedTreeHead) error {
	// Size and timestamp are stored in signed BIGINT columns.
	if sth.TreeSize > math.MaxInt64 || sth.Timestamp > math.MaxInt64 {
		return errors.Errorf(errors.IndexOutOfRange, "sqlstore: tree size %d or timestamp %d does not fit in BIGINT", sth.TreeSize, sth.Timestamp)
	}
	data, err := storage.MarshalSTH(sth)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			klog.Warningf("sqlstore: rollback: %v", err)
		}
	}()

	prev, err := s.latest(ctx, tx, logID)
	if err != nil {
		return err
	}
	if err := storage.CheckUpdate(prev, sth); err != nil {
		return err
	}
	if prev != nil && prev.Same(sth) {
		return nil
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(insertSTHSQL), logKey(logID), int64(sth.TreeSize), int64(sth.Timestamp), data); err != nil {
		return fmt.Errorf("inserting STH: %w", err)
	}
	return tx.Commit()
}
