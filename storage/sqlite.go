package storage

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tolelom/tolfarm/core"
)

// SQLiteDB implements DB as a single key-value table in SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the database at path. Use ":memory:" for a
// throwaway store.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// One connection: ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (k BLOB PRIMARY KEY, v BLOB NOT NULL) WITHOUT ROWID`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

func (s *SQLiteDB) Get(key []byte) ([]byte, error) {
	var v []byte
	err := s.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *SQLiteDB) Set(key, value []byte) error {
	_, err := s.db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, value)
	return err
}

func (s *SQLiteDB) Delete(key []byte) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE k = ?`, key)
	return err
}

// NewIterator loads every pair under prefix up front; state prefixes are
// small enough that streaming is not worth holding a read transaction open.
func (s *SQLiteDB) NewIterator(prefix []byte) Iterator {
	it := &sliceIterator{idx: -1}
	var (
		rows *sql.Rows
		err  error
	)
	if end := prefixEnd(prefix); end != nil {
		rows, err = s.db.Query(`SELECT k, v FROM kv WHERE k >= ? AND k < ? ORDER BY k`, prefix, end)
	} else {
		rows, err = s.db.Query(`SELECT k, v FROM kv WHERE k >= ? ORDER BY k`, prefix)
	}
	if err != nil {
		it.err = err
		return it
	}
	defer rows.Close()
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			it.err = err
			return it
		}
		if !bytes.HasPrefix(k, prefix) {
			continue
		}
		it.keys = append(it.keys, k)
		it.vals = append(it.vals, v)
	}
	it.err = rows.Err()
	return it
}

func (s *SQLiteDB) NewBatch() Batch {
	return &sqliteBatch{db: s.db}
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// prefixEnd returns the smallest key greater than every key with prefix, or
// nil when no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

type sliceIterator struct {
	keys, vals [][]byte
	idx        int
	err        error
}

func (it *sliceIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.idx++
	return it.idx < len(it.keys)
}

func (it *sliceIterator) Key() []byte   { return it.keys[it.idx] }
func (it *sliceIterator) Value() []byte { return it.vals[it.idx] }
func (it *sliceIterator) Release()      {}
func (it *sliceIterator) Error() error  { return it.err }

type sqliteOp struct {
	key, value []byte // nil value deletes
}

type sqliteBatch struct {
	db  *sql.DB
	ops []sqliteOp
}

func (b *sqliteBatch) Set(key, value []byte) {
	if value == nil {
		value = []byte{}
	}
	b.ops = append(b.ops, sqliteOp{bytes.Clone(key), bytes.Clone(value)})
}

func (b *sqliteBatch) Delete(key []byte) {
	b.ops = append(b.ops, sqliteOp{key: bytes.Clone(key)})
}

func (b *sqliteBatch) Reset() { b.ops = nil }

func (b *sqliteBatch) Write() error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	for _, op := range b.ops {
		if op.value == nil {
			_, err = tx.Exec(`DELETE FROM kv WHERE k = ?`, op.key)
		} else {
			_, err = tx.Exec(`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`, op.key, op.value)
		}
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
