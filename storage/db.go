package storage

import "fmt"

// DB is the generic key-value store interface.
type DB interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	NewIterator(prefix []byte) Iterator
	NewBatch() Batch
	Close() error
}

// Iterator walks key-value pairs matching a prefix in key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Batch buffers writes and applies them atomically on Write.
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Reset()
	Write() error
}

// Open opens the key-value engine named by engine ("leveldb" or "sqlite")
// at path.
func Open(engine, path string) (DB, error) {
	switch engine {
	case "", "leveldb":
		return NewLevelDB(path)
	case "sqlite":
		return NewSQLiteDB(path)
	default:
		return nil, fmt.Errorf("unknown storage engine %q", engine)
	}
}
