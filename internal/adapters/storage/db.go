// Package storage persists rooms, messages and the user directory in badger.
package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

const (
	roomPrefix     = "room:"
	roomNamePrefix = "roomname:"
	msgPrefix      = "msg:"
	userPrefix     = "user:"
	usernamePrefix = "username:"
	msgSeqKey      = "seq:msg"
	seqBandwidth   = 100
)

// Store implements core.RoomStore, core.MessageStore and core.UserDirectory
// over one badger database.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open takes ownership of a database opened with opts.
func Open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	seq, err := db.GetSequence([]byte(msgSeqKey), seqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	log.Info().Str("module", "storage").Str("dir", opts.Dir).Bool("in_memory", opts.InMemory).Msg("badger opened")
	return &Store{db: db, seq: seq}, nil
}

// OpenPath opens a database at path, or an in-memory one.
func OpenPath(path string, inMemory bool) (*Store, error) {
	if inMemory {
		return Open(badger.DefaultOptions("").WithInMemory(true))
	}
	return Open(badger.DefaultOptions(path))
}

func (s *Store) Close() error {
	return errors.Join(s.seq.Release(), s.db.Close())
}
