package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/goccy/go-json"
)

func roomKey(id domain.RoomID) []byte { return []byte(roomPrefix + string(id)) }

// room names are unique case-insensitively
func roomNameKey(name domain.RoomName) []byte {
	return []byte(roomNamePrefix + strings.ToLower(string(name)))
}

func (s *Store) CreateRoom(_ context.Context, room *domain.Room) (*domain.Room, error) {
	created := room.Clone()
	created.Version = 1
	data, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("marshal room: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(roomNameKey(room.Name)); err == nil {
			return domain.Conflict("Room name already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if _, err := txn.Get(roomKey(room.ID)); err == nil {
			return domain.Conflict("Room already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(roomNameKey(room.Name), []byte(room.ID)); err != nil {
			return err
		}
		return txn.Set(roomKey(room.ID), data)
	})
	if err != nil {
		return nil, mapTxnError(err)
	}
	return created, nil
}

func (s *Store) LoadRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	var room domain.Room
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &room)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.NotFound("Room not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", id, err)
	}
	return &room, nil
}

// SaveRoom commits room when its version still matches the stored one.
func (s *Store) SaveRoom(_ context.Context, room *domain.Room) (*domain.Room, error) {
	next := room.Clone()
	next.Version = room.Version + 1
	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("marshal room: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(room.ID))
		if err != nil {
			return err
		}
		var stored domain.Room
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &stored) }); err != nil {
			return err
		}
		if stored.Version != room.Version {
			return domain.ErrStaleRoom
		}
		return txn.Set(roomKey(room.ID), data)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.NotFound("Room not found")
	}
	if err != nil {
		return nil, mapTxnError(err)
	}
	return next, nil
}

func (s *Store) ListRooms(_ context.Context) ([]*domain.Room, error) {
	var rooms []*domain.Room
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 50, Prefix: []byte(roomPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var room domain.Room
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &room) }); err != nil {
				return err
			}
			rooms = append(rooms, &room)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func mapTxnError(err error) error {
	var derr *domain.Error
	switch {
	case errors.As(err, &derr), errors.Is(err, domain.ErrStaleRoom):
		return err
	case errors.Is(err, badger.ErrConflict):
		return domain.ErrStaleRoom
	}
	return fmt.Errorf("badger txn: %w", err)
}
