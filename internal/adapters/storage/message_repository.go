package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/goccy/go-json"
)

// msg:{room}:{seq} with a zero padded seq so keys sort in insertion order.
func msgRoomPrefix(room domain.RoomID) []byte {
	return []byte(msgPrefix + string(room) + ":")
}

func msgKey(room domain.RoomID, seq uint64) []byte {
	return fmt.Appendf(msgRoomPrefix(room), "%020d", seq)
}

func (s *Store) AppendMessage(_ context.Context, msg domain.Message) (domain.Message, error) {
	seq, err := s.seq.Next()
	if err != nil {
		return domain.Message{}, fmt.Errorf("next message seq: %w", err)
	}
	// badger sequences start at zero
	msg.Seq = seq + 1
	data, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal message: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(msgKey(msg.RoomID, msg.Seq), data)
	}); err != nil {
		return domain.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// QueryHistory scans the room backwards and returns the newest limit
// messages in ascending order.
func (s *Store) QueryHistory(_ context.Context, room domain.RoomID, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	prefix := msgRoomPrefix(room)
	out := make([]domain.Message, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(append(slices.Clone(prefix), 0xFF)); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
			var m domain.Message
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &m) }); err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", room, err)
	}
	slices.Reverse(out)
	return out, nil
}
