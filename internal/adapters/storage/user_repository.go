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

func userKey(id domain.UserID) []byte { return []byte(userPrefix + string(id)) }

func usernameKey(name string) []byte {
	return []byte(usernamePrefix + strings.ToLower(name))
}

// RememberUser records the identity last presented for the user id.
// A renamed user frees the old username index entry.
func (s *Store) RememberUser(_ context.Context, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if item, err := txn.Get(userKey(user.ID)); err == nil {
			var prev domain.User
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &prev) }); err != nil {
				return err
			}
			if !strings.EqualFold(prev.Username, user.Username) {
				if err := txn.Delete(usernameKey(prev.Username)); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(userKey(user.ID), data); err != nil {
			return err
		}
		return txn.Set(usernameKey(user.Username), []byte(user.ID))
	})
	if err != nil {
		return fmt.Errorf("remember user %s: %w", user.ID, err)
	}
	return nil
}

func (s *Store) LookupUser(_ context.Context, id domain.UserID) (domain.User, error) {
	var user domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getUser(txn, id, &user)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, domain.NotFound("User not found")
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user %s: %w", id, err)
	}
	return user, nil
}

func (s *Store) LookupUsername(_ context.Context, username string) (domain.User, error) {
	var user domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(strings.TrimSpace(username)))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getUser(txn, domain.UserID(id), &user)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, domain.NotFound("Target user not found")
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup username %q: %w", username, err)
	}
	return user, nil
}

func getUser(txn *badger.Txn, id domain.UserID, user *domain.User) error {
	item, err := txn.Get(userKey(id))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error { return json.Unmarshal(val, user) })
}
