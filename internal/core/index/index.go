// Package index persists borrower positions in Badger. Positions are public
// bookkeeping (address, committed amounts, commitment hex); witnesses and
// salts never touch disk here.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/privlend/v1/pkg/interfaces/infrastructure/log"
	"github.com/privlend/v1/pkg/interfaces/lending"
)

const keyPrefix = "position/"

// Options configures the store.
type Options struct {
	// Dir is the Badger data directory. Empty selects an in-memory store,
	// which is what the tests use.
	Dir string
}

// Store implements lending.PositionIndex on Badger.
type Store struct {
	db     *badger.DB
	logger log.Logger
}

// New opens (or creates) the index.
func New(logger log.Logger, opts Options) (*Store, error) {
	var badgerOpts badger.Options
	if opts.Dir == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Dir)
	}
	// Badger logs through its own interface; drop it, the store logs what
	// matters itself.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("index: open badger: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func positionKey(address string) ([]byte, error) {
	address = strings.TrimSpace(strings.ToLower(address))
	if address == "" {
		return nil, fmt.Errorf("index: empty address")
	}
	return []byte(keyPrefix + address), nil
}

// Put upserts a position, stamping UpdatedAtUnix.
func (s *Store) Put(ctx context.Context, p lending.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := positionKey(p.Address)
	if err != nil {
		return err
	}
	p.Address = strings.ToLower(strings.TrimSpace(p.Address))
	p.UpdatedAtUnix = time.Now().Unix()

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("index: encode position: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, raw)
	})
	if err != nil {
		return fmt.Errorf("index: put %s: %w", p.Address, err)
	}
	s.logger.Debugf("position stored: address=%s", p.Address)
	return nil
}

// Get returns the position for address, or lending.ErrPositionNotFound.
func (s *Store) Get(ctx context.Context, address string) (lending.Position, error) {
	var p lending.Position
	if err := ctx.Err(); err != nil {
		return p, err
	}
	key, err := positionKey(address)
	if err != nil {
		return p, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return p, lending.ErrPositionNotFound
	}
	if err != nil {
		return p, fmt.Errorf("index: get %s: %w", address, err)
	}
	return p, nil
}

// List returns every stored position.
func (s *Store) List(ctx context.Context) ([]lending.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []lending.Position
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p lending.Position
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index: list: %w", err)
	}
	return out, nil
}

// Delete removes the position for address.
func (s *Store) Delete(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := positionKey(address)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		// Badger deletes are blind; check existence so callers can 404.
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return lending.ErrPositionNotFound
	}
	if err != nil {
		return fmt.Errorf("index: delete %s: %w", address, err)
	}
	return nil
}
