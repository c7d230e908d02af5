package taxodb

import (
	"context"
	"os"

	"modernc.org/kv"

	"github.com/matzehuels/taxotree/pkg/errors"
)

// KV is a store in a modernc.org/kv database file.
type KV struct {
	db *kv.DB
}

// OpenKV opens an existing database file.
func OpenKV(path string) (*KV, error) {
	db, err := kv.Open(path, &kv.Options{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "open %s", path)
	}
	return &KV{db: db}, nil
}

// CreateKV creates a new database file, replacing any existing one.
func CreateKV(path string) (*KV, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "replace %s", path)
	}
	db, err := kv.Create(path, &kv.Options{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "create %s", path)
	}
	return &KV{db: db}, nil
}

func (s *KV) Get(_ context.Context, key string) (string, bool, error) {
	v, err := s.db.Get(nil, []byte(key))
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "get %q", key)
	}
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

func (s *KV) Put(_ context.Context, key, value string) error {
	if err := s.db.Set([]byte(key), []byte(value)); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "put %q", key)
	}
	return nil
}

// Batch runs fn inside one transaction. Puts are much faster in a batch.
func (s *KV) Batch(fn func() error) error {
	if err := s.db.BeginTransaction(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "begin transaction")
	}
	if err := fn(); err != nil {
		_ = s.db.Rollback()
		return err
	}
	if err := s.db.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "commit")
	}
	return nil
}

func (s *KV) Close() error { return s.db.Close() }

var _ Writer = (*KV)(nil)
