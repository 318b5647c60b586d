package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/xenking/voicecart/internal/domain/order"
)

var _ order.Repository = (*Ledger)(nil)

// Ledger is a file-backed order.Repository. Every append reads the whole
// file, appends one record, and rewrites the file through a temp-file rename
// so a crash can never leave a partially written ledger behind. Serializing
// concurrent appends is the order service's job, not the ledger's.
type Ledger struct {
	path string
}

// NewLedger creates a Ledger persisting to the given JSON file. The file is
// created on first append; a missing file reads as an empty ledger.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// List returns every order in append order.
func (l *Ledger) List(_ context.Context) ([]order.Order, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read %s", l.path)
	}

	var orders []order.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, errors.Wrapf(err, "parse %s", l.path)
	}
	return orders, nil
}

// Append adds o to the ledger and rewrites the whole file.
func (l *Ledger) Append(ctx context.Context, o *order.Order) error {
	orders, err := l.List(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, *o)

	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode ledger")
	}
	if err := writeFileAtomic(l.path, data); err != nil {
		return errors.Wrapf(err, "write %s", l.path)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it, and renames it over path. The rename makes the write all-or-nothing.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
