// =============================================================================
// ColorMe to Yayoi Converter - Ledger Snapshot Storage
// =============================================================================
//
// This module persists the Yayoi customer ledger between runs so that the
// customer list only has to be exported from Yayoi once and is then kept
// up to date by registering new customers.
//
// SNAPSHOT FORMAT (JSON):
//   {
//     "version":        "3.4",
//     "timestamp":      "2025/12/02 09:30",
//     "yayoiCustomers": [ {customerCode, name, furigana, phone, email}, ... ],
//     "customerCount":  123
//   }
//
// BACKENDS:
//   - file:  a JSON file on disk (default)
//   - redis: a single Redis key, for setups sharing one ledger
//
// Export writes the stored document unchanged; Import validates a document
// and stores it unchanged.
//
// =============================================================================

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/config"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

const (
	// SnapshotVersion is written into every saved snapshot.
	SnapshotVersion = "3.4"

	timestampLayout = "2006/01/02 15:04"
)

var (
	// ErrNotFound is returned when no snapshot has been stored yet.
	ErrNotFound = errors.New("storage: no ledger snapshot stored")

	// ErrInvalidSnapshot is returned for documents without a customer array.
	ErrInvalidSnapshot = errors.New("storage: invalid snapshot format")
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the persisted form of the customer ledger.
type Snapshot struct {
	Version       string           `json:"version"`
	Timestamp     string           `json:"timestamp"`
	Customers     []types.Customer `json:"yayoiCustomers"`
	CustomerCount int              `json:"customerCount"`
}

// NewSnapshot wraps customers in a snapshot stamped with now.
func NewSnapshot(customers []types.Customer, now time.Time) *Snapshot {
	if customers == nil {
		customers = []types.Customer{}
	}
	return &Snapshot{
		Version:       SnapshotVersion,
		Timestamp:     now.Format(timestampLayout),
		Customers:     customers,
		CustomerCount: len(customers),
	}
}

// ParseSnapshot decodes a snapshot document. The customer array must be
// present; the other fields are informational.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var raw struct {
		Version       string            `json:"version"`
		Timestamp     string            `json:"timestamp"`
		Customers     *[]types.Customer `json:"yayoiCustomers"`
		CustomerCount int               `json:"customerCount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if raw.Customers == nil {
		return nil, fmt.Errorf("%w: yayoiCustomers array missing", ErrInvalidSnapshot)
	}

	return &Snapshot{
		Version:       raw.Version,
		Timestamp:     raw.Timestamp,
		Customers:     *raw.Customers,
		CustomerCount: raw.CustomerCount,
	}, nil
}

// =============================================================================
// BACKEND
// =============================================================================

// Backend stores one opaque snapshot document.
type Backend interface {
	// Get returns the stored document or ErrNotFound.
	Get(ctx context.Context) ([]byte, error)

	// Put replaces the stored document.
	Put(ctx context.Context, data []byte) error

	// Delete removes the stored document. Deleting nothing is not an error.
	Delete(ctx context.Context) error

	Close() error
}

// =============================================================================
// LEDGER STORE
// =============================================================================

// Store reads and writes ledger snapshots through a Backend.
type Store struct {
	backend Backend
	now     func() time.Time
}

// NewStore creates a Store on top of backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend, now: time.Now}
}

// Open creates the Store selected by the storage configuration.
//
// PARAMETERS:
//   - ctx: Bounds the Redis connection check.
//   - cfg: The storage section of the main configuration.
//
// RETURNS:
//   - The store. Close it when done.
//   - An error if the backend is unknown or unreachable.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewStore(NewFileBackend(cfg.Path)), nil
	case config.BackendRedis:
		backend, err := DialRedis(ctx, cfg.RedisAddr, cfg.Key)
		if err != nil {
			return nil, err
		}
		return NewStore(backend), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Load returns the stored snapshot or ErrNotFound.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.backend.Get(ctx)
	if err != nil {
		return nil, err
	}
	return ParseSnapshot(data)
}

// Customers returns the stored ledger, or an empty ledger when nothing
// has been stored yet.
func (s *Store) Customers(ctx context.Context) ([]types.Customer, error) {
	snapshot, err := s.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot.Customers, nil
}

// Save replaces the stored ledger with customers.
func (s *Store) Save(ctx context.Context, customers []types.Customer) (*Snapshot, error) {
	snapshot := NewSnapshot(customers, s.now())

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("storage: encode snapshot: %w", err)
	}
	if err := s.backend.Put(ctx, data); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Clear removes the stored ledger.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx)
}

// Export writes the stored document to w unchanged.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	data, err := s.backend.Get(ctx)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("storage: export: %w", err)
	}
	return nil
}

// Import validates a snapshot document and stores it unchanged.
func (s *Store) Import(ctx context.Context, r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: import: %w", err)
	}

	snapshot, err := ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Put(ctx, data); err != nil {
		return nil, err
	}
	return snapshot, nil
}
