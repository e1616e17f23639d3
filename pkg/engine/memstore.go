package engine

import (
	"context"
	"sync"
	"time"

	"github.com/celerix-dev/mediaid/pkg/schema"
)

// MemStore is a thread-safe in-memory record store.
// Records live only as long as the process.
type MemStore struct {
	mu      sync.RWMutex
	records []schema.Record
	nextID  int64
	closed  bool
	now     func() time.Time
}

// NewMemStore initializes a store. It accepts existing records, which keep their
// IDs and timestamps; new IDs continue after the highest one seen.
func NewMemStore(initial []schema.Record) *MemStore {
	m := &MemStore{now: time.Now}
	for _, r := range initial {
		m.records = append(m.records, r)
		if r.ID > m.nextID {
			m.nextID = r.ID
		}
	}
	return m
}

// Create appends a copy of r with a fresh ID and the current UTC time.
func (m *MemStore) Create(ctx context.Context, r schema.Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &StorageError{Op: "create", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, &StorageError{Op: "create", Err: ErrStoreClosed}
	}

	m.nextID++
	r.ID = m.nextID
	r.Timestamp = m.now().UTC().Truncate(time.Millisecond)
	m.records = append(m.records, copyRecord(r))
	return r.ID, nil
}

// List returns every record in creation order.
func (m *MemStore) List(ctx context.Context) ([]schema.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, &StorageError{Op: "list", Err: ErrStoreClosed}
	}

	// Return copies to prevent external mutation of the stored records
	out := make([]schema.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, copyRecord(r))
	}
	return out, nil
}

// Close marks the store closed. Later calls fail with ErrStoreClosed.
func (m *MemStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// copyRecord deep-copies the optional text fields of r.
func copyRecord(r schema.Record) schema.Record {
	for _, f := range []**string{
		&r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.DOB, &r.Gender,
		&r.Address, &r.City, &r.State, &r.ZipCode,
		&r.EmergencyName, &r.EmergencyPhone, &r.EmergencyRelation,
		&r.MedicalConditions, &r.MedicalHistory, &r.BloodType,
	} {
		if *f != nil {
			v := **f
			*f = &v
		}
	}
	return r
}
