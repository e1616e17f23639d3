// Package engine provides the SQLite-backed record store used by the MediaID server.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/celerix-dev/mediaid/internal/engine/migrations"
	"github.com/celerix-dev/mediaid/internal/vault"
	pkgengine "github.com/celerix-dev/mediaid/pkg/engine"
	"github.com/celerix-dev/mediaid/pkg/schema"
	_ "modernc.org/sqlite"
)

const recordColumns = `first_name, last_name, email, phone, dob, gender,
	address, city, state, zip_code,
	emergency_name, emergency_phone, emergency_relation,
	medical_conditions, medical_history, blood_type,
	location_services, notifications, created_at, sealed`

// Store persists records in a local SQLite file.
type Store struct {
	db     *sql.DB
	sealer *vault.Sealer
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSealer encrypts the medical free-text columns with s.
func WithSealer(s *vault.Sealer) Option {
	return func(st *Store) {
		st.sealer = s
	}
}

// Open opens (creating if absent) the SQLite file at path and applies migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection serializes writers at the storage layer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ApplyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts r with a fresh ID and the current UTC time.
func (s *Store) Create(ctx context.Context, r schema.Record) (int64, error) {
	conditions, err := s.sealer.Seal(r.MedicalConditions)
	if err != nil {
		return 0, &pkgengine.StorageError{Op: "create", Err: fmt.Errorf("seal medical conditions: %w", err)}
	}
	history, err := s.sealer.Seal(r.MedicalHistory)
	if err != nil {
		return 0, &pkgengine.StorageError{Op: "create", Err: fmt.Errorf("seal medical history: %w", err)}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_history (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullable(r.FirstName), nullable(r.LastName), nullable(r.Email),
		nullable(r.Phone), nullable(r.DOB), nullable(r.Gender),
		nullable(r.Address), nullable(r.City), nullable(r.State), nullable(r.ZipCode),
		nullable(r.EmergencyName), nullable(r.EmergencyPhone), nullable(r.EmergencyRelation),
		nullable(conditions), nullable(history), nullable(r.BloodType),
		r.LocationServices, r.Notifications,
		s.now().UTC().UnixMilli(),
		s.sealer != nil,
	)
	if err != nil {
		return 0, &pkgengine.StorageError{Op: "create", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &pkgengine.StorageError{Op: "create", Err: err}
	}
	return id, nil
}

// List returns every record ordered by ID.
func (s *Store) List(ctx context.Context) ([]schema.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, `+recordColumns+` FROM user_history ORDER BY id`)
	if err != nil {
		return nil, &pkgengine.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	records := make([]schema.Record, 0)
	for rows.Next() {
		r, err := s.scanRecord(rows)
		if err != nil {
			return nil, &pkgengine.StorageError{Op: "list", Err: err}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &pkgengine.StorageError{Op: "list", Err: err}
	}
	return records, nil
}

func (s *Store) scanRecord(rows *sql.Rows) (schema.Record, error) {
	var (
		r       schema.Record
		text    [16]sql.NullString
		created int64
		sealed  bool
	)
	if err := rows.Scan(
		&r.ID,
		&text[0], &text[1], &text[2], &text[3], &text[4], &text[5],
		&text[6], &text[7], &text[8], &text[9],
		&text[10], &text[11], &text[12],
		&text[13], &text[14], &text[15],
		&r.LocationServices, &r.Notifications, &created, &sealed,
	); err != nil {
		return schema.Record{}, err
	}

	fields := []**string{
		&r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.DOB, &r.Gender,
		&r.Address, &r.City, &r.State, &r.ZipCode,
		&r.EmergencyName, &r.EmergencyPhone, &r.EmergencyRelation,
		&r.MedicalConditions, &r.MedicalHistory, &r.BloodType,
	}
	for i, f := range fields {
		if text[i].Valid {
			v := text[i].String
			*f = &v
		}
	}

	r.Timestamp = time.UnixMilli(created).UTC()
	if !sealed {
		return r, nil
	}

	var err error
	if r.MedicalConditions, err = s.sealer.Open(r.MedicalConditions); err != nil {
		return schema.Record{}, fmt.Errorf("open medical conditions of record %d: %w", r.ID, err)
	}
	if r.MedicalHistory, err = s.sealer.Open(r.MedicalHistory); err != nil {
		return schema.Record{}, fmt.Errorf("open medical history of record %d: %w", r.ID, err)
	}
	return r, nil
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
