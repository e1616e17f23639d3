package engine

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/celerix-dev/mediaid/internal/vault"
	pkgengine "github.com/celerix-dev/mediaid/pkg/engine"
	"github.com/celerix-dev/mediaid/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mediaid.db")
	store, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func fullRecord() schema.Record {
	return schema.Record{
		FirstName:         schema.Text("Grace"),
		LastName:          schema.Text("Hopper"),
		Email:             schema.Text("grace@example.com"),
		Phone:             schema.Text("555-0100"),
		DOB:               schema.Text("1906-12-09"),
		Gender:            schema.Text("female"),
		Address:           schema.Text("1 Navy Way"),
		City:              schema.Text("Arlington"),
		State:             schema.Text("VA"),
		ZipCode:           schema.Text("22202"),
		EmergencyName:     schema.Text("Vincent"),
		EmergencyPhone:    schema.Text("555-0101"),
		EmergencyRelation: schema.Text("spouse"),
		MedicalConditions: schema.Text("none"),
		MedicalHistory:    schema.Text("appendectomy 1950\nbroken wrist"),
		BloodType:         schema.Text("AB+"),
		LocationServices:  true,
		Notifications:     false,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestCreateListRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	now := time.Date(2026, time.October, 18, 9, 15, 30, 987654321, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	in := fullRecord()
	id, err := store.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	want := in
	want.ID = 1
	want.Timestamp = now.Truncate(time.Millisecond)
	assert.Equal(t, want, got[0])
}

func TestCreateKeepsAbsentFieldsNull(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, schema.Record{FirstName: schema.Text(""), City: schema.Text("Oslo")})
	require.NoError(t, err)

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].FirstName)
	assert.Equal(t, "", *got[0].FirstName)
	assert.Equal(t, "Oslo", schema.Value(got[0].City))
	assert.Nil(t, got[0].LastName)
	assert.Nil(t, got[0].MedicalHistory)
	assert.False(t, got[0].LocationServices)
}

func TestListEmptyIsNotNil(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListIsStableAndOrdered(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := store.Create(ctx, schema.Record{FirstName: schema.Text(name)})
		require.NoError(t, err)
	}

	first, err := store.List(ctx)
	require.NoError(t, err)
	second, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var names []string
	for _, r := range first {
		names = append(names, schema.Value(r.FirstName))
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestConcurrentCreateAssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx := context.Background()

	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.Create(ctx, schema.Record{})
			assert.NoError(t, err)
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, n)
	got, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, n)
}

func TestReopenKeepsRecords(t *testing.T) {
	t.Parallel()

	store, path := openTempStore(t)
	ctx := context.Background()
	_, err := store.Create(ctx, fullRecord())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	id, err := reopened.Create(ctx, schema.Record{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	var applied int
	require.NoError(t, reopened.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 2, applied)
}

func TestClosedStoreReturnsStorageError(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	require.NoError(t, store.Close())

	_, err := store.Create(context.Background(), schema.Record{})
	assert.True(t, pkgengine.IsStorageError(err), "got %v", err)

	_, err = store.List(context.Background())
	assert.True(t, pkgengine.IsStorageError(err), "got %v", err)
}

func TestSealerEncryptsMedicalText(t *testing.T) {
	t.Parallel()

	sealer, err := vault.NewSealer([]byte("thisis32byteslongsecretkey123456"))
	require.NoError(t, err)
	store, _ := openTempStore(t, WithSealer(sealer))
	ctx := context.Background()

	in := fullRecord()
	_, err = store.Create(ctx, in)
	require.NoError(t, err)

	var raw string
	require.NoError(t, store.db.QueryRowContext(ctx, "SELECT medical_history FROM user_history").Scan(&raw))
	assert.NotContains(t, raw, "appendectomy")
	assert.True(t, strings.HasPrefix(raw, "enc:v1:"))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *in.MedicalHistory, schema.Value(got[0].MedicalHistory))
	assert.Equal(t, *in.MedicalConditions, schema.Value(got[0].MedicalConditions))
}

func TestSealedRowsNeedKey(t *testing.T) {
	t.Parallel()

	sealer, err := vault.NewSealer([]byte("thisis32byteslongsecretkey123456"))
	require.NoError(t, err)
	store, path := openTempStore(t, WithSealer(sealer))
	ctx := context.Background()
	_, err = store.Create(ctx, fullRecord())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	plain, err := Open(ctx, path)
	require.NoError(t, err)
	defer plain.Close()

	_, err = plain.List(ctx)
	assert.True(t, pkgengine.IsStorageError(err), "got %v", err)
}

func TestPrefixLookalikeTextRoundTrips(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, schema.Record{FirstName: schema.Text("ok")})
	require.NoError(t, err)
	_, err = store.Create(ctx, schema.Record{
		MedicalConditions: schema.Text("enc:v1:"),
		MedicalHistory:    schema.Text("enc:v1: see chart"),
	})
	require.NoError(t, err)

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ok", schema.Value(got[0].FirstName))
	assert.Equal(t, "enc:v1:", schema.Value(got[1].MedicalConditions))
	assert.Equal(t, "enc:v1: see chart", schema.Value(got[1].MedicalHistory))
}

func TestPlainRowsReadBackAfterKeyIsAdded(t *testing.T) {
	t.Parallel()

	plain, path := openTempStore(t)
	ctx := context.Background()
	_, err := plain.Create(ctx, schema.Record{MedicalHistory: schema.Text("enc:v1:deadbeef")})
	require.NoError(t, err)
	require.NoError(t, plain.Close())

	sealer, err := vault.NewSealer([]byte("thisis32byteslongsecretkey123456"))
	require.NoError(t, err)
	sealed, err := Open(ctx, path, WithSealer(sealer))
	require.NoError(t, err)
	defer sealed.Close()

	_, err = sealed.Create(ctx, schema.Record{MedicalHistory: schema.Text("enc:v1: see chart")})
	require.NoError(t, err)

	got, err := sealed.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "enc:v1:deadbeef", schema.Value(got[0].MedicalHistory))
	assert.Equal(t, "enc:v1: see chart", schema.Value(got[1].MedicalHistory))
}

func TestApplyMigrationsSkipsApplied(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"0002_extra.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE extra (id INTEGER);\n-- +migrate Down\nDROP TABLE extra;\n")},
		"README.md":      {Data: []byte("ignored")},
	}

	require.NoError(t, ApplyMigrations(ctx, store.db, fsys))
	// A second run would fail on CREATE TABLE if the file were not recorded.
	require.NoError(t, ApplyMigrations(ctx, store.db, fsys))
}

func TestExtractUp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\nSELECT 1;\n", extractUp("-- +migrate Up\nSELECT 1;\n-- +migrate Down\nSELECT 2;"))
	assert.Equal(t, "SELECT 3;", extractUp("SELECT 3;"))
	assert.Equal(t, "\nSELECT 4;", extractUp("-- +migrate Up\nSELECT 4;"))
}
