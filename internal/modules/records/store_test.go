package records

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y1ran/journal-dashboard/internal/clients/journal"
	"github.com/y1ran/journal-dashboard/internal/events"
)

// fakeClient is a canned APIClient for tests.
type fakeClient struct {
	list    []journal.RecordPayload
	listErr error
	nextID  int64
	deleted []int64
}

func (f *fakeClient) ListRecords() ([]journal.RecordPayload, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeClient) CreateRecord(payload journal.RecordPayload) (*journal.RecordPayload, error) {
	f.nextID++
	payload.ID = f.nextID
	return &payload, nil
}

func (f *fakeClient) UpdateRecord(id int64, payload journal.RecordPayload) (*journal.RecordPayload, error) {
	payload.ID = id
	return &payload, nil
}

func (f *fakeClient) DeleteRecord(id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

// memStorage is an in-memory Storage for tests.
type memStorage struct {
	data map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string]string)}
}

func (m *memStorage) GetJSON(key string, dest interface{}) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), dest)
}

func (m *memStorage) SetJSON(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = string(raw)
	return nil
}

func payloadAt(id int64, symbol, tradedAt string) journal.RecordPayload {
	return journal.RecordPayload{ID: id, Symbol: symbol, TradedAt: &tradedAt}
}

func newTestStore(t *testing.T, client *fakeClient) *Store {
	t.Helper()
	store, err := NewStore(client, newMemStorage(), events.NewManager(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestRefreshSortsByTradedAtDescending(t *testing.T) {
	client := &fakeClient{list: []journal.RecordPayload{
		payloadAt(1, "BTCUSDT", "2026-08-20T10:00:00Z"),
		payloadAt(2, "ETHUSDT", "2026-08-25T10:00:00Z"),
		payloadAt(3, "SOLUSDT", "2026-08-22T10:00:00Z"),
	}}
	store := newTestStore(t, client)

	require.NoError(t, store.Refresh())

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)
	assert.Equal(t, int64(1), list[2].ID)
}

func TestRefreshFailureResetsCache(t *testing.T) {
	client := &fakeClient{list: []journal.RecordPayload{
		payloadAt(1, "BTCUSDT", "2026-08-20T10:00:00Z"),
	}}
	store := newTestStore(t, client)
	require.NoError(t, store.Refresh())
	require.Len(t, store.List(), 1)

	client.listErr = fmt.Errorf("upstream down")
	err := store.Refresh()

	assert.Error(t, err)
	assert.Empty(t, store.List())
}

func TestCreateReconcilesServerCopy(t *testing.T) {
	client := &fakeClient{nextID: 100}
	store := newTestStore(t, client)

	record := FromPayload(payloadAt(0, "BTCUSDT", "2026-08-28T08:00:00Z"))
	created, err := store.Create(record)

	require.NoError(t, err)
	assert.Equal(t, int64(101), created.ID)

	got, ok := store.Get(101)
	require.True(t, ok)
	assert.Equal(t, "BTCUSDT", got.Symbol)
}

func TestCreateValidation(t *testing.T) {
	store := newTestStore(t, &fakeClient{})

	_, err := store.Create(Record{Symbol: "BTCUSDT"})
	assert.Error(t, err, "missing traded_at must fail")

	_, err = store.Create(FromPayload(payloadAt(0, "", "2026-08-28T08:00:00Z")))
	assert.Error(t, err, "missing symbol must fail")
}

func TestUpdateAndDelete(t *testing.T) {
	client := &fakeClient{list: []journal.RecordPayload{
		payloadAt(1, "BTCUSDT", "2026-08-20T10:00:00Z"),
		payloadAt(2, "ETHUSDT", "2026-08-21T10:00:00Z"),
	}}
	store := newTestStore(t, client)
	require.NoError(t, store.Refresh())

	record, _ := store.Get(1)
	record.Symbol = "BNBUSDT"
	updated, err := store.Update(1, record)
	require.NoError(t, err)
	assert.Equal(t, "BNBUSDT", updated.Symbol)

	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "BNBUSDT", got.Symbol)

	require.NoError(t, store.Delete(2))
	_, ok = store.Get(2)
	assert.False(t, ok)
	assert.Equal(t, []int64{2}, client.deleted)
}

func TestReorder(t *testing.T) {
	client := &fakeClient{list: []journal.RecordPayload{
		payloadAt(1, "A", "2026-08-20T10:00:00Z"),
		payloadAt(2, "B", "2026-08-21T10:00:00Z"),
		payloadAt(3, "C", "2026-08-22T10:00:00Z"),
	}}
	store := newTestStore(t, client)
	require.NoError(t, store.Refresh())

	store.Reorder([]int64{1, 3, 2})

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)
	assert.Equal(t, int64(2), list[2].ID)
}

func TestReorderUnknownIDsSink(t *testing.T) {
	client := &fakeClient{list: []journal.RecordPayload{
		payloadAt(1, "A", "2026-08-20T10:00:00Z"),
		payloadAt(2, "B", "2026-08-21T10:00:00Z"),
		payloadAt(3, "C", "2026-08-22T10:00:00Z"),
	}}
	store := newTestStore(t, client)
	require.NoError(t, store.Refresh())

	// Only two ids named; the third keeps its relative place at the end.
	store.Reorder([]int64{3, 1})

	list := store.List()
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, int64(1), list[1].ID)
	assert.Equal(t, int64(2), list[2].ID)
}

func TestTags(t *testing.T) {
	store := newTestStore(t, &fakeClient{})

	tags := store.Tags()
	assert.Equal(t, DefaultTags, tags[:len(DefaultTags)])

	require.NoError(t, store.AddTag("情緒"))
	assert.Contains(t, store.Tags(), "情緒")

	// Duplicates of either set are rejected.
	assert.Error(t, store.AddTag("情緒"))
	assert.Error(t, store.AddTag(DefaultTags[0]))
	assert.Error(t, store.AddTag(""))

	require.NoError(t, store.RemoveTag("情緒"))
	assert.NotContains(t, store.Tags(), "情緒")
}

func TestCustomTagsPersistAcrossStores(t *testing.T) {
	storage := newMemStorage()
	manager := events.NewManager(zerolog.Nop())

	store, err := NewStore(&fakeClient{}, storage, manager, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.AddTag("情緒"))

	reloaded, err := NewStore(&fakeClient{}, storage, manager, zerolog.Nop())
	require.NoError(t, err)
	assert.Contains(t, reloaded.Tags(), "情緒")
}
