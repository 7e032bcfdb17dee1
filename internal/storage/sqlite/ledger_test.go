package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
)

func newTestStore(t *testing.T) *LedgerStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	store, err := NewLedgerStore(common.NewSilentLogger(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type claim struct {
	Address string `json:"address"`
	Done    bool   `json:"done"`
}

func TestLedgerStore_AppendAndReadAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id1, err := store.Append(ctx, "subscription", "0xA", claim{"0xA", false})
	require.NoError(t, err)
	id2, err := store.Append(ctx, "subscription", "0xB", claim{"0xB", true})
	require.NoError(t, err)
	id3, err := store.Append(ctx, "subscription", "0xA", claim{"0xA", true})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	all, err := store.ReadAll(ctx, "subscription", interfaces.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{id1, id2, id3}, []string{all[0].RecordID, all[1].RecordID, all[2].RecordID})
	assert.Less(t, all[0].Seq, all[1].Seq)
	assert.Less(t, all[1].Seq, all[2].Seq)

	onlyA, err := store.ReadAll(ctx, "subscription", interfaces.LedgerFilter{Key: "0xA"})
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.JSONEq(t, `{"address":"0xA","done":false}`, onlyA[0].Payload)
	assert.JSONEq(t, `{"address":"0xA","done":true}`, onlyA[1].Payload)
	assert.False(t, onlyA[0].CreatedAt.IsZero())
}

func TestLedgerStore_CollectionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "portfolio", "0xA", map[string]int{"n": 1})
	require.NoError(t, err)

	recs, err := store.ReadAll(ctx, "subscription", interfaces.LedgerFilter{Key: "0xA"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLedgerStore_ConcurrentAppends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Append(ctx, "subscription", "0xC", claim{"0xC", i%2 == 0})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	recs, err := store.ReadAll(ctx, "subscription", interfaces.LedgerFilter{Key: "0xC"})
	require.NoError(t, err)
	assert.Len(t, recs, 20)
}

func TestLedgerStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	ctx := context.Background()

	store, err := NewLedgerStore(common.NewSilentLogger(), path)
	require.NoError(t, err)
	_, err = store.Append(ctx, "profile", "0xA", map[string]string{"name": "a"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewLedgerStore(common.NewSilentLogger(), path)
	require.NoError(t, err)
	defer reopened.Close()

	recs, err := reopened.ReadAll(ctx, "profile", interfaces.LedgerFilter{Key: "0xA"})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestLedgerStore_ClosedStoreFails(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.Append(context.Background(), "subscription", "0xA", claim{})
	assert.Error(t, err)

	_, err = store.ReadAll(context.Background(), "subscription", interfaces.LedgerFilter{})
	assert.Error(t, err)
}
