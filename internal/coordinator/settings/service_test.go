package settings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/hlsync/internal/common"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/storage"
	"github.com/dmitrijs2005/hlsync/internal/logging"
)

// ---- fakes ----

// gatedStore blocks every Get until release is closed and counts writes per key.
type gatedStore struct {
	*storage.MemoryStore
	entered chan struct{}
	release chan struct{}

	mu     sync.Mutex
	writes map[string]int
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: storage.NewMemoryStore(),
		entered:     make(chan struct{}, 16),
		release:     make(chan struct{}),
		writes:      map[string]int{},
	}
}

func (g *gatedStore) Get(ctx context.Context, key string) ([]byte, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.MemoryStore.Get(ctx, key)
}

func (g *gatedStore) Set(ctx context.Context, key string, value []byte) error {
	g.mu.Lock()
	g.writes[key]++
	g.mu.Unlock()
	return g.MemoryStore.Set(ctx, key, value)
}

// ctxStore blocks every Get until release is closed or the caller's ctx ends.
type ctxStore struct {
	*storage.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (c *ctxStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.entered <- struct{}{}
	select {
	case <-c.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.MemoryStore.Get(ctx, key)
}

// brokenStore fails writes for the listed keys.
type brokenStore struct {
	*storage.MemoryStore
	failSet map[string]bool
	failGet bool
}

func (b *brokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	if b.failGet {
		return nil, common.ErrorStoreAccess
	}
	return b.MemoryStore.Get(ctx, key)
}

func (b *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	if b.failSet[key] {
		return common.ErrorStoreAccess
	}
	return b.MemoryStore.Set(ctx, key, value)
}

func newService(s storage.Store) *Service {
	return NewService(s, logging.Nop{})
}

// ---- tests ----

func TestGetUserID_GeneratesV4AndPersists(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newService(store)
	ctx := context.Background()

	id, err := svc.GetUserID(ctx)
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, uuid.RFC4122, parsed.Variant())
	assert.Contains(t, "89ab", string(id[19]))

	raw, err := store.Get(ctx, common.KeyUserID)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+id+`"`, string(raw))
}

func TestGetUserID_SequentialCallsReturnSameID(t *testing.T) {
	svc := newService(storage.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.GetUserID(ctx)
	require.NoError(t, err)
	second, err := svc.GetUserID(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetUserID_ConcurrentCallsPersistOneID(t *testing.T) {
	store := newGatedStore()
	svc := newService(store)

	var generated atomic.Int32
	svc.newID = func() string {
		generated.Add(1)
		return uuid.NewString()
	}

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := svc.GetUserID(context.Background())
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}

	<-store.entered
	// give the remaining callers time to queue behind the in-flight read
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.EqualValues(t, 1, generated.Load())
	assert.Equal(t, 1, store.writes[common.KeyUserID])
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestGetUserID_CallerDeadlineDoesNotFailOthers(t *testing.T) {
	store := &ctxStore{
		MemoryStore: storage.NewMemoryStore(),
		entered:     make(chan struct{}, 16),
		release:     make(chan struct{}),
	}
	svc := newService(store)

	type result struct {
		id  string
		err error
	}

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	first := make(chan result, 1)
	go func() {
		id, err := svc.GetUserID(short)
		first <- result{id, err}
	}()
	<-store.entered

	second := make(chan result, 1)
	go func() {
		id, err := svc.GetUserID(context.Background())
		second <- result{id, err}
	}()

	r1 := <-first
	assert.ErrorIs(t, r1.err, context.DeadlineExceeded)
	assert.Empty(t, r1.id)

	close(store.release)
	r2 := <-second
	require.NoError(t, r2.err)
	_, err := uuid.Parse(r2.id)
	require.NoError(t, err)

	stored, err := store.MemoryStore.Get(context.Background(), common.KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, `"`+r2.id+`"`, string(stored))
}

func TestGetUserID_KeepsExistingID(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), common.KeyUserID, []byte(`"existing-id"`)))

	id, err := newService(store).GetUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "existing-id", id)
}

func TestGetEnabled_DefaultsToTrue(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newService(store)
	ctx := context.Background()

	enabled, err := svc.GetEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	// only an explicit false disables
	require.NoError(t, store.Set(ctx, common.KeyIsActive, []byte(`"nope"`)))
	enabled, err = svc.GetEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSetEnabled_ThenGetEnabled(t *testing.T) {
	svc := newService(storage.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, svc.SetEnabled(ctx, false))
	enabled, err := svc.GetEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, svc.SetEnabled(ctx, true))
	enabled, err = svc.GetEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestKeywords_Defaults(t *testing.T) {
	svc := newService(storage.NewMemoryStore())
	ctx := context.Background()

	raw, err := svc.GetKeywordsRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", raw)

	list, err := svc.GetKeywordsList(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSetKeywordsRaw_DerivesList(t *testing.T) {
	svc := newService(storage.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, svc.SetKeywordsRaw(ctx, "Hello   World"))

	list, err := svc.GetKeywordsList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, list)

	raw, err := svc.GetKeywordsRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello   World", raw)
}

func TestSetKeywordsRaw_WritesRawThenList(t *testing.T) {
	obs := storage.NewObserved(storage.NewMemoryStore())
	var keys []string
	obs.OnChanged(func(_ context.Context, c storage.Change) { keys = append(keys, c.Key) })

	require.NoError(t, newService(obs).SetKeywordsRaw(context.Background(), "a b"))
	assert.Equal(t, []string{common.KeyKeywordsString, common.KeyKeywordsArray}, keys)
}

func TestSetKeywordsRaw_SecondWriteFailureIsReported(t *testing.T) {
	store := &brokenStore{
		MemoryStore: storage.NewMemoryStore(),
		failSet:     map[string]bool{common.KeyKeywordsArray: true},
	}
	svc := newService(store)
	ctx := context.Background()

	err := svc.SetKeywordsRaw(ctx, "alpha")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorStoreAccess))

	// raw text landed; list did not
	raw, err := svc.GetKeywordsRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alpha", raw)
	list, err := svc.GetKeywordsList(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReads_PropagateStoreFailures(t *testing.T) {
	svc := newService(&brokenStore{MemoryStore: storage.NewMemoryStore(), failGet: true})
	ctx := context.Background()

	_, err := svc.GetEnabled(ctx)
	assert.ErrorIs(t, err, common.ErrorStoreAccess)
	_, err = svc.GetKeywordsRaw(ctx)
	assert.ErrorIs(t, err, common.ErrorStoreAccess)
	_, err = svc.GetKeywordsList(ctx)
	assert.ErrorIs(t, err, common.ErrorStoreAccess)
	_, err = svc.GetUserID(ctx)
	assert.ErrorIs(t, err, common.ErrorStoreAccess)
}
