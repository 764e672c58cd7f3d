// ABOUTME: Tests for the data hook state machine
// ABOUTME: Drives the hook with the mock store and scripted failing stores
package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harperreed/dealdesk/memstore"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func contactsHook(t *testing.T) *Hook[models.Contact, models.ContactInput] {
	t.Helper()
	store, err := memstore.NewContacts(memstore.WithLatency(0, 0))
	require.NoError(t, err)
	return NewContacts(store, nil)
}

// fakeStore lets each test script the store outcome.
type fakeStore struct {
	getAll  func(ctx context.Context) ([]models.Deal, error)
	deleted bool
	delErr  error
}

func (f *fakeStore) GetAll(ctx context.Context) ([]models.Deal, error) {
	return f.getAll(ctx)
}

func (f *fakeStore) GetByID(context.Context, int) (*models.Deal, error) { return nil, nil }

func (f *fakeStore) Create(context.Context, models.DealInput) (models.Deal, error) {
	return models.Deal{}, errors.New("create failed")
}

func (f *fakeStore) Update(context.Context, int, models.DealInput) (models.Deal, error) {
	return models.Deal{}, errors.New("update failed")
}

func (f *fakeStore) Delete(context.Context, int) (bool, error) { return f.deleted, f.delErr }

func TestInitialStateIsLoading(t *testing.T) {
	s := contactsHook(t).Snapshot()
	assert.True(t, s.Loading)
	assert.Empty(t, s.Items)
	assert.Empty(t, s.Err)
}

func TestUseLoadsOnce(t *testing.T) {
	calls := 0
	store := &fakeStore{getAll: func(context.Context) ([]models.Deal, error) {
		calls++
		return []models.Deal{{ID: 1}}, nil
	}}
	h := NewDeals(store, nil)

	s := h.Use(context.Background())
	h.Use(context.Background())

	assert.Equal(t, 1, calls)
	assert.False(t, s.Loading)
	assert.Len(t, s.Items, 1)

	require.NoError(t, h.Refetch(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestLoadFailureSetsErrorAndClearsLoading(t *testing.T) {
	store := &fakeStore{getAll: func(context.Context) ([]models.Deal, error) {
		return nil, errors.New("boom")
	}}
	h := NewDeals(store, nil)

	err := h.Load(context.Background())
	require.Error(t, err)

	s := h.Snapshot()
	assert.False(t, s.Loading)
	assert.Equal(t, DealsLoadError, s.Err)
}

func TestLoadClearsPreviousError(t *testing.T) {
	fail := true
	store := &fakeStore{getAll: func(context.Context) ([]models.Deal, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []models.Deal{}, nil
	}}
	h := NewDeals(store, nil)

	_ = h.Load(context.Background())
	fail = false
	require.NoError(t, h.Load(context.Background()))
	assert.Empty(t, h.Snapshot().Err)
}

func TestDegradedLoadKeepsEmptyList(t *testing.T) {
	store := &fakeStore{getAll: func(context.Context) ([]models.Deal, error) {
		return []models.Deal{}, fmt.Errorf("%w: connection refused", service.ErrUnavailable)
	}}
	h := NewDeals(store, nil)

	require.NoError(t, h.Load(context.Background()))
	s := h.Snapshot()
	assert.True(t, s.Degraded)
	assert.Empty(t, s.Err)
	assert.NotNil(t, s.Items)
	assert.False(t, s.Loading)
}

func TestLoadingVisibleWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	store := &fakeStore{getAll: func(context.Context) ([]models.Deal, error) {
		close(entered)
		<-release
		return []models.Deal{{ID: 9}}, nil
	}}
	h := NewDeals(store, nil)

	done := make(chan error)
	go func() { done <- h.Load(context.Background()) }()

	<-entered
	assert.True(t, h.Snapshot().Loading)
	close(release)
	require.NoError(t, <-done)

	s := h.Snapshot()
	assert.False(t, s.Loading)
	assert.Len(t, s.Items, 1)
}

func TestAddUpdateDeleteApplyConfirmedChanges(t *testing.T) {
	h := contactsHook(t)
	ctx := context.Background()
	require.NoError(t, h.Load(ctx))
	require.Len(t, h.Snapshot().Items, 5)

	created, err := h.Add(ctx, models.ContactInput{Name: "Hedy Lamarr", Email: "hedy@example.com", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, 6, created.ID)

	items := h.Snapshot().Items
	require.Len(t, items, 6)
	assert.Equal(t, created, items[5])

	in := created.Input()
	in.Company = "Frequency Hopping Inc"
	updated, err := h.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Frequency Hopping Inc", h.Snapshot().Items[5].Company)
	assert.Equal(t, updated, h.Snapshot().Items[5])

	ok, err := h.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	items = h.Snapshot().Items
	require.Len(t, items, 5)
	for _, c := range items {
		assert.NotEqual(t, 1, c.ID)
	}
}

func TestFailedWritesLeaveListUntouched(t *testing.T) {
	store := &fakeStore{getAll: func(context.Context) ([]models.Deal, error) {
		return []models.Deal{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, nil
	}}
	h := NewDeals(store, nil)
	ctx := context.Background()
	require.NoError(t, h.Load(ctx))

	_, err := h.Add(ctx, models.DealInput{})
	assert.Error(t, err)
	_, err = h.Update(ctx, 1, models.DealInput{})
	assert.Error(t, err)

	ok, err := h.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	store.delErr = memstore.ErrNotFound
	_, err = h.Delete(ctx, 2)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.Len(t, h.Snapshot().Items, 2)
}

func TestConcurrentWritesAreSafe(t *testing.T) {
	h := contactsHook(t)
	ctx := context.Background()
	require.NoError(t, h.Load(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.Add(ctx, models.ContactInput{Name: fmt.Sprintf("c%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, h.Snapshot().Items, 15)
}
