package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryPrefs is an in-memory service.Preferences.
type memoryPrefs struct {
	err       error
	active    int64
	hasActive bool
	collapsed bool
	writes    int
}

func (m *memoryPrefs) ActiveLocation(context.Context) (int64, bool, error) {
	return m.active, m.hasActive, m.err
}

func (m *memoryPrefs) SetActiveLocation(_ context.Context, id int64) error {
	m.active = id
	m.hasActive = true
	m.writes++
	return nil
}

func (m *memoryPrefs) SidebarCollapsed(context.Context) (bool, error) { return m.collapsed, nil }

func (m *memoryPrefs) SetSidebarCollapsed(_ context.Context, c bool) error {
	m.collapsed = c
	return nil
}

var businessLocations = []model.Location{
	{ID: 10, BusinessID: 1, Name: "Downtown"},
	{ID: 11, BusinessID: 1, Name: "Riverside"},
}

func owner() model.Owner {
	return model.Owner{Profile: model.Profile{UserID: "o1", BusinessID: 1}}
}

func staff(assigned int64) model.Staff {
	return model.Staff{Profile: model.Profile{UserID: "s1", BusinessID: 1}, AssignedLocation: assigned}
}

func newTestContext(prefs *memoryPrefs) (*Context, *int) {
	bus := eventbus.New()
	published := 0
	bus.Subscribe(func(eventbus.Topic) { published++ }, eventbus.LocationChanged)
	return New(prefs, bus), &published
}

func TestInitialize_OwnerWithoutPersistedLocation(t *testing.T) {
	prefs := &memoryPrefs{}
	lc, published := newTestContext(prefs)

	require.NoError(t, lc.Initialize(context.Background(), owner(), businessLocations))

	assert.Equal(t, int64(10), lc.Active())
	assert.Equal(t, int64(10), prefs.active, "fallback choice is persisted")
	assert.Equal(t, 1, *published)
}

func TestInitialize_OwnerKeepsValidPersistedLocation(t *testing.T) {
	prefs := &memoryPrefs{active: 11, hasActive: true}
	lc, published := newTestContext(prefs)

	require.NoError(t, lc.Initialize(context.Background(), owner(), businessLocations))

	assert.Equal(t, int64(11), lc.Active())
	assert.Equal(t, 0, prefs.writes)
	assert.Equal(t, 1, *published)
}

func TestInitialize_OwnerDropsForeignPersistedLocation(t *testing.T) {
	prefs := &memoryPrefs{active: 99, hasActive: true}
	lc, _ := newTestContext(prefs)

	require.NoError(t, lc.Initialize(context.Background(), owner(), businessLocations))

	assert.Equal(t, int64(10), lc.Active())
	assert.Equal(t, int64(10), prefs.active)
}

func TestInitialize_OwnerIgnoresUnreadablePreference(t *testing.T) {
	prefs := &memoryPrefs{err: errors.New("disk I/O error")}
	lc, _ := newTestContext(prefs)

	require.NoError(t, lc.Initialize(context.Background(), owner(), businessLocations))
	assert.Equal(t, int64(10), lc.Active())
}

func TestInitialize_StaffOverwritesStalePersistedLocation(t *testing.T) {
	prefs := &memoryPrefs{active: 10, hasActive: true}
	lc, published := newTestContext(prefs)

	require.NoError(t, lc.Initialize(context.Background(), staff(11), businessLocations))

	assert.Equal(t, int64(11), lc.Active())
	assert.Equal(t, int64(11), prefs.active)
	assert.Equal(t, 1, *published)
	assert.True(t, lc.Locked())
}

func TestInitialize_Errors(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		lc, published := newTestContext(&memoryPrefs{})
		err := lc.Initialize(context.Background(), model.Unauthenticated{}, businessLocations)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Equal(t, 0, *published)
	})

	t.Run("owner without locations", func(t *testing.T) {
		lc, _ := newTestContext(&memoryPrefs{})
		err := lc.Initialize(context.Background(), owner(), nil)
		assert.ErrorIs(t, err, ErrNoLocations)
	})
}

func TestSetActive_StaffIsNoOp(t *testing.T) {
	prefs := &memoryPrefs{}
	lc, published := newTestContext(prefs)
	ctx := context.Background()
	require.NoError(t, lc.Initialize(ctx, staff(11), businessLocations))

	require.NoError(t, lc.SetActive(ctx, 10))
	require.NoError(t, lc.Cycle(ctx, 1))

	assert.Equal(t, int64(11), lc.Active())
	assert.Equal(t, int64(11), prefs.active)
	assert.Equal(t, 1, *published, "only the initialize broadcast")
}

func TestSetActive_StaffIgnoresForeignWrites(t *testing.T) {
	prefs := &memoryPrefs{}
	bus := eventbus.New()
	lc := New(prefs, bus)
	ctx := context.Background()
	require.NoError(t, lc.Initialize(ctx, staff(11), businessLocations))

	// Something else overwrites the stored value and broadcasts.
	prefs.active = 10
	bus.Publish(eventbus.LocationChanged)

	assert.Equal(t, int64(11), lc.Active())
}

func TestSetActive_Owner(t *testing.T) {
	prefs := &memoryPrefs{}
	lc, published := newTestContext(prefs)
	ctx := context.Background()
	require.NoError(t, lc.Initialize(ctx, owner(), businessLocations))

	require.NoError(t, lc.SetActive(ctx, 11))
	assert.Equal(t, int64(11), lc.Active())
	assert.Equal(t, int64(11), prefs.active)
	assert.Equal(t, 2, *published)

	// Same value: no write, no broadcast.
	require.NoError(t, lc.SetActive(ctx, 11))
	assert.Equal(t, 2, *published)

	err := lc.SetActive(ctx, 99)
	assert.ErrorIs(t, err, ErrUnknownLocation)
	assert.Equal(t, int64(11), lc.Active())
}

func TestCycle_WrapsAround(t *testing.T) {
	lc, _ := newTestContext(&memoryPrefs{})
	ctx := context.Background()
	require.NoError(t, lc.Initialize(ctx, owner(), businessLocations))

	require.NoError(t, lc.Cycle(ctx, 1))
	assert.Equal(t, int64(11), lc.Active())
	require.NoError(t, lc.Cycle(ctx, 1))
	assert.Equal(t, int64(10), lc.Active())
	require.NoError(t, lc.Cycle(ctx, -1))
	assert.Equal(t, int64(11), lc.Active())
}

func TestScope(t *testing.T) {
	lc, _ := newTestContext(&memoryPrefs{})
	require.NoError(t, lc.Initialize(context.Background(), owner(), businessLocations))

	scope := lc.Scope()
	assert.Equal(t, int64(1), scope.BusinessID)
	assert.Equal(t, int64(10), scope.LocationID)

	loc, ok := lc.ActiveLocation()
	require.True(t, ok)
	assert.Equal(t, "Downtown", loc.Name)
}

// slowPrefs delays the write of selected location ids.
type slowPrefs struct {
	delays map[int64]time.Duration
	active int64
	mu     sync.Mutex
}

func (p *slowPrefs) ActiveLocation(context.Context) (int64, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active, p.active != 0, nil
}

func (p *slowPrefs) SetActiveLocation(_ context.Context, id int64) error {
	time.Sleep(p.delays[id])
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = id
	return nil
}

func (p *slowPrefs) SidebarCollapsed(context.Context) (bool, error) { return false, nil }

func (p *slowPrefs) SetSidebarCollapsed(context.Context, bool) error { return nil }

func (p *slowPrefs) persisted() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func TestSetActive_ConcurrentSwitchesStayConsistent(t *testing.T) {
	threeLocations := append(append([]model.Location(nil), businessLocations...),
		model.Location{ID: 12, BusinessID: 1, Name: "Harbour"})

	tests := []struct {
		name   string
		apply  func(c *Context, i int) error
		want   int64
	}{
		{
			name: "set active",
			apply: func(c *Context, i int) error {
				return c.SetActive(context.Background(), int64(11+i))
			},
		},
		{
			name: "cycle",
			apply: func(c *Context, _ int) error {
				return c.Cycle(context.Background(), 1)
			},
			want: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := &slowPrefs{delays: map[int64]time.Duration{11: 20 * time.Millisecond}}
			c := New(prefs, eventbus.New())
			require.NoError(t, c.Initialize(context.Background(), owner(), threeLocations))
			require.Equal(t, int64(10), c.Active())

			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i := range 2 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs[i] = tt.apply(c, i)
				}()
				time.Sleep(5 * time.Millisecond)
			}
			wg.Wait()

			for _, err := range errs {
				require.NoError(t, err)
			}
			assert.Equal(t, prefs.persisted(), c.Active())
			if tt.want != 0 {
				assert.Equal(t, tt.want, c.Active())
			}
		})
	}
}
