// Package location resolves and persists which business location is active.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
)

var (
	// ErrUnauthenticated is returned when the session has no usable identity.
	ErrUnauthenticated = errors.New("session is not authenticated")
	// ErrNoLocations is returned when an owner's business has no locations.
	ErrNoLocations = errors.New("business has no locations")
	// ErrUnknownLocation is returned when an owner selects a location outside the business.
	ErrUnknownLocation = errors.New("location does not belong to the business")
)

// Context is the single source of truth for the active location.
//
// Every change of the stored value publishes eventbus.LocationChanged with no
// payload; subscribers call Active to learn the new value.
type Context struct {
	identity  model.Identity
	prefs     service.Preferences
	bus       *eventbus.Bus
	locations []model.Location
	active    int64
	mu        sync.RWMutex
	// writeMu serializes switches across the persist and assign steps.
	writeMu sync.Mutex
}

// New creates an uninitialized context. Call Initialize before use.
func New(prefs service.Preferences, bus *eventbus.Bus) *Context {
	return &Context{
		identity: model.Unauthenticated{},
		prefs:    prefs,
		bus:      bus,
	}
}

// Initialize resolves the active location for identity.
//
// Staff are pinned to their assigned location, overwriting whatever was
// persisted before. Owners keep the persisted location while it still belongs
// to the business, otherwise they fall back to the first business location.
func (c *Context) Initialize(ctx context.Context, identity model.Identity, locations []model.Location) error {
	c.writeMu.Lock()
	err := c.initializeLocked(ctx, identity, locations)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.bus.Publish(eventbus.LocationChanged)
	return nil
}

func (c *Context) initializeLocked(ctx context.Context, identity model.Identity, locations []model.Location) error {
	var active int64
	persist := false

	switch id := identity.(type) {
	case model.Staff:
		active = id.AssignedLocation
		persist = true

	case model.Owner:
		if len(locations) == 0 {
			return ErrNoLocations
		}
		saved, ok, err := c.prefs.ActiveLocation(ctx)
		if err != nil {
			slog.Warn("Could not read persisted location, using default", "error", err)
		}
		if ok && containsLocation(locations, saved) {
			active = saved
		} else {
			active = locations[0].ID
			persist = true
		}

	default:
		return ErrUnauthenticated
	}

	if persist {
		if err := c.prefs.SetActiveLocation(ctx, active); err != nil {
			return fmt.Errorf("failed to persist active location: %w", err)
		}
	}

	c.mu.Lock()
	c.identity = identity
	c.locations = append([]model.Location(nil), locations...)
	c.active = active
	c.mu.Unlock()

	slog.Info("Active location resolved", "role", identity.Role(), "location_id", active)
	return nil
}

// SetActive switches the active location. Only owners may switch; for any
// other identity the call is a silent no-op.
func (c *Context) SetActive(ctx context.Context, locationID int64) error {
	c.writeMu.Lock()
	changed, err := c.setActiveLocked(ctx, locationID)
	c.writeMu.Unlock()

	if changed {
		c.bus.Publish(eventbus.LocationChanged)
	}
	return err
}

// Cycle moves an owner to the next (step > 0) or previous (step < 0)
// business location, wrapping around.
func (c *Context) Cycle(ctx context.Context, step int) error {
	c.writeMu.Lock()
	changed, err := c.cycleLocked(ctx, step)
	c.writeMu.Unlock()

	if changed {
		c.bus.Publish(eventbus.LocationChanged)
	}
	return err
}

func (c *Context) cycleLocked(ctx context.Context, step int) (bool, error) {
	c.mu.RLock()
	locations := c.locations
	current := c.active
	c.mu.RUnlock()

	if len(locations) == 0 || step == 0 {
		return false, nil
	}

	idx := 0
	for i, l := range locations {
		if l.ID == current {
			idx = i
			break
		}
	}
	n := len(locations)
	next := ((idx+step)%n + n) % n
	return c.setActiveLocked(ctx, locations[next].ID)
}

// setActiveLocked persists and stores locationID. The caller holds writeMu,
// so the persisted value and c.active change together.
func (c *Context) setActiveLocked(ctx context.Context, locationID int64) (bool, error) {
	c.mu.RLock()
	_, isOwner := c.identity.(model.Owner)
	current := c.active
	known := containsLocation(c.locations, locationID)
	c.mu.RUnlock()

	if !isOwner {
		slog.Debug("Ignoring location switch for non-owner identity", "location_id", locationID)
		return false, nil
	}
	if !known {
		return false, fmt.Errorf("%w: %d", ErrUnknownLocation, locationID)
	}
	if locationID == current {
		return false, nil
	}

	if err := c.prefs.SetActiveLocation(ctx, locationID); err != nil {
		return false, fmt.Errorf("failed to persist active location: %w", err)
	}

	c.mu.Lock()
	c.active = locationID
	c.mu.Unlock()
	return true, nil
}

// Active returns the active location id, or 0 before initialization.
func (c *Context) Active() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if staff, ok := c.identity.(model.Staff); ok {
		return staff.AssignedLocation
	}
	return c.active
}

// ActiveLocation returns the active location record when it is known.
func (c *Context) ActiveLocation() (model.Location, bool) {
	active := c.Active()

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.locations {
		if l.ID == active {
			return l, true
		}
	}
	return model.Location{}, false
}

// Identity returns the session identity.
func (c *Context) Identity() model.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// Locations returns the business locations known to the context.
func (c *Context) Locations() []model.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Location(nil), c.locations...)
}

// Locked reports whether the active location can not be switched.
func (c *Context) Locked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, isOwner := c.identity.(model.Owner)
	return !isOwner
}

// Scope returns the business/location pair reads should use.
func (c *Context) Scope() service.Scope {
	active := c.Active()
	c.mu.RLock()
	defer c.mu.RUnlock()

	profile, _ := model.ProfileOf(c.identity)
	return service.Scope{BusinessID: profile.BusinessID, LocationID: active}
}

func containsLocation(locations []model.Location, id int64) bool {
	for _, l := range locations {
		if l.ID == id {
			return true
		}
	}
	return false
}
