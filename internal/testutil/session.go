package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/frontdesk/internal/api/fake"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/location"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
)

// Session is an initialized location context over a TestBackend.
type Session struct {
	Backend     *TestBackend
	DB          *TestDB
	Locations   *location.Context
	Bus         *eventbus.Bus
	Preferences service.Preferences
}

// OwnerIdentity returns the demo owner, homed at Downtown.
func OwnerIdentity() model.Owner {
	return model.Owner{
		Profile: model.Profile{
			UserID:      "owner",
			DisplayName: "Ana Owner",
			BusinessID:  fake.DemoBusinessID,
			ExpiresAt:   time.Now().Add(time.Hour),
		},
		HomeLocation: fake.DemoDowntown,
	}
}

// StaffIdentity returns a staff member pinned to locationID.
func StaffIdentity(locationID int64) model.Staff {
	return model.Staff{
		Profile: model.Profile{
			UserID:      "staff",
			DisplayName: "Sam Staff",
			BusinessID:  fake.DemoBusinessID,
			ExpiresAt:   time.Now().Add(time.Hour),
		},
		AssignedLocation: locationID,
	}
}

// NewSession initializes a location context for identity over the demo
// backend.
func NewSession(t *testing.T, now time.Time, identity model.Identity) *Session {
	t.Helper()

	backend := SetupBackend(t, now)
	db := SetupTestDB(t)
	profile, _ := model.ProfileOf(identity)
	prefs := db.Preferences(profile.UserID)
	bus := eventbus.New()

	ctx := context.Background()
	locations, err := backend.Client.ListLocations(ctx, fake.DemoBusinessID)
	if err != nil {
		t.Fatalf("failed to list locations: %v", err)
	}

	locs := location.New(prefs, bus)
	if err := locs.Initialize(ctx, identity, locations); err != nil {
		t.Fatalf("failed to initialize location context: %v", err)
	}

	return &Session{
		Backend:     backend,
		DB:          db,
		Locations:   locs,
		Bus:         bus,
		Preferences: prefs,
	}
}
