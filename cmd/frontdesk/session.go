package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/frontdesk/internal/api"
	"github.com/Veraticus/frontdesk/internal/auth"
	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/config"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/location"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/Veraticus/frontdesk/internal/storage"
)

// session is everything a command needs to talk to the backend on behalf of
// the signed-in user.
type session struct {
	client    *api.Client
	store     *storage.SQLiteStorage
	bus       *eventbus.Bus
	locations *location.Context
	prefs     service.Preferences
	identity  model.Identity
}

// sessionOptions locate the backend, the credential and the preference
// database.
type sessionOptions struct {
	BaseURL     string
	Token       string
	StoragePath string
	Timeout     time.Duration
	Retries     int
}

func optionsFromConfig(cfg *config.Config) (sessionOptions, error) {
	if err := cfg.RequireBackend(); err != nil {
		return sessionOptions{}, err
	}
	token, err := auth.LoadToken(cfg.Auth.Token, cfg.Auth.TokenFile)
	if err != nil {
		return sessionOptions{}, err
	}
	return sessionOptions{
		BaseURL:     cfg.API.BaseURL,
		Token:       token,
		StoragePath: cfg.Storage.Path,
		Timeout:     cfg.API.Timeout,
		Retries:     cfg.API.Retries,
	}, nil
}

func openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	identity, err := auth.Decode(opts.Token, time.Now())
	if err != nil {
		return nil, common.NewUserError("Your session is not valid, please sign in again", err)
	}
	profile, _ := model.ProfileOf(identity)

	client, err := api.New(api.Options{
		BaseURL: opts.BaseURL,
		Token:   opts.Token,
		Timeout: opts.Timeout,
		Retries: opts.Retries,
	})
	if err != nil {
		return nil, err
	}

	locations, err := client.ListLocations(ctx, profile.BusinessID)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, common.NewUserError("The backend rejected your credential", err)
		}
		return nil, fmt.Errorf("failed to load business locations: %w", err)
	}

	store, err := storage.NewSQLiteStorage(opts.StoragePath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate preferences: %w", err)
	}

	prefs := store.Preferences(profile.UserID)
	bus := eventbus.New()
	locs := location.New(prefs, bus)
	if err := locs.Initialize(ctx, identity, locations); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to resolve active location: %w", err)
	}

	slog.Debug("Session opened",
		"user", profile.UserID,
		"role", identity.Role(),
		"locations", len(locations))

	return &session{
		client:    client,
		store:     store,
		bus:       bus,
		locations: locs,
		prefs:     prefs,
		identity:  identity,
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}
