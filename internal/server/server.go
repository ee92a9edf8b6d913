package server

import (
	"fmt"
	"net/http"

	"slotbook/internal/auth/credentials"
	"slotbook/internal/auth/gate"
	authhandler "slotbook/internal/auth/handler"
	"slotbook/internal/auth/oauth"
	authservice "slotbook/internal/auth/service"
	"slotbook/internal/auth/token"
	"slotbook/internal/bookings/events"
	bookinghandler "slotbook/internal/bookings/handler"
	bookingrepository "slotbook/internal/bookings/repository"
	bookingservice "slotbook/internal/bookings/service"
	bookingvalidator "slotbook/internal/bookings/validator"
	userhandler "slotbook/internal/users/handler"
	userrepository "slotbook/internal/users/repository"
	userservice "slotbook/internal/users/service"
	uservalidator "slotbook/internal/users/validator"
	"slotbook/pkg/config"
	"slotbook/pkg/contracts"
	"slotbook/pkg/middleware"
	"slotbook/pkg/password"
)

// Dependencies are the outside resources the HTTP handlers are built on.
// A nil Events falls back to a no-op publisher; a nil HTTPClient to the
// default client.
type Dependencies struct {
	Users      userrepository.UserRepository
	Bookings   bookingrepository.BookingRepository
	Events     events.Publisher
	HTTPClient *http.Client
}

// Handlers assembles the users, auth and bookings handlers.
func Handlers(cfg *config.Config, deps Dependencies) ([]contracts.Handler, error) {
	tokens, err := token.NewService(cfg.SecretKey, token.WithIssuer(cfg.TokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	hasher := password.NewHasher(cfg.BcryptCost)
	users := userservice.NewUserService(deps.Users, uservalidator.NewUserValidator(cfg.Log), hasher, cfg)

	store := credentials.NewStore(users, hasher)
	principals := gate.New(tokens, store, cfg.Log)
	requireAuth := middleware.RequireAuth(principals, cfg.Log)

	registry := oauth.RegistryFromConfig(cfg)
	bridge := oauth.NewBridge(registry, tokens, cfg.AccessTokenExpire, deps.HTTPClient, cfg.Log)
	auth := authservice.NewAuthService(store, principals, tokens, bridge, cfg)

	bookings := bookingservice.NewBookingService(
		deps.Bookings,
		bookingvalidator.NewBookingValidator(cfg.Log),
		deps.Events,
		cfg,
	)

	cfg.Log.Info("Services initialized",
		"database", cfg.MongoDatabaseName,
		"oauth_providers", registry.Names(),
	)

	return []contracts.Handler{
		userhandler.NewUserHandler(users, cfg.Log),
		authhandler.NewAuthHandler(auth, cfg.OAuthCallbackBaseURL, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, requireAuth, cfg.Log),
	}, nil
}
