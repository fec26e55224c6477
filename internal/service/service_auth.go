package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/crypto"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/store"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
	"github.com/MKhiriev/go-ics-sync/models"
)

// authService registers principals, checks their passwords and issues the
// bearer tokens the ROP endpoints require. Registration also provisions the
// user's private store in the configured domain.
type authService struct {
	users     store.UserRepository
	mailboxes store.MailboxRepository
	hasher    crypto.PasswordHasher

	tokenSignKey  string
	tokenIssuer   string
	tokenDuration time.Duration

	domainID uint32
	quotaKiB uint32

	logger *logger.Logger
}

func NewAuthService(users store.UserRepository, mailboxes store.MailboxRepository,
	hasher crypto.PasswordHasher, cfg config.App, log *logger.Logger) AuthService {
	return &authService{
		users:         users,
		mailboxes:     mailboxes,
		hasher:        hasher,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		domainID:      cfg.Domain.ID,
		quotaKiB:      cfg.DefaultQuotaKiB,
		logger:        log,
	}
}

// RegisterUser creates a new user account and its private store.
//
// It validates that both Login and Password are non-empty, stores an
// argon2id hash of the password, and provisions the store with the default
// folder tree.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided if Login or Password is empty.
//   - A wrapped storage error if the repository call fails (e.g. login already
//     taken, see store.ErrLoginAlreadyExists).
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Login == "" || user.Password == "" {
		log.Error().Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	hash, err := a.hasher.Hash(user.Password)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("password hashing failed")
		return models.User{}, fmt.Errorf("password hashing failed: %w", err)
	}
	user.AuthHash, user.Password = hash, ""

	registeredUser, err := a.users.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	if _, err := a.mailboxes.ProvisionPrivate(ctx, registeredUser, a.domainID, a.quotaKiB); err != nil {
		log.Err(err).
			Int64("id", registeredUser.UserID).
			Str("login", registeredUser.Login).
			Msg("private store provisioning failed")
		return models.User{}, fmt.Errorf("private store provisioning failed: %w", err)
	}

	return registeredUser, nil
}

// Login authenticates an existing user.
//
// Returns the authenticated user record or:
//   - ErrInvalidDataProvided if Login or Password is empty.
//   - A wrapped storage error if the repository lookup fails (e.g. user not
//     found, see store.ErrNoUserWasFound).
//   - ErrWrongPassword if the password does not match the stored hash.
func (a *authService) Login(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Login == "" || user.Password == "" {
		log.Error().Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	foundUser, err := a.users.FindUserByLogin(ctx, user.Login)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user search by login failed")
		return models.User{}, fmt.Errorf("user search by login failed: %w", err)
	}

	ok, err := a.hasher.Verify(user.Password, foundUser.AuthHash)
	if err != nil {
		log.Err(err).Int64("id", foundUser.UserID).Msg("stored password hash is unusable")
		return models.User{}, fmt.Errorf("password verification failed: %w", err)
	}
	if !ok {
		log.Warn().
			Int64("id", foundUser.UserID).
			Str("login", foundUser.Login).
			Msg("wrong password")
		return models.User{}, ErrWrongPassword
	}

	return foundUser, nil
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the configured
// tokenIssuer as the "iss" claim and the login as the principal, and expires
// after tokenDuration.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, user.Login, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// Any validation failure (expired, wrong issuer, malformed, no login) is
// normalised to ErrTokenIsExpiredOrInvalid so that callers do not need to
// inspect low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
