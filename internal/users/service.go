package users

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/apperr"
	"github.com/ariefcatur/go-shop-orders/internal/auth"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"go.uber.org/zap"
)

var (
	ErrInvalidEmail       = apperr.New(apperr.Validation, "Invalid email format")
	ErrUserExists         = apperr.New(apperr.Conflict, "User already exists")
	ErrInvalidCredentials = apperr.New(apperr.Unauthorized, "Invalid email or password")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// Service registers and authenticates users. Lookups by email go through
// the cache under user:{email}.
type Service struct {
	store Store
	cache redisx.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewService(store Store, cache redisx.Cache, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{store: store, cache: cache, ttl: ttl, log: log.Named("users")}
}

func (s *Service) Register(ctx context.Context, in Registration) (*User, error) {
	log := s.log.With(zap.String("email", in.Email))
	log.Info("registering user")
	if err := ValidateEmail(in.Email); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("lookup before register failed", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		log.Warn("user already exists")
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		log.Error("hash password failed", zap.Error(err))
		return nil, err
	}
	u, err := s.store.Create(ctx, NewUser{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, ErrEmailTaken) {
		// lost a race with a concurrent registration
		log.Warn("user already exists")
		return nil, ErrUserExists
	}
	if err != nil {
		log.Error("create user failed", zap.Error(err))
		return nil, err
	}
	redisx.Store(ctx, s.cache, s.log, redisx.UserKey(u.Email), u, s.ttl)
	log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

// Authenticate returns the user when the password matches. Unknown emails
// and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		s.log.Info("authentication failed", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	return redisx.ReadThrough(ctx, s.cache, s.log, redisx.UserKey(email), s.ttl, func(ctx context.Context) (*User, error) {
		return s.store.GetByEmail(ctx, email)
	})
}
