package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mediagate/logger"
	"mediagate/repository"

	"golang.org/x/crypto/bcrypt"
)

const (
	// AdminTokenTTL applies to admin logins and admin codes.
	AdminTokenTTL = 24 * time.Hour
	// UserTokenTTL applies to regular access codes.
	UserTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid code")
	ErrUnauthorized       = errors.New("unauthorized")
)

// dummyHash keeps the unknown-username path as slow as a real comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := HashPassword("not-a-real-password", bcrypt.DefaultCost)
	return h
})

// HashPassword hashes an admin password with the given bcrypt cost. A cost of
// zero selects bcrypt.DefaultCost; costs outside bcrypt's range are rejected.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPasswordHash reports whether password matches hash. A stored hash that
// bcrypt cannot parse is logged and never matches.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		logger.Warn("[Auth] unusable password hash", logger.ErrorField(err))
	}
	return err == nil
}

// Service issues session tokens for admin logins and access codes.
type Service struct {
	admins repository.AdminRepository
	users  repository.UserRepository
	tokens *TokenIssuer
}

// NewService wires the access control service.
func NewService(admins repository.AdminRepository, users repository.UserRepository, tokens *TokenIssuer) *Service {
	return &Service{admins: admins, users: users, tokens: tokens}
}

// Tokens exposes the issuer for request authorization.
func (s *Service) Tokens() *TokenIssuer { return s.tokens }

// LoginAdmin checks a username/password pair and returns a 24h admin token.
func (s *Service) LoginAdmin(ctx context.Context, username, password string) (string, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if admin == nil {
		CheckPasswordHash(password, dummyHash())
		logger.Warn("[Auth] unknown admin", logger.String("username", username))
		return "", ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, admin.PasswordHash) {
		logger.Warn("[Auth] admin password mismatch", logger.String("username", username))
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(AdminClaims(admin.ID, admin.Username), AdminTokenTTL)
	if err != nil {
		return "", err
	}
	logger.Info("[Auth] admin logged in", logger.Int64("adminId", admin.ID))
	return token, nil
}

// CodeResult is the outcome of a successful code verification.
type CodeResult struct {
	Token   string
	IsAdmin bool
	Claims  Claims
}

// VerifyCode exchanges an access code for a token.
func (s *Service) VerifyCode(ctx context.Context, code string) (*CodeResult, error) {
	claims, ttl, err := ResolveCode(ctx, s.admins, s.users, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			logger.Warn("[Auth] invalid access code")
		}
		return nil, err
	}
	token, err := s.tokens.Issue(claims, ttl)
	if err != nil {
		return nil, err
	}
	logger.Info("[Auth] access code accepted",
		logger.String("subject", claims.Subject),
		logger.Bool("isAdmin", claims.IsAdmin))
	return &CodeResult{Token: token, IsAdmin: claims.IsAdmin, Claims: claims}, nil
}

// ResolveCode maps a code to claims and token lifetime. Admin codes win over
// regular codes.
func ResolveCode(ctx context.Context, admins repository.AdminRepository, users repository.UserRepository, code string) (Claims, time.Duration, error) {
	if code == "" {
		return Claims{}, 0, ErrInvalidCode
	}

	admin, err := admins.GetByAdminCode(ctx, code)
	if err != nil {
		return Claims{}, 0, err
	}
	if admin != nil {
		return AdminClaims(admin.ID, admin.Username), AdminTokenTTL, nil
	}

	user, err := users.GetByCode(ctx, code)
	if err != nil {
		return Claims{}, 0, err
	}
	if user == nil {
		return Claims{}, 0, ErrInvalidCode
	}
	return UserClaims(user.ID, user.IsAdmin), UserTokenTTL, nil
}
