// Package service implements the application services that tie the domain
// model to the storage, messaging and broadcast adapters.
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/daoteng/backoffice/internal/config"
	"github.com/daoteng/backoffice/internal/domain"
	"github.com/daoteng/backoffice/internal/domain/user"
	"github.com/daoteng/backoffice/internal/port/cache"
	"github.com/daoteng/backoffice/internal/port/database"
)

const (
	tokenAudience = "backoffice"
	tokenIssuer   = "backoffice-api"
)

// AuthService handles operator authentication and account management.
// Access tokens are compact HS256 tokens signed with the configured secret.
type AuthService struct {
	store  database.Store
	cache  cache.Cache
	cfg    *config.Auth
	ttl    time.Duration
	secret []byte
}

// NewAuthService creates a new authentication service. The cache, when
// non-nil, holds operator profiles for repeated /auth/me lookups.
func NewAuthService(store database.Store, profileCache cache.Cache, cfg *config.Auth) *AuthService {
	return &AuthService{
		store:  store,
		cache:  profileCache,
		cfg:    cfg,
		ttl:    cfg.TokenTTL,
		secret: []byte(cfg.TokenSecret),
	}
}

// Register creates a new operator with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req *user.CreateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		Role:         req.Role,
		Enabled:      true,
	}
	if u.DisplayName == "" {
		u.DisplayName = req.Email
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login authenticates an operator and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !u.Enabled {
		return nil, errors.New("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	token, err := s.signToken(u)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &user.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.ttl.Seconds()),
		User:        *u,
	}, nil
}

// ValidateToken verifies a signed access token and returns its claims.
func (s *AuthService) ValidateToken(tokenStr string) (user.TokenClaims, error) {
	parts := strings.SplitN(tokenStr, ".", 3)
	if len(parts) != 3 {
		return user.TokenClaims{}, errors.New("malformed token")
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	expectedSig := base64URLEncode(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return user.TokenClaims{}, errors.New("invalid signature")
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return user.TokenClaims{}, fmt.Errorf("decode payload: %w", err)
	}

	var claims tokenPayload
	if err := json.Unmarshal(payload, &claims); err != nil {
		return user.TokenClaims{}, fmt.Errorf("unmarshal claims: %w", err)
	}

	if time.Now().Unix() > claims.Expiry {
		return user.TokenClaims{}, errors.New("token expired")
	}
	if claims.Audience != tokenAudience {
		return user.TokenClaims{}, errors.New("invalid token audience")
	}
	if claims.Issuer != tokenIssuer {
		return user.TokenClaims{}, errors.New("invalid token issuer")
	}

	return claims.TokenClaims, nil
}

// Profile returns the operator's account, serving repeated lookups from
// the profile cache when one is configured.
func (s *AuthService) Profile(ctx context.Context, id string) (*user.User, error) {
	key := "profile:" + id

	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var u user.User
			if err := json.Unmarshal(data, &u); err == nil {
				return &u, nil
			}
		}
	}

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(u); err == nil {
			_ = s.cache.Set(ctx, key, data, 0)
		}
	}
	return u, nil
}

// ListUsers returns all operator accounts.
func (s *AuthService) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUser updates an operator's display name, role or enabled flag.
func (s *AuthService) UpdateUser(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	u, err := s.store.UpdateUser(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "profile:"+id)
	}
	return u, nil
}

// ResetPassword replaces an operator's password without requiring the old
// one. Intended for the admin CLI.
func (s *AuthService) ResetPassword(ctx context.Context, id, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.store.UpdateUserPassword(ctx, id, string(hash))
}

// tokenPayload extends the claims with the audience and issuer checks.
type tokenPayload struct {
	user.TokenClaims
	Audience string `json:"aud"`
	Issuer   string `json:"iss"`
}

// tokenHeader is the fixed base64url-encoded header for HS256.
var tokenHeader = base64URLEncode([]byte(`{"alg":"HS256","typ":"JWT"}`))

func (s *AuthService) signToken(u *user.User) (string, error) {
	now := time.Now()
	claims := tokenPayload{
		TokenClaims: user.TokenClaims{
			UserID:   u.ID,
			Email:    u.Email,
			Role:     u.Role,
			IssuedAt: now.Unix(),
			Expiry:   now.Add(s.ttl).Unix(),
		},
		Audience: tokenAudience,
		Issuer:   tokenIssuer,
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	signingInput := tokenHeader + "." + base64URLEncode(payload)

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	sig := base64URLEncode(mac.Sum(nil))

	return signingInput + "." + sig, nil
}

func base64URLEncode(data []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
}

func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
