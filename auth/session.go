package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Session is the decoded, verified content of an access token. The role is
// the one the user had when the token was issued.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Role      models.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Claims struct {
	Email string      `json:"email,omitempty"`
	Role  models.Role `json:"role,omitempty"`
	Type  string      `json:"typ"`
	jwt.RegisteredClaims
}

// Tokens is what a successful login or refresh hands back to the client.
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	Session          *Session
	RefreshExpiresAt time.Time
}

type IssuerConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type Issuer struct {
	users  database.UserStore
	hasher *Hasher
	cfg    IssuerConfig
	now    func() time.Time
}

func NewIssuer(users database.UserStore, hasher *Hasher, cfg IssuerConfig) *Issuer {
	return &Issuer{
		users:  users,
		hasher: hasher,
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithClock replaces the time source; used by tests to move past expiry.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

func (i *Issuer) Hasher() *Hasher { return i.hasher }

// Issue verifies email and password. An unknown email and a wrong password
// both return ErrInvalidCredentials after the same amount of hashing work.
// Store failures are returned as they are.
func (i *Issuer) Issue(ctx context.Context, email, password string) (*Tokens, error) {
	user, err := i.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i.hasher.burn(ctx, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !i.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return i.mint(user)
}

// Refresh re-derives both tokens from a valid refresh token. The user is
// re-read so the new access token carries the current role.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, ok := i.parse(refreshToken, i.cfg.RefreshSecret, tokenTypeRefresh)
	if !ok {
		return nil, ErrUnauthenticated
	}
	user, err := i.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return i.mint(user)
}

// Verify decodes an access token. Any failure (bad signature, expired,
// malformed, wrong kind) yields nil: the caller is anonymous.
func (i *Issuer) Verify(token string) *Session {
	claims, ok := i.parse(token, i.cfg.AccessSecret, tokenTypeAccess)
	if !ok || !claims.Role.Valid() || claims.IssuedAt == nil {
		return nil
	}
	return &Session{
		ID:        claims.ID,
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
}

func (i *Issuer) mint(user *models.User) (*Tokens, error) {
	now := i.now().UTC().Truncate(time.Second)
	access := Claims{
		Email: user.Email,
		Role:  user.Role,
		Type:  tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.cfg.Issuer,
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.AccessTTL)),
		},
	}
	accessToken, err := sign(access, i.cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshExp := now.Add(i.cfg.RefreshTTL)
	refresh := Claims{
		Type: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.cfg.Issuer,
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	}
	refreshToken, err := sign(refresh, i.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Session: &Session{
			ID:        access.ID,
			UserID:    access.Subject,
			Email:     access.Email,
			Role:      access.Role,
			IssuedAt:  now,
			ExpiresAt: access.ExpiresAt.Time,
		},
		RefreshExpiresAt: refreshExp,
	}, nil
}

func sign(c Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

func (i *Issuer) parse(tokenStr string, secret []byte, typ string) (*Claims, bool) {
	if tokenStr == "" {
		return nil, false
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.cfg.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, false
	}
	if claims.Type != typ || claims.Subject == "" {
		return nil, false
	}
	return claims, true
}
