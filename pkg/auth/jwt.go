package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const clockSkew = 10 * time.Second

var (
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenTypeMismatch = errors.New("wrong token type")
)

// accessClaims carry everything a portal handler needs to authorise a request.
type accessClaims struct {
	jwt.RegisteredClaims
	Kind        string  `json:"typ"`
	Role        string  `json:"role"`
	InstituteID *int64  `json:"institute_id,omitempty"`
	NationalID  *string `json:"nid_number,omitempty"`
}

// refreshClaims only name the account. The portal details are re-read from
// the account when the pair is renewed.
type refreshClaims struct {
	jwt.RegisteredClaims
	Kind string `json:"typ"`
}

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

type JWTManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	m := &JWTManager{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

func (m *JWTManager) GenerateTokenPair(claims *domain.Claims) (*domain.TokenPair, error) {
	now := m.now()
	expiresAt := now.Add(m.accessTTL)

	access, err := m.sign(accessClaims{
		RegisteredClaims: m.registered(claims.AccountID, now, expiresAt),
		Kind:             kindAccess,
		Role:             string(claims.Role),
		InstituteID:      claims.InstituteID,
		NationalID:       claims.NationalID,
	})
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refresh, err := m.sign(refreshClaims{
		RegisteredClaims: m.registered(claims.AccountID, now, now.Add(m.refreshTTL)),
		Kind:             kindRefresh,
	})
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

func (m *JWTManager) ValidateAccessToken(tokenString string) (*domain.Claims, error) {
	var c accessClaims
	if err := m.parse(tokenString, &c); err != nil {
		return nil, err
	}
	if c.Kind != kindAccess {
		return nil, ErrTokenTypeMismatch
	}

	accountID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	role := domain.Role(c.Role)
	if !role.IsValid() {
		return nil, ErrTokenInvalid
	}

	return &domain.Claims{
		AccountID:   accountID,
		Role:        role,
		InstituteID: c.InstituteID,
		NationalID:  c.NationalID,
	}, nil
}

// ValidateRefreshToken returns the account the refresh token was issued to.
func (m *JWTManager) ValidateRefreshToken(tokenString string) (uuid.UUID, error) {
	var c refreshClaims
	if err := m.parse(tokenString, &c); err != nil {
		return uuid.Nil, err
	}
	if c.Kind != kindRefresh {
		return uuid.Nil, ErrTokenTypeMismatch
	}
	accountID, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return accountID, nil
}

func (m *JWTManager) registered(subject uuid.UUID, now, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    m.issuer,
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (m *JWTManager) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *JWTManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case err != nil, !token.Valid:
		return ErrTokenInvalid
	}
	return nil
}
