package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService mints and validates the signed tokens used as stateless
// session proof.
type TokenService interface {
	TokenValidator
	Generate(identity Identity) (string, error)
	GenerateExtended(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey  []byte
	ttl         time.Duration
	extendedTTL time.Duration
	issuer      string
	audience    jwt.ClaimStrings
	logger      Logger
}

// DefaultTokenTTL matches the short-lived issuance context used after
// signup and login.
const DefaultTokenTTL = time.Hour

// DefaultExtendedTokenTTL is the longer-lived issuance context.
const DefaultExtendedTokenTTL = 7 * 24 * time.Hour

// NewTokenService creates a new TokenService instance. A missing signing
// key is a configuration error the process must not start with.
func NewTokenService(cfg Config, logger Logger) (*TokenServiceImpl, error) {
	if cfg == nil || cfg.GetSigningKey() == "" {
		return nil, errors.New("token service requires a signing key", errors.CategoryInternal)
	}

	if logger == nil {
		logger = defLogger{}
	}

	ttl := cfg.GetTokenTTL()
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	extendedTTL := cfg.GetExtendedTokenTTL()
	if extendedTTL <= 0 {
		extendedTTL = DefaultExtendedTokenTTL
	}

	return &TokenServiceImpl{
		signingKey:  []byte(cfg.GetSigningKey()),
		ttl:         ttl,
		extendedTTL: extendedTTL,
		issuer:      cfg.GetIssuer(),
		audience:    cfg.GetAudience(),
		logger:      logger,
	}, nil
}

// WithLogger replaces the service logger.
func (ts *TokenServiceImpl) WithLogger(logger Logger) *TokenServiceImpl {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// Generate creates a JWT token for the given identity using the default TTL
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	return ts.generate(identity, ts.ttl)
}

// GenerateExtended creates a JWT token using the extended TTL, for issuance
// contexts that outlive a normal session.
func (ts *TokenServiceImpl) GenerateExtended(identity Identity) (string, error) {
	return ts.generate(identity, ts.extendedTTL)
}

func (ts *TokenServiceImpl) generate(identity Identity, ttl time.Duration) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	now := time.Now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:  identity.ID(),
		User: &TokenUser{ID: identity.ID()},
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Signature and structure are checked before expiry; every failure path is a
// typed outcome.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
