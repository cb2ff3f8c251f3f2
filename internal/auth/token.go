package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/dealership/internal/domain"
)

// ErrInvalidSession is the only failure Verify reports. Tampered, expired and
// malformed tokens are indistinguishable to callers.
var ErrInvalidSession = errors.New("invalid session")

// TokenCodec issues and verifies HS256-signed session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CodecOption {
	return func(tc *TokenCodec) { tc.now = now }
}

// WithLogger records rejection reasons at debug level.
func WithLogger(logger *zap.Logger) CodecOption {
	return func(tc *TokenCodec) { tc.logger = logger }
}

// NewTokenCodec builds a codec for the given secret and lifetime.
func NewTokenCodec(secret string, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	tc := &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc, nil
}

// sessionClaims describes the token payload. The subject, issued-at and
// expiry travel as registered claims.
type sessionClaims struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TTL returns the lifetime of issued sessions.
func (tc *TokenCodec) TTL() time.Duration {
	return tc.ttl
}

// Issue signs a session for identity, returning the token and its session view.
func (tc *TokenCodec) Issue(identity domain.Identity) (string, domain.Session, error) {
	// NumericDate has second precision; truncate so the returned session
	// matches what Verify will decode.
	issuedAt := tc.now().Truncate(time.Second)
	session := domain.SessionFromIdentity(identity, issuedAt, tc.ttl)

	claims := &sessionClaims{
		Email: session.Email,
		Name:  session.Name,
		Role:  session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.SubjectID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", domain.Session{}, err
	}
	return signed, session, nil
}

// Verify checks signature, expiry and required claims. A token is already
// expired in the second named by its exp claim.
func (tc *TokenCodec) Verify(tokenStr string) (domain.Session, error) {
	if tokenStr == "" {
		return domain.Session{}, ErrInvalidSession
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)

	var claims sessionClaims
	parsed, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil {
		return tc.reject("parse", err)
	}
	if !parsed.Valid {
		return tc.reject("invalid", nil)
	}
	if err := claims.validate(); err != nil {
		return tc.reject("claims", err)
	}

	return domain.Session{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (c *sessionClaims) validate() error {
	switch {
	case c.Subject == "":
		return errors.New("subject missing")
	case c.Email == "":
		return errors.New("email missing")
	case c.Name == "":
		return errors.New("name missing")
	case !c.Role.Valid():
		return errors.New("role missing or unknown")
	case c.IssuedAt == nil:
		return errors.New("issued_at missing")
	}
	return nil
}

func (tc *TokenCodec) reject(stage string, err error) (domain.Session, error) {
	tc.logger.Debug("session token rejected", zap.String("stage", stage), zap.Error(err))
	return domain.Session{}, ErrInvalidSession
}
