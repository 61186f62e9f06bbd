package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/codelio/codelio/internal/store"
)

// DefaultTokenTTL is the lifetime of tokens minted without an explicit TTL.
const DefaultTokenTTL = 30 * 24 * time.Hour

// tokenClaims carries the profile fields next to the registered claims.
type tokenClaims struct {
	jwt.RegisteredClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// TokenIssuer mints HS256 identity tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer. A non-positive ttl uses DefaultTokenTTL.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue signs a token for id.
func (i *TokenIssuer) Issue(id Identity) (string, error) {
	if id.ID == "" {
		return "", fmt.Errorf("issue token: %w", errors.New("subject is empty"))
	}
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    i.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name:    id.DisplayName,
		Email:   id.Email,
		Picture: id.AvatarURL,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// verifyToken parses raw and returns the identity it carries. Every failure
// wraps ErrInvalidToken.
func verifyToken(raw string, secret []byte, issuer string) (*Identity, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject is empty", ErrInvalidToken)
	}

	return &Identity{
		ID:          claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		AvatarURL:   claims.Picture,
	}, nil
}

// TokenProvider signs users in with tokens minted by a TokenIssuer sharing
// the same secret and issuer. The last verified token is kept in local
// storage so the identity survives restarts.
type TokenProvider struct {
	secret  []byte
	issuer  string
	storage store.LocalStorage
	logger  *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func(*Identity)
}

// NewTokenProvider creates a provider. An empty secret makes SignIn fail
// with ErrNotConfigured.
func NewTokenProvider(secret, issuer string, storage store.LocalStorage, logger *zap.Logger) *TokenProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenProvider{
		secret:  []byte(secret),
		issuer:  issuer,
		storage: storage,
		logger:  logger,
		subs:    make(map[int]func(*Identity)),
	}
}

// Current restores the identity from the stored token. An invalid or
// expired stored token is removed and yields no identity.
func (p *TokenProvider) Current(ctx context.Context) (*Identity, error) {
	raw, ok, err := p.storage.Get(ctx, store.KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("read auth token: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	if len(p.secret) == 0 {
		return nil, nil
	}

	id, err := verifyToken(raw, p.secret, p.issuer)
	if err != nil {
		p.logger.Info("discarding stored auth token", zap.Error(err))
		if rmErr := p.storage.Remove(ctx, store.KeyAuthToken); rmErr != nil {
			return nil, fmt.Errorf("remove auth token: %w", rmErr)
		}
		return nil, nil
	}
	return id, nil
}

// SignIn verifies credential, stores it and notifies subscribers.
func (p *TokenProvider) SignIn(ctx context.Context, credential string) (*Identity, error) {
	if len(p.secret) == 0 {
		return nil, ErrNotConfigured
	}
	id, err := verifyToken(credential, p.secret, p.issuer)
	if err != nil {
		return nil, err
	}
	if err := p.storage.Set(ctx, store.KeyAuthToken, credential); err != nil {
		return nil, fmt.Errorf("save auth token: %w", err)
	}

	p.logger.Info("signed in", zap.String("id", id.ID))
	p.notify(id)
	return id, nil
}

// SignOut forgets the stored token and notifies subscribers.
func (p *TokenProvider) SignOut(ctx context.Context) error {
	if err := p.storage.Remove(ctx, store.KeyAuthToken); err != nil {
		return fmt.Errorf("remove auth token: %w", err)
	}
	p.notify(nil)
	return nil
}

func (p *TokenProvider) Subscribe(fn func(*Identity)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *TokenProvider) notify(id *Identity) {
	p.mu.Lock()
	fns := make([]func(*Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}
