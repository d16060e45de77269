// Package identity is the local session provider: it issues signed user
// tokens, persists the current one between CLI invocations and notifies
// subscribers of sign-in, sign-out and refresh.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 72 * time.Hour

const issuer = "studypulse"

var (
	ErrNoSession    = errors.New("not signed in")
	ErrInvalidToken = errors.New("invalid session token")
	ErrNoSecret     = errors.New("identity secret is not configured")
)

// EventType names an identity state change.
type EventType string

const (
	SignedIn       EventType = "signed_in"
	SignedOut      EventType = "signed_out"
	TokenRefreshed EventType = "token_refreshed"
)

// Event is delivered to subscribers after a state change.
type Event struct {
	Type   EventType
	UserID string
}

// Config configures a Provider.
type Config struct {
	Secret string
	TTL    time.Duration

	// TokenPath is where the current token is kept. Empty keeps the
	// session in memory only.
	TokenPath string
}

// Claims are the verified contents of a token.
type Claims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Provider issues and verifies HS256 session tokens.
type Provider struct {
	cfg Config
	now func() time.Time

	mu    sync.Mutex
	token string

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// New creates a Provider and loads any persisted session token.
func New(cfg Config) (*Provider, error) {
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	p := &Provider{cfg: cfg, now: time.Now, subs: make(map[int]func(Event))}
	if cfg.TokenPath != "" {
		data, err := os.ReadFile(cfg.TokenPath)
		switch {
		case err == nil:
			p.token = strings.TrimSpace(string(data))
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read session token: %w", err)
		}
	}
	return p, nil
}

// DefaultTokenPath resolves $XDG_STATE_HOME/studypulse/session.jwt,
// falling back to ~/.local/state.
func DefaultTokenPath() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "studypulse", "session.jwt"), nil
}

func (p *Provider) issue(userID string) (string, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": issuer,
		"iat": now.Unix(),
		"exp": now.Add(p.cfg.TTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.cfg.Secret))
}

// Verify checks a token's signature and expiry and returns its claims.
func (p *Provider) Verify(tokenString string) (Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return Claims{}, ErrNoSession
	}

	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(p.cfg.Secret), nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	// Expiry is checked against the provider clock so tests can move it.
	if !mc.VerifyExpiresAt(p.now().Unix(), true) {
		return Claims{}, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if !mc.VerifyIssuer(issuer, true) {
		return Claims{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	c := Claims{UserID: sub}
	if iat, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return c, nil
}

func (p *Provider) persist(token string) error {
	if p.cfg.TokenPath == "" {
		return nil
	}
	if token == "" {
		if err := os.Remove(p.cfg.TokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session token: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.cfg.TokenPath), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(p.cfg.TokenPath, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	return nil
}

// SignIn starts a session for userID and returns its token.
func (p *Provider) SignIn(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id is required")
	}
	token, err := p.issue(userID)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	p.mu.Lock()
	err = p.persist(token)
	if err == nil {
		p.token = token
	}
	p.mu.Unlock()
	if err != nil {
		return "", err
	}

	p.emit(Event{Type: SignedIn, UserID: userID})
	return token, nil
}

// Refresh reissues the current session's token with a new expiry.
func (p *Provider) Refresh(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	claims, err := p.Verify(p.token)
	if err != nil {
		p.mu.Unlock()
		return "", err
	}
	token, err := p.issue(claims.UserID)
	if err == nil {
		err = p.persist(token)
	}
	if err == nil {
		p.token = token
	}
	p.mu.Unlock()
	if err != nil {
		return "", err
	}

	p.emit(Event{Type: TokenRefreshed, UserID: claims.UserID})
	return token, nil
}

// SignOut ends the current session. Signing out without a session is a no-op.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	if p.token == "" {
		p.mu.Unlock()
		return nil
	}
	claims, _ := p.Verify(p.token)
	err := p.persist("")
	if err == nil {
		p.token = ""
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}

	p.emit(Event{Type: SignedOut, UserID: claims.UserID})
	return nil
}

// CurrentUserID returns the signed-in user, if the current token is valid.
func (p *Provider) CurrentUserID(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()
	claims, err := p.Verify(token)
	if err != nil {
		return "", false
	}
	return claims.UserID, true
}

// Token returns the current raw token, or "" when signed out.
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// Subscribe registers fn for state-change events. Events are delivered
// synchronously on the goroutine that caused them.
func (p *Provider) Subscribe(fn func(Event)) (unsubscribe func()) {
	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subs, id)
			p.subMu.Unlock()
		})
	}
}

func (p *Provider) emit(ev Event) {
	p.subMu.Lock()
	fns := make([]func(Event), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
