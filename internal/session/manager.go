package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/eleven-am/aura-studio/internal/shared"
	"github.com/labstack/echo/v4"
)

const cookieName = "aura_session"

// Manager binds a browser to its State through an HMAC-signed cookie.
type Manager struct {
	store   Store
	hmacKey []byte
	secure  bool
	ttl     time.Duration
}

func NewManager(store Store, hmacKey []byte, secure bool, ttl time.Duration) *Manager {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:   store,
		hmacKey: hmacKey,
		secure:  secure,
		ttl:     ttl,
	}
}

// Load returns the state for the request's session. A missing, tampered or
// expired cookie starts a fresh session and sets a new cookie.
func (m *Manager) Load(c echo.Context) (*State, error) {
	ctx := c.Request().Context()

	if id, err := m.sessionID(c); err == nil {
		state, err := m.store.Get(ctx, id)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	state := &State{ID: shared.NewID(IDPrefix)}
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}
	m.setCookie(c, state.ID)
	return state, nil
}

func (m *Manager) Save(c echo.Context, state *State) error {
	return m.store.Save(c.Request().Context(), state)
}

// Destroy deletes the session and expires its cookie. The next request starts
// a fresh session.
func (m *Manager) Destroy(c echo.Context, state *State) error {
	if err := m.store.Delete(c.Request().Context(), state.ID); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) sessionID(c echo.Context) (string, error) {
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return "", err
	}

	id, err := m.VerifyValue(cookie.Value)
	if err != nil {
		return "", err
	}
	if !shared.IsValidID(IDPrefix, id) {
		return "", errors.New("invalid session id")
	}
	return id, nil
}

func (m *Manager) setCookie(c echo.Context, id string) {
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    m.SignValue(id),
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) SignValue(value string) string {
	mac := hmac.New(sha256.New, m.hmacKey)
	mac.Write([]byte(value))
	sig := base64.URLEncoding.EncodeToString(mac.Sum(nil))
	return base64.URLEncoding.EncodeToString([]byte(value)) + "." + sig
}

func (m *Manager) VerifyValue(signed string) (string, error) {
	parts := strings.SplitN(signed, ".", 2)
	if len(parts) != 2 {
		return "", errors.New("invalid signature format")
	}

	payload, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, m.hmacKey)
	mac.Write(payload)
	expectedSig := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[1]), []byte(expectedSig)) {
		return "", errors.New("invalid signature")
	}

	return string(payload), nil
}
