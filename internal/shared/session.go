package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "dtca:session:"

// SessionManager keeps dashboard sessions in Redis behind an opaque cookie.
// Redis keys are an HMAC of the cookie value, so a key listing does not
// reveal usable cookies.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session is the per-request view of a stored session.
type Session struct {
	ID        string
	values    map[string]string
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Values map[string]string `json:"values"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load returns the session named by the request cookie. A missing, expired or
// unknown cookie yields a new empty session under a fresh id.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && cookie.Value == "") {
		return newSession(uuid.NewString()), nil
	}
	if err != nil {
		return nil, err
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if errors.Is(err, redis.Nil) {
		return newSession(uuid.NewString()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("shared: load session: %w", err)
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("shared: decode session: %w", err)
	}
	sess := &Session{ID: cookie.Value, values: stored.Values}
	if sess.values == nil {
		sess.values = make(map[string]string)
	}
	return sess, nil
}

// Commit writes the session back and sets the cookie. It must run before the
// response status is sent.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}
	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil {
			return fmt.Errorf("shared: delete session: %w", err)
		}
		http.SetCookie(w, sm.cookie("", -1))
		return nil
	}
	if sess.dirty || sess.isNew {
		data, err := json.Marshal(sessionPayload{Values: sess.values})
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return fmt.Errorf("shared: save session: %w", err)
		}
		sess.dirty = false
		sess.isNew = false
	}
	http.SetCookie(w, sm.cookie(sess.ID, int(sm.ttl/time.Second)))
	return nil
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	mac := hmac.New(sha256.New, sm.secret)
	_, _ = mac.Write([]byte(id))
	return sessionKeyPrefix + hex.EncodeToString(mac.Sum(nil)[:16])
}

func newSession(id string) *Session {
	return &Session{ID: id, values: make(map[string]string), isNew: true}
}

// Set stores a value.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get returns a value or "".
func (s *Session) Get(key string) string {
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Destroy marks the session for deletion. The next request starts fresh.
func (s *Session) Destroy() {
	s.destroyed = true
	s.values = make(map[string]string)
}

type sessionContextKey struct{}

// ContextWithSession stores the session in ctx.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the request session or nil.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
