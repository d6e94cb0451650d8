package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "gymops:session:"

// FlashMessage represents a one-time notification stored in session.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionManager issues signed session cookies and keeps session state in
// Redis. Every load slides the Redis expiry along with the cookie.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data. It is owned by one request and is
// not safe for concurrent use.
type Session struct {
	ID        string
	previous  string
	userID    int64
	csrf      string
	returnTo  string
	flashes   []FlashMessage
	createdAt time.Time
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	UserID    int64          `json:"user_id,omitempty"`
	CSRF      string         `json:"csrf,omitempty"`
	ReturnTo  string         `json:"return_to,omitempty"`
	Flashes   []FlashMessage `json:"flashes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewSessionManager constructs a SessionManager. The secret signs cookie
// values so forged ids are dropped before Redis is asked.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load loads the session named by the request cookie or starts a new one.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}
	id, ok := sm.verify(cookie.Value)
	if !ok {
		return sm.newSession(), nil
	}

	payload, err := sm.client.GetEx(ctx, sm.redisKey(id), sm.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Unknown or expired ids are never adopted.
			return sm.newSession(), nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		userID:    stored.UserID,
		csrf:      stored.CSRF,
		returnTo:  stored.ReturnTo,
		flashes:   stored.Flashes,
		createdAt: stored.CreatedAt,
	}, nil
}

// Commit persists the session and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.previous != "" {
		if err := sm.client.Del(ctx, sm.redisKey(sess.previous)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		sess.previous = ""
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, sm.cookie("", -1))
		return nil
	}

	if sess.dirty || sess.isNew {
		data, err := json.Marshal(sessionPayload{
			UserID:    sess.userID,
			CSRF:      sess.csrf,
			ReturnTo:  sess.returnTo,
			Flashes:   sess.flashes,
			CreatedAt: sess.createdAt,
		})
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
		sess.isNew = false
	}

	http.SetCookie(w, sm.cookie(sm.CookieValue(sess.ID), int(sm.ttl.Seconds())))
	return nil
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// Rotate gives the session a fresh id, keeping its values. The old id is
// removed on commit. Call it whenever the authenticated user changes.
func (sm *SessionManager) Rotate(sess *Session) {
	if sess == nil {
		return
	}
	if !sess.isNew {
		sess.previous = sess.ID
	}
	sess.ID = uuid.NewString()
	sess.dirty = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// CookieValue is the signed cookie value for a session id.
func (sm *SessionManager) CookieValue(id string) string {
	return id + "." + sm.sign(id)
}

// SetUser associates the session with a user ID.
func (s *Session) SetUser(id int64) {
	s.userID = id
	s.dirty = true
}

// UserID reports the signed in user, false for anonymous sessions.
func (s *Session) UserID() (int64, bool) {
	if s == nil || s.userID <= 0 {
		return 0, false
	}
	return s.userID, true
}

// CSRFToken returns the session's CSRF token, empty until one is issued.
func (s *Session) CSRFToken() string {
	return s.csrf
}

// SetReturnTo remembers the page a signed out visitor asked for.
func (s *Session) SetReturnTo(path string) {
	if s.returnTo == path {
		return
	}
	s.returnTo = path
	s.dirty = true
}

// PopReturnTo returns and clears the remembered page.
func (s *Session) PopReturnTo() string {
	p := s.returnTo
	if p != "" {
		s.returnTo = ""
		s.dirty = true
	}
	return p
}

// AddFlash queues a flash message.
func (s *Session) AddFlash(msg FlashMessage) {
	s.flashes = append(s.flashes, msg)
	s.dirty = true
}

// PopFlash retrieves and clears the oldest flash message.
func (s *Session) PopFlash() *FlashMessage {
	if len(s.flashes) == 0 {
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	s.dirty = true
	return &msg
}

func (s *Session) setCSRFToken(token string) {
	s.csrf = token
	s.dirty = true
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		isNew:     true,
	}
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return sessionKeyPrefix + id
}

func (sm *SessionManager) sign(id string) string {
	mac := hmac.New(sha256.New, sm.secret)
	_, _ = mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (sm *SessionManager) verify(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(sm.sign(id))) {
		return "", false
	}
	return id, true
}
