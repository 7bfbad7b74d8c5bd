package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const cookieName = "harara_session"

// CookieStore keeps session keys in a signed, encrypted browser cookie.
type CookieStore struct {
	store *sessions.CookieStore
}

// NewCookieStore creates a cookie store. secret signs the cookie; encryptKey,
// when non-nil, must be 16, 24, or 32 bytes.
func NewCookieStore(secret, encryptKey []byte, secure bool) *CookieStore {
	return &CookieStore{store: newGorillaStore(secret, encryptKey, secure)}
}

func newGorillaStore(secret, encryptKey []byte, secure bool) *sessions.CookieStore {
	var cs *sessions.CookieStore
	if encryptKey != nil {
		cs = sessions.NewCookieStore(secret, encryptKey)
	} else {
		cs = sessions.NewCookieStore(secret)
	}
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return cs
}

func (s *CookieStore) Open(w http.ResponseWriter, r *http.Request) Storage {
	return &cookieStorage{store: s.store, w: w, r: r}
}

type cookieStorage struct {
	store *sessions.CookieStore
	w     http.ResponseWriter
	r     *http.Request
}

// session returns the request's cookie session. A cookie that fails to decode
// yields an empty session.
func (c *cookieStorage) session() *sessions.Session {
	sess, _ := c.store.Get(c.r, cookieName)
	return sess
}

func (c *cookieStorage) Get(_ context.Context, key string) (string, error) {
	v, _ := c.session().Values[key].(string)
	return v, nil
}

func (c *cookieStorage) Set(_ context.Context, values map[string]string, ttl time.Duration) error {
	sess := c.session()
	for k, v := range values {
		sess.Values[k] = v
	}
	opts := *c.store.Options
	opts.MaxAge = int(ttl.Seconds())
	sess.Options = &opts
	return sess.Save(c.r, c.w)
}

func (c *cookieStorage) Remove(_ context.Context, keys ...string) error {
	sess := c.session()
	for _, k := range keys {
		delete(sess.Values, k)
	}
	if len(sess.Values) == 0 {
		opts := *c.store.Options
		opts.MaxAge = -1
		sess.Options = &opts
	}
	return sess.Save(c.r, c.w)
}
