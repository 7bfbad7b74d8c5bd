package http

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/harara-heat/harara-dashboard/internal/views"
)

const flashCookieName = "harara_flash"

func init() {
	gob.Register(views.Notice{})
}

// flashStore carries one-shot notices across a Post/Redirect/Get round trip
// in a cookie of their own, apart from the operator session.
type flashStore struct {
	store *sessions.CookieStore
}

func newFlashStore(secret []byte, secure bool) *flashStore {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &flashStore{store: cs}
}

// add queues n for the next page the browser loads.
func (f *flashStore) add(w http.ResponseWriter, r *http.Request, n views.Notice) error {
	sess, _ := f.store.Get(r, flashCookieName)
	sess.AddFlash(n)
	return sess.Save(r, w)
}

// pop returns and clears the queued notice, if any.
func (f *flashStore) pop(w http.ResponseWriter, r *http.Request) *views.Notice {
	sess, err := f.store.Get(r, flashCookieName)
	if err != nil {
		return nil
	}
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
	n, ok := flashes[len(flashes)-1].(views.Notice)
	if !ok {
		return nil
	}
	return &n
}
