package svstyle

import (
	"net/http"
	"sync"
	"time"
)

// Rendering modes. ModeSystem follows the host's preference.
const (
	ModeSystem = ""
	ModeLight  = "light"
	ModeDark   = "dark"
)

const (
	ModeCookieName = "structurizr.renderingMode"
	modeCookieAge  = 365 * 24 * time.Hour
)

type ModeStore interface {
	Get() string
	Set(mode string)
}

type MemoryModeStore struct {
	mu   sync.Mutex
	mode string
}

func (s *MemoryModeStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *MemoryModeStore) Set(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = normalizeMode(mode)
}

// CookieModeStore keeps the mode in a cookie. It is seeded from a request
// and the cookie to send back is available after Set.
type CookieModeStore struct {
	mu     sync.Mutex
	cookie *http.Cookie
	now    func() time.Time
}

func NewCookieModeStore(r *http.Request, now func() time.Time) *CookieModeStore {
	if now == nil {
		now = time.Now
	}
	s := &CookieModeStore{now: now}
	if r != nil {
		if c, err := r.Cookie(ModeCookieName); err == nil {
			s.cookie = c
		}
	}
	return s
}

func (s *CookieModeStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cookie == nil {
		return ModeSystem
	}
	return normalizeMode(s.cookie.Value)
}

func (s *CookieModeStore) Set(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookie = &http.Cookie{
		Name:     ModeCookieName,
		Value:    normalizeMode(mode),
		Path:     "/",
		Expires:  s.now().Add(modeCookieAge),
		SameSite: http.SameSiteStrictMode,
	}
}

// Cookie returns the cookie last set, or nil.
func (s *CookieModeStore) Cookie() *http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookie
}

// Write sets the cookie on w if one has been set.
func (s *CookieModeStore) Write(w http.ResponseWriter) {
	if c := s.Cookie(); c != nil {
		http.SetCookie(w, c)
	}
}

func normalizeMode(mode string) string {
	switch mode {
	case ModeLight, ModeDark:
		return mode
	default:
		return ModeSystem
	}
}
