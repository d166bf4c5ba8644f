// Package mailtmtest provides an in-process fake of the mail.tm API for
// tests and examples.
//
// The fake keeps accounts, domains and messages in memory, issues signed
// bearer tokens, answers with the same JSON-LD shapes as the real service
// (including Hydra collection envelopes), and reports missing or invalid
// tokens with 401. Messages are added with [Server.Deliver].
//
//	srv := mailtmtest.NewServer()
//	defer srv.Close()
//
//	client, _ := mailtm.New(mailtm.WithBaseURL(srv.URL()))
package mailtmtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultDomain is the domain a new Server offers when WithDomains is not used.
const DefaultDomain = "mailtm.test"

// DefaultPageSize matches the page size of the real service.
const DefaultPageSize = 30

// DefaultQuota is the quota in bytes given to new accounts.
const DefaultQuota = 40000000

// Server is a fake mail.tm API.
type Server struct {
	srv      *httptest.Server
	tokens   *tokenIssuer
	pageSize int
	now      func() time.Time

	mu        sync.Mutex
	domains   []*domainRecord
	accounts  map[string]*accountRecord // keyed by ID
	byAddress map[string]*accountRecord // keyed by lowercase address
	messages  map[string]*messageRecord // keyed by ID
}

// Option configures a Server.
type Option func(*Server)

// WithDomains replaces the default domain list.
func WithDomains(names ...string) Option {
	return func(s *Server) {
		s.domains = nil
		for _, name := range names {
			s.domains = append(s.domains, s.newDomain(name))
		}
	}
}

// WithPageSize sets the number of items per collection page.
func WithPageSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithSecret sets the HMAC secret used to sign tokens.
func WithSecret(secret string) Option {
	return func(s *Server) {
		s.tokens = newTokenIssuer([]byte(secret))
	}
}

// WithClock sets the clock used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer starts a fake mail.tm API. Call Close when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		tokens:    newTokenIssuer([]byte(uuid.NewString())),
		pageSize:  DefaultPageSize,
		now:       time.Now,
		accounts:  make(map[string]*accountRecord),
		byAddress: make(map[string]*accountRecord),
		messages:  make(map[string]*messageRecord),
	}
	s.domains = []*domainRecord{s.newDomain(DefaultDomain)}

	for _, opt := range opts {
		opt(s)
	}

	s.srv = httptest.NewServer(s.routes())
	return s
}

// URL returns the base URL of the fake API.
func (s *Server) URL() string {
	return s.srv.URL
}

// Client returns an HTTP client configured for the server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// AddDomain adds an active, public domain and returns its ID.
func (s *Server) AddDomain(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.newDomain(name)
	s.domains = append(s.domains, d)
	return d.id
}

// SetDomainActive toggles whether a domain accepts new accounts.
func (s *Server) SetDomainActive(name string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.domains {
		if strings.EqualFold(d.name, name) {
			d.active = active
			d.updatedAt = s.now()
		}
	}
}

// AccountID returns the ID of the account with the given address.
func (s *Server) AccountID(address string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byAddress[strings.ToLower(address)]
	if !ok {
		return "", false
	}
	return a.id, true
}

// DisableAccount marks an account as disabled.
func (s *Server) DisableAccount(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byAddress[strings.ToLower(address)]
	if ok {
		a.disabled = true
		a.updatedAt = s.now()
	}
	return ok
}

func (s *Server) newDomain(name string) *domainRecord {
	now := s.now()
	return &domainRecord{
		id:        uuid.NewString(),
		name:      strings.ToLower(name),
		active:    true,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/accounts", s.createAccount)
	r.Post("/token", s.issueToken)
	r.Get("/domains", s.listDomains)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/me", s.getCurrentAccount)
		r.Get("/accounts/{id}", s.getAccount)
		r.Delete("/accounts/{id}", s.deleteAccount)
		r.Get("/domains/{id}", s.getDomain)
		r.Get("/messages", s.listMessages)
		r.Get("/messages/{id}", s.getMessage)
		r.Patch("/messages/{id}", s.markMessageRead)
		r.Delete("/messages/{id}", s.deleteMessage)
		r.Get("/sources/{id}", s.getSource)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}
