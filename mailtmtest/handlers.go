package mailtmtest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type ctxKey struct{}

func accountIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/ld+json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, description string) {
	writeJSON(w, status, errorJSON{
		Context:     "/contexts/Error",
		Type:        "hydra:Error",
		Title:       "An error occurred",
		Description: description,
	})
}

func writeViolation(w http.ResponseWriter, property, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, violationsJSON{
		errorJSON: errorJSON{
			Context:     "/contexts/ConstraintViolationList",
			Type:        "ConstraintViolationList",
			Title:       "An error occurred",
			Description: property + ": " + message,
		},
		Violations: []violationJSON{{PropertyPath: property, Message: message}},
	})
}

// authenticate rejects requests without a valid bearer token for an
// existing account with 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "JWT Token not found"})
			return
		}
		accountID, err := s.tokens.verify(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Invalid JWT Token"})
			return
		}

		s.mu.Lock()
		_, exists := s.accounts[accountID]
		s.mu.Unlock()
		if !exists {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Invalid JWT Token"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, accountID)))
	})
}

type credentialsJSON struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsJSON, bool) {
	var creds credentialsJSON
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Syntax error")
		return creds, false
	}
	return creds, true
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	address := strings.ToLower(strings.TrimSpace(creds.Address))
	local, domain, found := strings.Cut(address, "@")
	if !found || local == "" || domain == "" {
		writeViolation(w, "address", "This value is not a valid email address.")
		return
	}
	if len(creds.Password) < minPasswordLength {
		writeViolation(w, "password", "This value is too short. It should have 6 characters or more.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.domainAcceptsLocked(domain) {
		writeViolation(w, "address", "This value is not valid.")
		return
	}
	if _, taken := s.byAddress[address]; taken {
		writeViolation(w, "address", "This value is already used.")
		return
	}

	now := s.now()
	a := &accountRecord{
		id:           uuid.NewString(),
		address:      address,
		passwordHash: hash,
		createdAt:    now,
		updatedAt:    now,
	}
	s.accounts[a.id] = a
	s.byAddress[address] = a

	writeJSON(w, http.StatusCreated, s.accountViewLocked(a))
}

func (s *Server) domainAcceptsLocked(name string) bool {
	for _, d := range s.domains {
		if d.name == name {
			return d.active
		}
	}
	return false
}

func (s *Server) accountViewLocked(a *accountRecord) accountJSON {
	var used int64
	for _, id := range a.messageIDs {
		used += int64(len(s.messages[id].raw))
	}
	return accountJSON{
		Context:    "/contexts/Account",
		IRI:        "/accounts/" + a.id,
		Type:       "Account",
		ID:         a.id,
		Address:    a.address,
		Quota:      DefaultQuota,
		Used:       used,
		IsDisabled: a.disabled,
		IsDeleted:  false,
		CreatedAt:  formatTime(a.createdAt),
		UpdatedAt:  formatTime(a.updatedAt),
	}
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	a, found := s.byAddress[strings.ToLower(strings.TrimSpace(creds.Address))]
	s.mu.Unlock()

	if !found || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(creds.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Invalid credentials."})
		return
	}

	token, err := s.tokens.issue(a.id, a.address, s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokenJSON{ID: a.id, Token: token})
}

func (s *Server) getCurrentAccount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[accountIDFrom(r.Context())]
	writeJSON(w, http.StatusOK, s.accountViewLocked(a))
}

// ownAccountLocked resolves the {id} path parameter to the caller's own
// account, writing 404 or 403 otherwise.
func (s *Server) ownAccountLocked(w http.ResponseWriter, r *http.Request) (*accountRecord, bool) {
	a, found := s.accounts[chi.URLParam(r, "id")]
	if !found {
		writeError(w, http.StatusNotFound, "Not Found")
		return nil, false
	}
	if a.id != accountIDFrom(r.Context()) {
		writeError(w, http.StatusForbidden, "Access Denied.")
		return nil, false
	}
	return a, true
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.ownAccountLocked(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.accountViewLocked(a))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.ownAccountLocked(w, r)
	if !ok {
		return
	}
	for _, id := range a.messageIDs {
		delete(s.messages, id)
	}
	delete(s.accounts, a.id)
	delete(s.byAddress, a.address)
	w.WriteHeader(http.StatusNoContent)
}

// pageParam reads the page query parameter. Absent means 1.
func pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "Page should not be less than 1")
		return 0, false
	}
	return page, true
}

// paginate returns the bounds of page within total items and the
// collection envelope describing it.
func (s *Server) paginate(resource, path string, page, total int) (int, int, collectionJSON) {
	lastPage := (total + s.pageSize - 1) / s.pageSize
	if lastPage < 1 {
		lastPage = 1
	}

	link := func(p int) string {
		return path + "?page=" + strconv.Itoa(p)
	}

	view := viewJSON{
		IRI:   link(page),
		Type:  "hydra:PartialCollectionView",
		First: link(1),
		Last:  link(lastPage),
	}
	if page > 1 {
		view.Previous = link(page - 1)
	}
	if page < lastPage {
		view.Next = link(page + 1)
	}

	start := min((page-1)*s.pageSize, total)
	end := min(start+s.pageSize, total)

	return start, end, collectionJSON{
		Context:    "/contexts/" + resource,
		IRI:        path,
		Type:       "hydra:Collection",
		TotalItems: total,
		View:       view,
		Search: searchJSON{
			Type:                   "hydra:IriTemplate",
			Template:               path + "{?page}",
			VariableRepresentation: "BasicRepresentation",
			Mapping: []mappingJSON{{
				Type:     "IriTemplateMapping",
				Variable: "page",
				Property: "page",
				Required: false,
			}},
		},
	}
}

func (s *Server) listDomains(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var visible []*domainRecord
	for _, d := range s.domains {
		if !d.private {
			visible = append(visible, d)
		}
	}

	start, end, body := s.paginate("Domain", "/domains", page, len(visible))
	members := make([]domainJSON, 0, end-start)
	for _, d := range visible[start:end] {
		members = append(members, d.view(false))
	}
	body.Member = members
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) getDomain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.domains {
		if d.id == id {
			writeJSON(w, http.StatusOK, d.view(true))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Not Found")
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.accounts[accountIDFrom(r.Context())]
	total := len(a.messageIDs)
	start, end, body := s.paginate("Message", "/messages", page, total)

	// Newest first.
	members := make([]messageJSON, 0, end-start)
	for i := start; i < end; i++ {
		m := s.messages[a.messageIDs[total-1-i]]
		members = append(members, m.view(false))
	}
	body.Member = members
	writeJSON(w, http.StatusOK, body)
}

// ownMessageLocked resolves the {id} path parameter to one of the caller's
// messages, writing 404 otherwise.
func (s *Server) ownMessageLocked(w http.ResponseWriter, r *http.Request) (*messageRecord, bool) {
	m, found := s.messages[chi.URLParam(r, "id")]
	if !found || m.accountID != accountIDFrom(r.Context()) {
		writeError(w, http.StatusNotFound, "Not Found")
		return nil, false
	}
	return m, true
}

func (s *Server) getMessage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ownMessageLocked(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m.view(true))
}

func (s *Server) markMessageRead(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ownMessageLocked(w, r)
	if !ok {
		return
	}
	if !m.seen {
		m.seen = true
		m.updatedAt = s.now()
	}
	writeJSON(w, http.StatusOK, m.view(true))
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ownMessageLocked(w, r)
	if !ok {
		return
	}

	delete(s.messages, m.id)
	if a, found := s.accounts[m.accountID]; found {
		for i, id := range a.messageIDs {
			if id == m.id {
				a.messageIDs = append(a.messageIDs[:i], a.messageIDs[i+1:]...)
				break
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSource(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ownMessageLocked(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sourceJSON{
		Context:     "/contexts/Source",
		IRI:         "/sources/" + m.id,
		Type:        "Source",
		ID:          m.id,
		DownloadURL: "/messages/" + m.id + "/download",
		Data:        string(m.raw),
	})
}
