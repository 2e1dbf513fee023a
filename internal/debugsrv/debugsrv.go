// Package debugsrv is `syngen --serve`'s HTTP diagnostic server (spec §6
// domain stack): read-only introspection into one generated lrgen.Table
// over chi, bearer-token gated with golang-jwt/v5, mirroring the
// teacher's server package's route-handler-plus-JWT-verification shape
// (server/server.go's verifyJWT, server/api/api.go's chi.URLParam-based
// handlers) adapted from "operate on a game session" to "operate on a
// generated parser run".
package debugsrv

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dekarrin/syngen/internal/gendiag"
	"github.com/dekarrin/syngen/internal/lrgen"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Server serves read-only introspection endpoints over a single
// generator run's tables and diagnostic log.
type Server struct {
	Tables map[string]*lrgen.Table
	Log    *gendiag.Logger

	// SigningKey authenticates the bearer tokens Server itself issues
	// (spec has no external identity provider to federate with; a
	// debugsrv session is scoped to one generator invocation, so Server
	// mints and verifies its own tokens the way server/server.go's
	// generateJWTForUser/verifyJWT pair do for a game session).
	SigningKey []byte

	// SessionID tags every token this Server issues, following the
	// teacher's google/uuid-keyed session convention (server/server.go's
	// uuid.Parse(subj)); a token minted by one Server instance is never
	// accepted by another.
	SessionID uuid.UUID
}

// New creates a Server over tables, logging to logger, with a fresh
// random signing key and session id.
func New(tables map[string]*lrgen.Table, logger *gendiag.Logger) *Server {
	key := make([]byte, 32)
	_, _ = rand.Read(key)

	return &Server{
		Tables:     tables,
		Log:        logger,
		SigningKey: key,
		SessionID:  uuid.New(),
	}
}

// IssueToken mints a bearer token scoped to this Server's session,
// valid for the given duration.
func (s *Server) IssueToken(validFor time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"iss": "syngen-debugsrv",
		"sub": s.SessionID.String(),
		"exp": time.Now().Add(validFor).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.SigningKey)
}

func (s *Server) verify(tok string) error {
	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return s.SigningKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(s.SessionID.String()), jwt.WithIssuer("syngen-debugsrv"))
	return err
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if err := s.verify(authHeader[len(prefix):]); err != nil {
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Router builds the chi.Mux this Server answers requests with.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.authMiddleware)

	r.Get("/grammar/{start}", s.handleGrammar)
	r.Get("/states/{start}", s.handleStates)
	r.Get("/states/{start}/{id}", s.handleState)
	r.Get("/trace", s.handleTrace)

	return r
}

func (s *Server) lookupTable(w http.ResponseWriter, r *http.Request) (*lrgen.Table, bool) {
	start := chi.URLParam(r, "start")
	table, ok := s.Tables[start]
	if !ok {
		http.Error(w, fmt.Sprintf("no such start nonterminal %q", start), http.StatusNotFound)
		return nil, false
	}
	return table, true
}

func (s *Server) handleGrammar(w http.ResponseWriter, r *http.Request) {
	table, ok := s.lookupTable(w, r)
	if !ok {
		return
	}

	type nt struct {
		Name        string `json:"name"`
		Productions int    `json:"productions"`
	}
	type term struct {
		Name string `json:"name"`
	}

	out := struct {
		Nonterminals []nt   `json:"nonterminals"`
		Terminals    []term `json:"terminals"`
	}{}
	for _, n := range table.Grammar.Nonterminals {
		out.Nonterminals = append(out.Nonterminals, nt{Name: n.Name, Productions: len(n.Productions)})
	}
	for _, t := range table.Grammar.Terminals {
		out.Terminals = append(out.Terminals, term{Name: t.Name})
	}

	writeJSON(w, out)
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	table, ok := s.lookupTable(w, r)
	if !ok {
		return
	}

	type state struct {
		ID      int  `json:"id"`
		Accept  bool `json:"accept"`
		Shifts  int  `json:"shifts"`
		Gotos   int  `json:"gotos"`
		Reduces int  `json:"reduces"`
	}

	var out []state
	for _, st := range table.Collection.States {
		out = append(out, state{
			ID:      st.ID,
			Accept:  table.AcceptStates[st.ID],
			Shifts:  len(table.Shifts[st.ID]),
			Gotos:   len(table.Gotos[st.ID]),
			Reduces: len(table.Reduces[st.ID]),
		})
	}

	writeJSON(w, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	table, ok := s.lookupTable(w, r)
	if !ok {
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "state id must be an integer", http.StatusBadRequest)
		return
	}

	out := struct {
		ID       int   `json:"id"`
		Accept   bool  `json:"accept"`
		Reduces  []int `json:"reduces"`
		Conflict bool  `json:"has_conflict"`
	}{ID: id, Accept: table.AcceptStates[id]}

	for _, p := range table.Reduces[id] {
		out.Reduces = append(out.Reduces, int(p))
	}
	for _, c := range table.Conflicts {
		if c.State == id {
			out.Conflict = true
			break
		}
	}

	writeJSON(w, out)
}

// handleTrace streams retained gendiag.Events as server-sent events, one
// JSON object per line, then closes: a generator run's diagnostic log is
// finite and already complete by the time --serve starts, so there is no
// ongoing stream to keep open past the backlog.
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, _ := w.(http.Flusher)

	events := s.Log.Events()
	for _, ev := range events {
		data, _ := json.Marshal(ev)
		fmt.Fprintf(w, "data: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
