package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"license-desk/src/config"
	"license-desk/src/mail"
	"license-desk/src/request"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger zerolog.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

// Response is the JSON envelope every outward-facing operation returns.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Serve is an instance of the License Desk API server.
type Serve struct {
	cfg      config.Config
	store    request.Store
	mailer   *mail.Mailer
	sessions *sessionStore
	mailOK   bool
}

// NewServe wires the server to its store and mailer.
func NewServe(cfg config.Config, store request.Store, mailer *mail.Mailer) *Serve {
	return &Serve{
		cfg:      cfg,
		store:    store,
		mailer:   mailer,
		sessions: newSessionStore(),
		mailOK:   mail.Configured(cfg),
	}
}

// Router builds the route table. Admin operations other than login sit behind
// the session guard.
func (s *Serve) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(addCorsHeaders)
	r.HandleFunc("/health", health).Methods("GET", "OPTIONS")
	r.HandleFunc("/request-license", s.handleSubmit).Methods("POST", "OPTIONS")
	r.HandleFunc("/admin/login", s.handleLogin).Methods("POST", "OPTIONS")
	r.HandleFunc("/admin/logout", s.handleLogout).Methods("POST", "OPTIONS")

	adminR := r.PathPrefix("/admin").Subrouter()
	adminR.Use(s.adminOnly)
	adminR.HandleFunc("/dashboard", s.handleDashboard).Methods("GET")
	adminR.HandleFunc("/requests", s.handleListRequests).Methods("GET")
	adminR.HandleFunc("/requests/{id:[0-9]+}", s.handleGetRequest).Methods("GET")
	adminR.HandleFunc("/requests/{id:[0-9]+}/status", s.handleUpdateStatus).Methods("POST")
	adminR.HandleFunc("/requests/{id:[0-9]+}/invoice", s.handleSendInvoice).Methods("POST")

	return r
}

// InitServer exposes the API on the port parameter and blocks.
func (s *Serve) InitServer(port int) {
	listenAddr := fmt.Sprintf(":%d", port)
	log.Info().Msgf("Web server now listening on %s", listenAddr)
	log.Fatal().Msg(http.ListenAndServe(listenAddr, s.Router()).Error())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(code int, message string, w http.ResponseWriter) {
	logger.Info().Msg(message)
	writeJSON(w, code, Response{Success: false, Message: message})
}
