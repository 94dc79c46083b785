package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pixelcanva-indexer/internal/admission"
	"pixelcanva-indexer/internal/models"
	"pixelcanva-indexer/internal/pixel"
)

// QueryStore is the subset of the state store the query handlers need.
type QueryStore interface {
	CanvasSnapshot(ctx context.Context) ([]models.CanvasCell, error)
	PixelInfo(ctx context.Context, x, y uint32) (models.PixelInfo, error)
	CanvasDimensions(ctx context.Context) (width, height uint32, err error)
	CountPlacementsInWindow(ctx context.Context, publicKey string, now, windowMicros int64) (int, error)
}

// Server wires the admission service, the state store's query surface, and
// the websocket hub into an http.Handler.
type Server struct {
	admit             *admission.Service
	store             QueryStore
	hub               *Hub
	maxCredits        int
	regenWindowMicros int64
	regenSeconds      int
	now               func() int64
}

// NewServer builds the HTTP router.
func NewServer(admit *admission.Service, store QueryStore, hub *Hub, maxCredits int, regenWindowMicros int64, regenSeconds int, now func() int64) http.Handler {
	s := &Server{
		admit: admit, store: store, hub: hub,
		maxCredits: maxCredits, regenWindowMicros: regenWindowMicros, regenSeconds: regenSeconds, now: now,
	}

	r := mux.NewRouter()
	r.HandleFunc("/admit/{pubkey}", s.handleAdmit).Methods(http.MethodPost)
	r.HandleFunc("/canvas", s.handleCanvas).Methods(http.MethodGet)
	r.HandleFunc("/pixel/{x}/{y}", s.handlePixelInfo).Methods(http.MethodGet)
	r.HandleFunc("/credits/{pubkey}", s.handleCredits).Methods(http.MethodGet)
	r.HandleFunc("/ws", hub.ServeWS)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleAdmit(w http.ResponseWriter, r *http.Request) {
	pubkey := mux.Vars(r)["pubkey"]

	err := s.admit.Admit(r.Context(), pubkey)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusCreated)
	case errors.Is(err, admission.ErrAlreadyAdmitted):
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, admission.ErrHomeserverNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	cells, err := s.store.CanvasSnapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, cells)
}

func (s *Server) handlePixelInfo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	x, errX := strconv.ParseUint(vars["x"], 10, 32)
	y, errY := strconv.ParseUint(vars["y"], 10, 32)
	if errX != nil || errY != nil {
		http.Error(w, "invalid coordinate", http.StatusBadRequest)
		return
	}

	info, err := s.store.PixelInfo(r.Context(), uint32(x), uint32(y))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, info)
}

type creditsResponse struct {
	Credits             int  `json:"credits"`
	MaxCredits          int  `json:"max_credits"`
	NextCreditInSeconds *int `json:"next_credit_in_seconds,omitempty"`
}

func (s *Server) handleCredits(w http.ResponseWriter, r *http.Request) {
	pubkey := mux.Vars(r)["pubkey"]
	now := s.now()

	recent, err := s.store.CountPlacementsInWindow(r.Context(), pubkey, now, s.regenWindowMicros)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := creditsResponse{
		Credits:    pixel.CreditsRemaining(s.maxCredits, recent),
		MaxCredits: s.maxCredits,
	}
	if wait := pixel.SecondsUntilNextCredit(s.maxCredits, recent, s.regenSeconds); wait > 0 {
		resp.NextCreditInSeconds = &wait
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
