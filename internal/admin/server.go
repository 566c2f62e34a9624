// Package admin serves the mission status over HTTP and streams mission
// rows over a websocket.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"dronesearch-sim/internal/mission"
	"dronesearch-sim/internal/sim"
	"dronesearch-sim/internal/target"
)

// Source is the read side of the simulator.
type Source interface {
	Status() sim.Status
	Drones() []sim.DroneStatus
	Targets() []target.Person
	Reports() []mission.Report
	Decision() (mission.Decision, bool)
}

type Server struct {
	Sim    Source
	Hub    *Hub
	tpl    *template.Template
	router *mux.Router
	log    *slog.Logger
}

//go:embed templates/index.html
var content embed.FS

func NewServer(src Source, hub *Hub, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if hub == nil {
		hub = NewHub(log)
	}
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{Sim: src, Hub: hub, tpl: tpl, log: log.With("component", "admin")}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/drones", s.handleDrones).Methods(http.MethodGet)
	r.HandleFunc("/drones/{id}", s.handleDrone).Methods(http.MethodGet)
	r.HandleFunc("/targets", s.handleTargets).Methods(http.MethodGet)
	r.HandleFunc("/reports", s.handleReports).Methods(http.MethodGet)
	r.HandleFunc("/decision", s.handleDecision).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.Hub.ServeWS).Methods(http.MethodGet)
	s.router = r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves on addr until ctx is done. onListen, if set, is told when
// the server starts and stops listening.
func (s *Server) Start(ctx context.Context, addr string, onListen func(bool)) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("admin server listening", "addr", addr)
	if onListen != nil {
		onListen(true)
		defer onListen(false)
	}

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Status sim.Status
		Drones []sim.DroneStatus
	}{s.Sim.Status(), s.Sim.Drones()}
	if err := s.tpl.Execute(w, data); err != nil {
		s.log.Error("render index", "err", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Status())
}

func (s *Server) handleDrones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Drones())
}

func (s *Server) handleDrone(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	for _, d := range s.Sim.Drones() {
		if d.ID == id {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown drone " + id})
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Targets())
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	reports := s.Sim.Reports()
	if reports == nil {
		reports = []mission.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	d, ok := s.Sim.Decision()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]bool{"decided": false})
		return
	}
	writeJSON(w, http.StatusOK, d)
}
