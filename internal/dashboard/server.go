package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// defaultLatestRows is how many rows /latest returns when n is not given.
const defaultLatestRows = 10

// Server exposes the output directory of a simulation run as a read-only
// JSON API. Files are re-read per request; the server never writes.
type Server struct {
	dataDir string
	mux     *http.ServeMux
	log     logrus.FieldLogger
}

func NewServer(dataDir string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		dataDir: dataDir,
		mux:     http.NewServeMux(),
		log:     log,
	}
	s.registerHandlers()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/sensors", s.handleSensors)
	s.mux.HandleFunc("/api/sensors/", s.handleSensor)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	files, err := discover(s.dataDir)
	if err != nil {
		s.serverError(w, err)
		return
	}
	if files == nil {
		files = []SensorFile{}
	}
	s.writeJSON(w, map[string]any{"sensors": files})
}

// handleSensor serves /api/sensors/{name}/latest and
// /api/sensors/{name}/summary.
func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/sensors/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "expected /api/sensors/{name}/latest or /summary", http.StatusNotFound)
		return
	}
	name, op := parts[0], parts[1]

	file, err := find(s.dataDir, name)
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, errAmbiguousSensor) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	switch op {
	case "latest":
		s.handleLatest(w, r, file)
	case "summary":
		s.handleSummary(w, file)
	default:
		http.Error(w, fmt.Sprintf("unknown operation %q", op), http.StatusNotFound)
	}
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request, file SensorFile) {
	n := defaultLatestRows
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	headers, rows, err := loadRows(file.Path, n)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{
		"sensor":  file.Name,
		"columns": headers,
		"rows":    rows,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, file SensorFile) {
	headers, rows, err := loadRows(file.Path, 0)
	if err != nil {
		s.serverError(w, err)
		return
	}

	columns := numericColumns(headers, rows)
	summaries := make([]ColumnSummary, 0, len(columns))
	for _, h := range headers {
		if values, ok := columns[h]; ok {
			summaries = append(summaries, summarize(h, values))
		}
	}
	s.writeJSON(w, map[string]any{
		"sensor":  file.Name,
		"rows":    len(rows),
		"columns": summaries,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("writing response")
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.log.WithError(err).Error("request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
