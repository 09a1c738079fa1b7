// Package api serves the daemon's HTTP status and debug surface. The status
// endpoint is plain JSON; the debug routes sit behind tsweb's debug handler
// and are reachable only from localhost or the tailnet.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tailscale.com/tsweb"

	"github.com/banshee-data/inscreen.hal/internal/fod"
	"github.com/banshee-data/inscreen.hal/internal/sysfs"
	"github.com/banshee-data/inscreen.hal/internal/version"
)

// Server exposes adapter state over HTTP.
type Server struct {
	adapter   *fod.Adapter
	panel     sysfs.Node
	backlight sysfs.Node
}

// NewServer creates a Server for the given adapter and its sysfs nodes.
func NewServer(adapter *fod.Adapter, panel, backlight sysfs.Node) *Server {
	return &Server{
		adapter:   adapter,
		panel:     panel,
		backlight: backlight,
	}
}

// ServeMux returns the HTTP mux with all routes attached.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.statusHandler)
	s.AttachAdminRoutes(mux)
	return mux
}

// statusResponse is the /api/status payload.
type statusResponse struct {
	fod.Status
	Version string `json:"version"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := statusResponse{
		Status:  s.adapter.Status(),
		Version: version.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode status", http.StatusInternalServerError)
	}
}

// AttachAdminRoutes attaches debugging endpoints to the given HTTP mux
// served at /debug/. These routes are accessible only over localhost/via
// Tailscale and are not publicly accessible.
func (s *Server) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	// API endpoint to write a raw command to the touch-panel node.
	debug.HandleSilentFunc("panel-command", s.panelCommandHandler)

	// API endpoint to read the current backlight brightness.
	debug.HandleSilentFunc("brightness", s.brightnessHandler)
}

func (s *Server) panelCommandHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	command := strings.TrimSpace(r.FormValue("command"))
	if command == "" {
		http.Error(w, "Missing command", http.StatusBadRequest)
		return
	}
	if strings.ContainsAny(command, "\r\n") {
		http.Error(w, "Command must be a single line", http.StatusBadRequest)
		return
	}
	if err := s.panel.Write(command); err != nil {
		http.Error(w, "Failed to write command", http.StatusInternalServerError)
		return
	}
	io.WriteString(w, fmt.Sprintf("Wrote command %q to panel node", command))
}

func (s *Server) brightnessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	value, err := s.backlight.Read()
	if err != nil {
		http.Error(w, "Failed to read brightness", http.StatusInternalServerError)
		return
	}
	io.WriteString(w, value)
}
