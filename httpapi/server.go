// Package httpapi exposes the proxy core over HTTP. It is a thin transport
// collaborator: it resolves sessions, invokes the query orchestrator and
// records exchanges, mapping failures to the client-visible error envelope.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/poegate/poegate"
	"github.com/poegate/poegate/config"
	"github.com/poegate/poegate/session"
)

// Server wires the orchestrator and session store behind the HTTP surface.
type Server struct {
	client *poegate.Client
	store  *session.Store
	cfg    *config.Config
	log    *slog.Logger
}

// New creates a Server. A nil logger falls back to slog.Default().
func New(client *poegate.Client, store *session.Store, cfg *config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{client: client, store: store, cfg: cfg, log: log}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ask_poe", s.handleAskPoe)
	mux.HandleFunc("POST /ask_with_attachment", s.handleAskWithAttachment)
	mux.HandleFunc("POST /clear_session", s.handleClearSession)
	mux.HandleFunc("GET /list_available_models", s.handleListModels)
	mux.HandleFunc("GET /get_server_info", s.handleServerInfo)
	return mux
}

// askResponse is the body of a successful exchange. The error fields are
// populated when the upstream failed mid-stream but partial text was
// salvaged.
type askResponse struct {
	Text       string `json:"text"`
	SessionID  string `json:"session_id"`
	Thinking   string `json:"thinking,omitempty"`
	ErrCode    string `json:"error,omitempty"`
	ErrMessage string `json:"error_message,omitempty"`
}

func (s *Server) handleAskPoe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bot := q.Get("bot")
	prompt := q.Get("prompt")
	if bot == "" || prompt == "" {
		s.writeInvalid(w, "bot and prompt are required")
		return
	}

	sid := s.store.GetOrCreate(q.Get("session_id"))
	history := s.store.Messages(sid)

	res, err := s.client.Query(r.Context(), poegate.QueryRequest{
		Bot:      bot,
		Prompt:   prompt,
		History:  history,
		Thinking: parseThinking(q.Get("thinking_enabled"), q.Get("thinking_template"), q.Get("thinking_include")),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.store.Update(sid, prompt, res.Text)
	s.writeJSON(w, http.StatusOK, askResponse{
		Text:       res.Text,
		SessionID:  sid,
		Thinking:   res.Thinking,
		ErrCode:    res.ErrCode,
		ErrMessage: res.ErrMessage,
	})
}

func (s *Server) handleAskWithAttachment(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.MaxFileSizeMB) << 20
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeInvalid(w, "malformed multipart form: "+err.Error())
		return
	}
	bot := r.FormValue("bot")
	prompt := r.FormValue("prompt")
	if bot == "" || prompt == "" {
		s.writeInvalid(w, "bot and prompt are required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeInvalid(w, "file is required")
		return
	}
	defer file.Close()

	// Stage the upload so the attachment path flows through the same
	// validation as any local file. The copy is capped one byte past the
	// limit so oversized uploads still fail the size check.
	tmp, err := os.CreateTemp("", "poegate-*"+filepath.Ext(header.Filename))
	if err != nil {
		s.writeError(w, &poegate.FileHandlingError{Path: header.Filename, Err: err})
		return
	}
	defer os.Remove(tmp.Name())
	_, copyErr := io.Copy(tmp, io.LimitReader(file, maxBytes+1))
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		s.writeError(w, &poegate.FileHandlingError{Path: header.Filename, Err: fmt.Errorf("staging upload failed")})
		return
	}

	sid := s.store.GetOrCreate(r.FormValue("session_id"))
	history := s.store.Messages(sid)

	res, err := s.client.Query(r.Context(), poegate.QueryRequest{
		Bot:            bot,
		Prompt:         prompt,
		History:        history,
		AttachmentPath: tmp.Name(),
		Thinking: parseThinking(r.FormValue("thinking_enabled"),
			r.FormValue("thinking_template"), r.FormValue("thinking_include")),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.store.Update(sid, fmt.Sprintf("%s [File: %s]", prompt, header.Filename), res.Text)
	s.writeJSON(w, http.StatusOK, askResponse{
		Text:       res.Text,
		SessionID:  sid,
		Thinking:   res.Thinking,
		ErrCode:    res.ErrCode,
		ErrMessage: res.ErrMessage,
	})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeInvalid(w, "malformed form: "+err.Error())
		return
	}
	sid := r.FormValue("session_id")
	if sid == "" {
		s.writeInvalid(w, "session_id is required")
		return
	}
	if s.store.Delete(sid) {
		s.writeJSON(w, http.StatusOK, map[string]string{
			"status":  "success",
			"message": fmt.Sprintf("Session %s cleared", sid),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "error",
		"message": fmt.Sprintf("Session %s not found", sid),
	})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.client.ListModels(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"models": models})
}

func (s *Server) handleServerInfo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":                   "Poe Proxy HTTP API",
		"version":                "1.0.0",
		"claude_compatible":      s.cfg.ClaudeCompatible,
		"debug_mode":             s.cfg.Debug,
		"max_file_size_mb":       s.cfg.MaxFileSizeMB,
		"session_expiry_minutes": s.cfg.SessionExpiryMinutes,
		"active_sessions":        s.store.Len(),
	})
}

// parseThinking builds a per-request thinking configuration. A request that
// never mentions thinking gets none; enabling it starts from the defaults.
func parseThinking(enabled, template, include string) *poegate.ThinkingConfig {
	if enabled == "" {
		return nil
	}
	cfg := poegate.DefaultThinking()
	if v, err := strconv.ParseBool(enabled); err == nil {
		cfg.Enabled = v
	}
	if template != "" {
		cfg.Template = template
	}
	if v, err := strconv.ParseBool(include); include != "" && err == nil {
		cfg.IncludeInResponse = v
	}
	return &cfg
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("write response failed", "error", err)
	}
}

// writeError logs the failure and maps it to the client-visible envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	env := poegate.Classify(err)
	s.log.Error("request failed", "kind", env.Error, "error", err)
	s.writeJSON(w, http.StatusInternalServerError, env)
}

func (s *Server) writeInvalid(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, poegate.ErrorEnvelope{
		Error:   "invalid_request",
		Message: msg,
	})
}
