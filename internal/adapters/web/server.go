package web

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/mikey/llm-email-agent/internal/core"
	"go.uber.org/zap"
)

//go:embed templates/*
var templatesFS embed.FS

// maxBodyBytes caps request bodies on the form and the JSON API
const maxBodyBytes = 1 << 20

// Server is the web front end: an HTML form and a JSON API over the pipeline
type Server struct {
	service    *core.EmailAgentService
	logger     *zap.Logger
	listenAddr string
	maxChars   int
	csrfKey    []byte
	index      *template.Template
	validate   *validator.Validate
	httpServer *http.Server
}

// NewServer creates a new web front end
func NewServer(service *core.EmailAgentService, logger *zap.Logger, listenAddr string, maxChars int) (*Server, error) {
	csrfKey := make([]byte, 32)
	if _, err := rand.Read(csrfKey); err != nil {
		return nil, fmt.Errorf("failed to generate CSRF key: %w", err)
	}

	index, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
		maxChars:   maxChars,
		csrfKey:    csrfKey,
		index:      index,
		validate:   validator.New(),
	}, nil
}

// Handler returns the router with all routes mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(plaintextHTTP)
		r.Use(csrf.Protect(
			s.csrfKey,
			csrf.Secure(false),
			csrf.Path("/"),
			csrf.HttpOnly(true),
			csrf.SameSite(csrf.SameSiteLaxMode),
		))
		r.Get("/", s.handleIndex)
		r.Post("/", s.handleSubmit)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAPIAnalyze)
		r.Post("/decide", s.handleAPIDecide)
		r.Post("/compose", s.handleAPICompose)
	})

	return r
}

// Start starts the HTTP listener
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("Web front end starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP listener
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// ProcessEmail runs the pipeline for one email
func (s *Server) ProcessEmail(ctx context.Context, email *core.Email) (*core.ProcessResult, error) {
	return s.service.Process(ctx, email.Body)
}

type indexPage struct {
	CSRFField template.HTML
	MaxChars  int
	Text      string
	Error     string
	Result    *core.ProcessResult
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, indexPage{})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, indexPage{Error: "Could not read the form."})
		return
	}

	text := r.PostForm.Get("email")
	page := indexPage{Text: text}

	if err := s.checkText(text); err != nil {
		page.Error = err.Error()
		s.render(w, r, http.StatusBadRequest, page)
		return
	}

	result, err := s.ProcessEmail(r.Context(), &core.Email{Body: text})
	if err != nil {
		s.logger.Error("Failed to process submitted email", zap.Error(err))
		page.Error = "An error occurred: " + err.Error()
		s.render(w, r, statusFor(err), page)
		return
	}

	page.Result = result
	s.render(w, r, http.StatusOK, page)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page indexPage) {
	page.CSRFField = csrf.TemplateField(r)
	page.MaxChars = s.maxChars

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.index.Execute(w, page); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
	}
}

type analyzeRequest struct {
	Text string `json:"text" validate:"required"`
}

type decideRequest struct {
	Label string   `json:"sentiment_label" validate:"required"`
	Score *float64 `json:"sentiment_score" validate:"required,gte=0,lte=1"`
}

type composeRequest struct {
	Text         string `json:"text" validate:"required"`
	Summary      string `json:"summary" validate:"required"`
	ResponseType string `json:"response_type" validate:"required,oneof=brief detailed"`
}

type composeResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.checkText(req.Text); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.ProcessEmail(r.Context(), &core.Email{Body: req.Text})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAPIDecide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if !s.decode(w, r, &req) {
		return
	}

	decision := s.service.Decide(core.NormalizeLabel(req.Label), *req.Score)
	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleAPICompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.checkText(req.Text); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	reply, err := s.service.Compose(r.Context(), req.Text, req.Summary, core.ResponseType(req.ResponseType))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, composeResponse{Response: reply})
}

// decode reads and validates a JSON body, writing a 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (s *Server) checkText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("please enter an email")
	}
	if s.maxChars > 0 && utf8.RuneCountInString(text) > s.maxChars {
		return fmt.Errorf("email is longer than %d characters", s.maxChars)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Error("Pipeline request failed", zap.Error(err))

	resp := errorResponse{Error: err.Error()}
	var pe *core.PipelineError
	if errors.As(err, &pe) {
		resp.Stage = pe.Stage.Error()
	}
	writeJSON(w, statusFor(err), resp)
}

// statusFor maps pipeline errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyText), errors.Is(err, core.ErrNoResponseNeeded):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrSummarization), errors.Is(err, core.ErrClassification), errors.Is(err, core.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// plaintextHTTP lets the CSRF middleware skip its TLS-only referer checks on plain HTTP
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}
