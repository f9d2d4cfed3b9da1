// Package upload exposes batch processing over HTTP: a multipart upload
// endpoint, per-operation status queries and a websocket status feed.
package upload

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/bankpush/bankpush/internal/accounts"
	"github.com/bankpush/bankpush/internal/batch"
	"github.com/bankpush/bankpush/internal/importer"
	"github.com/bankpush/bankpush/internal/operations"
	"github.com/bankpush/bankpush/internal/ynab"
)

// DefaultMaxUploadBytes caps the multipart request body.
const DefaultMaxUploadBytes = 10 << 20

// Processor runs the batch pipeline on a staged file.
type Processor interface {
	Process(ctx context.Context, path string, target ynab.Target) (batch.Summary, error)
}

// Config holds the server dependencies.
type Config struct {
	Processor      Processor
	Accounts       *accounts.Router
	BudgetID       string
	Store          *operations.Store
	Logger         zerolog.Logger
	MaxUploadBytes int64
	UploadsPerMin  int
	MaxOperations  int // status records kept; used only when Store is nil
	// StagingDir is the parent of per-upload temp directories; empty means
	// the system temp dir.
	StagingDir     string
}

// Server handles the HTTP API.
type Server struct {
	processor  Processor
	accounts   *accounts.Router
	budgetID   string
	store      *operations.Store
	hub        *Hub
	limiter    *RateLimiter
	log        zerolog.Logger
	maxUpload  int64
	stagingDir string
}

// NewServer creates a Server and wires the store to its websocket hub.
func NewServer(cfg Config) *Server {
	store := cfg.Store
	if store == nil {
		store = operations.NewStore(cfg.MaxOperations)
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	s := &Server{
		processor:  cfg.Processor,
		accounts:   cfg.Accounts,
		budgetID:   cfg.BudgetID,
		store:      store,
		limiter:    NewRateLimiter(cfg.UploadsPerMin),
		log:        cfg.Logger,
		maxUpload:  maxUpload,
		stagingDir: cfg.StagingDir,
	}
	s.hub = NewHub(store, cfg.Logger)
	store.SetNotifier(s.hub.Notify)
	return s
}

// Hub returns the websocket hub. Its Run loop must be started by the caller.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Store returns the operation store.
func (s *Server) Store() *operations.Store {
	return s.store
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.Handle("/api/process", s.limiter.Middleware(http.HandlerFunc(s.handleProcess))).Methods(http.MethodPost)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/status/{id}", s.handleOperation).Methods(http.MethodGet)
	r.HandleFunc("/api/operations", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/ws", s.hub.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	var h http.Handler = r
	h = CORS(h)
	h = Logger(s.log)(h)
	h = WithCorrelationID(h)
	h = Recovery(s.log)(h)
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.store.Latest())
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	op, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, http.StatusNotFound, "Operation not found")
		return
	}
	WriteJSON(w, http.StatusOK, op)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, http.ErrMissingFile) && r.MultipartForm != nil && len(r.MultipartForm.Value["file"]) > 0:
			WriteError(w, http.StatusBadRequest, "No file selected")
		default:
			WriteError(w, http.StatusBadRequest, "No file provided")
		}
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "." || filename == string(filepath.Separator) || filename == "" {
		WriteError(w, http.StatusBadRequest, "No file selected")
		return
	}

	id := CorrelationID(r.Context())
	op, err := s.store.Start(id, filename)
	if err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}
	log := s.log.With().Str("operation_id", op.ID).Str("filename", filename).Logger()
	log.Info().Msg("upload received")

	dir, err := os.MkdirTemp(s.stagingDir, "bankpush-upload-*")
	if err != nil {
		s.finish(w, log, op.ID, outcome{status: operations.StatusError, code: http.StatusInternalServerError, err: err})
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("failed to remove staging directory")
		}
	}()

	path := filepath.Join(dir, filename)
	if err := stage(file, path); err != nil {
		s.finish(w, log, op.ID, outcome{status: operations.StatusError, code: http.StatusInternalServerError, err: err})
		return
	}
	if err := checkHeader(path); err != nil {
		s.finish(w, log, op.ID, outcome{status: operations.StatusError, code: http.StatusInternalServerError, err: err})
		return
	}

	account := s.accounts.Resolve(filename)
	log.Info().Str("account", account.Name).Msg("processing upload")

	summary, err := s.processor.Process(context.WithoutCancel(r.Context()), path, ynab.Target{BudgetID: s.budgetID, AccountID: account.ID})
	s.finish(w, log, op.ID, classify(summary, err))
}

// outcome is the final state of one upload.
type outcome struct {
	status  operations.Status
	code    int
	summary batch.Summary
	err     error
}

// classify maps a processing result to an operation status and HTTP code.
// Certificate failures are reported as a warning, not a failure.
func classify(summary batch.Summary, err error) outcome {
	o := outcome{summary: summary, err: err}
	switch {
	case err == nil:
		o.status, o.code = operations.StatusCompleted, http.StatusOK
	case errors.Is(err, ynab.ErrRateLimitExceeded):
		o.status, o.code = operations.StatusRateLimited, http.StatusTooManyRequests
	case ynab.IsCertificateError(err):
		o.status, o.code = operations.StatusSSLError, http.StatusOK
	default:
		o.status, o.code = operations.StatusFailed, http.StatusInternalServerError
	}
	return o
}

func (s *Server) finish(w http.ResponseWriter, log zerolog.Logger, id string, o outcome) {
	var (
		details string
		body    map[string]any
	)

	switch o.status {
	case operations.StatusCompleted:
		details = describe(o.summary)
		body = map[string]any{
			"message": "Upload successful",
			"details": details,
			"summary": o.summary,
		}
		log.Info().Str("details", details).Msg("upload completed")
	case operations.StatusRateLimited:
		details = o.err.Error()
		body = map[string]any{
			"error":   "YNAB API rate limit reached. Please wait a few minutes before trying again.",
			"details": details,
		}
		log.Warn().Err(o.err).Msg("upload rate limited")
	case operations.StatusSSLError:
		details = "SSL certificate verification failed; set VERIFY_SSL=false to accept the server certificate: " + o.err.Error()
		body = map[string]any{
			"message": "Upload finished with SSL certificate warnings",
			"warning": "SSL certificate verification failed",
			"details": details,
		}
		log.Warn().Err(o.err).Msg("upload hit certificate verification failure")
	case operations.StatusError:
		details = o.err.Error()
		body = map[string]any{"error": details}
		log.Error().Err(o.err).Msg("upload rejected")
	default:
		details = o.err.Error()
		body = map[string]any{
			"error":   "Upload failed",
			"details": details,
		}
		log.Error().Err(o.err).Msg("upload failed")
	}

	if _, err := s.store.Finish(id, o.status, details); err != nil {
		log.Error().Err(err).Msg("failed to record operation status")
	}
	body["operation_id"] = id
	WriteJSON(w, o.code, body)
}

func describe(sum batch.Summary) string {
	return fmt.Sprintf("Submitted %d of %d transactions (%d already cleared, %d fee lines reconciled)",
		sum.Submitted, sum.Parsed, sum.Cleared, sum.Reconciled)
}

func stage(src io.Reader, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("staging upload: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("staging upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("staging upload: %w", err)
	}
	return nil
}

// checkHeader rejects files whose first line does not look like a bank
// export before anything is submitted.
func checkHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(importer.Decode(f)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading upload: %w", err)
	}
	if strings.TrimSpace(line) == "" {
		return fmt.Errorf("%w: file is empty", importer.ErrSchema)
	}
	return importer.CheckHeaderLoose(line)
}
