// Package httpserver exposes the report service as a JSON HTTP API.
package httpserver

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a3tai/pdf-report-reader/internal/pdf"
	"github.com/a3tai/pdf-report-reader/internal/pdf/errors"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// ReportService is the part of pdf.Service served over HTTP
type ReportService interface {
	ExtractContent(req pdf.ReportRequest) (*pdf.ContentResult, error)
	ExtractLines(req pdf.ReportRequest) (*pdf.LinesResult, error)
	ListFiles() *pdf.ReportFileList
	Info() *pdf.ServiceInfo
}

// Server routes HTTP requests to a ReportService
type Server struct {
	service ReportService
	mux     *http.ServeMux
}

// contentResponse is the body of a successful /test request
type contentResponse struct {
	Message string `json:"message"`
	*pdf.ContentResult
}

// linesResponse is the body of a successful /lines request
type linesResponse struct {
	Message string `json:"message"`
	*pdf.LinesResult
}

// errorResponse is the body of a failed request
type errorResponse struct {
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// New creates a server for service
func New(service ReportService) *Server {
	s := &Server{service: service, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("GET /{$}", s.handleInfo)
	s.mux.HandleFunc("GET /test", s.handleContent)
	s.mux.HandleFunc("GET /lines", s.handleLines)
	s.mux.HandleFunc("GET /archivos", s.handleFiles)
	return s
}

// Handler returns the routes wrapped with request logging
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Printf("server on %s stopped", ln.Addr())
	return nil
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Info())
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.service.ExtractContent(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contentResponse{Message: "PDF procesado correctamente", ContentResult: result})
}

func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.service.ExtractLines(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, linesResponse{Message: "Líneas extraídas correctamente", LinesResult: result})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ListFiles())
}

// parseReportRequest reads poble, informe and the optional pag query parameters
func parseReportRequest(r *http.Request) (pdf.ReportRequest, error) {
	q := r.URL.Query()
	req := pdf.ReportRequest{
		Municipality: strings.TrimSpace(q.Get("poble")),
		Report:       strings.TrimSpace(q.Get("informe")),
	}
	if req.Municipality == "" {
		return req, errors.NewPDFError(errors.ErrorTypeInvalidParameter, "parameter 'poble' is required")
	}
	if req.Report == "" {
		return req, errors.NewPDFError(errors.ErrorTypeInvalidParameter, "parameter 'informe' is required")
	}

	if raw := strings.TrimSpace(q.Get("pag")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return req, errors.NewPDFError(errors.ErrorTypeInvalidParameter,
				fmt.Sprintf("parameter 'pag' must be an integer, got %q", raw))
		}
		req.Page = &page
	}
	return req, nil
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeInvalidParameter, errors.ErrorTypeInvalidPageNumber:
		return http.StatusBadRequest
	case errors.ErrorTypeDocumentNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	detail := err.Error()
	var pe *errors.PDFError
	if stderrors.As(err, &pe) {
		detail = pe.Message
		if pe.Context != "" {
			detail += ": " + pe.Context
		}
	}
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Detail: detail, Type: errors.TypeOf(err).String()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Millisecond))
	})
}
