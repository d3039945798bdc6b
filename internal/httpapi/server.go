package httpapi

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adapterd/internal/engine"
	"adapterd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	CurrentAdapter() (types.AdapterInfo, bool)
	ApplyAdapter(ctx context.Context, req engine.ApplyRequest) error
	RemoveAdapter(ctx context.Context) error
	Classify(ctx context.Context, adapterID, text string) (types.ClassifyResult, error)
	Ready() bool
}

// Multipart field names for POST /adapter.
const (
	fieldAdapterID      = "adapter_id"
	fieldAdapterVersion = "adapter_version"
	partPatch           = "patch"
	partHeads           = "heads"
	partTokenizer       = "tokenizer"
	partConfig          = "config"
)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		methods := corsAllowedMethods
		if len(methods) == 0 {
			methods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
		}
		headers := corsAllowedHeaders
		if len(headers) == 0 {
			headers = []string{"Accept", "Content-Type", "X-Log-Level"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: methods,
			AllowedHeaders: headers,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/adapter", func(w http.ResponseWriter, r *http.Request) {
		info, ok := svc.CurrentAdapter()
		if !ok {
			writeJSONError(w, http.StatusNotFound, "no adapter loaded")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(info); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/adapter", func(w http.ResponseWriter, r *http.Request) { handleApply(svc, w, r) })

	r.Delete("/adapter", func(w http.ResponseWriter, r *http.Request) {
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		start := time.Now()
		if err := svc.RemoveAdapter(joinedCtx); err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeEngineError(w, err)
			return
		}
		logRequest(r, "adapter removed", http.StatusNoContent, start)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/classify", func(w http.ResponseWriter, r *http.Request) { handleClassify(svc, w, r) })

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleApply decodes a multipart adapter bundle and swaps the engine onto
// it. All four parts are required; identity comes from form values.
func handleApply(svc Service, w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	id := strings.TrimSpace(r.FormValue(fieldAdapterID))
	version := strings.TrimSpace(r.FormValue(fieldAdapterVersion))
	if id == "" || version == "" {
		writeJSONError(w, http.StatusBadRequest, "adapter_id and adapter_version are required")
		return
	}

	var closers []multipart.File
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	openPart := func(name string) (multipart.File, bool) {
		f, _, err := r.FormFile(name)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "missing part: "+name)
			return nil, false
		}
		closers = append(closers, f)
		return f, true
	}
	patchF, ok := openPart(partPatch)
	if !ok {
		return
	}
	headsF, ok := openPart(partHeads)
	if !ok {
		return
	}
	tokF, ok := openPart(partTokenizer)
	if !ok {
		return
	}
	cfgF, ok := openPart(partConfig)
	if !ok {
		return
	}

	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	err := svc.ApplyAdapter(joinedCtx, engine.ApplyRequest{
		ID:        id,
		Version:   version,
		Patch:     patchF,
		Heads:     headsF,
		Tokenizer: tokF,
		Config:    cfgF,
	})
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		logRequestErr(r, "apply failed", statusForError(err), start, err)
		writeEngineError(w, err)
		return
	}
	logRequest(r, "adapter applied", http.StatusNoContent, start)
	w.WriteHeader(http.StatusNoContent)
}

func handleClassify(svc Service, w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.AdapterID) == "" {
		writeJSONError(w, http.StatusBadRequest, "adapter_id is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSONError(w, http.StatusBadRequest, "text is required")
		return
	}

	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	res, err := svc.Classify(joinedCtx, req.AdapterID, req.Text)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		logRequestErr(r, "classify failed", statusForError(err), start, err)
		writeEngineError(w, err)
		return
	}
	logRequest(r, "classify ok", http.StatusOK, start)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
}

func logRequest(r *http.Request, msg string, status int, start time.Time) {
	if zlog == nil || requestLogLevel(r) < LevelInfo {
		return
	}
	z := zlog.Info().Str("path", r.URL.Path).Int("status", status).Dur("dur", time.Since(start))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg(msg)
}

func logRequestErr(r *http.Request, msg string, status int, start time.Time, err error) {
	if zlog == nil || requestLogLevel(r) < LevelError {
		return
	}
	z := zlog.Error().Str("path", r.URL.Path).Int("status", status).Dur("dur", time.Since(start)).Err(err)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg(msg)
}
