package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux (no third-party router
// dependency needed for this surface).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterUploadRoutes wires the three workbook upload endpoints.
func (r *Router) RegisterUploadRoutes(u *UploadHandler) {
	post := func(pattern string, h http.HandlerFunc) {
		r.Handle(pattern, func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h(w, req)
		})
	}
	post("/data/api/v1/uploads/shift-journal", u.UploadShiftJournal)
	post("/data/api/v1/uploads/water", u.UploadWater)
	post("/data/api/v1/uploads/downtime-history", u.UploadDowntimeHistory)
}

// RegisterExportRoutes wires the workbook template download endpoint.
func (r *Router) RegisterExportRoutes(e *ExportHandler) {
	r.Handle("/data/api/v1/exports/shift-journal-template", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		e.GetShiftJournalTemplate(w, req)
	})
}

// RegisterSignalRoutes wires the signal summary endpoint.
func (r *Router) RegisterSignalRoutes(s *SignalHandler) {
	r.Handle("/data/api/v1/signals/summary", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.GetSummary(w, req)
	})
}

// RegisterHazardRoutes wires hazard list/create, the photo endpoint and the
// per-hazard status/patch routes.
func (r *Router) RegisterHazardRoutes(h *HazardHandler) {
	r.Handle("/data/api/v1/hazards", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.List(w, req)
		case http.MethodPost:
			h.Create(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	r.Handle("/data/api/v1/hazards/photo", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.DetectPhoto(w, req)
	})

	// /data/api/v1/hazards/{id} and /data/api/v1/hazards/{id}/status
	r.Handle("/data/api/v1/hazards/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/data/api/v1/hazards/")
		if rest == "" || rest == "photo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if id, found := strings.CutSuffix(rest, "/status"); found {
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h.UpdateStatus(w, req, id)
			return
		}
		if strings.Contains(rest, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Patch(w, req, rest)
	})
}
