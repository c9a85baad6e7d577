package http

import (
	"log/slog"
	"net/http"
	"strings"
)

// RouterConfig bundles the handlers and middleware the router wires together.
type RouterConfig struct {
	Logger *slog.Logger

	Auth      *AuthHandler
	Staff     *StaffHandler
	Locations *LocationHandler
	Jobs      *JobHandler
	Tasks     *TaskHandler
	Scan      *ScanHandler
	Reports   *ReportHandler

	// Sessions gates every route except POST /sessions and GET /scan/.
	Sessions SessionValidator

	// Middleware wraps the whole router, outermost first.
	Middleware []Middleware
}

// NewRouter assembles the HTTP API.
func NewRouter(config RouterConfig) http.Handler {
	logger := defaultLogger(config.Logger)
	resp := newResponder(logger)
	mux := http.NewServeMux()

	requireSession := RequireSession(config.Sessions, logger)
	protected := func(handler http.HandlerFunc) http.Handler {
		return requireSession(handler)
	}

	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			config.Auth.CreateSession(w, r)
		default:
			methodNotAllowed(resp, w, r, http.MethodPost)
		}
	})
	mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			config.Auth.DeleteCurrentSession(w, r)
		default:
			methodNotAllowed(resp, w, r, http.MethodDelete)
		}
	})

	mux.Handle("/staff", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			config.Staff.List(w, r)
		case http.MethodPost:
			config.Staff.Create(w, r)
		default:
			methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPost)
		}
	}))
	mux.Handle("/staff/", protected(func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitResourcePath(r.URL.Path, "/staff/")
		if id == "" {
			http.NotFound(w, r)
			return
		}
		switch rest {
		case "":
			switch r.Method {
			case http.MethodGet:
				config.Staff.Get(w, r, id)
			case http.MethodPut:
				config.Staff.Update(w, r, id)
			case http.MethodDelete:
				config.Staff.Delete(w, r, id)
			default:
				methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		case "availability":
			switch r.Method {
			case http.MethodGet:
				config.Staff.GetAvailability(w, r, id)
			case http.MethodPut:
				config.Staff.SaveAvailability(w, r, id)
			default:
				methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPut)
			}
		default:
			http.NotFound(w, r)
		}
	}))

	mux.Handle("/sites", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			config.Locations.ListSites(w, r)
		case http.MethodPost:
			config.Locations.CreateSite(w, r)
		default:
			methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPost)
		}
	}))
	mux.Handle("/sites/", protected(func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitResourcePath(r.URL.Path, "/sites/")
		if id == "" || rest != "" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodDelete:
			config.Locations.DeleteSite(w, r, id)
		default:
			methodNotAllowed(resp, w, r, http.MethodDelete)
		}
	}))

	mux.Handle("/zones", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			config.Locations.ListZones(w, r)
		case http.MethodPost:
			config.Locations.CreateZone(w, r)
		default:
			methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPost)
		}
	}))
	mux.Handle("/zones/", protected(func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitResourcePath(r.URL.Path, "/zones/")
		if id == "" || rest != "" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodDelete:
			config.Locations.DeleteZone(w, r, id)
		default:
			methodNotAllowed(resp, w, r, http.MethodDelete)
		}
	}))

	mux.Handle("/areas", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			config.Locations.ListAreas(w, r)
		case http.MethodPost:
			config.Locations.CreateArea(w, r)
		default:
			methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPost)
		}
	}))
	mux.Handle("/areas/", protected(func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitResourcePath(r.URL.Path, "/areas/")
		if id == "" {
			http.NotFound(w, r)
			return
		}
		switch rest {
		case "":
			switch r.Method {
			case http.MethodGet:
				config.Locations.GetArea(w, r, id)
			case http.MethodPut:
				config.Locations.UpdateArea(w, r, id)
			case http.MethodDelete:
				config.Locations.DeleteArea(w, r, id)
			default:
				methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		case "scan-token":
			switch r.Method {
			case http.MethodPost:
				config.Locations.MintScanToken(w, r, id)
			default:
				methodNotAllowed(resp, w, r, http.MethodPost)
			}
		default:
			http.NotFound(w, r)
		}
	}))

	mux.Handle("/jobs", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			config.Jobs.List(w, r)
		case http.MethodPost:
			config.Jobs.Create(w, r)
		default:
			methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPost)
		}
	}))
	mux.Handle("/jobs/", protected(func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitResourcePath(r.URL.Path, "/jobs/")
		if id == "" || rest != "" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			config.Jobs.Get(w, r, id)
		case http.MethodPut:
			config.Jobs.Update(w, r, id)
		case http.MethodDelete:
			config.Jobs.Delete(w, r, id)
		default:
			methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	}))

	mux.Handle("/tasks", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			config.Tasks.List(w, r)
		case http.MethodPost:
			config.Tasks.Assign(w, r)
		default:
			methodNotAllowed(resp, w, r, http.MethodGet, http.MethodPost)
		}
	}))
	mux.Handle("/tasks/", protected(func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitResourcePath(r.URL.Path, "/tasks/")
		if id == "" {
			http.NotFound(w, r)
			return
		}
		switch rest {
		case "":
			switch r.Method {
			case http.MethodGet:
				config.Tasks.Get(w, r, id)
			default:
				methodNotAllowed(resp, w, r, http.MethodGet)
			}
		case "complete":
			switch r.Method {
			case http.MethodPost:
				config.Tasks.Complete(w, r, id)
			default:
				methodNotAllowed(resp, w, r, http.MethodPost)
			}
		case "verify":
			switch r.Method {
			case http.MethodPost:
				config.Tasks.Verify(w, r, id)
			default:
				methodNotAllowed(resp, w, r, http.MethodPost)
			}
		default:
			http.NotFound(w, r)
		}
	}))

	mux.HandleFunc("/scan/", func(w http.ResponseWriter, r *http.Request) {
		token, rest := splitResourcePath(r.URL.Path, "/scan/")
		if token == "" || rest != "" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			config.Scan.Resolve(w, r, token)
		default:
			methodNotAllowed(resp, w, r, http.MethodGet)
		}
	})

	mux.Handle("/reports/compliance", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			config.Reports.Compliance(w, r)
		default:
			methodNotAllowed(resp, w, r, http.MethodGet)
		}
	}))

	return applyMiddleware(mux, config.Middleware)
}

// splitResourcePath strips prefix from path and returns the first segment and
// whatever follows it.
func splitResourcePath(path, prefix string) (id, rest string) {
	trimmed := strings.TrimPrefix(path, prefix)
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return "", ""
	}
	id, rest, _ = strings.Cut(trimmed, "/")
	return id, rest
}

func methodNotAllowed(resp responder, w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	resp.writeJSON(r.Context(), w, http.StatusMethodNotAllowed, errorResponse{
		Message: "Method " + r.Method + " is not allowed for this resource.",
	})
}
