package xscopehttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trickstertwo/xscope"
	"github.com/trickstertwo/xscope/logx"
	"github.com/trickstertwo/xscope/logxconcern"
)

// LoggerView is the JSON form of one logger. Level is empty when the logger
// inherits its threshold.
type LoggerView struct {
	Name      string   `json:"name"`
	Level     string   `json:"level,omitempty"`
	Effective string   `json:"effective"`
	Additive  bool     `json:"additive"`
	Appenders []string `json:"appenders,omitempty"`
}

type levelRequest struct {
	Level string `json:"level"`
}

type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// NewLevelHandler serves level administration for the Concern active on each
// request:
//
//	GET /loggers         every logger of the concern's repository
//	GET /loggers/{name}  one logger
//	PUT /loggers/{name}  body {"level":"debug"}
//
// Logger names may contain '/'. Concerns that are not repository-backed
// answer 501.
func NewLevelHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/loggers", handleList)
	r.Get("/loggers/*", handleGet)
	r.Put("/loggers/*", handlePut)
	return r
}

// GET /loggers
// Response: {"repository": "...", "loggers": [...], "count": N}
func handleList(w http.ResponseWriter, r *http.Request) {
	repo, ok := requestRepository(w, r)
	if !ok {
		return
	}
	names := repo.LoggerNames()
	views := make([]LoggerView, 0, len(names))
	for _, name := range names {
		views = append(views, viewOf(repo.Logger(name)))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"repository": repo.Name(),
		"loggers":    views,
		"count":      len(views),
	})
}

// GET /loggers/{name}
func handleGet(w http.ResponseWriter, r *http.Request) {
	repo, ok := requestRepository(w, r)
	if !ok {
		return
	}
	name := loggerParam(r)
	if !repo.Exists(name) {
		writeError(w, http.StatusNotFound, "logger not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(repo.Logger(name)))
}

// PUT /loggers/{name}
// Body: {"level": "debug"}
// Response: the updated logger
func handlePut(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	level, err := xscope.ParseLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	c := xscope.ConcernFrom(ctx)
	name := loggerParam(r)
	l := c.LoggerFactory().Logger(name)
	if err := c.SetLogLevel(l, level); err != nil {
		if errors.Is(err, xscope.ErrUnsupported) {
			writeError(w, http.StatusNotImplemented, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	xscope.Named(ctx, "xscopehttp").Info().
		Str("logger", name).
		Str("level", level.String()).
		Msg("log level changed")
	writeJSON(w, http.StatusOK, viewOf(l))
}

func requestRepository(w http.ResponseWriter, r *http.Request) (*logx.Repository, bool) {
	c := xscope.ConcernFrom(r.Context())
	rc, ok := c.(logxconcern.RepositoryConcern)
	if !ok {
		writeError(w, http.StatusNotImplemented, "active concern "+xscope.TypeName(c)+" does not expose a repository")
		return nil, false
	}
	return rc.Repository(), true
}

func loggerParam(r *http.Request) string {
	name := strings.Trim(chi.URLParam(r, "*"), "/")
	if name == "" {
		return xscope.RootLoggerName
	}
	return name
}

func viewOf(l *logx.Logger) LoggerView {
	v := LoggerView{
		Name:      l.Name(),
		Effective: l.EffectiveLevel().String(),
		Additive:  l.Additive(),
	}
	if lv, ok := l.Level(); ok {
		v.Level = lv.String()
	}
	for _, a := range l.Appenders() {
		v.Appenders = append(v.Appenders, a.Name())
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Status: status, Message: message})
}
