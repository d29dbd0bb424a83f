package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// AppInfo is one entry of the index page.
type AppInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	apps   []AppInfo
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})
	r.Handle("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		if !allow(w, req, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, Ok(r.apps))
	})
	return r
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// addApp lists an app on the index page and mounts its page route.
func (r *Router) addApp(info AppInfo, page http.HandlerFunc) {
	r.apps = append(r.apps, info)
	r.Handle(info.Path, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != info.Path {
			writeJSON(w, http.StatusNotFound, Fail("not found"))
			return
		}
		if !allow(w, req, http.MethodGet) {
			return
		}
		page(w, req)
	})
}

// post mounts a POST-only route.
func (r *Router) post(pattern string, h http.HandlerFunc) {
	r.Handle(pattern, func(w http.ResponseWriter, req *http.Request) {
		if !allow(w, req, http.MethodPost) {
			return
		}
		h(w, req)
	})
}

// get mounts a GET-only route.
func (r *Router) get(pattern string, h http.HandlerFunc) {
	r.Handle(pattern, func(w http.ResponseWriter, req *http.Request) {
		if !allow(w, req, http.MethodGet) {
			return
		}
		h(w, req)
	})
}
