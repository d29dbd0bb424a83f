package httpapi

import (
	"net/http"

	"demohub/internal/search"
	"demohub/internal/session"

	"go.uber.org/zap"
)

// SearchHandler 商品搜索
type SearchHandler struct {
	boxes  *session.Registry[*search.Box]
	logger *zap.Logger
}

func NewSearchHandler(boxes *session.Registry[*search.Box], logger *zap.Logger) *SearchHandler {
	return &SearchHandler{boxes: boxes, logger: logger}
}

func (h *SearchHandler) Page(w http.ResponseWriter, r *http.Request) {
	b := stateFor(h.boxes, w, r)
	writeJSON(w, http.StatusOK, Ok(b.Render(r.Context())))
}

// Search accepts ?q= on GET or {"term": ...} on POST.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var term string
	switch r.Method {
	case http.MethodGet:
		term = r.URL.Query().Get("q")
	case http.MethodPost:
		var req struct {
			Term string `json:"term"`
		}
		if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid body"))
			return
		}
		term = req.Term
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	b := stateFor(h.boxes, w, r)
	b.Search(term)
	writeJSON(w, http.StatusOK, Ok(b.Render(r.Context())))
}

func (h *SearchHandler) History(w http.ResponseWriter, r *http.Request) {
	b := stateFor(h.boxes, w, r)
	writeJSON(w, http.StatusOK, Ok(b.History()))
}

// RegisterSearchRoutes 注册商品搜索路由
func (r *Router) RegisterSearchRoutes(h *SearchHandler) {
	r.addApp(AppInfo{Name: "search", Title: "Product Search", Path: "/search/"}, h.Page)
	r.Handle("/search/api/v1/search", h.Search)
	r.get("/search/api/v1/history", h.History)
	r.Handle("/search/api/v1/session", deleteSession(h.boxes, h.logger))
}
