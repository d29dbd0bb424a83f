package httpapi

import (
	"context"
	"errors"
	"net/http"

	"demohub/internal/laptop"
	"demohub/internal/session"

	"go.uber.org/zap"
)

// LaptopHandler 3D 笔记本小游戏
type LaptopHandler struct {
	games  *session.Registry[*laptop.Game]
	base   context.Context
	logger *zap.Logger
}

func NewLaptopHandler(base context.Context, games *session.Registry[*laptop.Game], logger *zap.Logger) *LaptopHandler {
	return &LaptopHandler{games: games, base: base, logger: logger}
}

var laptopRejections = []error{laptop.ErrMissingCredentials, laptop.ErrNotLoggedIn, laptop.ErrBusy}

func (h *LaptopHandler) Page(w http.ResponseWriter, r *http.Request) {
	g := stateFor(h.games, w, r)
	writeJSON(w, http.StatusOK, Ok(g.Render(r.Context())))
}

func (h *LaptopHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	g := stateFor(h.games, w, r)
	if err := g.Login(req.Username, req.Password); err != nil {
		writeErr(w, err, laptopRejections...)
		return
	}
	writeJSON(w, http.StatusOK, Notify("success", "Welcome, "+req.Username+"!", g.Render(r.Context())))
}

func (h *LaptopHandler) Logout(w http.ResponseWriter, r *http.Request) {
	g := stateFor(h.games, w, r)
	g.Logout()
	writeJSON(w, http.StatusOK, Notify("info", "Logged out successfully", g.Render(r.Context())))
}

func (h *LaptopHandler) Spin(w http.ResponseWriter, r *http.Request) {
	g := stateFor(h.games, w, r)
	if _, err := g.Spin(); err != nil {
		if errors.Is(err, laptop.ErrBusy) {
			writeJSON(w, http.StatusOK, Ok(g.Render(r.Context())))
			return
		}
		writeErr(w, err, laptopRejections...)
		return
	}
	writeJSON(w, http.StatusOK, Notify("success", "+10 points!", g.Render(r.Context())))
}

func (h *LaptopHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	g := stateFor(h.games, w, r)
	if err := g.StartGame(h.base); err != nil {
		writeErr(w, err, laptopRejections...)
		return
	}
	writeJSON(w, http.StatusOK, Ok(g.Render(r.Context())))
}

// Drag applies a pointer move. "begin" captures the start rotation, "end" releases it.
func (h *LaptopHandler) Drag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phase string  `json:"phase"`
		DX    float64 `json:"dx"`
		DY    float64 `json:"dy"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	g := stateFor(h.games, w, r)

	var err error
	switch req.Phase {
	case "begin":
		err = g.BeginDrag()
	case "end":
		g.EndDrag()
	default:
		_, err = g.DragTo(req.DX, req.DY)
	}
	if err != nil {
		writeErr(w, err, laptopRejections...)
		return
	}
	writeJSON(w, http.StatusOK, Ok(g.Render(r.Context())))
}

// RegisterLaptopRoutes 注册笔记本小游戏路由
func (r *Router) RegisterLaptopRoutes(h *LaptopHandler) {
	r.addApp(AppInfo{Name: "laptop", Title: "3D Laptop Game", Path: "/laptop/"}, h.Page)
	r.post("/laptop/api/v1/login", h.Login)
	r.post("/laptop/api/v1/logout", h.Logout)
	r.post("/laptop/api/v1/spin", h.Spin)
	r.post("/laptop/api/v1/game/start", h.StartGame)
	r.post("/laptop/api/v1/drag", h.Drag)
	r.Handle("/laptop/api/v1/session", deleteSession(h.games, h.logger))
}
