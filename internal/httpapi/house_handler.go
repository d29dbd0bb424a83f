package httpapi

import (
	"fmt"
	"net/http"

	"demohub/internal/house"
	"demohub/internal/session"

	"go.uber.org/zap"
)

// HouseHandler 房屋网格编辑器
type HouseHandler struct {
	editors *session.Registry[*house.Editor]
	logger  *zap.Logger
}

func NewHouseHandler(editors *session.Registry[*house.Editor], logger *zap.Logger) *HouseHandler {
	return &HouseHandler{editors: editors, logger: logger}
}

var houseRejections = []error{
	house.ErrOutOfBounds,
	house.ErrUnknownTag,
	house.ErrInvalidTool,
	house.ErrInvalidColor,
	house.ErrUnknownTemplate,
	house.ErrNoSnapshot,
	house.ErrBadShape,
	house.ErrInvalidTile,
}

type cellRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type selectRequest struct {
	Tool      string `json:"tool"`
	Room      string `json:"room_type"`
	Furniture string `json:"furniture_type"`
	Color     string `json:"color"`
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *HouseHandler) Page(w http.ResponseWriter, r *http.Request) {
	e := stateFor(h.editors, w, r)
	writeJSON(w, http.StatusOK, Ok(e.Render(r.Context())))
}

func (h *HouseHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	e := stateFor(h.editors, w, r)

	// Each field is optional; the first bad one aborts the rest.
	if req.Tool != "" {
		t, err := house.ParseTileType(req.Tool)
		if err == nil {
			err = e.SelectTool(t)
		}
		if err != nil {
			writeErr(w, err, houseRejections...)
			return
		}
	}
	if req.Room != "" {
		room, err := house.ParseRoomType(req.Room)
		if err == nil {
			err = e.SelectRoom(room)
		}
		if err != nil {
			writeErr(w, err, houseRejections...)
			return
		}
	}
	if req.Furniture != "" {
		f, err := house.ParseFurnitureType(req.Furniture)
		if err == nil {
			err = e.SelectFurniture(f)
		}
		if err != nil {
			writeErr(w, err, houseRejections...)
			return
		}
	}
	if req.Color != "" {
		if err := e.SelectColor(req.Color); err != nil {
			writeErr(w, err, houseRejections...)
			return
		}
	}
	writeJSON(w, http.StatusOK, Ok(e.Render(r.Context())))
}

func (h *HouseHandler) Place(w http.ResponseWriter, r *http.Request) {
	h.cell(w, r, (*house.Editor).Place)
}

func (h *HouseHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.cell(w, r, (*house.Editor).Remove)
}

func (h *HouseHandler) cell(w http.ResponseWriter, r *http.Request, op func(*house.Editor, int, int) error) {
	var req cellRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	e := stateFor(h.editors, w, r)
	if err := op(e, req.X, req.Y); err != nil {
		writeErr(w, err, houseRejections...)
		return
	}
	writeJSON(w, http.StatusOK, Ok(e.Render(r.Context())))
}

func (h *HouseHandler) Clear(w http.ResponseWriter, r *http.Request) {
	e := stateFor(h.editors, w, r)
	e.Clear()
	writeJSON(w, http.StatusOK, Notify("info", "Grid cleared!", e.Render(r.Context())))
}

func (h *HouseHandler) Template(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	e := stateFor(h.editors, w, r)
	if err := e.ApplyTemplate(req.Name); err != nil {
		writeErr(w, err, houseRejections...)
		return
	}
	writeJSON(w, http.StatusOK, Notify("success", fmt.Sprintf("%s template loaded!", capitalize(req.Name)), e.Render(r.Context())))
}

func (h *HouseHandler) Randomize(w http.ResponseWriter, r *http.Request) {
	e := stateFor(h.editors, w, r)
	e.Randomize()
	writeJSON(w, http.StatusOK, Notify("success", "Random house generated!", e.Render(r.Context())))
}

func (h *HouseHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	e := stateFor(h.editors, w, r)
	e.SetName(req.Name)
	writeJSON(w, http.StatusOK, Ok(e.Render(r.Context())))
}

func (h *HouseHandler) Save(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	_, e := h.editors.GetOrCreate(id)
	snap, err := e.Save(r.Context())
	if err != nil {
		h.logger.Error("house save failed", zap.String("session_id", id), zap.Error(err))
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Notify("success", fmt.Sprintf("Design %q saved!", snap.Name), e.Render(r.Context())))
}

func (h *HouseHandler) Load(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	_, e := h.editors.GetOrCreate(id)
	name, err := e.Load(r.Context())
	if err != nil {
		h.logger.Warn("house load rejected", zap.String("session_id", id), zap.Error(err))
		writeErr(w, err, houseRejections...)
		return
	}
	writeJSON(w, http.StatusOK, Notify("success", fmt.Sprintf("Design %q loaded!", name), e.Render(r.Context())))
}

// RegisterHouseRoutes 注册房屋编辑器路由
func (r *Router) RegisterHouseRoutes(h *HouseHandler) {
	r.addApp(AppInfo{Name: "house", Title: "House Builder", Path: "/house/"}, h.Page)
	r.post("/house/api/v1/select", h.Select)
	r.post("/house/api/v1/place", h.Place)
	r.post("/house/api/v1/remove", h.Remove)
	r.post("/house/api/v1/clear", h.Clear)
	r.post("/house/api/v1/template", h.Template)
	r.post("/house/api/v1/randomize", h.Randomize)
	r.post("/house/api/v1/name", h.Rename)
	r.post("/house/api/v1/save", h.Save)
	r.post("/house/api/v1/load", h.Load)
	r.Handle("/house/api/v1/session", deleteSession(h.editors, h.logger))
}
