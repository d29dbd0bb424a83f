package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"demohub/internal/car"
	"demohub/internal/export"
	"demohub/internal/session"

	"go.uber.org/zap"
)

// CarHandler 汽车定制器
type CarHandler struct {
	studios *session.Registry[*car.Studio]
	logger  *zap.Logger
}

func NewCarHandler(studios *session.Registry[*car.Studio], logger *zap.Logger) *CarHandler {
	return &CarHandler{studios: studios, logger: logger}
}

var carRejections = []error{
	car.ErrUnknownOption,
	car.ErrInvalidColor,
	car.ErrOverBudget,
	car.ErrDesignNotFound,
	car.ErrUnknownPreset,
}

func (h *CarHandler) render(w http.ResponseWriter, r *http.Request, s *car.Studio, typ, message string) {
	v, err := s.Render(r.Context())
	if err != nil {
		h.logger.Error("car render failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	if message == "" {
		writeJSON(w, http.StatusOK, Ok(v))
		return
	}
	writeJSON(w, http.StatusOK, Notify(typ, message, v))
}

func (h *CarHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, stateFor(h.studios, w, r), "", "")
}

func (h *CarHandler) SelectOption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		ID       string `json:"id"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	s := stateFor(h.studios, w, r)
	c := car.Category(req.Category)
	opt, err := s.Select(c, req.ID)
	if err != nil {
		writeErr(w, err, carRejections...)
		return
	}
	verb := "Changed to"
	if c == car.CategoryDecal || c == car.CategorySpoiler {
		verb = "Added"
	}
	h.render(w, r, s, "success", fmt.Sprintf("%s %s", verb, opt.Name))
}

func (h *CarHandler) SetColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Part  string `json:"part"`
		Color string `json:"color"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	s := stateFor(h.studios, w, r)
	if err := s.SetColor(req.Part, req.Color); err != nil {
		writeErr(w, err, carRejections...)
		return
	}
	h.render(w, r, s, "", "")
}

func (h *CarHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	s := stateFor(h.studios, w, r)
	s.SetName(req.Name)
	h.render(w, r, s, "", "")
}

func (h *CarHandler) Preset(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	s := stateFor(h.studios, w, r)
	if _, err := s.LoadPreset(req.Name); err != nil {
		writeErr(w, err, carRejections...)
		return
	}
	h.render(w, r, s, "success", fmt.Sprintf("Loaded preset %q", req.Name))
}

func (h *CarHandler) Randomize(w http.ResponseWriter, r *http.Request) {
	s := stateFor(h.studios, w, r)
	s.Randomize()
	h.render(w, r, s, "success", "Generated random design!")
}

func (h *CarHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s := stateFor(h.studios, w, r)
	s.Reset()
	h.render(w, r, s, "info", "Design reset to default")
}

func (h *CarHandler) Save(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	_, s := h.studios.GetOrCreate(id)
	saved, err := s.Save(r.Context())
	if err != nil {
		if errors.Is(err, car.ErrOverBudget) {
			h.logger.Warn("car save blocked", zap.String("session_id", id), zap.Error(err))
			writeJSON(w, http.StatusOK, Warn("Cannot save: Over budget!"))
			return
		}
		writeErr(w, err, carRejections...)
		return
	}
	h.render(w, r, s, "success", fmt.Sprintf("Saved %q successfully!", saved.Name))
}

func (h *CarHandler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	s := stateFor(h.studios, w, r)
	designs, err := s.Saved(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(designs))
}

// Design handles /car/api/v1/designs/{id} (DELETE) and /car/api/v1/designs/{id}/load (POST).
func (h *CarHandler) Design(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/car/api/v1/designs/")
	designID, action, _ := strings.Cut(rest, "/")
	if designID == "" {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	s := stateFor(h.studios, w, r)

	switch {
	case action == "load":
		if !allow(w, r, http.MethodPost) {
			return
		}
		d, err := s.LoadSaved(r.Context(), designID)
		if err != nil {
			writeErr(w, err, carRejections...)
			return
		}
		h.render(w, r, s, "success", fmt.Sprintf("Loaded %q", d.Name))
	case action == "":
		if !allow(w, r, http.MethodDelete) {
			return
		}
		if err := s.DeleteSaved(r.Context(), designID); err != nil {
			writeErr(w, err, carRejections...)
			return
		}
		h.render(w, r, s, "info", "Design deleted")
	default:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	}
}

func (h *CarHandler) Export(w http.ResponseWriter, r *http.Request) {
	s := stateFor(h.studios, w, r)
	designs, err := s.Saved(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if len(designs) == 0 {
		writeJSON(w, http.StatusOK, Warn("No designs to export!"))
		return
	}
	data, err := export.CarDesignsWorkbook(designs)
	if err != nil {
		h.logger.Error("car export failed", zap.Error(err))
		writeErr(w, err)
		return
	}
	writeFile(w, xlsxContentType, "car_designs.xlsx", data)
}

// RegisterCarRoutes 注册汽车定制器路由
func (r *Router) RegisterCarRoutes(h *CarHandler) {
	r.addApp(AppInfo{Name: "car", Title: "Car Customizer", Path: "/car/"}, h.Page)
	r.post("/car/api/v1/option", h.SelectOption)
	r.post("/car/api/v1/color", h.SetColor)
	r.post("/car/api/v1/name", h.Rename)
	r.post("/car/api/v1/preset", h.Preset)
	r.post("/car/api/v1/randomize", h.Randomize)
	r.post("/car/api/v1/reset", h.Reset)
	r.post("/car/api/v1/save", h.Save)
	r.get("/car/api/v1/designs", h.ListDesigns)
	r.Handle("/car/api/v1/designs/", h.Design)
	r.get("/car/api/v1/export", h.Export)
	r.Handle("/car/api/v1/session", deleteSession(h.studios, h.logger))
}
