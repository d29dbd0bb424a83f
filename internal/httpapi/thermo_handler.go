package httpapi

import (
	"net/http"

	"demohub/internal/session"
	"demohub/internal/thermo"

	"go.uber.org/zap"
)

// ThermoHandler 温度换算
type ThermoHandler struct {
	panels *session.Registry[*thermo.Panel]
	logger *zap.Logger
}

func NewThermoHandler(panels *session.Registry[*thermo.Panel], logger *zap.Logger) *ThermoHandler {
	return &ThermoHandler{panels: panels, logger: logger}
}

func (h *ThermoHandler) Page(w http.ResponseWriter, r *http.Request) {
	p := stateFor(h.panels, w, r)
	writeJSON(w, http.StatusOK, Ok(p.Render(r.Context())))
}

func (h *ThermoHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
		From  string `json:"from"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	from, err := thermo.ParseUnit(req.From)
	if err != nil {
		writeErr(w, err, thermo.ErrUnknownUnit)
		return
	}
	p := stateFor(h.panels, w, r)
	if _, err := p.Submit(req.Value, from); err != nil {
		writeErr(w, err, thermo.ErrNotNumber)
		return
	}
	writeJSON(w, http.StatusOK, Ok(p.Render(r.Context())))
}

// RegisterThermoRoutes 注册温度换算路由
func (r *Router) RegisterThermoRoutes(h *ThermoHandler) {
	r.addApp(AppInfo{Name: "thermo", Title: "Temperature Converter", Path: "/thermo/"}, h.Page)
	r.post("/thermo/api/v1/convert", h.Convert)
	r.Handle("/thermo/api/v1/session", deleteSession(h.panels, h.logger))
}
