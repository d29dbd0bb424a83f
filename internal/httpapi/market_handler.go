package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"demohub/internal/export"
	"demohub/internal/market"
	"demohub/internal/session"
	"demohub/internal/store"

	"go.uber.org/zap"
)

// MarketHandler 加密货币行情面板
type MarketHandler struct {
	feeds     *session.Registry[*market.Feed]
	kv        store.KV
	latestKey func(sessionID string) string
	// base outlives requests; feeds run under it until their session is closed.
	base   context.Context
	logger *zap.Logger
}

func NewMarketHandler(base context.Context, feeds *session.Registry[*market.Feed], kv store.KV, latestKey func(string) string, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{feeds: feeds, kv: kv, latestKey: latestKey, base: base, logger: logger}
}

// Page renders the dashboard and starts the feed on first visit.
func (h *MarketHandler) Page(w http.ResponseWriter, r *http.Request) {
	f := stateFor(h.feeds, w, r)
	f.Start(h.base)
	writeJSON(w, http.StatusOK, Ok(f.Render(r.Context())))
}

func (h *MarketHandler) Start(w http.ResponseWriter, r *http.Request) {
	f := stateFor(h.feeds, w, r)
	f.Start(h.base)
	writeJSON(w, http.StatusOK, Notify("info", "Price feed started", f.Render(r.Context())))
}

func (h *MarketHandler) Stop(w http.ResponseWriter, r *http.Request) {
	f := stateFor(h.feeds, w, r)
	f.Stop()
	writeJSON(w, http.StatusOK, Notify("info", "Price feed stopped", f.Render(r.Context())))
}

func (h *MarketHandler) Charts(w http.ResponseWriter, r *http.Request) {
	f := stateFor(h.feeds, w, r)
	writeJSON(w, http.StatusOK, Ok(f.Charts()))
}

// Latest serves the cached newest quote of the caller's feed.
func (h *MarketHandler) Latest(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	raw, err := h.kv.Get(r.Context(), h.latestKey(id))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			writeJSON(w, http.StatusOK, Warn("no price data yet"))
			return
		}
		h.logger.Error("latest quote read failed", zap.String("session_id", id), zap.Error(err))
		writeErr(w, err)
		return
	}
	var q market.Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(q))
}

func (h *MarketHandler) Export(w http.ResponseWriter, r *http.Request) {
	f := stateFor(h.feeds, w, r)
	btc, eth := f.History()
	data, err := export.PriceHistoryWorkbook(btc, eth)
	if err != nil {
		h.logger.Error("price history export failed", zap.Error(err))
		writeErr(w, err)
		return
	}
	writeFile(w, xlsxContentType, "price_history.xlsx", data)
}

// RegisterMarketRoutes 注册行情面板路由
func (r *Router) RegisterMarketRoutes(h *MarketHandler) {
	r.addApp(AppInfo{Name: "market", Title: "Crypto Trading Platform", Path: "/market/"}, h.Page)
	r.post("/market/api/v1/start", h.Start)
	r.post("/market/api/v1/stop", h.Stop)
	r.get("/market/api/v1/charts", h.Charts)
	r.get("/market/api/v1/latest", h.Latest)
	r.get("/market/api/v1/export", h.Export)
	r.Handle("/market/api/v1/session", deleteSession(h.feeds, h.logger))
}
