package httpapi

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"math/rand"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"demohub/internal/car"
	"demohub/internal/house"
	"demohub/internal/laptop"
	"demohub/internal/market"
	"demohub/internal/mesh"
	"demohub/internal/repository"
	"demohub/internal/search"
	"demohub/internal/session"
	"demohub/internal/store"
	"demohub/internal/thermo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSession = "test-session"

type testEnv struct {
	router *Router
	kv     *store.MemoryKV
	feeds  *session.Registry[*market.Feed]
}

func latestKey(id string) string { return "latest:" + id }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	rng := func() *rand.Rand { return rand.New(rand.NewSource(1)) }
	designs := repository.NewMemoryCarDesignsRepo()
	kv := store.NewMemoryKV()

	editors := session.NewRegistry("house", func(string) *house.Editor {
		return house.NewEditor(nil, rng(), logger)
	}, logger)
	studios := session.NewRegistry("car", func(id string) *car.Studio {
		return car.NewStudio(id, 30000, designs, rng(), logger)
	}, logger)
	feeds := session.NewRegistry("market", func(id string) *market.Feed {
		return market.NewFeed(market.Config{Interval: time.Hour}, rng(), logger, market.NewLatestSink(kv, latestKey(id), 0))
	}, logger)
	boxes := session.NewRegistry("search", func(string) *search.Box {
		return search.NewBox(search.DefaultProducts())
	}, logger)
	games := session.NewRegistry("laptop", func(string) *laptop.Game {
		return laptop.NewGame(laptop.DefaultTiming(), rng(), logger)
	}, logger)
	viewers := session.NewRegistry("viewer", func(string) *mesh.Viewer {
		return mesh.NewViewer(nil, mesh.Options{}, logger)
	}, logger)
	panels := session.NewRegistry("thermo", func(string) *thermo.Panel {
		return thermo.NewPanel()
	}, logger)

	r := NewRouter(logger)
	r.RegisterHouseRoutes(NewHouseHandler(editors, logger))
	r.RegisterCarRoutes(NewCarHandler(studios, logger))
	r.RegisterMarketRoutes(NewMarketHandler(ctx, feeds, kv, latestKey, logger))
	r.RegisterSearchRoutes(NewSearchHandler(boxes, logger))
	r.RegisterLaptopRoutes(NewLaptopHandler(ctx, games, logger))
	r.RegisterViewerRoutes(NewViewerHandler(viewers, 0, logger))
	r.RegisterThermoRoutes(NewThermoHandler(panels, logger))

	t.Cleanup(func() {
		cancel()
		_ = feeds.Close()
		_ = games.Close()
	})
	return &testEnv{router: r, kv: kv, feeds: feeds}
}

type decoded struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, decoded) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(SessionHeader, testSession)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var res decoded
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	}
	return w, res
}

func TestRouter_IndexAndHealth(t *testing.T) {
	env := newTestEnv(t)

	w, res := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ResultSuccess, res.Code)
	var apps []AppInfo
	require.NoError(t, json.Unmarshal(res.Result, &apps))
	assert.Len(t, apps, 7)
	assert.Equal(t, "house", apps[0].Name)

	w, _ = env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodGet, "/house/api/v1/place", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSession_MintedWhenMissing(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/thermo/", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	id := w.Header().Get(SessionHeader)
	assert.NotEmpty(t, id)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)

	// cookie alone identifies the session on the next request
	req = httptest.NewRequest(http.MethodGet, "/thermo/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(SessionHeader))
	assert.Empty(t, w.Result().Cookies())
}

func TestHouse_PlaceAndStats(t *testing.T) {
	env := newTestEnv(t)

	_, res := env.do(t, http.MethodPost, "/house/api/v1/place", cellRequest{X: 2, Y: 3})
	require.Equal(t, ResultSuccess, res.Code)

	_, res = env.do(t, http.MethodPost, "/house/api/v1/select", selectRequest{Tool: "door"})
	require.Equal(t, ResultSuccess, res.Code)
	_, res = env.do(t, http.MethodPost, "/house/api/v1/place", cellRequest{X: 2, Y: 4})
	require.Equal(t, ResultSuccess, res.Code)

	var v house.View
	require.NoError(t, json.Unmarshal(res.Result, &v))
	assert.Equal(t, 1, v.Stats.Walls)
	assert.Equal(t, 1, v.Stats.Doors)
	assert.Equal(t, "Tool: Door", v.Selection)

	_, res = env.do(t, http.MethodPost, "/house/api/v1/place", cellRequest{X: 20, Y: 0})
	assert.Equal(t, ResultError, res.Code)
	assert.Equal(t, "warning", res.Type)

	_, res = env.do(t, http.MethodPost, "/house/api/v1/load", nil)
	assert.Equal(t, "warning", res.Type)

	_, res = env.do(t, http.MethodPost, "/house/api/v1/save", nil)
	assert.Equal(t, `Design "My House" saved!`, res.Message)
	_, res = env.do(t, http.MethodPost, "/house/api/v1/clear", nil)
	assert.Equal(t, "Grid cleared!", res.Message)
	_, res = env.do(t, http.MethodPost, "/house/api/v1/load", nil)
	require.Equal(t, ResultSuccess, res.Code)
	require.NoError(t, json.Unmarshal(res.Result, &v))
	assert.Equal(t, 1, v.Stats.Walls)
}

func TestCar_SaveBlockedOverBudget(t *testing.T) {
	env := newTestEnv(t)

	_, res := env.do(t, http.MethodGet, "/car/api/v1/export", nil)
	assert.Equal(t, "No designs to export!", res.Message)

	_, res = env.do(t, http.MethodPost, "/car/api/v1/option", map[string]string{"category": "body", "id": "truck"})
	require.Equal(t, ResultSuccess, res.Code)

	_, res = env.do(t, http.MethodPost, "/car/api/v1/save", nil)
	assert.Equal(t, ResultError, res.Code)
	assert.Equal(t, "warning", res.Type)
	assert.Equal(t, "Cannot save: Over budget!", res.Message)

	_, res = env.do(t, http.MethodPost, "/car/api/v1/option", map[string]string{"category": "body", "id": "sedan"})
	require.Equal(t, ResultSuccess, res.Code)
	_, res = env.do(t, http.MethodPost, "/car/api/v1/save", nil)
	require.Equal(t, ResultSuccess, res.Code)

	_, res = env.do(t, http.MethodGet, "/car/api/v1/designs", nil)
	var designs []car.SavedDesign
	require.NoError(t, json.Unmarshal(res.Result, &designs))
	require.Len(t, designs, 1)

	w, _ := env.do(t, http.MethodGet, "/car/api/v1/export", nil)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	_, res = env.do(t, http.MethodDelete, "/car/api/v1/designs/"+designs[0].ID, nil)
	require.Equal(t, ResultSuccess, res.Code)
	_, res = env.do(t, http.MethodPost, "/car/api/v1/designs/"+designs[0].ID+"/load", nil)
	assert.Equal(t, "warning", res.Type)
}

func TestThermo_Convert(t *testing.T) {
	env := newTestEnv(t)

	_, res := env.do(t, http.MethodPost, "/thermo/api/v1/convert", map[string]string{"value": "abc", "from": "celsius"})
	assert.Equal(t, ResultError, res.Code)
	assert.Equal(t, "warning", res.Type)

	_, res = env.do(t, http.MethodPost, "/thermo/api/v1/convert", map[string]string{"value": "100", "from": "C"})
	require.Equal(t, ResultSuccess, res.Code)
	var v thermo.View
	require.NoError(t, json.Unmarshal(res.Result, &v))
	require.Len(t, v.Results, 3)
	assert.Equal(t, "212.00 °F", v.Results[1].Text)
	assert.Equal(t, "373.15 K", v.Results[2].Text)
}

func TestSearch_FilterAndHistory(t *testing.T) {
	env := newTestEnv(t)

	_, res := env.do(t, http.MethodGet, "/search/api/v1/search?q=kitchen", nil)
	require.Equal(t, ResultSuccess, res.Code)
	var v search.View
	require.NoError(t, json.Unmarshal(res.Result, &v))
	assert.Len(t, v.Results, 2)
	assert.Equal(t, "Showing 2 of 8 products", v.Counter)

	_, res = env.do(t, http.MethodGet, "/search/api/v1/history", nil)
	var hist []string
	require.NoError(t, json.Unmarshal(res.Result, &hist))
	assert.Equal(t, []string{"kitchen"}, hist)
}

func TestLaptop_LoginRequired(t *testing.T) {
	env := newTestEnv(t)

	_, res := env.do(t, http.MethodPost, "/laptop/api/v1/spin", nil)
	assert.Equal(t, "warning", res.Type)

	_, res = env.do(t, http.MethodPost, "/laptop/api/v1/login", map[string]string{"username": "ada"})
	assert.Equal(t, "warning", res.Type)

	_, res = env.do(t, http.MethodPost, "/laptop/api/v1/login", map[string]string{"username": "ada", "password": "pw"})
	require.Equal(t, ResultSuccess, res.Code)
	assert.Equal(t, "Welcome, ada!", res.Message)

	_, res = env.do(t, http.MethodPost, "/laptop/api/v1/spin", nil)
	assert.Equal(t, "+10 points!", res.Message)
	var v laptop.View
	require.NoError(t, json.Unmarshal(res.Result, &v))
	assert.Equal(t, 10, v.Score)
	assert.True(t, v.Spinning)
}

func TestMarket_LatestFromCache(t *testing.T) {
	env := newTestEnv(t)

	_, res := env.do(t, http.MethodGet, "/market/api/v1/latest", nil)
	assert.Equal(t, "warning", res.Type)

	q := market.Quote{Label: "12:00:00", BTC: 45100, ETH: 3010, Total: 48100}
	raw, err := json.Marshal(q)
	require.NoError(t, err)
	require.NoError(t, env.kv.Set(context.Background(), latestKey(testSession), string(raw), 0))

	_, res = env.do(t, http.MethodGet, "/market/api/v1/latest", nil)
	require.Equal(t, ResultSuccess, res.Code)
	var got market.Quote
	require.NoError(t, json.Unmarshal(res.Result, &got))
	assert.Equal(t, 45100.0, got.BTC)

	_, res = env.do(t, http.MethodPost, "/market/api/v1/stop", nil)
	require.Equal(t, ResultSuccess, res.Code)
	var v market.View
	require.NoError(t, json.Unmarshal(res.Result, &v))
	assert.False(t, v.Running)
}

func fakeGLB() []byte {
	b := make([]byte, 12)
	copy(b, "glTF")
	binary.LittleEndian.PutUint32(b[4:], 2)
	binary.LittleEndian.PutUint32(b[8:], 12)
	return b
}

func upload(t *testing.T, env *testEnv, name string, data []byte) decoded {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/viewer/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(SessionHeader, testSession)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var res decoded
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestViewer_UploadAndServe(t *testing.T) {
	env := newTestEnv(t)

	res := upload(t, env, "model.obj", []byte("v 0 0 0"))
	assert.Equal(t, "warning", res.Type)

	res = upload(t, env, "model.fbx", []byte("fbx"))
	assert.Equal(t, "error", res.Type)

	res = upload(t, env, "model.glb", fakeGLB())
	require.Equal(t, ResultSuccess, res.Code)
	assert.Equal(t, "GLB file loaded directly", res.Message)
	var scene mesh.Scene
	require.NoError(t, json.Unmarshal(res.Result, &scene))
	require.NotNil(t, scene.Model)

	w, _ := env.do(t, http.MethodGet, modelPathPrefix+scene.Model.Handle, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fakeGLB(), w.Body.Bytes())

	w, _ = env.do(t, http.MethodGet, modelPathPrefix+"missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSession_Delete(t *testing.T) {
	env := newTestEnv(t)

	_, res := env.do(t, http.MethodGet, "/market/", nil)
	require.Equal(t, ResultSuccess, res.Code)
	assert.Equal(t, 1, env.feeds.Len())

	_, res = env.do(t, http.MethodDelete, "/market/api/v1/session", nil)
	require.Equal(t, ResultSuccess, res.Code)
	assert.Equal(t, 0, env.feeds.Len())

	_, res = env.do(t, http.MethodDelete, "/market/api/v1/session", nil)
	assert.Equal(t, ResultError, res.Code)

	w, _ := env.do(t, http.MethodGet, "/market/api/v1/session", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMarket_AbandonedSessionsAreReaped(t *testing.T) {
	env := newTestEnv(t)

	var started []*market.Feed
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/market/", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		f, err := env.feeds.Get(w.Header().Get(SessionHeader))
		require.NoError(t, err)
		require.True(t, f.Running())
		started = append(started, f)
	}
	assert.Equal(t, 20, env.feeds.Len())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 20, env.feeds.Reap(time.Millisecond))
	assert.Zero(t, env.feeds.Len())
	for _, f := range started {
		assert.False(t, f.Running())
		// a request that raced the reaper must not revive the feed
		f.Start(context.Background())
		assert.False(t, f.Running())
	}
}

func TestMarket_StopThenStart(t *testing.T) {
	env := newTestEnv(t)

	_, res := env.do(t, http.MethodPost, "/market/api/v1/start", nil)
	require.Equal(t, ResultSuccess, res.Code)
	_, res = env.do(t, http.MethodPost, "/market/api/v1/stop", nil)
	require.Equal(t, ResultSuccess, res.Code)
	_, res = env.do(t, http.MethodPost, "/market/api/v1/start", nil)
	require.Equal(t, ResultSuccess, res.Code)

	var v market.View
	require.NoError(t, json.Unmarshal(res.Result, &v))
	assert.True(t, v.Running)
}

func TestViewer_ModelFilenameEscaped(t *testing.T) {
	env := newTestEnv(t)

	res := upload(t, env, `my "best" model.glb`, fakeGLB())
	require.Equal(t, ResultSuccess, res.Code)
	var scene mesh.Scene
	require.NoError(t, json.Unmarshal(res.Result, &scene))
	require.NotNil(t, scene.Model)

	w, _ := env.do(t, http.MethodGet, modelPathPrefix+scene.Model.Handle, nil)
	require.Equal(t, http.StatusOK, w.Code)
	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "inline", disposition)
	assert.Equal(t, `my "best" model.glb`, params["filename"])
}
