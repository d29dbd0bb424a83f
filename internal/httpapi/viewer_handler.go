package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"demohub/internal/mesh"
	"demohub/internal/session"

	"go.uber.org/zap"
)

const modelPathPrefix = "/viewer/api/v1/model/"

// ViewerHandler 3D 模型查看器
type ViewerHandler struct {
	viewers  *session.Registry[*mesh.Viewer]
	maxBytes int64
	logger   *zap.Logger
}

func NewViewerHandler(viewers *session.Registry[*mesh.Viewer], maxBytes int64, logger *zap.Logger) *ViewerHandler {
	if maxBytes <= 0 {
		maxBytes = mesh.DefaultMaxBytes
	}
	return &ViewerHandler{viewers: viewers, maxBytes: maxBytes, logger: logger}
}

var viewerRejections = []error{
	mesh.ErrUnsupportedExtension,
	mesh.ErrEmptyUpload,
	mesh.ErrTooLarge,
	mesh.ErrInvalidGLB,
}

func (h *ViewerHandler) Page(w http.ResponseWriter, r *http.Request) {
	v := stateFor(h.viewers, w, r)
	writeJSON(w, http.StatusOK, Ok(v.Render(r.Context())))
}

// Upload takes a multipart form with the model in the "file" field.
func (h *ViewerHandler) Upload(w http.ResponseWriter, r *http.Request) {
	v := stateFor(h.viewers, w, r)

	// multipart framing needs some headroom above the file limit
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusOK, Warn(mesh.ErrTooLarge.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Fail("file field is required"))
		return
	}
	defer file.Close()

	scene, notice, err := v.Upload(r.Context(), hdr.Filename, file)
	if err != nil {
		if errors.Is(err, mesh.ErrNoConverter) {
			h.logger.Error("FBX upload without converter", zap.String("file_name", hdr.Filename))
		}
		writeErr(w, err, viewerRejections...)
		return
	}
	writeJSON(w, http.StatusOK, Notify("success", notice, scene))
}

// Model streams the GLB of the loaded model: GET /viewer/api/v1/model/{handle}
func (h *ViewerHandler) Model(w http.ResponseWriter, r *http.Request) {
	handle := strings.TrimPrefix(r.URL.Path, modelPathPrefix)
	if handle == "" || strings.Contains(handle, "/") {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	v := stateFor(h.viewers, w, r)
	name, data, ok := v.ModelGLB(handle)
	if !ok {
		writeJSON(w, http.StatusNotFound, Fail("model not found"))
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ViewerHandler) Clear(w http.ResponseWriter, r *http.Request) {
	v := stateFor(h.viewers, w, r)
	v.Clear()
	writeJSON(w, http.StatusOK, Ok(v.Render(r.Context())))
}

// RegisterViewerRoutes 注册模型查看器路由
func (r *Router) RegisterViewerRoutes(h *ViewerHandler) {
	r.addApp(AppInfo{Name: "viewer", Title: "3D Model Viewer", Path: "/viewer/"}, h.Page)
	r.post("/viewer/api/v1/upload", h.Upload)
	r.get(modelPathPrefix, h.Model)
	r.post("/viewer/api/v1/clear", h.Clear)
	r.Handle("/viewer/api/v1/session", deleteSession(h.viewers, h.logger))
}
