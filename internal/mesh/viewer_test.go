package mesh

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeGLB(payload string) []byte {
	b := []byte{'g', 'l', 'T', 'F', 2, 0, 0, 0, 0, 0, 0, 0}
	return append(b, payload...)
}

type stubConverter struct {
	out   []byte
	err   error
	calls int
}

func (s *stubConverter) Convert(_ context.Context, _ string, _ []byte) ([]byte, error) {
	s.calls++
	return s.out, s.err
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"chair.glb", FormatGLB, false},
		{"CHAIR.GLB", FormatGLB, false},
		{"robot.Fbx", FormatFBX, false},
		{"model.obj", "", true},
		{"glb", "", true},
		{"archive.glb.zip", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateUpload(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedExtension)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestViewer_RejectedUploadKeepsScene(t *testing.T) {
	conv := &stubConverter{}
	v := NewViewer(conv, Options{}, zap.NewNop())
	before := v.Scene()
	assert.Equal(t, Placeholder, before.Text)

	_, _, err := v.Upload(context.Background(), "model.obj", bytes.NewReader([]byte("v 0 0 0")))
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
	assert.Equal(t, before, v.Scene())
	assert.Zero(t, conv.calls)
}

func TestViewer_GLBLoadedDirectly(t *testing.T) {
	v := NewViewer(nil, Options{}, zap.NewNop())

	scene, notice, err := v.Upload(context.Background(), "Chair.GLB", bytes.NewReader(fakeGLB("mesh")))
	require.NoError(t, err)
	assert.Equal(t, "GLB file loaded directly", notice)
	require.NotNil(t, scene.Model)
	assert.Equal(t, FormatGLB, scene.Model.Format)
	assert.Equal(t, 0.1, scene.Model.Scale)
	assert.Equal(t, Vec3{X: 2, Y: 3, Z: 4}, scene.SpotLight.Position)
	assert.Equal(t, 0.3, scene.AmbientLight)
	assert.True(t, scene.AxesHelper)
	assert.Empty(t, scene.Text)

	name, data, ok := v.ModelGLB(scene.Model.Handle)
	require.True(t, ok)
	assert.Equal(t, "Chair.GLB", name)
	assert.Equal(t, fakeGLB("mesh"), data)
	_, _, ok = v.ModelGLB("other")
	assert.False(t, ok)
}

func TestViewer_FailedConversionKeepsPriorScene(t *testing.T) {
	conv := &stubConverter{out: fakeGLB("converted")}
	v := NewViewer(conv, Options{}, zap.NewNop())

	first, notice, err := v.Upload(context.Background(), "robot.fbx", bytes.NewReader([]byte("fbx-bytes")))
	require.NoError(t, err)
	assert.Equal(t, "FBX file converted to GLB format", notice)
	name, _, _ := v.ModelGLB(first.Model.Handle)
	assert.Equal(t, "robot.glb", name)

	conv.err = errors.New("trimesh: unsupported fbx version")
	_, _, err = v.Upload(context.Background(), "broken.fbx", bytes.NewReader([]byte("???")))
	require.Error(t, err)
	assert.Equal(t, first, v.Scene())

	_, _, err = v.Upload(context.Background(), "bad.glb", bytes.NewReader([]byte("not a glb")))
	assert.ErrorIs(t, err, ErrInvalidGLB)
	assert.Equal(t, first, v.Scene())
}

func TestViewer_LimitsAndMissingConverter(t *testing.T) {
	v := NewViewer(nil, Options{MaxBytes: 16}, zap.NewNop())

	_, _, err := v.Upload(context.Background(), "robot.fbx", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, ErrNoConverter)

	_, _, err = v.Upload(context.Background(), "big.glb", bytes.NewReader(fakeGLB("0123456789")))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, _, err = v.Upload(context.Background(), "empty.glb", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyUpload)

	assert.Nil(t, v.Scene().Model)
}

func TestHTTPConverter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/convert" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Query().Get("filename") {
		case "robot.fbx":
			assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
			w.Header().Set("Content-Type", "model/gltf-binary")
			_, _ = w.Write(fakeGLB(string(body)))
		case "garbage.fbx":
			_, _ = w.Write([]byte("plain text"))
		default:
			http.Error(w, "cannot parse fbx", http.StatusUnprocessableEntity)
		}
	}))
	defer srv.Close()

	c := NewHTTPConverter(srv.URL, 2*time.Second, 0, zap.NewNop())

	out, err := c.Convert(context.Background(), "robot.fbx", []byte("fbx"))
	require.NoError(t, err)
	assert.Equal(t, fakeGLB("fbx"), out)

	_, err = c.Convert(context.Background(), "garbage.fbx", []byte("fbx"))
	assert.ErrorIs(t, err, ErrInvalidGLB)

	_, err = c.Convert(context.Background(), "broken.fbx", []byte("fbx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestCheckGLB(t *testing.T) {
	assert.NoError(t, CheckGLB(fakeGLB("")))
	assert.ErrorIs(t, CheckGLB([]byte("glTF")), ErrInvalidGLB)

	v1 := fakeGLB("")
	v1[4] = 1
	assert.ErrorIs(t, CheckGLB(v1), ErrInvalidGLB)
}
