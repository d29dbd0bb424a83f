package mesh

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultScale    = 0.1
	DefaultMaxBytes = 50 << 20
	Placeholder     = "Upload an FBX or GLB file to visualize it here"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type SpotLight struct {
	Position  Vec3    `json:"position"`
	Intensity float64 `json:"intensity"`
	Angle     float64 `json:"angle"`
	Penumbra  float64 `json:"penumbra"`
}

// Model is the loaded mesh as the scene references it.
type Model struct {
	Handle   string    `json:"handle"`
	Source   string    `json:"source"`
	Format   Format    `json:"format"`
	Size     int       `json:"size"`
	Scale    float64   `json:"scale"`
	Position Vec3      `json:"position"`
	LoadedAt time.Time `json:"loaded_at"`
	glb      []byte
}

// Scene is what the viewer draws.
type Scene struct {
	Model        *Model    `json:"model,omitempty"`
	Text         string    `json:"text,omitempty"`
	SpotLight    SpotLight `json:"spot_light"`
	AmbientLight float64   `json:"ambient_light,omitempty"`
	AxesHelper   bool      `json:"axes_helper"`
	Grid         bool      `json:"grid"`
	Background   string    `json:"background"`
}

func emptyScene() Scene {
	return Scene{
		Text:       Placeholder,
		SpotLight:  SpotLight{Intensity: 0.7, Angle: 0.3, Penumbra: 0.2},
		AxesHelper: true,
		Grid:       true,
		Background: "#f0f0f0",
	}
}

func modelScene(m *Model) Scene {
	return Scene{
		Model: m,
		SpotLight: SpotLight{
			Position:  Vec3{X: 2, Y: 3, Z: 4},
			Intensity: 0.7,
			Angle:     0.3,
			Penumbra:  0.2,
		},
		AmbientLight: 0.3,
		AxesHelper:   true,
		Grid:         true,
		Background:   "#f0f0f0",
	}
}

// Options 查看器配置
type Options struct {
	MaxBytes int64
	Scale    float64
}

// Viewer is one session's scene. Uploads either replace the scene or leave it untouched.
type Viewer struct {
	mu        sync.Mutex
	scene     Scene
	converter Converter
	opts      Options
	now       func() time.Time
	logger    *zap.Logger
}

// NewViewer builds a viewer. converter may be nil, in which case FBX uploads fail with ErrNoConverter.
func NewViewer(converter Converter, opts Options, logger *zap.Logger) *Viewer {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	return &Viewer{
		scene:     emptyScene(),
		converter: converter,
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

// Upload loads a GLB directly or converts an FBX first. The returned string is
// the notification text for a successful load.
func (v *Viewer) Upload(ctx context.Context, name string, r io.Reader) (Scene, string, error) {
	format, err := ValidateUpload(name)
	if err != nil {
		v.logger.Warn("rejected model upload", zap.String("file_name", name), zap.Error(err))
		return Scene{}, "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, v.opts.MaxBytes+1))
	if err != nil {
		return Scene{}, "", fmt.Errorf("failed to read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return Scene{}, "", ErrEmptyUpload
	case int64(len(data)) > v.opts.MaxBytes:
		return Scene{}, "", fmt.Errorf("%w: %d bytes", ErrTooLarge, v.opts.MaxBytes)
	}

	var notice string
	glb := data
	switch format {
	case FormatFBX:
		if v.converter == nil {
			return Scene{}, "", ErrNoConverter
		}
		glb, err = v.converter.Convert(ctx, name, data)
		if err != nil {
			v.logger.Warn("FBX conversion failed", zap.String("file_name", name), zap.Error(err))
			return Scene{}, "", fmt.Errorf("error converting FBX to GLB: %w", err)
		}
		notice = "FBX file converted to GLB format"
	default:
		if err := CheckGLB(glb); err != nil {
			return Scene{}, "", fmt.Errorf("error processing file: %w", err)
		}
		notice = "GLB file loaded directly"
	}

	m := &Model{
		Handle:   uuid.NewString(),
		Source:   name,
		Format:   format,
		Size:     len(glb),
		Scale:    v.opts.Scale,
		LoadedAt: v.now(),
		glb:      glb,
	}

	v.mu.Lock()
	v.scene = modelScene(m)
	scene := v.scene
	v.mu.Unlock()

	v.logger.Info("model loaded",
		zap.String("file_name", name),
		zap.String("handle", m.Handle),
		zap.String("format", string(format)),
		zap.Int("size", m.Size),
	)
	return scene, notice, nil
}

func (v *Viewer) Scene() Scene {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scene
}

// ModelGLB returns the GLB bytes of the loaded model under handle.
func (v *Viewer) ModelGLB(handle string) (string, []byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	m := v.scene.Model
	if m == nil || m.Handle != handle {
		return "", nil, false
	}
	name := m.Source
	if m.Format == FormatFBX {
		name = glbName(name)
	}
	return name, m.glb, true
}

// Clear returns to the placeholder scene.
func (v *Viewer) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scene = emptyScene()
}

func (v *Viewer) Render(_ context.Context) Scene { return v.Scene() }

func (v *Viewer) Close() error { return nil }
