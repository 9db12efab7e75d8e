// Package app owns the window surface and the WebGPU device and drives a
// Scene from glfw input.
package app

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/editor"
	"github.com/gekko3d/blockworld/blockrt/rt/gpu"
	"github.com/gekko3d/blockworld/blockrt/rt/texture"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var skyColor = wgpu.Color{R: 0.53, G: 0.81, B: 0.92, A: 1}

// keyActions maps held keys to camera actions.
var keyActions = map[glfw.Key]editor.Action{
	glfw.KeyW:         editor.MoveForward,
	glfw.KeyS:         editor.MoveBack,
	glfw.KeyA:         editor.MoveLeft,
	glfw.KeyD:         editor.MoveRight,
	glfw.KeySpace:     editor.MoveUp,
	glfw.KeyLeftShift: editor.MoveDown,
	glfw.KeyQ:         editor.TurnLeft,
	glfw.KeyE:         editor.TurnRight,
}

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Backend *gpu.WGPUBackend
	Scene   *Scene

	cfg     core.Config
	baseDir string
	log     core.Logger

	MouseCaptured bool
	lastX, lastY  float64
	haveCursor    bool

	FrameCount int
	FPS        float64
	FPSTime    float64
	lastTime   float64
}

// NewApp prepares an App for window. Relative texture paths resolve
// against baseDir.
func NewApp(window *glfw.Window, cfg core.Config, baseDir string, log core.Logger) *App {
	return &App{Window: window, cfg: cfg, baseDir: baseDir, log: core.OrNop(log)}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w: %w", core.ErrResource, err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w: %w", core.ErrResource, err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return fmt.Errorf("%w: surface reports no formats", core.ErrResource)
	}
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	a.Backend, err = gpu.NewWGPUBackend(a.Device, a.Config.Format, gpu.WGPUOptions{
		Width:         width,
		Height:        height,
		MaxShadowSize: a.cfg.Shadow.MaxSize,
		ClearColor:    skyColor,
		Logger:        a.log,
	})
	if err != nil {
		return err
	}
	set, err := texture.Load(a.cfg.Textures, a.baseDir, a.log)
	if err != nil {
		return err
	}
	if err := a.Backend.SetTextureLayers(uint32(set.Size), set.Layers); err != nil {
		return err
	}

	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	a.Scene, err = NewScene(a.cfg, a.Backend, aspect, a.log)
	if err != nil {
		return err
	}
	a.lastTime = glfw.GetTime()
	a.log.Infof("device ready, surface %dx%d, shadow map %d", width, height, a.Scene.Shadow.Target().Size())
	return nil
}

func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.Config.Width = uint32(width)
	a.Config.Height = uint32(height)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	if err := a.Backend.Resize(width, height); err != nil {
		a.log.Errorf("resize: %v", err)
	}
	a.Scene.Resize(width, height)
}

func (a *App) Update() { a.Scene.Update() }

func (a *App) Render() {
	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.log.Errorf("acquire surface texture: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.log.Errorf("surface view: %v", err)
		return
	}
	defer view.Release()

	a.Backend.SetFrameView(view)
	err = a.Scene.Frame()
	a.Backend.SetFrameView(nil)
	if err != nil {
		a.log.Errorf("frame: %v", err)
		return
	}
	a.Surface.Present()

	now := glfw.GetTime()
	a.FrameCount++
	a.FPSTime += now - a.lastTime
	a.lastTime = now
	if a.FPSTime >= 1.0 {
		a.FPS = float64(a.FrameCount) / a.FPSTime
		a.FrameCount = 0
		a.FPSTime = 0
		if a.log.DebugEnabled() {
			a.log.Debugf("%.1f fps\n%s", a.FPS, a.Scene.Profiler.Stats())
		}
		a.Scene.Profiler.Reset()
	}
}

// HandleKey toggles capture on Tab, quits on Esc and tracks held movement keys.
func (a *App) HandleKey(key glfw.Key, action glfw.Action) {
	if action == glfw.Press {
		switch key {
		case glfw.KeyTab:
			a.MouseCaptured = !a.MouseCaptured
			if a.MouseCaptured {
				a.Window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
			} else {
				a.Window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			}
			a.haveCursor = false
			return
		case glfw.KeyEscape:
			a.Window.SetShouldClose(true)
			return
		}
	}
	act, ok := keyActions[key]
	if !ok {
		return
	}
	switch action {
	case glfw.Press:
		a.Scene.Controls.Press(act)
	case glfw.Release:
		a.Scene.Controls.Release(act)
	}
}

// HandleCursor pans the view by pointer motion while the cursor is captured.
func (a *App) HandleCursor(x, y float64) {
	if !a.MouseCaptured {
		return
	}
	if a.haveCursor {
		a.Scene.Look(x-a.lastX, y-a.lastY)
	}
	a.lastX, a.lastY, a.haveCursor = x, y, true
}

func (a *App) HandleClick(button glfw.MouseButton, action glfw.Action) {
	if action != glfw.Press {
		return
	}
	b := editor.Button(-1)
	switch button {
	case glfw.MouseButtonLeft:
		b = editor.ButtonLeft
	case glfw.MouseButtonRight:
		b = editor.ButtonRight
	}
	if err := a.Scene.Click(b); err != nil {
		a.log.Warnf("edit: %v", err)
	}
}

// Destroy releases the scene, then the device objects.
func (a *App) Destroy() {
	if a.Scene != nil {
		a.Scene.Release()
	}
	if a.Backend != nil {
		a.Backend.Release()
	}
	if a.Queue != nil {
		a.Queue.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}

func GetSurfaceDescriptor(w *glfw.Window) *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w)
}
