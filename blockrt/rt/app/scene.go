package app

import (
	"fmt"

	"github.com/gekko3d/blockworld/blockrt/rt/camera"
	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/editor"
	"github.com/gekko3d/blockworld/blockrt/rt/gpu"
	"github.com/gekko3d/blockworld/blockrt/rt/shadow"
	"github.com/gekko3d/blockworld/blockrt/rt/terrain"
	"github.com/gekko3d/blockworld/blockrt/rt/world"
	"github.com/go-gl/mathgl/mgl32"
)

// markerColor is the light marker sphere's flat color.
var markerColor = mgl32.Vec3{0.55, 0.27, 0.07}

// Scene is everything drawn each frame and the input that drives it. It
// only talks to the device through gpu.Backend.
type Scene struct {
	Ctx      *gpu.RenderContext
	World    *world.World
	Marker   *world.Marker
	Camera   *camera.Camera
	Shadow   *shadow.Pass
	Controls *editor.Controls
	Editor   *editor.Editor
	Profiler *Profiler

	grid editor.Grid
	cfg  core.Config
	log  core.Logger
}

// NewScene generates the world and sets up the cameras and the shadow pass.
func NewScene(cfg core.Config, backend gpu.Backend, aspect float32, log core.Logger) (*Scene, error) {
	log = core.OrNop(log)
	topts, err := terrain.OptionsFromConfig(cfg.World)
	if err != nil {
		return nil, err
	}
	heights, err := terrain.Generate(topts)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	w, err := world.New(heights, world.Options{
		CubeSize:  cfg.World.CubeSize,
		Padding:   topts.Padding(),
		BuildSize: cfg.World.BuildSize,
		Strata:    world.DefaultStrata(),
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}

	start := mgl32.Vec3(cfg.Camera.Start)
	cam, err := camera.New(
		camera.WithEye(start),
		camera.WithAt(start.Add(mgl32.Vec3{0, 0, -1})),
		camera.WithFOV(cfg.Camera.FOV),
		camera.WithAspect(aspect),
	)
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	light, err := shadow.NewLightCamera(cfg.Light)
	if err != nil {
		return nil, err
	}
	shadow.FitLight(light, w.AABBPoints())

	ctx := gpu.NewRenderContext(backend, log)
	ctx.SetCamera(cam)
	ctx.SetShading(cfg.Shadow.ShadingLevel)
	pass, err := shadow.NewPass(ctx, light, shadow.Options{
		MaxSize:      cfg.Shadow.MaxSize,
		Illumination: mgl32.Vec4(cfg.Light.Illumination),
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}

	s := &Scene{
		Ctx:      ctx,
		World:    w,
		Camera:   cam,
		Shadow:   pass,
		Controls: editor.NewControls(cam, cfg.Camera),
		Editor:   editor.NewEditor(world.Block(cfg.World.PlaceBlock)),
		Profiler: NewProfiler(),
		grid:     w,
		cfg:      cfg,
		log:      log,
	}
	if cfg.Light.Marker {
		s.Marker = world.NewMarker(mgl32.Vec3{0, 30, 0}, 1, markerColor, log)
	}
	return s, nil
}

func (s *Scene) drawables() shadow.Scene {
	if s.Marker == nil {
		return shadow.Scene{s.World}
	}
	return shadow.Scene{s.World, s.Marker}
}

// Update applies held input. Turning the view invalidates the shadow map.
func (s *Scene) Update() {
	defer s.Profiler.Scope("update")()
	if _, turned := s.Controls.Update(); turned {
		s.Shadow.Invalidate()
	}
}

// Look pans the view by pointer motion.
func (s *Scene) Look(dx, dy float64) {
	if s.Controls.Look(dx, dy) {
		s.Shadow.Invalidate()
	}
}

// Click edits the block in front of the camera. The shadow map is
// invalidated whenever the grid changed, even if the edit also failed.
func (s *Scene) Click(b editor.Button) error {
	changed, err := s.Editor.Click(s.grid, s.Camera, b)
	if changed {
		s.Shadow.Invalidate()
	}
	return err
}

func (s *Scene) Resize(width, height int) {
	if width > 0 && height > 0 {
		s.Camera.SetAspect(float32(width) / float32(height))
	}
}

// Frame refreshes the shadow map if needed and draws the main pass. The
// shadow scope is only timed on frames that redraw the map.
func (s *Scene) Frame() error {
	defer s.Profiler.EndFrame()
	if s.Shadow.Dirty() {
		stop := s.Profiler.Scope("shadow")
		_, err := s.Shadow.Refresh(shadow.Scene{s.World}, s.Camera)
		stop()
		if err != nil {
			return err
		}
	}

	if err := s.mainPass(); err != nil {
		return err
	}

	total, visible := s.World.Counts()
	uploads, bytes := s.World.Uploaded()
	s.Profiler.SetCount("blocks", total)
	s.Profiler.SetCount("visible", visible)
	s.Profiler.SetCount("instance uploads", uploads)
	s.Profiler.SetCount("instance KiB", int(bytes/1024))
	if s.cfg.Debug {
		s.Profiler.SetCount("in frustum", s.World.Cull(s.Camera.Frustum()))
	}
	return nil
}

func (s *Scene) mainPass() error {
	defer s.Profiler.Scope("main")()
	bounds := s.Camera.AABB()
	s.Ctx.SetBounds(bounds[0], bounds[1], true)
	if err := s.Ctx.Begin("main"); err != nil {
		return err
	}
	if err := s.drawables().Render(s.Ctx, false); err != nil {
		if endErr := s.Ctx.End(); endErr != nil {
			s.log.Warnf("main pass end after render error: %v", endErr)
		}
		return err
	}
	return s.Ctx.End()
}

// Release frees the GPU resources the scene owns.
func (s *Scene) Release() {
	s.World.Release()
	if s.Marker != nil {
		s.Marker.Release()
	}
	s.Shadow.Release()
}
