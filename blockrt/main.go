package main

import (
	"flag"
	"path/filepath"
	"runtime"

	"github.com/gekko3d/blockworld/blockrt/rt/app"
	"github.com/gekko3d/blockworld/blockrt/rt/core"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file; defaults are used when empty")
	debug := flag.Bool("debug", false, "Enable debug logging and per-second frame stats")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	cfg.Debug = cfg.Debug || *debug
	log := core.NewDefaultLogger("blockrt", cfg.Debug)

	baseDir := "."
	if *configPath != "" {
		baseDir = filepath.Dir(*configPath)
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application := app.NewApp(window, cfg, baseDir, log)
	if err := application.Init(); err != nil {
		panic(err)
	}
	defer application.Destroy()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		application.HandleCursor(xpos, ypos)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleKey(key, action)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleClick(button, action)
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}
