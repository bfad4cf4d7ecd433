// Package app implements the main NES emulator application with GUI support.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gones/internal/cartridge"
	"gones/internal/emulator"
	"gones/internal/graphics"
	"gones/internal/input"
	"gones/internal/ppu"

	"github.com/golang/glog"
)

// Application represents the main NES emulator application
type Application struct {
	core *emulator.Emulator

	// Graphics backend
	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	// Application state
	config   *Config
	emulator *Emulator
	states   *StateManager

	// Control flags
	running     bool
	paused      bool
	showMenu    bool
	initialized bool
	headless    bool

	// FPS tracking
	frameCount          uint64
	startTime           time.Time
	lastFPSTime         time.Time
	frameCountAtLastFPS uint64
	currentFPS          float64
	averageFPS          float64

	// ROM management
	romPath   string
	cartridge *cartridge.Cartridge

	// ESC key confirmation tracking
	lastESCTime time.Time

	// Input state caching to prevent redundant updates
	lastController1State  [8]bool
	lastController2State  [8]bool
	inputStateInitialized bool
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

// NewApplication creates a new NES emulator application
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates a new NES emulator application with optional headless mode
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	app := &Application{
		config:      NewConfig(),
		running:     false,
		paused:      false,
		showMenu:    false,
		initialized: false,
		headless:    headless,
		startTime:   time.Now(),
		lastFPSTime: time.Now(),
	}

	if configPath != "" {
		if err := app.config.LoadFromFile(configPath); err != nil {
			glog.Warningf("could not load config from %s, using defaults: %v", configPath, err)
		}
	}

	if err := app.initializeComponents(headless); err != nil {
		return nil, &ApplicationError{
			Component: "initialization",
			Operation: "component setup",
			Err:       err,
		}
	}

	return app, nil
}

// initializeComponents initializes graphics and application-level state.
// Core emulation (CPU/PPU/APU/cartridge) is deliberately NOT constructed
// here: gones/internal/emulator.New requires an already-loaded cartridge,
// so it's built lazily in LoadROM instead of standing up a placeholder bus
// the way the teacher's no-arg bus.New() did.
func (app *Application) initializeComponents(headless bool) error {
	if err := app.initializeGraphicsBackend(headless); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %v", err)
	}

	app.states = NewStateManager(app.config.Paths.SaveStates)

	app.initialized = true
	return nil
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend(headless bool) error {
	var backendType graphics.BackendType
	if headless {
		backendType = graphics.BackendHeadless
	} else {
		switch app.config.Video.Backend {
		case "ebitengine":
			backendType = graphics.BackendEbitengine
		case "headless":
			backendType = graphics.BackendHeadless
		case "terminal":
			backendType = graphics.BackendTerminal
		default:
			backendType = graphics.BackendEbitengine
		}
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %v", err)
	}

	graphicsConfig := graphics.Config{
		WindowTitle:  "gones - Go NES Emulator",
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		AspectRatio:  app.config.Video.AspectRatio,
		Headless:     headless,
		Debug:        app.config.Debug.EnableLogging,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		if backendType == graphics.BackendEbitengine {
			glog.Warningf("ebitengine backend failed (%v), falling back to headless mode", err)
			app.graphicsBackend, err = graphics.CreateBackend(graphics.BackendHeadless)
			if err != nil {
				return fmt.Errorf("failed to create fallback headless backend: %v", err)
			}
			graphicsConfig.Headless = true
			if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
				return fmt.Errorf("failed to initialize fallback headless backend: %v", err)
			}
		} else {
			return fmt.Errorf("failed to initialize graphics backend: %v", err)
		}
	}

	if !headless && !app.graphicsBackend.IsHeadless() {
		app.window, err = app.graphicsBackend.CreateWindow(
			graphicsConfig.WindowTitle,
			graphicsConfig.WindowWidth,
			graphicsConfig.WindowHeight,
		)
		if err != nil {
			return fmt.Errorf("failed to create window: %v", err)
		}
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness,
		app.config.Video.Contrast,
		app.config.Video.Saturation,
	)

	return nil
}

// LoadROM loads a ROM file, builds a fresh core emulator around it, and
// starts playback.
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return &ApplicationError{
			Component: "cartridge",
			Operation: "load ROM",
			Err:       err,
		}
	}

	if app.config.Emulation.MapperOverride >= 0 && int(cart.MapperID()) != app.config.Emulation.MapperOverride {
		glog.Warningf("mapper_override %d configured but header mapper %d is used; override is not applied",
			app.config.Emulation.MapperOverride, cart.MapperID())
	}

	app.cartridge = cart
	app.romPath = romPath
	app.core = emulator.New(cart, regionFromConfig(app.config))
	app.emulator = NewEmulator(app.core, app.config)
	app.inputStateInitialized = false

	if app.window != nil {
		romName := filepath.Base(romPath)
		app.window.SetTitle(fmt.Sprintf("gones - %s", romName))
	}

	app.emulator.Start()

	return nil
}

// Run starts the main application loop
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true
	app.startTime = time.Now()
	app.lastFPSTime = time.Now()

	if app.config.Debug.EnableLogging {
		glog.Infof("starting emulator with %s backend", app.graphicsBackend.GetName())
	}

	if app.graphicsBackend.GetName() == "Ebitengine" && app.window != nil {
		if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
			ebitengineWindow.SetEmulatorUpdateFunc(func() error {
				if err := app.processInput(); err != nil && app.config.Debug.EnableLogging {
					glog.Errorf("input processing error: %v", err)
				}
				app.updateEmulator()
				if err := app.render(); err != nil {
					return err
				}
				app.updateFPS()

				if app.window != nil && app.window.ShouldClose() {
					app.Stop()
				}
				return nil
			})
			return ebitengineWindow.Run()
		}
	}

	for app.running {
		if err := app.processInput(); err != nil && app.config.Debug.EnableLogging {
			glog.Errorf("input processing error: %v", err)
		}
		app.updateEmulator()
		if err := app.render(); err != nil && app.config.Debug.EnableLogging {
			glog.Errorf("render error: %v", err)
		}
		app.updateFPS()

		if app.window != nil && app.window.ShouldClose() {
			app.Stop()
		}

		time.Sleep(16 * time.Millisecond) // ~60 FPS
	}

	if app.config.Debug.EnableLogging {
		glog.Info("emulator main loop ended")
	}
	return nil
}

// updateEmulator advances the core emulator by whatever whole frames are
// due for the elapsed wall time, unless paused or no ROM is loaded.
func (app *Application) updateEmulator() {
	if !app.paused && app.cartridge != nil {
		app.emulator.Update()
	}
}

// updateFPS tracks a simple rolling frames-per-second figure.
func (app *Application) updateFPS() {
	app.frameCount++
	now := time.Now()
	if now.Sub(app.lastFPSTime) >= time.Second {
		elapsed := now.Sub(app.lastFPSTime).Seconds()
		app.currentFPS = float64(app.frameCount-app.frameCountAtLastFPS) / elapsed
		if total := now.Sub(app.startTime).Seconds(); total > 0 {
			app.averageFPS = float64(app.frameCount) / total
		}
		app.lastFPSTime = now
		app.frameCountAtLastFPS = app.frameCount
	}
}

// processInput processes input events from the graphics backend
func (app *Application) processInput() error {
	if app.window == nil {
		return nil
	}

	events := app.window.PollEvents()
	if len(events) == 0 {
		return nil
	}

	var controller1Changed, controller2Changed bool
	controller1Buttons := app.lastController1State
	controller2Buttons := app.lastController2State

	if !app.inputStateInitialized && app.core != nil && app.cartridge != nil {
		in := app.core.Input
		for i, b := range []input.Button{input.A, input.B, input.Select, input.Start, input.Up, input.Down, input.Left, input.Right} {
			app.lastController1State[i] = in.Controller1.IsPressed(b)
			app.lastController2State[i] = in.Controller2.IsPressed(b)
		}
		controller1Buttons = app.lastController1State
		controller2Buttons = app.lastController2State
		app.inputStateInitialized = true
	}

	for _, event := range events {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()
			return nil

		case graphics.InputEventTypeButton:
			if app.handleSpecialInput(event) {
				continue
			}
			if app.cartridge == nil {
				continue
			}
			if is2PButton(event.Button) {
				if idx := get2PButtonIndex(event.Button); idx >= 0 {
					controller2Buttons[idx] = event.Pressed
					controller2Changed = true
				}
				continue
			}
			if idx := buttonIndex(graphicsButtonToInputButton(event.Button)); idx >= 0 {
				controller1Buttons[idx] = event.Pressed
				controller1Changed = true
			}

		case graphics.InputEventTypeKey:
			if !app.handleSpecialInput(event) {
				app.handleKeyInput(event)
			}
		}
	}

	if controller1Changed && app.core != nil {
		app.core.Input.SetButtons1(controller1Buttons)
		app.lastController1State = controller1Buttons
	}
	if controller2Changed && app.core != nil {
		app.core.Input.SetButtons2(controller2Buttons)
		app.lastController2State = controller2Buttons
	}

	return nil
}

// buttonIndex maps an input.Button to its position in the NES button array
// (A, B, Select, Start, Up, Down, Left, Right), or -1 if unrecognized.
func buttonIndex(b input.Button) int {
	switch b {
	case input.A:
		return 0
	case input.B:
		return 1
	case input.Select:
		return 2
	case input.Start:
		return 3
	case input.Up:
		return 4
	case input.Down:
		return 5
	case input.Left:
		return 6
	case input.Right:
		return 7
	default:
		return -1
	}
}

// handleSpecialInput handles special input combinations (quit confirm, save states)
func (app *Application) handleSpecialInput(event graphics.InputEvent) bool {
	if !event.Pressed {
		return false
	}

	if event.Type == graphics.InputEventTypeKey && event.Key == graphics.KeyEscape {
		now := time.Now()
		if !app.lastESCTime.IsZero() && now.Sub(app.lastESCTime) < 3*time.Second {
			app.Stop()
			return true
		}
		app.lastESCTime = now
		return true
	}

	if event.Type == graphics.InputEventTypeKey && event.Key != graphics.KeyEscape {
		app.lastESCTime = time.Time{}
	}

	if event.Type == graphics.InputEventTypeKey {
		switch event.Key {
		case graphics.KeyF1, graphics.KeyF2, graphics.KeyF3, graphics.KeyF4, graphics.KeyF5,
			graphics.KeyF6, graphics.KeyF7, graphics.KeyF8, graphics.KeyF9, graphics.KeyF10:
			slot := int(event.Key - graphics.KeyF1)
			if event.Modifiers&graphics.ModifierShift != 0 {
				if err := app.LoadState(slot); err != nil {
					glog.Errorf("failed to load state %d: %v", slot, err)
				}
			} else {
				if err := app.SaveState(slot); err != nil {
					glog.Errorf("failed to save state %d: %v", slot, err)
				}
			}
			return true
		}
	}

	return false
}

// handleKeyInput handles key input events not covered by handleSpecialInput
func (app *Application) handleKeyInput(event graphics.InputEvent) bool {
	return false
}

// graphicsButtonToInputButton converts graphics.Button to input.Button
func graphicsButtonToInputButton(gButton graphics.Button) input.Button {
	switch gButton {
	case graphics.ButtonA:
		return input.A
	case graphics.ButtonB:
		return input.B
	case graphics.ButtonSelect:
		return input.Select
	case graphics.ButtonStart:
		return input.Start
	case graphics.ButtonUp:
		return input.Up
	case graphics.ButtonDown:
		return input.Down
	case graphics.ButtonLeft:
		return input.Left
	case graphics.ButtonRight:
		return input.Right
	default:
		return input.A
	}
}

// is2PButton checks if the button belongs to 2P controller
func is2PButton(gButton graphics.Button) bool {
	switch gButton {
	case graphics.Button2A, graphics.Button2B, graphics.Button2Select, graphics.Button2Start,
		graphics.Button2Up, graphics.Button2Down, graphics.Button2Left, graphics.Button2Right:
		return true
	default:
		return false
	}
}

// get2PButtonIndex returns the array index for 2P controller buttons
func get2PButtonIndex(gButton graphics.Button) int {
	switch gButton {
	case graphics.Button2A:
		return 0
	case graphics.Button2B:
		return 1
	case graphics.Button2Select:
		return 2
	case graphics.Button2Start:
		return 3
	case graphics.Button2Up:
		return 4
	case graphics.Button2Down:
		return 5
	case graphics.Button2Left:
		return 6
	case graphics.Button2Right:
		return 7
	default:
		return -1
	}
}

// SetControllerButtons sets all button states for one controller at once
func (app *Application) SetControllerButtons(controller int, buttons [8]bool) {
	if app.core == nil {
		return
	}
	if controller == 0 {
		app.core.Input.SetButtons1(buttons)
	} else {
		app.core.Input.SetButtons2(buttons)
	}
}

// Core returns the underlying core emulator for direct access (testing,
// advanced tooling).
func (app *Application) Core() *emulator.Emulator {
	return app.core
}

// render converts the PPU's palette-index framebuffer to RGB32 and hands it
// to the graphics backend.
func (app *Application) render() error {
	if app.window == nil {
		return nil
	}

	if app.cartridge != nil && app.core != nil {
		var frameBuffer [256 * 240]uint32
		for i, paletteIdx := range app.core.PPU.Framebuffer {
			c := ppu.Palette[paletteIdx&0x3F]
			frameBuffer[i] = uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
		}

		frameSlice := app.videoProcessor.ProcessFrame(frameBuffer[:])
		copy(frameBuffer[:], frameSlice)

		if err := app.window.RenderFrame(frameBuffer); err != nil {
			return fmt.Errorf("failed to render NES frame: %v", err)
		}
	}

	app.window.SwapBuffers()
	return nil
}

// Stop stops the application
func (app *Application) Stop() { app.running = false }

// Pause pauses the emulator
func (app *Application) Pause() { app.paused = true }

// Resume resumes the emulator
func (app *Application) Resume() { app.paused = false }

// TogglePause toggles pause state
func (app *Application) TogglePause() { app.paused = !app.paused }

// ShowMenu shows the menu
func (app *Application) ShowMenu() {
	app.showMenu = true
	app.paused = true
}

// HideMenu hides the menu
func (app *Application) HideMenu() {
	app.showMenu = false
	app.paused = false
}

// ToggleMenu toggles menu visibility
func (app *Application) ToggleMenu() {
	if app.showMenu {
		app.HideMenu()
	} else {
		app.ShowMenu()
	}
}

// SaveState saves the current emulator state
func (app *Application) SaveState(slot int) error {
	if app.cartridge == nil {
		return errors.New("no ROM loaded")
	}
	return app.states.SaveState(app.core, slot, app.romPath)
}

// LoadState loads a saved emulator state
func (app *Application) LoadState(slot int) error {
	if app.cartridge == nil {
		return errors.New("no ROM loaded")
	}
	return app.states.LoadState(app.core, slot, app.romPath)
}

// Reset resets the emulator
func (app *Application) Reset() {
	if app.core != nil {
		app.core.Reset()
	}
}

// IsRunning returns whether the application is running
func (app *Application) IsRunning() bool { return app.running }

// IsPaused returns whether the emulator is paused
func (app *Application) IsPaused() bool { return app.paused }

// IsMenuVisible returns whether the menu is visible
func (app *Application) IsMenuVisible() bool { return app.showMenu }

// GetFPS returns the current FPS
func (app *Application) GetFPS() float64 { return app.currentFPS }

// GetFrameCount returns the total frame count
func (app *Application) GetFrameCount() uint64 { return app.frameCount }

// GetUptime returns the application uptime
func (app *Application) GetUptime() time.Duration { return time.Since(app.startTime) }

// GetROMPath returns the currently loaded ROM path
func (app *Application) GetROMPath() string { return app.romPath }

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config { return app.config }

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	var lastErr error

	if app.states != nil {
		if err := app.states.Cleanup(); err != nil {
			lastErr = err
			glog.Errorf("state manager cleanup error: %v", err)
		}
	}

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
			glog.Errorf("window cleanup error: %v", err)
		}
	}

	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
			glog.Errorf("graphics backend cleanup error: %v", err)
		}
	}

	app.initialized = false
	return lastErr
}
