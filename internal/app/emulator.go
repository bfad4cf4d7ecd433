// Package app provides emulator integration for the main application.
package app

import (
	"time"

	"gones/internal/emulator"
	"gones/internal/ppu"
)

// Emulator paces internal/emulator.Emulator to wall-clock frame timing for
// real-time playback; the CORE itself (emulator.Emulator) has no notion of
// wall time and will run a frame as fast as StepFrame is called.
type Emulator struct {
	core   *emulator.Emulator
	config *Config

	targetFrameTime time.Duration
	lastUpdateTime  time.Time
	accumulatedTime time.Duration

	frameCount uint64
	isRunning  bool
}

func regionFromConfig(c *Config) ppu.Region {
	if c != nil && c.Emulation.Region == "PAL" {
		return ppu.RegionPAL
	}
	return ppu.RegionNTSC
}

// NewEmulator wraps an already-constructed core emulator with frame pacing.
func NewEmulator(core *emulator.Emulator, config *Config) *Emulator {
	fps := 60.0
	if config != nil && config.Emulation.FrameRate > 0 {
		fps = config.Emulation.FrameRate
	}
	e := &Emulator{
		core:            core,
		config:          config,
		targetFrameTime: time.Duration(float64(time.Second) / fps),
	}
	e.Reset()
	return e
}

func (e *Emulator) Reset() {
	e.lastUpdateTime = time.Now()
	e.accumulatedTime = 0
	e.frameCount = 0
	if e.core != nil {
		e.core.Reset()
	}
}

func (e *Emulator) Start() { e.isRunning = true; e.lastUpdateTime = time.Now() }
func (e *Emulator) Stop()  { e.isRunning = false }

// Update accumulates elapsed wall time and runs as many whole frames as
// have become due, to keep emulation speed independent of the host's
// actual callback rate.
func (e *Emulator) Update() {
	if !e.isRunning || e.core == nil {
		return
	}
	now := time.Now()
	e.accumulatedTime += now.Sub(e.lastUpdateTime)
	e.lastUpdateTime = now

	for e.accumulatedTime >= e.targetFrameTime {
		e.core.StepFrame()
		e.frameCount++
		e.accumulatedTime -= e.targetFrameTime
	}
}

func (e *Emulator) FrameCount() uint64 { return e.frameCount }
