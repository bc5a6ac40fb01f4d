// Package j1939tel decodes SAE J1939 CAN bus traffic into
// engineering-unit values and moves it through a staged
// telemetry pipeline.
package j1939tel

import (
	"context"
	"sync"
)

// Stage is a single step of a [Pipeline].
type Stage interface {
	Init(ctx context.Context) error
	Run(ctx context.Context)
	Stop()
}

// Pipeline runs a list of stages concurrently.
// Stages are connected by the caller through connectors.
type Pipeline struct {
	stages []Stage

	wg        *sync.WaitGroup
	isRunning bool
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		stages: []Stage{},

		wg:        &sync.WaitGroup{},
		isRunning: false,
	}
}

// AddStage appends a stage to the pipeline.
// It is a no-op once the pipeline is running.
func (p *Pipeline) AddStage(stage Stage) {
	if p.isRunning {
		return
	}

	p.stages = append(p.stages, stage)
}

// Init initialises all the stages in order.
func (p *Pipeline) Init(ctx context.Context) error {
	for _, stage := range p.stages {
		if err := stage.Init(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Run starts all the stages, each in its own goroutine.
func (p *Pipeline) Run(ctx context.Context) {
	p.isRunning = true

	p.wg.Add(len(p.stages))

	for _, stage := range p.stages {
		stage := stage
		go func() {
			stage.Run(ctx)
			p.wg.Done()
		}()
	}
}

// Stop stops all the stages and waits for them to finish.
func (p *Pipeline) Stop() {
	for _, stage := range p.stages {
		stage.Stop()
	}

	p.wg.Wait()
}
