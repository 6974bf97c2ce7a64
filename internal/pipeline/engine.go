package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"answerhub/internal/telemetry"
)

// Stage is one step of a pipeline. A stage reads and mutates the run's
// State; returning an error aborts the remaining stages.
type Stage struct {
	Name string
	Run  func(ctx context.Context, st *State) error
}

// Pipeline executes its stages in order over a single State.
type Pipeline struct {
	Name   string
	stages []Stage
	logger *log.Logger
	tel    *telemetry.Telemetry
}

func NewPipeline(name string, tel *telemetry.Telemetry, stages ...Stage) *Pipeline {
	return &Pipeline{
		Name:   name,
		stages: stages,
		logger: log.New(log.Writer(), fmt.Sprintf("[PIPELINE:%s] ", name), log.LstdFlags),
		tel:    tel,
	}
}

// Run drives the stages sequentially. Stage errors are terminal; degraded
// capability calls are handled inside stages and never surface here.
func (p *Pipeline) Run(ctx context.Context, st *State) error {
	start := time.Now()
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			p.tel.PipelineRun(p.Name, "canceled", time.Since(start))
			return err
		}
		t0 := time.Now()
		if err := stage.Run(ctx, st); err != nil {
			p.tel.StageFailure(p.Name, stage.Name)
			p.tel.PipelineRun(p.Name, "error", time.Since(start))
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		p.tel.Stage(p.Name, stage.Name, time.Since(t0))
		p.logger.Printf("stage %s done in %s", stage.Name, time.Since(t0).Round(time.Millisecond))
	}
	p.tel.PipelineRun(p.Name, "ok", time.Since(start))
	return nil
}

// Stages exposes the stage names in execution order.
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Name
	}
	return out
}
