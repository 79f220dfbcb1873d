package provisioning

import (
	"fmt"
	"time"
)

// Step is one unit of provisioning work. Steps read and write shared state
// through the context and must be safe to describe before they run.
type Step interface {
	Name() string
	Run(*Context) error
}

// RunSteps executes steps sequentially, stopping at the first failure.
func RunSteps(ctx *Context, steps []Step) error {
	for i, step := range steps {
		start := time.Now()
		label := fmt.Sprintf("%s (%d/%d)", step.Name(), i+1, len(steps))

		ctx.Out.Printf("")
		ctx.Out.Printf("[%s] starting", label)

		if err := step.Run(ctx); err != nil {
			ctx.Out.Failf("%s failed: %v", step.Name(), err)
			return fmt.Errorf("%s: %w", step.Name(), err)
		}

		ctx.Out.Successf("%s completed in %v", step.Name(), time.Since(start).Round(time.Millisecond))
	}
	return nil
}
