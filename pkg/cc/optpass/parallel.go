package optpass

import (
	"runtime"
	"sync"

	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
)

// RunParallel applies the pipeline to every function body in mod
// concurrently, bounded by numWorkers (0 selects runtime.NumCPU()).
// Functions are independent units of optimization — no pass reaches
// across function boundaries — so distributing them across a worker
// pool is safe and, for large translation units, the only way the
// pipeline keeps up.
func (p *Pipeline) RunParallel(mod *irmodule.Module, numWorkers int) (*Stats, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	functions := mod.Functions()
	stats := NewStats()
	ch := make(chan int, len(functions))
	for i := range functions {
		ch <- i
	}
	close(ch)

	var wg sync.WaitGroup
	errs := make([]error, len(functions))
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				fn := functions[i]
				for _, pass := range p.Passes {
					before := fn.Body.ForwardedCount()
					if err := pass.Apply(mod, fn.Body); err != nil {
						errs[i] = err
						break
					}
					after := fn.Body.ForwardedCount()
					stats.Add(Effect{Pass: pass.Name(), Function: fn.Decl.Name, Removed: after - before})
				}
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}
