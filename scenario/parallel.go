package scenario

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/physim/components"
	"github.com/pthm-cable/physim/systems"
	"github.com/pthm-cable/physim/telemetry"
)

// parallelThreshold is the minimum arm count to step arms on the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 4

// armSnapshot captures read-only arm data for the compute phase.
type armSnapshot struct {
	Entity  ecs.Entity
	Name    string
	State   components.State
	Regimen components.Regimen
}

// workChunk represents a range of arms for a worker to process.
type workChunk struct {
	start, end int
	t          float64
	ctx        components.Context
}

// parallelState holds resources for concurrent arm stepping.
type parallelState struct {
	snapshots  []armSnapshot
	next       []components.State
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &parallelState{numWorkers: workers}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(r *Runner) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(r)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(r *Runner) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			r.computeChunk(chunk.start, chunk.end, chunk.t, chunk.ctx)
			p.doneChan <- struct{}{}
		}
	}
}

// stepArms advances every arm from t to t+dt. The snapshot and apply phases
// run on the caller's goroutine, so results do not depend on scheduling.
func (r *Runner) stepArms(t float64, ctx components.Context) {
	// Phase A: Build snapshots (single-threaded)
	r.tel.perf.StartPhase(telemetry.PhaseSnapshot)
	p := r.parallel
	p.snapshots = p.snapshots[:0]

	query := r.armFilter.Query()
	for query.Next() {
		arm, st, regimen, _ := query.Get()
		p.snapshots = append(p.snapshots, armSnapshot{
			Entity:  query.Entity(),
			Name:    arm.Name,
			State:   *st,
			Regimen: *regimen,
		})
	}

	n := len(p.snapshots)
	if n == 0 {
		return
	}
	if cap(p.next) < n {
		p.next = make([]components.State, n)
	}
	p.next = p.next[:n]

	// Phase B: Compute - choose single or parallel based on arm count
	r.tel.perf.StartPhase(telemetry.PhaseCompute)
	if n < parallelThreshold || p.numWorkers < 2 {
		r.computeChunk(0, n, t, ctx)
	} else {
		r.computeParallel(n, t, ctx)
	}

	// Phase C: Apply (single-threaded)
	r.tel.perf.StartPhase(telemetry.PhaseApply)
	r.applyStates()
}

// computeParallel dispatches work to the worker pool.
func (r *Runner) computeParallel(n int, t float64, ctx components.Context) {
	p := r.parallel
	if !p.running {
		p.startWorkers(r)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, t: t, ctx: ctx}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// computeChunk steps a range of arm snapshots. systems.Step is pure, so
// chunks never share writable data.
func (r *Runner) computeChunk(i0, i1 int, t float64, ctx components.Context) {
	p := r.parallel
	for i := i0; i < i1; i++ {
		snap := &p.snapshots[i]
		opts := r.opts
		opts.Adjustments = snap.Regimen.Adjustments
		p.next[i] = systems.Step(
			snap.State, t, r.cfg.Simulation.DT, ctx,
			r.reg.Signals, r.reg.Auxiliary,
			systems.Pharmacology{}, snap.Regimen.Interventions, opts,
		)
	}
}

// applyStates writes the computed states back to the arm components.
func (r *Runner) applyStates() {
	p := r.parallel
	for i, snap := range p.snapshots {
		st := r.stateMap.Get(snap.Entity)
		counters := r.counterMap.Get(snap.Entity)
		if st == nil || counters == nil {
			continue
		}
		*st = p.next[i]

		counters.Steps++
		if st.Debug != nil {
			for _, key := range st.Debug.Clamped {
				counters.Clamps[key]++
			}
		}
	}
}
