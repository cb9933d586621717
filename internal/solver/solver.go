package solver

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fantasy-tools/fpl-optimizer/pkg/logger"
)

// Status describes the outcome of one solve.
type Status int

const (
	// StatusOptimal means the search tree was exhausted and the returned
	// selection is proven best.
	StatusOptimal Status = iota
	// StatusTimeLimitBest means the time limit elapsed; the returned
	// selection is the best incumbent found, not necessarily optimal.
	StatusTimeLimitBest
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusTimeLimitBest:
		return "time_limit_best"
	}
	return "unknown"
}

// Solution is the result of one solve: the variable indices set to 1.
type Solution struct {
	Selected  []int         `json:"selected"`
	Objective float64       `json:"objective"`
	Status    Status        `json:"status"`
	Nodes     int64         `json:"nodes"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Options controls one solve.
type Options struct {
	// TimeLimit bounds the search; zero means no limit.
	TimeLimit time.Duration
	// Workers sets how many branches are explored concurrently. Values
	// below 2 give a fully sequential search.
	Workers int
}

// Solve runs branch-and-bound over the model's binary variables and returns
// the best feasible selection, ErrInfeasible when none exists, or
// ErrTimedOutNoSolution when the limit elapsed with no incumbent. The result
// is deterministic for identical models regardless of worker count: among the
// optima the search discovers, ties on objective go to the lexicographically
// smallest selected-index set. A subtree whose relaxation lands integral is
// not enumerated further, so tying optima inside it may never surface.
func Solve(ctx context.Context, m *Model, opts Options) (*Solution, error) {
	solveID := uuid.New().String()
	start := time.Now()

	log := logger.WithSolveID(solveID)
	log.WithFields(logrus.Fields{
		"variables":   m.NumVars(),
		"constraints": len(m.constraints),
		"workers":     opts.Workers,
		"time_limit":  opts.TimeLimit,
	}).Debug("Starting branch-and-bound solve")

	if m.NumVars() == 0 {
		return nil, &EngineError{Op: "solve", Err: fmt.Errorf("model has no variables")}
	}

	// Statically impossible rows are reported by name before any search.
	rootAssign := make([]int8, m.NumVars())
	for i := range rootAssign {
		rootAssign[i] = -1
	}
	for _, c := range m.constraints {
		if c.rangeCheck(rootAssign) {
			return nil, fmt.Errorf("%w: constraint %q (%s %v) cannot be satisfied by any selection",
				ErrInfeasible, c.Name, c.Sense, c.Bound)
		}
	}

	deadline, hasDeadline := ctx.Deadline()
	if opts.TimeLimit > 0 {
		d := start.Add(opts.TimeLimit)
		if !hasDeadline || d.Before(deadline) {
			deadline = d
		}
		hasDeadline = true
	}

	s := &search{
		model:       m,
		ctx:         ctx,
		deadline:    deadline,
		hasDeadline: hasDeadline,
	}
	s.cond = sync.NewCond(&s.mu)

	// Seed the incumbent with a greedy rounding dive so a time-limited
	// solve can always return its best selection when one exists.
	if err := s.dive(rootAssign); err != nil {
		return nil, err
	}

	heap.Push(&s.queue, &node{assign: rootAssign, priority: math.Inf(1)})

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.run()
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	if s.err != nil {
		return nil, s.err
	}
	if s.best == nil {
		if s.timedOut {
			return nil, fmt.Errorf("%w after %s (%d nodes)", ErrTimedOutNoSolution, elapsed.Round(time.Millisecond), s.nodes)
		}
		return nil, ErrInfeasible
	}

	status := StatusOptimal
	if s.timedOut {
		status = StatusTimeLimitBest
	}
	sol := &Solution{
		Selected:  s.best.selected,
		Objective: s.best.objective,
		Status:    status,
		Nodes:     s.nodes,
		Elapsed:   elapsed,
	}
	log.WithFields(logrus.Fields{
		"status":    status.String(),
		"objective": sol.Objective,
		"nodes":     sol.Nodes,
		"elapsed":   elapsed,
	}).Debug("Solve finished")
	return sol, nil
}

// node is one branch-and-bound subproblem: a partial assignment plus the
// parent's relaxation bound used as its queue priority.
type node struct {
	assign   []int8
	priority float64
	seq      int64
	index    int
}

// nodeQueue is a max-heap on priority (best-first); equal priorities pop in
// insertion order so the search stays deterministic.
type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x interface{}) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

type incumbent struct {
	selected  []int
	objective float64
}

// search holds the shared state of one solve. The incumbent has a single
// mutation point (offer) so concurrent workers can only improve it; a worker
// pruning against a stale incumbent merely prunes less.
type search struct {
	model *Model

	ctx         context.Context
	deadline    time.Time
	hasDeadline bool

	mu       sync.Mutex
	cond     *sync.Cond
	queue    nodeQueue
	active   int
	seq      int64
	nodes    int64
	best     *incumbent
	timedOut bool
	stopped  bool
	err      error
}

func (s *search) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && s.active > 0 && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped || len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		if s.expired() {
			s.timedOut = true
			s.stopped = true
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
		nd := heap.Pop(&s.queue).(*node)
		s.active++
		s.nodes++
		s.mu.Unlock()

		s.process(nd)

		s.mu.Lock()
		s.active--
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

func (s *search) expired() bool {
	if s.ctx.Err() != nil {
		return true
	}
	return s.hasDeadline && !time.Now().Before(s.deadline)
}

func (s *search) process(nd *node) {
	// Cheap violation pruning before paying for a simplex solve.
	for _, c := range s.model.constraints {
		if c.rangeCheck(nd.assign) {
			return
		}
	}

	// Prune only strictly worse branches. Equal-bound branches stay alive
	// so ties resolve by the lexicographic rule, not by discovery timing.
	if nd.priority < s.bestObjective()-boundTol {
		return
	}

	bound, frac, err := s.model.relax(nd.assign)
	if err != nil {
		if err == errNodeInfeasible {
			return
		}
		s.fail(err)
		return
	}
	if bound < s.bestObjective()-boundTol {
		return
	}

	branch := -1
	branchDist := math.Inf(1)
	for i, v := range frac {
		if nd.assign[i] != -1 {
			continue
		}
		if v < integralTol || v > 1-integralTol {
			continue
		}
		// Most fractional first: distance from one half.
		if d := math.Abs(v - 0.5); d < branchDist {
			branchDist = d
			branch = i
		}
	}

	if branch == -1 {
		// The relaxation landed on integral values; round and keep it
		// if every row checks out exactly.
		assign := make([]int8, len(nd.assign))
		for i, v := range frac {
			if v > 0.5 {
				assign[i] = 1
			}
		}
		for _, c := range s.model.constraints {
			if !c.satisfied(assign) {
				return
			}
		}
		var selected []int
		var objective float64
		for i, v := range assign {
			if v == 1 {
				selected = append(selected, i)
				objective += s.model.objective[i]
			}
		}
		s.offer(selected, objective)
		return
	}

	// Fix the rounded-toward value first so the greedier child pops first
	// on equal bounds.
	first, second := int8(1), int8(0)
	if frac[branch] < 0.5 {
		first, second = 0, 1
	}
	s.enqueue(child(nd, branch, first, bound))
	s.enqueue(child(nd, branch, second, bound))
}

// dive walks one greedy rounding descent from the root: solve the
// relaxation, fix the most fractional variable toward its nearest integer,
// repeat. It usually lands on a feasible selection quickly, giving the search
// an incumbent before the clock starts mattering.
func (s *search) dive(root []int8) error {
	assign := make([]int8, len(root))
	copy(assign, root)
	for {
		for _, c := range s.model.constraints {
			if c.rangeCheck(assign) {
				return nil
			}
		}
		_, frac, err := s.model.relax(assign)
		if err != nil {
			if err == errNodeInfeasible {
				return nil
			}
			return err
		}

		branch := -1
		branchDist := math.Inf(1)
		for i, v := range frac {
			if assign[i] != -1 || v < integralTol || v > 1-integralTol {
				continue
			}
			if d := math.Abs(v - 0.5); d < branchDist {
				branchDist = d
				branch = i
			}
		}
		if branch == -1 {
			full := make([]int8, len(assign))
			for i, v := range frac {
				if v > 0.5 {
					full[i] = 1
				}
			}
			for _, c := range s.model.constraints {
				if !c.satisfied(full) {
					return nil
				}
			}
			var selected []int
			var objective float64
			for i, v := range full {
				if v == 1 {
					selected = append(selected, i)
					objective += s.model.objective[i]
				}
			}
			s.offer(selected, objective)
			return nil
		}
		if frac[branch] >= 0.5 {
			assign[branch] = 1
		} else {
			assign[branch] = 0
		}
	}
}

func child(parent *node, branch int, value int8, bound float64) *node {
	assign := make([]int8, len(parent.assign))
	copy(assign, parent.assign)
	assign[branch] = value
	return &node{assign: assign, priority: bound}
}

func (s *search) enqueue(nd *node) {
	s.mu.Lock()
	if !s.stopped {
		s.seq++
		nd.seq = s.seq
		heap.Push(&s.queue, nd)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *search) bestObjective() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.best == nil {
		return math.Inf(-1)
	}
	return s.best.objective
}

// offer is the single mutation point for the incumbent. Equal objectives keep
// the lexicographically smallest index set so the final answer does not depend
// on discovery order.
func (s *search) offer(selected []int, objective float64) {
	sort.Ints(selected)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.best == nil || objective > s.best.objective+boundTol {
		s.best = &incumbent{selected: selected, objective: objective}
		return
	}
	if math.Abs(objective-s.best.objective) <= boundTol && lexLess(selected, s.best.selected) {
		s.best = &incumbent{selected: selected, objective: objective}
	}
}

func (s *search) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.stopped = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
