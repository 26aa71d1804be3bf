package goap

import (
	"container/heap"
	"context"
	"sort"

	"github.com/charmbracelet/log"
)

// maxPlanIterations bounds a single A* search. The closed set already
// guarantees termination on the finite state space; the bound catches
// degenerate systems before they burn the process.
const maxPlanIterations = 200_000

// Planner finds minimum-cost action sequences to goals using A* search
// over world states. UNKNOWN conditions are resolved lazily through the
// WorldStateDeterminer and memoized per planning call.
type Planner struct {
	determiner WorldStateDeterminer
}

// NewPlanner creates a Planner observing the world through the given
// determiner.
func NewPlanner(determiner WorldStateDeterminer) *Planner {
	return &Planner{determiner: determiner}
}

// PlanToGoal finds the shortest-cost action sequence from the current
// world state to a state achieving the goal. It returns (nil, nil) when
// the goal is unreachable: an absent plan is an answer, not an error.
// Errors are reserved for malformed systems.
func (p *Planner) PlanToGoal(ctx context.Context, actions []Action, goal Goal) (*Plan, error) {
	if err := checkUniqueActionNames(actions); err != nil {
		return nil, err
	}
	res := newResolver(p.determiner)
	start := NewWorldState()
	if p.determiner != nil {
		start = p.determiner.DetermineWorldState(ctx)
	}
	return p.search(ctx, res, start, actions, goal)
}

// PlansToGoals finds the best plan to every reachable goal of the system,
// sorted by net value descending, ties broken by lower cost, then by goal
// name. Unreachable goals are omitted.
func (p *Planner) PlansToGoals(ctx context.Context, system *PlanningSystem) ([]*Plan, error) {
	if err := checkUniqueActionNames(system.Actions); err != nil {
		return nil, err
	}
	res := newResolver(p.determiner)
	start := NewWorldState()
	if p.determiner != nil {
		start = p.determiner.DetermineWorldState(ctx)
	}

	plans := make([]*Plan, 0, len(system.Goals))
	for _, goal := range system.Goals {
		plan, err := p.search(ctx, res, start, system.Actions, goal)
		if err != nil {
			return nil, err
		}
		if plan != nil {
			plans = append(plans, plan)
		}
	}

	sort.SliceStable(plans, func(i, j int) bool {
		ni, nj := plans[i].NetValue(), plans[j].NetValue()
		if ni != nj {
			return ni > nj
		}
		ci, cj := plans[i].Cost(), plans[j].Cost()
		if ci != cj {
			return ci < cj
		}
		return plans[i].Goal.Name < plans[j].Goal.Name
	})
	return plans, nil
}

// BestValuePlanToAnyGoal returns the highest net-value plan across all of
// the system's goals, or nil when no goal is reachable.
func (p *Planner) BestValuePlanToAnyGoal(ctx context.Context, system *PlanningSystem) (*Plan, error) {
	plans, err := p.PlansToGoals(ctx, system)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return plans[0], nil
}

// search runs A* from start toward goal over the pruned action set.
func (p *Planner) search(ctx context.Context, res *resolver, start WorldState, actions []Action, goal Goal) (*Plan, error) {
	goalKeys := make(map[string]struct{}, len(goal.Preconditions))
	for k := range goal.Preconditions {
		goalKeys[k] = struct{}{}
	}
	relevant := pruneActions(actions, goalKeys)
	ranks := actionRanks(relevant)

	h0, err := res.distance(ctx, start, goal.Preconditions)
	if err != nil {
		return nil, err
	}

	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, &node{state: start, g: 0, h: h0})
	closed := make(map[string]bool)

	for iterations := 0; open.Len() > 0; iterations++ {
		if iterations >= maxPlanIterations {
			log.Warn("plan search aborted", "goal", goal.Name, "iterations", iterations)
			return nil, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := heap.Pop(open).(*node)
		key := current.state.Key()
		if closed[key] {
			continue
		}
		closed[key] = true

		achieved, err := res.satisfies(ctx, current.state, goal.Preconditions)
		if err != nil {
			return nil, err
		}
		if achieved {
			log.Debug("plan found", "goal", goal.Name, "actions", current.depth, "cost", current.g, "iterations", iterations)
			return &Plan{Actions: current.path(), Goal: goal}, nil
		}

		for i := range relevant {
			action := relevant[i]
			applicable, err := res.satisfies(ctx, current.state, action.Preconditions)
			if err != nil {
				return nil, err
			}
			if !applicable {
				continue
			}

			next := action.Apply(current.state)
			if closed[next.Key()] {
				continue
			}
			h, err := res.distance(ctx, next, goal.Preconditions)
			if err != nil {
				return nil, err
			}
			heap.Push(open, &node{
				state:  next,
				parent: current,
				action: &relevant[i],
				rank:   appendRank(current.rank, ranks[action.Name]),
				depth:  current.depth + 1,
				g:      current.g + action.Cost,
				h:      h,
			})
		}
	}

	log.Debug("no plan found", "goal", goal.Name)
	return nil, nil
}

// actionRanks assigns each action a tie-break rank: fewer effects
// first, then name. Equal-cost routes settle on the sequence that
// touches the least state.
func actionRanks(actions []Action) map[string]int {
	sorted := make([]Action, len(actions))
	copy(sorted, actions)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i].Effects) != len(sorted[j].Effects) {
			return len(sorted[i].Effects) < len(sorted[j].Effects)
		}
		return sorted[i].Name < sorted[j].Name
	})
	ranks := make(map[string]int, len(sorted))
	for i, a := range sorted {
		ranks[a.Name] = i
	}
	return ranks
}

func appendRank(ranks []int, rank int) []int {
	out := make([]int, len(ranks)+1)
	copy(out, ranks)
	out[len(ranks)] = rank
	return out
}

// node is a world state reached by a concrete action sequence during A*.
type node struct {
	state  WorldState
	parent *node
	action *Action
	rank   []int // per-action tie-break ranks from the start node
	depth  int
	g      float64
	h      int
	index  int
}

func (n *node) f() float64 {
	return n.g + float64(n.h)
}

// path reconstructs the action sequence from the start node.
func (n *node) path() []Action {
	if n.parent == nil {
		return []Action{}
	}
	ancestors := n.parent.path()
	return append(ancestors, *n.action)
}

// nodeQueue is a min-heap on f-cost. Ties prefer the lower g-cost, then
// the action sequence with the smaller rank profile, which pins
// equally cheap plans to one deterministic order.
type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].f() != q[j].f() {
		return q[i].f() < q[j].f()
	}
	if q[i].g != q[j].g {
		return q[i].g < q[j].g
	}
	return rankLess(q[i].rank, q[j].rank)
}

func rankLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
