package process

import "sync"

// Scheduler decides whether a process may advance right now. A denied
// process transitions to PAUSED and asks again on its next tick.
type Scheduler interface {
	// Allow reports whether the process may advance. Allowing admits
	// the process until Release.
	Allow(processID string) bool

	// Release returns the process's admission, called when it reaches
	// a terminal status.
	Release(processID string)
}

// Pronto always allows progress. The default.
type Pronto struct{}

func (Pronto) Allow(string) bool { return true }
func (Pronto) Release(string)    {}

// CappedScheduler admits at most Max processes at a time, globally.
type CappedScheduler struct {
	mu     sync.Mutex
	max    int
	active map[string]bool
}

// NewCappedScheduler creates a scheduler admitting up to max concurrent
// processes.
func NewCappedScheduler(max int) *CappedScheduler {
	return &CappedScheduler{max: max, active: make(map[string]bool)}
}

func (s *CappedScheduler) Allow(processID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[processID] {
		return true
	}
	if len(s.active) >= s.max {
		return false
	}
	s.active[processID] = true
	return true
}

func (s *CappedScheduler) Release(processID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, processID)
}

// Active returns how many processes currently hold an admission.
func (s *CappedScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
