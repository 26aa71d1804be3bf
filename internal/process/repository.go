package process

import (
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultWindowSize bounds how many processes the repository retains.
const DefaultWindowSize = 1000

// Repository stores live and finished processes.
type Repository interface {
	Save(p *AgentProcess)
	FindByID(id string) (*AgentProcess, bool)
	List() []*AgentProcess
	Delete(id string)
}

// InMemoryRepository retains up to windowSize processes. When full, the
// oldest-inserted terminal process is evicted; non-terminal processes
// are never evicted, so the window can temporarily overflow while many
// processes run at once.
type InMemoryRepository struct {
	mu         sync.RWMutex
	windowSize int
	byID       map[string]*AgentProcess
	order      []string
}

// NewInMemoryRepository creates a repository with the given window.
// Non-positive sizes fall back to the default of 1000.
func NewInMemoryRepository(windowSize int) *InMemoryRepository {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &InMemoryRepository{
		windowSize: windowSize,
		byID:       make(map[string]*AgentProcess),
	}
}

// Save inserts or refreshes a process, evicting if the window is full.
func (r *InMemoryRepository) Save(p *AgentProcess) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID()]; !exists {
		r.order = append(r.order, p.ID())
	}
	r.byID[p.ID()] = p

	for len(r.byID) > r.windowSize {
		if !r.evictOldestTerminalLocked() {
			log.Warn("process window overflows, nothing terminal to evict", "size", len(r.byID), "window", r.windowSize)
			break
		}
	}
}

// evictOldestTerminalLocked removes the oldest-inserted terminal process.
func (r *InMemoryRepository) evictOldestTerminalLocked() bool {
	for i, id := range r.order {
		p, ok := r.byID[id]
		if !ok {
			continue
		}
		if !p.Status().Terminal() {
			continue
		}
		delete(r.byID, id)
		r.order = append(r.order[:i], r.order[i+1:]...)
		log.Debug("process evicted", "process", id)
		return true
	}
	return false
}

// FindByID returns the stored process.
func (r *InMemoryRepository) FindByID(id string) (*AgentProcess, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// List returns all retained processes in insertion order.
func (r *InMemoryRepository) List() []*AgentProcess {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*AgentProcess, 0, len(r.byID))
	for _, id := range r.order {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Delete removes a process outright.
func (r *InMemoryRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, stored := range r.order {
		if stored == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns how many processes are retained.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
