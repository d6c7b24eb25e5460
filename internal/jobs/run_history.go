package job

import (
	"sync"

	"github.com/maheshrc27/postbridge/internal/models"
)

// RunHistory keeps the most recent outcome per account in memory.
type RunHistory struct {
	mu    sync.RWMutex
	last  map[string]models.RunOutcome
	order []string
}

func NewRunHistory() *RunHistory {
	return &RunHistory{last: make(map[string]models.RunOutcome)}
}

func (h *RunHistory) Record(o models.RunOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.last[o.Account]; !ok {
		h.order = append(h.order, o.Account)
	}
	h.last[o.Account] = o
}

// Last returns the latest outcome per account, in first-seen order.
func (h *RunHistory) Last() []models.RunOutcome {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.RunOutcome, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.last[name])
	}
	return out
}
