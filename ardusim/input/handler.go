package input

import (
	"time"

	"github.com/valerio/go-ardusim/ardusim/input/action"
	"github.com/valerio/go-ardusim/ardusim/input/event"
)

const debounceDelay = 300 * time.Millisecond

// Handler debounces UI actions so a held function key fires once. Button
// keys are never debounced.
type Handler struct {
	lastActionTime map[action.Action]time.Time
	debounceDelay  time.Duration
	now            func() time.Time
}

func NewHandler() *Handler {
	return &Handler{
		lastActionTime: make(map[action.Action]time.Time),
		debounceDelay:  debounceDelay,
		now:            time.Now,
	}
}

// ProcessEvent returns true if the event should be handled, false if it
// was debounced.
func (h *Handler) ProcessEvent(act action.Action, typ event.Type) bool {
	if !act.IsUI() || typ != event.Press {
		return true
	}

	now := h.now()
	if lastTime, exists := h.lastActionTime[act]; exists {
		if now.Sub(lastTime) < h.debounceDelay {
			return false
		}
	}
	h.lastActionTime[act] = now
	return true
}
