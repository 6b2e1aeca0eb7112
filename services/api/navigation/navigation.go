package navigation

import "fmt"

// Mode selects what the globe shows.
type Mode string

const (
	ModeAll    Mode = "all"
	ModeSingle Mode = "single"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAll, ModeSingle:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q", s)
}

// State is the controller's externally visible state.
type State string

const (
	StateNoData     State = "no_data"
	StateAllPairs   State = "all_pairs"
	StateSingleStep State = "single_step"
)

// Controller tracks the display mode and the current index into the pair
// sequence. The zero value is in NoData.
type Controller struct {
	mode  Mode
	index int
	count int
}

// Install resets the controller for a new sequence of n pairs.
func (c *Controller) Install(n int) {
	if n < 0 {
		n = 0
	}
	c.count = n
	c.mode = ModeAll
	c.index = 0
}

// State reports NoData, AllPairs or SingleStep.
func (c *Controller) State() State {
	switch {
	case c.count == 0:
		return StateNoData
	case c.mode == ModeSingle:
		return StateSingleStep
	default:
		return StateAllPairs
	}
}

func (c *Controller) Mode() Mode {
	if c.mode == "" {
		return ModeAll
	}
	return c.mode
}

func (c *Controller) Index() int { return c.index }
func (c *Controller) Count() int { return c.count }

// SetMode switches mode. Entering single mode always starts at index 0.
func (c *Controller) SetMode(m Mode) {
	if m == c.Mode() {
		return
	}
	c.mode = m
	c.index = 0
}

// Toggle flips between all-pairs and single-step.
func (c *Controller) Toggle() {
	if c.Mode() == ModeAll {
		c.SetMode(ModeSingle)
		return
	}
	c.SetMode(ModeAll)
}

// Next advances the index with wraparound. It only acts in single mode and
// is a no-op on an empty sequence.
func (c *Controller) Next() bool {
	if c.Mode() != ModeSingle || c.count == 0 {
		return false
	}
	c.index = (c.index + 1) % c.count
	return true
}

// Previous steps back with wraparound, under the same rules as Next.
func (c *Controller) Previous() bool {
	if c.Mode() != ModeSingle || c.count == 0 {
		return false
	}
	c.index = (c.index - 1 + c.count) % c.count
	return true
}
