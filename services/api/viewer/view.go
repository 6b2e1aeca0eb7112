package viewer

import (
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/antipode"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/navigation"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/runstamp"
)

// Run is the run-timestamp block of the control panel.
type Run struct {
	Label string   `json:"label"`
	Age   string   `json:"age"`
	Lines []string `json:"lines"`
}

// View is everything the renderer needs for one frame. It is re-derived on
// every call, so the run age is always relative to now.
type View struct {
	Status    Status           `json:"status"`
	Error     string           `json:"error,omitempty"`
	Run       *Run             `json:"run,omitempty"`
	Mode      navigation.Mode  `json:"mode"`
	State     navigation.State `json:"state"`
	Index     int              `json:"index"`
	Total     int              `json:"total"`
	PairCount int              `json:"pair_count"`
	Pairs     []antipode.Pair  `json:"pairs"`
	Layer     Layer            `json:"layer"`
	Texture   string           `json:"texture,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Status: StatusIdle,
		Mode:   s.nav.Mode(),
		State:  s.nav.State(),
		Layer:  s.layer,
		Pairs:  []antipode.Pair{},
	}

	switch {
	case s.loading:
		v.Status = StatusLoading
	case s.lastErr != nil:
		v.Status = StatusError
		v.Error = processingError
	case s.set != nil:
		v.Status = StatusReady
	}

	if s.set == nil {
		return v
	}

	info := runstamp.Describe(s.set.Timestamp, s.now())
	v.Run = &Run{Label: info.Label, Age: info.Age, Lines: info.Lines()}
	v.PairCount = len(s.set.Pairs)

	if s.layer == LayerPress {
		v.Texture = s.set.Textures.Press
	} else {
		v.Texture = s.set.Textures.Temp
	}

	switch v.State {
	case navigation.StateNoData:
		v.Message = emptyMessage
	case navigation.StateAllPairs:
		v.Total = len(s.set.Pairs)
		v.Pairs = append(v.Pairs, s.set.Pairs...)
	case navigation.StateSingleStep:
		v.Index = s.nav.Index()
		v.Total = len(s.set.Steps)
		v.Pairs = append(v.Pairs, s.set.Steps[v.Index])
	}
	return v
}
