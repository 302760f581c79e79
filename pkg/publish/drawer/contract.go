package drawer

import (
	"io"
	"time"

	"github.com/askiada/dvpublish/pkg/publish/measure"
)

// Drawer is an interface that defines the methods for drawing a publish run.
type Drawer interface {
	// AddState adds a state to the drawing.
	AddState(name string) error
	// AddLink adds a transition between two states, label may be empty.
	AddLink(fromState, toState, label string) error
	// SetTotalTime sets the total time of the run on a state.
	SetTotalTime(name string, total time.Duration) error
	// AddMeasure decorates the states with the metrics of measure.
	AddMeasure(measure measure.Measure) error
	// Render writes the drawing to wrt.
	Render(wrt io.Writer) error
	// Draw creates a file with the drawing.
	Draw() error
}
