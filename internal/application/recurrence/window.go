package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// Window интервал запроса, обе границы включительные и необязательные
type Window struct {
	Start mo.Option[time.Time]
	End   mo.Option[time.Time]
}

func NewWindow(start, end time.Time) Window {
	return Window{
		Start: mo.Some(start.UTC()),
		End:   mo.Some(end.UTC()),
	}
}

// OpenWindow окно без границ, повторяющиеся события не разворачиваются
func OpenWindow() Window {
	return Window{
		Start: mo.None[time.Time](),
		End:   mo.None[time.Time](),
	}
}

func (w Window) IsOpen() bool {
	return !w.Start.IsPresent() && !w.End.IsPresent()
}

// Contains true, если момент t лежит внутри окна
func (w Window) Contains(t time.Time) bool {
	if start, ok := w.Start.Get(); ok && t.Before(start) {
		return false
	}
	if end, ok := w.End.Get(); ok && t.After(end) {
		return false
	}
	return true
}

// Overlaps true, если интервал [from, to] пересекается с окном
func (w Window) Overlaps(from, to time.Time) bool {
	if start, ok := w.Start.Get(); ok && to.Before(start) {
		return false
	}
	if end, ok := w.End.Get(); ok && from.After(end) {
		return false
	}
	return true
}

func (w Window) String() string {
	return bound(w.Start) + ".." + bound(w.End)
}

func bound(o mo.Option[time.Time]) string {
	if t, ok := o.Get(); ok {
		return t.Format(time.RFC3339)
	}
	return "*"
}
