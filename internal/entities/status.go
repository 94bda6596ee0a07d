package entities

// LoadStatus is the four-state progress marker attached to every resource node.
type LoadStatus string

const (
	StatusInitial LoadStatus = "initial"
	StatusLoading LoadStatus = "loading"
	StatusLoaded  LoadStatus = "loaded"
	StatusError   LoadStatus = "error"
)

// String returns the string representation of LoadStatus
func (s LoadStatus) String() string {
	return string(s)
}

// IsTerminal returns true once a node can no longer change without a reload.
func (s LoadStatus) IsTerminal() bool {
	return s == StatusLoaded || s == StatusError
}

// AggregateStatus derives a parent's status from its children's statuses.
//
// An empty collection is trivially loaded. Any failed child is fatal for the
// parent. The parent is loaded only when every child is loaded, initial only
// when no child has started, and loading otherwise.
func AggregateStatus(children ...LoadStatus) LoadStatus {
	if len(children) == 0 {
		return StatusLoaded
	}

	loaded, initial := 0, 0
	for _, s := range children {
		switch s {
		case StatusError:
			return StatusError
		case StatusLoaded:
			loaded++
		case StatusInitial, "":
			initial++
		}
	}

	switch {
	case loaded == len(children):
		return StatusLoaded
	case initial == len(children):
		return StatusInitial
	default:
		return StatusLoading
	}
}
