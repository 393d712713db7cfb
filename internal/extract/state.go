package extract

// State is a step of a pipeline run.
type State int

const (
	Resolving State = iota
	Fetching
	Unpacking
	Validating
	Writing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Fetching:
		return "fetching"
	case Unpacking:
		return "unpacking"
	case Validating:
		return "validating"
	case Writing:
		return "writing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
