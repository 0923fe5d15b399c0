package kagero

// hookState is the lifecycle of a single interception.
// Transitions only move forward: uninstalled -> installed -> removed.
type hookState int32

const (
	stateUninstalled hookState = iota
	stateInstalled
	stateRemoved
)

func (s hookState) String() string {
	switch s {
	case stateUninstalled:
		return "uninstalled"
	case stateInstalled:
		return "installed"
	case stateRemoved:
		return "removed"
	}
	return "unknown"
}
