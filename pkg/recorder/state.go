package recorder

type State string

const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StateFinalizing State = "finalizing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// busy reports whether the state owns a live stream.
func (s State) busy() bool {
	return s == StateCapturing || s == StateFinalizing
}
