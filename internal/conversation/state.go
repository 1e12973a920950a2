package conversation

// State is the phase of the request sequencer.
type State int

const (
	StateIdle State = iota
	StateComposing
	StateSending
	StateAwaitingUpload
	StateAwaitingRecommendation
	StateSettledSuccess
	StateSettledError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComposing:
		return "composing"
	case StateSending:
		return "sending"
	case StateAwaitingUpload:
		return "awaiting_upload"
	case StateAwaitingRecommendation:
		return "awaiting_recommendation"
	case StateSettledSuccess:
		return "settled_success"
	case StateSettledError:
		return "settled_error"
	default:
		return "unknown"
	}
}

// InFlight reports whether a send owns the sequencer.
func (s State) InFlight() bool {
	switch s {
	case StateSending, StateAwaitingUpload, StateAwaitingRecommendation,
		StateSettledSuccess, StateSettledError:
		return true
	}
	return false
}

// Indicator is the pending marker shown to the user.
type Indicator int

const (
	IndicatorNone Indicator = iota
	IndicatorTyping
	IndicatorAcknowledging
)

func (i Indicator) String() string {
	switch i {
	case IndicatorTyping:
		return "typing"
	case IndicatorAcknowledging:
		return "acknowledging"
	default:
		return "none"
	}
}

// Status is what observers of the sequencer receive on every transition.
type Status struct {
	State     State
	Indicator Indicator
}

func indicatorFor(state State, pendingAcks int) Indicator {
	switch state {
	case StateSending, StateAwaitingUpload, StateAwaitingRecommendation:
		return IndicatorTyping
	}
	if pendingAcks > 0 {
		return IndicatorAcknowledging
	}
	return IndicatorNone
}
