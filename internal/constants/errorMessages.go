package constants

const (
	ErrMsgInvalidWindow    = "Invalid roster window"
	ErrMsgUnknownCrew      = "Unknown crew member"
	ErrMsgUnknownFlight    = "Unknown flight"
	ErrMsgUnknownEvent     = "Unknown disruption event"
	ErrMsgConflict         = "Concurrent update conflict, retry exhausted"
	ErrMsgInternal         = "Internal server error"
	ErrMsgUnauthorized     = "Unauthorized. Invalid API Key"
	ErrMsgExplanationWait  = "Explanation not yet rendered"
	ErrMsgInvalidStatus    = "Invalid status value"
	ErrMsgInvalidDisrupton = "Invalid disruption payload"
)
