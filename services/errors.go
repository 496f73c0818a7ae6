// services/errors.go
package services

// RequiresAction tags carried by blocked state transitions. The client must
// resolve the named precondition and resubmit; no automatic retry applies.
const (
	ActionEndPreviousDay    = "END_PREVIOUS_DAY"
	ActionWaitForDutyWindow = "WAIT_FOR_DUTY_WINDOW"
	ActionDayAlreadyClosed  = "DAY_ALREADY_CLOSED"
	ActionCollectCash       = "COLLECT_CASH"
	ActionOutsideWindow     = "OUTSIDE_SUBSCRIPTION_WINDOW"
)

// BlockedError is a state-precondition failure: the operation is valid but the
// current state forbids it. Surfaced to clients as 400/409 with the tag.
type BlockedError struct {
	Message string
	Action  string
	Data    map[string]interface{}
}

func (e *BlockedError) Error() string {
	return e.Message
}

// Blocked builds a BlockedError with the given tag and message.
func Blocked(action, message string) *BlockedError {
	return &BlockedError{Message: message, Action: action}
}
