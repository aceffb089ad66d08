package meleedto

// Stable rejection codes for the move-submission contract.
const (
	CodeBadInput        = "bad_input"
	CodeNotFound        = "not_found"
	CodeIllegalMove     = "illegal_move"
	CodeCooldownActive  = "cooldown_active"
	CodeBusyConflict    = "busy_conflict"
	CodeAlreadyFinished = "already_finished"
)

type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "melee service error"
}
