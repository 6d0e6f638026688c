package workflow

import (
	domainwf "github.com/garyjia/approvals-console/internal/domain/workflow"
)

// BuildSubmissionStateMachine creates a state machine for one approve or
// reject submission. A resolved submission may be followed by a new one;
// an outstanding one may not.
func BuildSubmissionStateMachine(initialState domainwf.State) domainwf.StateMachine {
	return domainwf.NewBuilder().
		Permit(domainwf.StateIdle, domainwf.TriggerSubmit, domainwf.StateSubmitting).
		Permit(domainwf.StateSubmitting, domainwf.TriggerSucceed, domainwf.StateSettled).
		Permit(domainwf.StateSubmitting, domainwf.TriggerFail, domainwf.StateRolledBack).
		Permit(domainwf.StateSettled, domainwf.TriggerSubmit, domainwf.StateSubmitting).
		Permit(domainwf.StateRolledBack, domainwf.TriggerSubmit, domainwf.StateSubmitting).
		Build(initialState)
}
