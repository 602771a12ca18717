package claims

import "fmt"

// Decision is an admin's resolution of a pending claim.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status returns the terminal status d moves a claim to.
func (d Decision) Status() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// Transition returns the status a claim in current moves to under d.
// Only pending claims can be resolved; every other status is terminal.
func Transition(current Status, d Decision) (Status, error) {
	if d != DecisionApprove && d != DecisionReject {
		return current, fmt.Errorf("unknown decision %q", d)
	}
	if current != StatusPending {
		return current, fmt.Errorf("%w: claim is %s", ErrInvalidState, current)
	}
	return d.Status(), nil
}

// Notice is the templated notification sent to a claimant.
type Notice struct {
	Title   string
	Message string
}

// NoticeFor renders the claimant notice for d on the item titled title.
func NoticeFor(d Decision, title string) Notice {
	if d == DecisionApprove {
		return Notice{
			Title:   "Claim Approved",
			Message: fmt.Sprintf("Your claim for %q has been approved.", title),
		}
	}
	return Notice{
		Title:   "Claim Rejected",
		Message: fmt.Sprintf("Your claim for %q has been rejected.", title),
	}
}
