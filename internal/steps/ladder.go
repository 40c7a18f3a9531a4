package steps

// Select picks the display state. The checks run in a fixed order and the
// first match wins.
func Select(assignment Assignment, submission *Submission, forceLockStatus bool) DisplayState {
	switch {
	case submission == nil || forceLockStatus:
		return StateUnavailable
	case submission.State == SubmissionGraded:
		return StateGraded
	case submission.State == SubmissionSubmitted:
		return StateSubmitted
	case submission.SubmissionDraft != nil && submission.SubmissionDraft.MeetsAssignmentCriteria:
		return StateUploaded
	default:
		return StateAvailable
	}
}

// AllowNextAttempt reports whether the student may start another attempt.
func AllowNextAttempt(assignment Assignment, submission *Submission) bool {
	if assignment.AllowedAttempts == nil {
		return true
	}
	if submission == nil {
		return false
	}
	return submission.Attempt < *assignment.AllowedAttempts
}

// SummaryLabel returns the label shown in collapsed mode for the state.
func SummaryLabel(state DisplayState) StepLabel {
	switch state {
	case StateAvailable:
		return LabelAvailable
	case StateUploaded:
		return LabelUploaded
	case StateSubmitted:
		return LabelSubmitted
	case StateGraded:
		return LabelGraded
	default:
		return LabelUnavailable
	}
}

// Render produces the ordered steps for the state.
func Render(state DisplayState, assignment Assignment, submission *Submission, isCollapsed bool, viewer ViewerContext) []Step {
	locked := assignment.LockInfo.IsLocked

	switch state {
	case StateAvailable:
		first := Step{Label: LabelAvailable, Status: StatusComplete}
		upload := StatusInProgress
		if locked {
			first = Step{Label: LabelUnavailable, Status: StatusUnavailable}
			upload = StatusIncomplete
		}
		return []Step{
			first,
			{Label: LabelUpload, Status: upload},
			{Label: LabelSubmit, Status: StatusIncomplete},
			{Label: LabelNotGradedYet, Status: StatusIncomplete},
		}

	case StateUploaded:
		submit := StatusInProgress
		if locked {
			submit = StatusUnavailable
		}
		return append(availablePrefix(locked),
			Step{Label: LabelUploaded, Status: StatusComplete},
			Step{Label: LabelSubmit, Status: submit},
			Step{Label: LabelNotGradedYet, Status: StatusIncomplete},
		)

	case StateSubmitted, StateGraded:
		result := append(availablePrefix(locked),
			Step{Label: LabelUploaded, Status: StatusComplete},
			Step{Label: LabelSubmitted, Status: StatusComplete},
		)
		if state == StateGraded {
			result = append(result, Step{Label: LabelGraded, Status: StatusComplete})
		} else {
			result = append(result, Step{Label: LabelNotGradedYet, Status: StatusIncomplete})
		}
		if AllowNextAttempt(assignment, submission) && !viewer.NextButtonEnabled && !isCollapsed {
			status := StatusButton
			if locked {
				status = StatusUnavailable
			}
			result = append(result, Step{Label: LabelNewAttempt, Status: status})
		}
		return result

	default:
		return []Step{
			{Label: LabelUnavailable, Status: StatusUnavailable},
			{Label: LabelUpload, Status: StatusIncomplete},
			{Label: LabelSubmit, Status: StatusIncomplete},
			{Label: LabelNotGradedYet, Status: StatusIncomplete},
		}
	}
}

// Build selects the state and renders its ladder.
func Build(in Input) Ladder {
	state := Select(in.Assignment, in.Submission, in.ForceLockStatus)
	return Ladder{
		State:     state,
		Collapsed: in.IsCollapsed,
		Summary:   SummaryLabel(state),
		Steps:     Render(state, in.Assignment, in.Submission, in.IsCollapsed, in.Viewer),
	}
}

// locked assignments drop the available step entirely once work exists.
func availablePrefix(locked bool) []Step {
	if locked {
		return make([]Step, 0, 5)
	}
	return append(make([]Step, 0, 6), Step{Label: LabelAvailable, Status: StatusComplete})
}
