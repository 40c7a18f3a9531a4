// Package steps computes the submission progress ladder shown to a student
// viewing an assignment.
package steps

// DisplayState is the single progress state selected for one render pass.
type DisplayState string

const (
	StateUnavailable DisplayState = "unavailable"
	StateAvailable   DisplayState = "available"
	StateUploaded    DisplayState = "uploaded"
	StateSubmitted   DisplayState = "submitted"
	StateGraded      DisplayState = "graded"
)

// StepLabel identifies a node in the ladder.
type StepLabel string

const (
	LabelAvailable    StepLabel = "available"
	LabelUpload       StepLabel = "upload"
	LabelUploaded     StepLabel = "uploaded"
	LabelSubmit       StepLabel = "submit"
	LabelSubmitted    StepLabel = "submitted"
	LabelNotGradedYet StepLabel = "notGradedYet"
	LabelGraded       StepLabel = "graded"
	LabelUnavailable  StepLabel = "unavailable"
	LabelNewAttempt   StepLabel = "newAttempt"
)

var labelText = map[StepLabel]string{
	LabelAvailable:    "Available",
	LabelUpload:       "Upload",
	LabelUploaded:     "Uploaded",
	LabelSubmit:       "Submit",
	LabelSubmitted:    "Submitted",
	LabelNotGradedYet: "Not Graded Yet",
	LabelGraded:       "Graded",
	LabelUnavailable:  "Unavailable",
	LabelNewAttempt:   "New Attempt",
}

// Text returns the display text for the label.
func (l StepLabel) Text() string {
	if text, ok := labelText[l]; ok {
		return text
	}
	return string(l)
}

// StepStatus describes how a step is drawn.
type StepStatus string

const (
	StatusUnavailable StepStatus = "unavailable"
	StatusComplete    StepStatus = "complete"
	StatusIncomplete  StepStatus = "incomplete"
	StatusInProgress  StepStatus = "in-progress"
	StatusButton      StepStatus = "button"
)

// Submission workflow states understood by the selector. Other values are
// tolerated and fall through to the draft check.
const (
	SubmissionUnsubmitted = "unsubmitted"
	SubmissionSubmitted   = "submitted"
	SubmissionGraded      = "graded"
)

// Step is one labelled node of the ladder.
type Step struct {
	Label  StepLabel  `json:"label"`
	Status StepStatus `json:"status"`
}

// LockInfo reports whether the assignment is currently locked for the viewer.
type LockInfo struct {
	IsLocked bool
}

// Assignment carries the assignment fields the ladder depends on.
// A nil AllowedAttempts means unlimited attempts.
type Assignment struct {
	AllowedAttempts *int
	LockInfo        LockInfo
}

// Draft is the in-progress work attached to a submission.
type Draft struct {
	MeetsAssignmentCriteria bool
}

// Submission carries the submission fields the ladder depends on.
type Submission struct {
	State           string
	Attempt         int
	SubmissionDraft *Draft
}

// ViewerContext holds viewer-scoped flags supplied by the caller.
type ViewerContext struct {
	// NextButtonEnabled is set while the viewer is interacting with the
	// "start new attempt" control; the ladder then omits its own newAttempt step.
	NextButtonEnabled bool
}

// Input groups everything needed for one render pass.
type Input struct {
	Assignment      Assignment
	Submission      *Submission
	ForceLockStatus bool
	IsCollapsed     bool
	Viewer          ViewerContext
}

// Ladder is the computed render description.
type Ladder struct {
	State     DisplayState `json:"state"`
	Collapsed bool         `json:"collapsed"`
	Summary   StepLabel    `json:"summary"`
	Steps     []Step       `json:"steps"`
}
