package domain

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Stage is the step of the public point flow.
type Stage string

const (
	StageIdle      Stage = "idle"
	StageViewing   Stage = "viewing"
	StageReporting Stage = "reporting"
)

// ErrInvalidTransition is returned when a transition does not apply to the current stage.
var ErrInvalidTransition = eris.New("invalid view transition")

// ViewState is the public page state: Idle → Viewing(feature) →
// Reporting(feature) → Idle. Transitions return a new value and leave the
// receiver untouched.
type ViewState struct {
	Stage     Stage
	Feature   *Feature
	IssueType string
	Notice    string
}

// Idle returns the unselected state.
func Idle() ViewState {
	return ViewState{Stage: StageIdle}
}

// Select shows a point's info. Allowed from Idle and Viewing.
func (s ViewState) Select(f Feature) (ViewState, error) {
	if s.Stage == StageReporting {
		return s, invalid(s.Stage, "select")
	}
	return ViewState{Stage: StageViewing, Feature: &f}, nil
}

// StartReport opens the report form with issueType preselected.
func (s ViewState) StartReport(issueType string) (ViewState, error) {
	if s.Stage != StageViewing {
		return s, invalid(s.Stage, "start report")
	}
	return ViewState{Stage: StageReporting, Feature: s.Feature, IssueType: issueType}, nil
}

// Choose changes the selected issue type on the open form.
func (s ViewState) Choose(issueType string) (ViewState, error) {
	if s.Stage != StageReporting {
		return s, invalid(s.Stage, "choose issue type")
	}
	s.IssueType = issueType
	return s, nil
}

// Dismiss closes the info panel.
func (s ViewState) Dismiss() (ViewState, error) {
	if s.Stage != StageViewing {
		return s, invalid(s.Stage, "dismiss")
	}
	return Idle(), nil
}

// Cancel abandons the report form.
func (s ViewState) Cancel() (ViewState, error) {
	if s.Stage != StageReporting {
		return s, invalid(s.Stage, "cancel")
	}
	return Idle(), nil
}

// Submitted clears the selection after a successful submission.
func (s ViewState) Submitted(notice string) (ViewState, error) {
	if s.Stage != StageReporting {
		return s, invalid(s.Stage, "submitted")
	}
	return ViewState{Stage: StageIdle, Notice: notice}, nil
}

// SubmitFailed keeps the form open so the user can retry.
func (s ViewState) SubmitFailed(notice string) (ViewState, error) {
	if s.Stage != StageReporting {
		return s, invalid(s.Stage, "submit failed")
	}
	s.Notice = notice
	return s, nil
}

func invalid(from Stage, action string) error {
	return eris.Wrap(ErrInvalidTransition, fmt.Sprintf("%s from %s", action, from))
}
