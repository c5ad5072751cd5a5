package domain

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFountain = Feature{ResolvedID: "42", Properties: Properties{"naam": "Fontein A"}}

func TestViewState_ReportFlow(t *testing.T) {
	s := Idle()

	s, err := s.Select(testFountain)
	require.NoError(t, err)
	assert.Equal(t, StageViewing, s.Stage)
	assert.Equal(t, "42", s.Feature.ResolvedID)

	s, err = s.StartReport("leak")
	require.NoError(t, err)
	assert.Equal(t, StageReporting, s.Stage)
	assert.Equal(t, "leak", s.IssueType)

	s, err = s.Choose("dirty")
	require.NoError(t, err)
	assert.Equal(t, "dirty", s.IssueType)

	s, err = s.Submitted("sent")
	require.NoError(t, err)
	assert.Equal(t, StageIdle, s.Stage)
	assert.Nil(t, s.Feature, "success clears the selection")
	assert.Equal(t, "sent", s.Notice)
}

func TestViewState_SubmitFailedKeepsForm(t *testing.T) {
	s, err := Idle().Select(testFountain)
	require.NoError(t, err)
	s, err = s.StartReport("leak")
	require.NoError(t, err)

	s, err = s.SubmitFailed("failed")
	require.NoError(t, err)
	assert.Equal(t, StageReporting, s.Stage)
	assert.Equal(t, "42", s.Feature.ResolvedID)
	assert.Equal(t, "leak", s.IssueType)
	assert.Equal(t, "failed", s.Notice)
}

func TestViewState_DismissAndCancel(t *testing.T) {
	viewing, err := Idle().Select(testFountain)
	require.NoError(t, err)

	s, err := viewing.Dismiss()
	require.NoError(t, err)
	assert.Equal(t, Idle(), s)

	reporting, err := viewing.StartReport("leak")
	require.NoError(t, err)
	s, err = reporting.Cancel()
	require.NoError(t, err)
	assert.Equal(t, Idle(), s)
}

func TestViewState_SelectAnotherWhileViewing(t *testing.T) {
	s, err := Idle().Select(testFountain)
	require.NoError(t, err)

	other := Feature{ResolvedID: "43"}
	s, err = s.Select(other)
	require.NoError(t, err)
	assert.Equal(t, "43", s.Feature.ResolvedID)
}

func TestViewState_InvalidTransitions(t *testing.T) {
	reporting, err := Idle().Select(testFountain)
	require.NoError(t, err)
	reporting, err = reporting.StartReport("leak")
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() (ViewState, error)
		from ViewState
	}{
		{"start report from idle", func() (ViewState, error) { return Idle().StartReport("leak") }, Idle()},
		{"dismiss from idle", func() (ViewState, error) { return Idle().Dismiss() }, Idle()},
		{"cancel from idle", func() (ViewState, error) { return Idle().Cancel() }, Idle()},
		{"submitted from idle", func() (ViewState, error) { return Idle().Submitted("x") }, Idle()},
		{"choose from idle", func() (ViewState, error) { return Idle().Choose("x") }, Idle()},
		{"select while reporting", func() (ViewState, error) { return reporting.Select(testFountain) }, reporting},
		{"dismiss while reporting", func() (ViewState, error) { return reporting.Dismiss() }, reporting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidTransition))
			assert.Equal(t, tt.from, got, "state is unchanged")
		})
	}
}
