package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStep struct {
	name    string
	fail    bool
	journal *[]string
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Execute(context.Context) error {
	*s.journal = append(*s.journal, "exec:"+s.name)
	if s.fail {
		return errors.New(s.name + " failed")
	}
	return nil
}

func (s *recordingStep) Compensate(context.Context) error {
	*s.journal = append(*s.journal, "undo:"+s.name)
	return nil
}

func TestOrchestrator_RollsBackInReverse(t *testing.T) {
	var journal []string
	steps := []Step{
		&recordingStep{name: "a", journal: &journal},
		&recordingStep{name: "b", journal: &journal},
		&recordingStep{name: "c", fail: true, journal: &journal},
	}

	err := NewOrchestrator(steps, nil, nil).Start(context.Background())
	require.EqualError(t, err, "c failed")
	assert.Equal(t, []string{"exec:a", "exec:b", "exec:c", "undo:b", "undo:a"}, journal)
}

func TestOrchestrator_AllStepsSucceed(t *testing.T) {
	var journal []string
	steps := []Step{
		&recordingStep{name: "a", journal: &journal},
		&recordingStep{name: "b", journal: &journal},
	}

	require.NoError(t, NewOrchestrator(steps, nil, nil).Start(context.Background()))
	assert.Equal(t, []string{"exec:a", "exec:b"}, journal)
}
