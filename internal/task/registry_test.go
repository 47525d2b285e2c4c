package task

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swerrors "github.com/sitewright/sitewright/internal/errors"
)

func noop(context.Context) error { return nil }

// recorder registers a task whose action appends its name to a shared trace.
func recorder(t *testing.T, r *Registry, name string, prereqs []string, trace *[]string) {
	t.Helper()
	require.NoError(t, r.Register(name, prereqs, func(context.Context) error {
		*trace = append(*trace, name)
		return nil
	}))
}

func TestRegister_RejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("clean", nil, noop))

	err := r.Register("clean", nil, noop)
	require.Error(t, err)
	assert.True(t, swerrors.IsCategory(err, swerrors.CategoryConfig))
}

func TestRegister_RejectsEmptyNameAndNilAction(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Register("", nil, noop))
	require.Error(t, r.Register("clean", nil, nil))
}

func TestRun_PrerequisitesPrecedeDependents(t *testing.T) {
	r := NewRegistry()
	var trace []string
	recorder(t, r, "clean", nil, &trace)
	recorder(t, r, "copyhtml", []string{"clean"}, &trace)
	recorder(t, r, "transform", []string{"clean"}, &trace)
	recorder(t, r, "default", []string{"copyhtml", "transform"}, &trace)

	report, err := r.Run(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, report.State)
	assert.NotEmpty(t, report.ID)

	// Every prerequisite completes strictly before its dependent begins.
	pos := map[string]int{}
	for i, n := range trace {
		pos[n] = i
	}
	assert.Less(t, pos["clean"], pos["copyhtml"])
	assert.Less(t, pos["clean"], pos["transform"])
	assert.Less(t, pos["copyhtml"], pos["default"])
	assert.Less(t, pos["transform"], pos["default"])
}

func TestRun_SharedPrerequisiteExecutesOnce(t *testing.T) {
	r := NewRegistry()
	var cleanRuns atomic.Int32
	require.NoError(t, r.Register("clean", nil, func(context.Context) error {
		cleanRuns.Add(1)
		return nil
	}))
	require.NoError(t, r.Register("copyhtml", []string{"clean"}, noop))
	require.NoError(t, r.Register("transform", []string{"clean"}, noop))
	require.NoError(t, r.Register("default", []string{"copyhtml", "transform"}, noop))

	_, err := r.Run(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, int32(1), cleanRuns.Load())

	// Memoization is per invocation: a second Run executes clean again.
	_, err = r.Run(context.Background(), "copyhtml")
	require.NoError(t, err)
	assert.Equal(t, int32(2), cleanRuns.Load())
}

func TestRun_UnresolvablePrerequisite(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("default", []string{"missing"}, noop))

	report, err := r.Run(context.Background(), "default")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "unresolvable task name")
}

func TestRun_CycleDetectedBeforeExecution(t *testing.T) {
	r := NewRegistry()
	var executed atomic.Int32
	count := func(context.Context) error { executed.Add(1); return nil }
	require.NoError(t, r.Register("a", []string{"b"}, count))
	require.NoError(t, r.Register("b", []string{"a"}, count))

	_, err := r.Run(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
	assert.Equal(t, int32(0), executed.Load())
}

func TestRun_FailureAbortsRemainingOrder(t *testing.T) {
	r := NewRegistry()
	var trace []string
	recorder(t, r, "clean", nil, &trace)
	require.NoError(t, r.Register("copyhtml", []string{"clean"}, func(context.Context) error {
		return fmt.Errorf("disk full")
	}))
	recorder(t, r, "default", []string{"copyhtml"}, &trace)

	report, err := r.Run(context.Background(), "default")
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, StateFailed, report.State)
	assert.Equal(t, []string{"clean"}, report.Executed)
	assert.NotContains(t, trace, "default")
	assert.True(t, swerrors.IsCategory(err, swerrors.CategoryTask))
}

func TestRun_CanceledContextStopsExecution(t *testing.T) {
	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Register("clean", nil, func(context.Context) error {
		cancel()
		return nil
	}))
	require.NoError(t, r.Register("default", []string{"clean"}, noop))

	report, err := r.Run(ctx, "default")
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, StateFailed, report.State)
	assert.Equal(t, []string{"clean"}, report.Executed)
}

func TestNames_RegistrationOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("clean", nil, noop))
	require.NoError(t, r.Register("copyhtml", nil, noop))
	assert.Equal(t, []string{"clean", "copyhtml"}, r.Names())
}
