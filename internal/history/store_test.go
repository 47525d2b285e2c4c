package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewright/sitewright/internal/task"
)

func report(name string, state task.RunState, err error) *task.Report {
	started := time.Now().Add(-250 * time.Millisecond)
	return &task.Report{
		ID:       "run-" + name,
		Task:     name,
		State:    state,
		Started:  started,
		Finished: time.Now(),
		Err:      err,
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Append(context.Background(), report("default", task.StateCompleted, nil), 3))
	require.NoError(t, s.Append(context.Background(), report("copyhtml", task.StateFailed, fmt.Errorf("disk full")), 0))

	records, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "copyhtml", records[0].Task)
	assert.Equal(t, string(task.StateFailed), records[0].State)
	assert.Equal(t, "disk full", records[0].Error)

	assert.Equal(t, "default", records[1].Task)
	assert.Equal(t, 3, records[1].Files)
	assert.GreaterOrEqual(t, records[1].DurationMS, int64(200))
}

func TestStore_RecentLimit(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(context.Background(), report(fmt.Sprintf("t%d", i), task.StateCompleted, nil), 0))
	}

	records, err := s.Recent(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "t4", records[0].Task)
}
