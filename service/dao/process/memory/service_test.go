package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/dao"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	srv := New()

	ready := process.New(1, process.NewSpec(10, 100), now)
	blocked := process.New(2, process.NewSpec(10, 50).WithIO(3, 6), now)
	blocked.State = process.StateBlocked
	assert.NoError(t, srv.Insert(ctx, blocked))
	assert.NoError(t, srv.Insert(ctx, ready))
	assert.True(t, errors.Is(srv.Insert(ctx, process.New(1, process.NewSpec(1, 1), now)), dao.ErrDuplicateID))

	testCases := []struct {
		name       string
		parameters []*dao.Parameter
		expectIDs  []int
	}{
		{name: "all", expectIDs: []int{1, 2}},
		{name: "ready", parameters: []*dao.Parameter{dao.NewParameter(dao.StateParameter, "ready")}, expectIDs: []int{1}},
		{name: "blocked or running", parameters: []*dao.Parameter{dao.NewParameter(dao.StateParameter, "Blocked", "Running")}, expectIDs: []int{2}},
		{name: "running", parameters: []*dao.Parameter{dao.NewParameter(dao.StateParameter, "Running")}, expectIDs: []int{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := srv.List(ctx, tc.parameters...)
			assert.NoError(t, err)
			ids := make([]int, 0, len(list))
			for _, p := range list {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.expectIDs, ids)
		})
	}

	assert.Equal(t, 150, srv.TotalMemory(ctx))

	removed, err := srv.Remove(ctx, 1)
	assert.NoError(t, err)
	assert.Same(t, ready, removed)
	_, err = srv.Find(ctx, 1)
	assert.True(t, errors.Is(err, dao.ErrNotFound))
	assert.Equal(t, 50, srv.TotalMemory(ctx))
}
