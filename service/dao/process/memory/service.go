package memory

import (
	"context"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dao/criteria"
	"github.com/viant/procsim/service/dao/store"
)

// Service is the in-memory process table. Find and Remove return the live
// entity owned by the scheduler; List returns copies ordered by id.
type Service struct {
	*store.MemoryStore[int, process.Process]
}

var _ dao.Service[int, process.Process] = (*Service)(nil)

func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Process, error) {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(parameters) == 0 {
		return all, nil
	}
	out := make([]*process.Process, 0, len(all))
	for _, p := range all {
		if !criteria.FilterByState(p.State.String(), parameters) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// TotalMemory sums the memory size of every registered process
func (s *Service) TotalMemory(ctx context.Context) int {
	all, _ := s.MemoryStore.List(ctx)
	total := 0
	for _, p := range all {
		total += p.MemorySize
	}
	return total
}

func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[int, process.Process](
			func(p *process.Process) int { return p.ID },
			(*process.Process).Clone,
		),
	}
}
