package coursetree

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/krau/ocw-saver/pkg/enums/ctxkey"
)

// RunInfo is a live view of the counters of a run.
type RunInfo interface {
	RunID() string
	TotalListings() int
	DoneListings() int
	TotalResources() int
	DoneResources() int
	DownloadedBytes() int64
	StartedAt() time.Time
}

type ProgressTracker interface {
	OnStart(ctx context.Context, info RunInfo)
	OnProgress(ctx context.Context, info RunInfo)
	OnDone(ctx context.Context, info RunInfo, err error)
}

var _ RunInfo = (*runState)(nil)

type runState struct {
	id             string
	start          time.Time
	totalListings  atomic.Int64
	doneListings   atomic.Int64
	totalResources atomic.Int64
	doneResources  atomic.Int64
	bytes          atomic.Int64
}

func runStateFrom(ctx context.Context) *runState {
	st, _ := ctx.Value(ctxkey.RunState).(*runState)
	return st
}

func (s *runState) RunID() string          { return s.id }
func (s *runState) TotalListings() int     { return int(s.totalListings.Load()) }
func (s *runState) DoneListings() int      { return int(s.doneListings.Load()) }
func (s *runState) TotalResources() int    { return int(s.totalResources.Load()) }
func (s *runState) DoneResources() int     { return int(s.doneResources.Load()) }
func (s *runState) DownloadedBytes() int64 { return s.bytes.Load() }
func (s *runState) StartedAt() time.Time   { return s.start }
