//go:build no_bubbletea

package progress

import (
	"context"

	"github.com/krau/ocw-saver/core/tasks/coursetree"
)

func Enabled() bool { return false }

type Tracker struct{}

var _ coursetree.ProgressTracker = (*Tracker)(nil)

func New() *Tracker { return &Tracker{} }

func (t *Tracker) OnStart(ctx context.Context, info coursetree.RunInfo) {}

func (t *Tracker) OnProgress(ctx context.Context, info coursetree.RunInfo) {}

func (t *Tracker) OnDone(ctx context.Context, info coursetree.RunInfo, err error) {}
