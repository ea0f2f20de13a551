// Package coursetree maps course section listing urls to a parent/CourseID/CategoryID
// tree and fills it with the PDF assets of every resource page.
package coursetree

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/xid"

	"github.com/krau/ocw-saver/core"
	"github.com/krau/ocw-saver/core/persist"
	"github.com/krau/ocw-saver/pkg/enums/ctxkey"
	"github.com/krau/ocw-saver/pkg/ocw"
	"github.com/krau/ocw-saver/pkg/queue"
	"github.com/krau/ocw-saver/pkg/report"
	"github.com/krau/ocw-saver/pkg/scrape"
	"github.com/krau/ocw-saver/storage"
)

type Options struct {
	// Workers is the number of listings processed at once.
	Workers int
	// Threads is the number of resources of one listing processed at once.
	Threads int
	// FailFast aborts the whole run on the first error instead of recording it and moving on.
	FailFast bool
	// UniqueLinks drops repeated resource links of a listing, keeping the first.
	UniqueLinks bool
	Progress    ProgressTracker
}

type Orchestrator struct {
	resolver    *scrape.Resolver
	persister   *persist.Persister
	stor        storage.Storage
	match       scrape.Predicate
	opts        Options
	courseLocks keyedMutex
}

// New builds an orchestrator writing into stor. persistOpts configure the file persister.
// Runs on one Orchestrator may overlap; each keeps its own counters.
func New(resolver *scrape.Resolver, stor storage.Storage, match scrape.Predicate, opts Options, persistOpts ...persist.Option) (*Orchestrator, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	o := &Orchestrator{
		resolver: resolver,
		stor:     stor,
		match:    match,
		opts:     opts,
	}
	persistOpts = append(persistOpts, persist.WithByteCounter(func(ctx context.Context, n int64) {
		if st := runStateFrom(ctx); st != nil {
			st.bytes.Add(n)
		}
	}))
	p, err := persist.New(resolver.Client(), stor, persistOpts...)
	if err != nil {
		return nil, err
	}
	o.persister = p
	return o, nil
}

// Run processes listingURLs in order below parent, a storage relative directory
// ("" is the storage root). Failures are recorded in the report; the returned error
// is the cause of an aborted run (fail fast or cancellation).
func (o *Orchestrator) Run(ctx context.Context, listingURLs []string, parent string) (*report.Report, error) {
	rep := report.New()
	if parent != "" {
		if _, err := o.stor.MkDir(ctx, o.stor.JoinStoragePath(parent)); err != nil {
			return rep, &ocw.FilesystemError{Op: "mkdir", Path: parent, Err: err}
		}
	}
	tasks := make([]*listingTask, 0, len(listingURLs))
	for _, u := range listingURLs {
		tasks = append(tasks, &listingTask{
			id:     xid.New().String(),
			url:    u,
			parent: parent,
			entry:  rep.AddListing(u),
		})
	}
	return rep, o.run(ctx, rep, tasks)
}

// RunListing saves the assets of a single listing straight into dest, without a course tree.
func (o *Orchestrator) RunListing(ctx context.Context, listingURL, dest string) (*report.Report, error) {
	rep := report.New()
	if _, err := o.stor.MkDir(ctx, o.stor.JoinStoragePath(dest)); err != nil {
		return rep, &ocw.FilesystemError{Op: "mkdir", Path: dest, Err: err}
	}
	task := &listingTask{
		id:     xid.New().String(),
		url:    listingURL,
		parent: dest,
		flat:   true,
		entry:  rep.AddListing(listingURL),
	}
	return rep, o.run(ctx, rep, []*listingTask{task})
}

func (o *Orchestrator) run(ctx context.Context, rep *report.Report, tasks []*listingTask) error {
	logger := log.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		rep.Finish()
		return err
	}
	st := &runState{id: rep.ID, start: time.Now()}
	st.totalListings.Store(int64(len(tasks)))

	runCtx, cancel := context.WithCancelCause(context.WithValue(ctx, ctxkey.RunState, st))
	defer cancel(nil)

	q := queue.NewTaskQueue[core.Executable]()
	for _, t := range tasks {
		t.o = o
		t.state = st
		t.abort = cancel
		if err := q.Add(queue.NewTask[core.Executable](runCtx, t.id, t)); err != nil {
			return err
		}
	}
	q.Close()

	if o.opts.Progress != nil {
		o.opts.Progress.OnStart(ctx, st)
	}
	core.Run(ctx, q, o.opts.Workers)
	rep.Finish()

	var err error
	switch {
	case ctx.Err() != nil:
		err = ctx.Err()
	case runCtx.Err() != nil:
		err = context.Cause(runCtx)
	}
	if err != nil {
		logger.Error("Run aborted", "err", err)
	}
	logger.Info(rep.Summary())
	if o.opts.Progress != nil {
		o.opts.Progress.OnDone(ctx, st, err)
	}
	return err
}

// ensureCourse creates the course directory and, only when this call created it,
// writes the marker file.
func (o *Orchestrator) ensureCourse(ctx context.Context, l *ocw.Listing, courseDir string) error {
	logger := log.FromContext(ctx)
	unlock := o.courseLocks.lock(l.CourseID)
	defer unlock()

	created, err := o.stor.MkDir(ctx, o.stor.JoinStoragePath(courseDir))
	if err != nil {
		return &ocw.FilesystemError{Op: "mkdir", Path: courseDir, Err: err}
	}
	if !created {
		logger.Debug("Course directory already exists", "dir", courseDir)
		return nil
	}
	markerPath := o.stor.JoinStoragePath(path.Join(courseDir, ocw.MarkerFileName))
	if err := o.stor.Save(ctx, strings.NewReader(l.MarkerContent()), markerPath); err != nil {
		return &ocw.FilesystemError{Op: "write", Path: markerPath, Err: err}
	}
	logger.Info("Created course directory", "course", l.CourseID, "dir", courseDir)
	return nil
}

func (o *Orchestrator) ensureDir(ctx context.Context, dir string) error {
	if _, err := o.stor.MkDir(ctx, o.stor.JoinStoragePath(dir)); err != nil {
		return &ocw.FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}

func (o *Orchestrator) progress(ctx context.Context, st *runState) {
	if o.opts.Progress != nil {
		o.opts.Progress.OnProgress(ctx, st)
	}
}

func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
