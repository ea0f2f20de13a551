package coursetree

import (
	"context"
	"fmt"
	"path"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/slice"
	"golang.org/x/sync/errgroup"

	"github.com/krau/ocw-saver/core"
	"github.com/krau/ocw-saver/core/persist"
	"github.com/krau/ocw-saver/pkg/ocw"
	"github.com/krau/ocw-saver/pkg/report"
)

var _ core.Executable = (*listingTask)(nil)

type listingTask struct {
	id     string
	url    string
	parent string
	// flat writes straight into parent instead of parent/CourseID/CategoryID.
	flat  bool
	entry *report.Listing
	o     *Orchestrator
	state *runState
	abort context.CancelCauseFunc
}

func (t *listingTask) TaskID() string { return t.id }

func (t *listingTask) Title() string { return t.url }

func (t *listingTask) Execute(ctx context.Context) error {
	logger := log.FromContext(ctx).With("listing", t.url)
	ctx = log.WithContext(ctx, logger)
	defer func() {
		t.state.doneListings.Add(1)
		t.o.progress(ctx, t.state)
	}()

	dir := t.parent
	if !t.flat {
		listing, err := ocw.ParseListing(t.url)
		if err != nil {
			return t.fail(ctx, t.url, err)
		}
		courseDir := path.Join(t.parent, listing.CourseID)
		if err := t.o.ensureCourse(ctx, listing, courseDir); err != nil {
			return t.fail(ctx, t.url, err)
		}
		dir = path.Join(courseDir, listing.CategoryID)
		if err := t.o.ensureDir(ctx, dir); err != nil {
			return t.fail(ctx, t.url, err)
		}
		t.entry.SetCourse(listing.CourseID, listing.CategoryID, dir)
	} else {
		t.entry.SetCourse("", "", dir)
	}

	links, err := t.o.resolver.ResolveListing(ctx, t.url, t.o.match)
	if err != nil {
		return t.fail(ctx, t.url, err)
	}
	if t.o.opts.UniqueLinks {
		links = slice.Unique(links)
	}
	t.entry.SetResources(len(links))
	t.state.totalResources.Add(int64(len(links)))
	logger.Infof("Found %d resources", len(links))
	return t.pipeline(ctx, links, dir)
}

type outcome struct {
	res *persist.Result
	err error
}

// pipeline resolves and persists every resource of the listing, at most Threads at
// a time. Outcomes are reported in discovery order.
func (t *listingTask) pipeline(ctx context.Context, links []string, dir string) error {
	outcomes := make([]outcome, len(links))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(t.o.opts.Threads)
	for i, link := range links {
		eg.Go(func() error {
			defer func() {
				t.state.doneResources.Add(1)
				t.o.progress(gctx, t.state)
			}()
			assets, err := t.o.resolver.ResolveAssets(gctx, link)
			if err == nil {
				outcomes[i].res, err = t.o.persister.Persist(gctx, link, assets, dir)
			}
			if err != nil {
				outcomes[i].err = err
				if t.o.opts.FailFast && !isCanceled(gctx, err) {
					t.abort(err)
					return err
				}
				if !isCanceled(gctx, err) {
					log.FromContext(gctx).Error("Resource failed", "resource", link, "err", err)
				}
			}
			return nil
		})
	}
	waitErr := eg.Wait()

	failed := 0
	for i, out := range outcomes {
		if out.res != nil {
			for _, f := range out.res.Files {
				t.entry.AddFile(report.File{Resource: links[i], Source: f.Source, Path: f.Path, Bytes: f.Bytes})
			}
		}
		if out.err != nil && !isCanceled(ctx, out.err) {
			t.entry.AddFailure(links[i], out.err)
			failed++
		}
	}
	if waitErr != nil {
		return waitErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d resources failed", failed, len(links))
	}
	return nil
}

// fail records a listing level error and aborts the run in fail fast mode.
func (t *listingTask) fail(ctx context.Context, url string, err error) error {
	if isCanceled(ctx, err) {
		return err
	}
	t.entry.AddFailure(url, err)
	if t.o.opts.FailFast {
		t.abort(err)
	}
	return err
}
