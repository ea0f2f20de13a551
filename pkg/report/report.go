// Package report collects the outcome of a run: what was saved and what failed.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/rs/xid"

	"github.com/krau/ocw-saver/pkg/ocw"
)

type File struct {
	Resource string `yaml:"resource"`
	Source   string `yaml:"source"`
	Path     string `yaml:"path"`
	Bytes    int64  `yaml:"bytes"`
}

type Failure struct {
	URL   string `yaml:"url"`
	Kind  string `yaml:"kind"`
	Error string `yaml:"error"`

	err error
}

// Listing is the outcome of one listing url.
type Listing struct {
	URL        string    `yaml:"url"`
	CourseID   string    `yaml:"course_id,omitempty"`
	CategoryID string    `yaml:"category_id,omitempty"`
	Dir        string    `yaml:"dir,omitempty"`
	Resources  int       `yaml:"resources"`
	Files      []File    `yaml:"files,omitempty"`
	Failures   []Failure `yaml:"failures,omitempty"`

	mu *sync.Mutex
}

type Report struct {
	ID         string     `yaml:"id"`
	StartedAt  time.Time  `yaml:"started_at"`
	FinishedAt time.Time  `yaml:"finished_at"`
	Listings   []*Listing `yaml:"listings"`

	mu sync.Mutex
}

func New() *Report {
	return &Report{
		ID:        xid.New().String(),
		StartedAt: time.Now(),
	}
}

// AddListing appends an entry; entries keep the order they were added in.
func (r *Report) AddListing(url string) *Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := &Listing{URL: url, mu: &r.mu}
	r.Listings = append(r.Listings, l)
	return l
}

func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now()
}

func (l *Listing) SetCourse(courseID, categoryID, dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.CourseID, l.CategoryID, l.Dir = courseID, categoryID, dir
}

func (l *Listing) SetResources(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Resources = n
}

func (l *Listing) AddFile(f File) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Files = append(l.Files, f)
}

// AddFailure records err against url, which is the listing itself or one of its resources.
func (l *Listing) AddFailure(url string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Failures = append(l.Failures, Failure{
		URL:   url,
		Kind:  ocw.Kind(err),
		Error: err.Error(),
		err:   err,
	})
}

type Totals struct {
	Listings  int
	Resources int
	Files     int
	Bytes     int64
	Failures  int
}

func (r *Report) Totals() Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := Totals{Listings: len(r.Listings)}
	for _, l := range r.Listings {
		t.Resources += l.Resources
		t.Files += len(l.Files)
		t.Failures += len(l.Failures)
		for _, f := range l.Files {
			t.Bytes += f.Bytes
		}
	}
	return t
}

// Err joins every recorded failure, nil when there is none.
func (r *Report) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, l := range r.Listings {
		for _, f := range l.Failures {
			errs = append(errs, f.err)
		}
	}
	return errors.Join(errs...)
}

func (r *Report) Summary() string {
	t := r.Totals()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d listings, %d resources, %d files saved (%s)",
		t.Listings, t.Resources, t.Files, humanize.Bytes(uint64(t.Bytes)))
	if t.Failures > 0 {
		fmt.Fprintf(&sb, ", %d failures", t.Failures)
	}
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&sb, " in %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	return sb.String()
}

func (r *Report) WriteYAML(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = w.Write(data)
	return err
}
