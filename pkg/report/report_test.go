package report

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/krau/ocw-saver/pkg/ocw"
)

func TestReport(t *testing.T) {
	r := New()
	first := r.AddListing("https://ocw.mit.edu/courses/c1/pages/assignments/")
	second := r.AddListing("https://ocw.mit.edu/pages/bad/")

	first.SetCourse("c1", "assignments", "c1/assignments")
	first.SetResources(3)
	var wg sync.WaitGroup
	for i := range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i == 2 {
				first.AddFailure("https://ocw.mit.edu/courses/c1/resources/ha3/", &ocw.FetchError{URL: "u", StatusCode: 404})
				return
			}
			first.AddFile(File{Resource: "r", Source: "s", Path: "p", Bytes: 1024})
		}()
	}
	wg.Wait()
	second.AddFailure(second.URL, &ocw.MalformedURLError{URL: second.URL, Reason: "missing"})
	r.Finish()

	tot := r.Totals()
	if tot.Listings != 2 || tot.Resources != 3 || tot.Files != 2 || tot.Bytes != 2048 || tot.Failures != 2 {
		t.Fatalf("Totals() = %+v", tot)
	}
	if r.Listings[0] != first || r.Listings[1] != second {
		t.Fatal("listings are not in insertion order")
	}
	var urlErr *ocw.MalformedURLError
	if err := r.Err(); !errors.As(err, &urlErr) {
		t.Fatalf("Err() = %v, want it to wrap *ocw.MalformedURLError", err)
	}
	if s := r.Summary(); !strings.Contains(s, "2 files saved (2.0 kB)") || !strings.Contains(s, "2 failures") {
		t.Errorf("Summary() = %q", s)
	}

	var buf bytes.Buffer
	if err := r.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}
	var decoded struct {
		ID       string `yaml:"id"`
		Listings []struct {
			URL      string `yaml:"url"`
			Failures []struct {
				Kind string `yaml:"kind"`
			} `yaml:"failures"`
		} `yaml:"listings"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.ID != r.ID || len(decoded.Listings) != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if got := decoded.Listings[1].Failures[0].Kind; got != ocw.KindMalformedURL {
		t.Errorf("failure kind = %q", got)
	}
}

func TestEmptyReport(t *testing.T) {
	r := New()
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
	if s := r.Summary(); !strings.HasPrefix(s, "0 listings") {
		t.Errorf("Summary() = %q", s)
	}
}
