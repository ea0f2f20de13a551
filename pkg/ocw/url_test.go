package ocw

import (
	"errors"
	"testing"
)

const assignmentsURL = "https://ocw.mit.edu/courses/16-225-computational-mechanics-of-materials-fall-2003/pages/assignments/"

func TestParseListing(t *testing.T) {
	l, err := ParseListing(assignmentsURL)
	if err != nil {
		t.Fatalf("ParseListing() error = %v", err)
	}
	if l.CourseID != "16-225-computational-mechanics-of-materials-fall-2003" {
		t.Errorf("CourseID = %q", l.CourseID)
	}
	if l.CategoryID != "assignments" {
		t.Errorf("CategoryID = %q", l.CategoryID)
	}
	if l.Authority != "https://ocw.mit.edu" {
		t.Errorf("Authority = %q", l.Authority)
	}
	wantRoot := "https://ocw.mit.edu/courses/16-225-computational-mechanics-of-materials-fall-2003/"
	if got := l.CourseRootURL(); got != wantRoot {
		t.Errorf("CourseRootURL() = %q, want %q", got, wantRoot)
	}
	if got, want := l.MarkerContent(), "Link al corso:\n"+wantRoot; got != want {
		t.Errorf("MarkerContent() = %q, want %q", got, want)
	}
}

func TestParseListingMalformed(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"no courses segment", "https://ocw.mit.edu/pages/assignments/"},
		{"too few segments", "https://ocw.mit.edu/courses/16-225/pages"},
		{"empty category", "https://ocw.mit.edu/courses/16-225/pages//"},
		{"relative", "/courses/16-225/pages/assignments/"},
		{"garbage", "://bad"},
		{"dot dot course", "https://ocw.mit.edu/courses/%2E%2E/pages/evil/"},
		{"dot category", "https://ocw.mit.edu/courses/16-225/pages/%2e/"},
		{"slash in course", "https://ocw.mit.edu/courses/a%2Fb/pages/nested/"},
		{"backslash in category", "https://ocw.mit.edu/courses/16-225/pages/a%5Cb/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseListing(tt.url)
			var urlErr *MalformedURLError
			if !errors.As(err, &urlErr) {
				t.Fatalf("ParseListing(%q) error = %v, want *MalformedURLError", tt.url, err)
			}
			if urlErr.URL != tt.url {
				t.Errorf("URL = %q, want %q", urlErr.URL, tt.url)
			}
		})
	}
}

func TestDerivedFilename(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://ocw.mit.edu/courses/16-225/resources/ha1/", "ha1.pdf"},
		{"https://ocw.mit.edu/courses/16-225/resources/exam1/", "exam1.pdf"},
		{"https://ocw.mit.edu/courses/16-225/resources/ha1", "resources.pdf"},
		{"https://ocw.mit.edu/courses/16-225/resources/lec%201/", "lec 1.pdf"},
	}
	for _, tt := range tests {
		if got := DerivedFilename(tt.url); got != tt.want {
			t.Errorf("DerivedFilename(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestAuthority(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{assignmentsURL, "https://ocw.mit.edu"},
		{"http://127.0.0.1:8080/courses/x", "http://127.0.0.1:8080"},
		{"https://ocw.mit.edu", "https://ocw.mit.edu"},
	}
	for _, tt := range tests {
		if got := Authority(tt.url); got != tt.want {
			t.Errorf("Authority(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&FetchError{URL: "u", StatusCode: 404}, KindFetch},
		{&MalformedURLError{URL: "u"}, KindMalformedURL},
		{&FilesystemError{Op: "mkdir", Path: "p", Err: errors.New("denied")}, KindFilesystem},
		{errors.New("boom"), KindOther},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if !(&FetchError{StatusCode: 404}).Permanent() || (&FetchError{StatusCode: 503}).Permanent() {
		t.Error("Permanent() must hold for 4xx only")
	}
}
