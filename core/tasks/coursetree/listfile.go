package coursetree

import (
	"strings"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/duke-git/lancet/v2/strutil"

	"github.com/krau/ocw-saver/pkg/ocw"
)

// ReadListingFile returns the non-blank lines of a listing url file, trimmed, in file order.
func ReadListingFile(path string) ([]string, error) {
	lines, err := fileutil.ReadFileByLine(path)
	if err != nil {
		return nil, &ocw.FilesystemError{Op: "read", Path: path, Err: err}
	}
	urls := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strutil.IsBlank(line) {
			continue
		}
		urls = append(urls, strings.TrimSpace(line))
	}
	return urls, nil
}
