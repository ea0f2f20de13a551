package ioutil

import (
	"io"
	"sync/atomic"
)

var _ io.Reader = (*ProgressReader)(nil)

// ProgressReader counts the bytes read through it and reports them to onProgress.
// total is the expected size, or -1 when unknown.
type ProgressReader struct {
	reader     io.Reader
	total      int64
	read       atomic.Int64
	err        atomic.Pointer[error]
	onProgress func(read int64, total int64)
}

func NewProgressReader(r io.Reader, total int64, onProgress func(read int64, total int64)) *ProgressReader {
	return &ProgressReader{
		reader:     r,
		total:      total,
		onProgress: onProgress,
	}
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		read := pr.read.Add(int64(n))
		if pr.onProgress != nil {
			pr.onProgress(read, pr.total)
		}
	}
	if err != nil && err != io.EOF {
		pr.err.Store(&err)
	}
	return n, err
}

// Err returns the last error of the underlying reader other than io.EOF
func (pr *ProgressReader) Err() error {
	if err := pr.err.Load(); err != nil {
		return *err
	}
	return nil
}

// BytesRead returns the number of bytes read so far
func (pr *ProgressReader) BytesRead() int64 {
	return pr.read.Load()
}

// Progress returns the current progress as a float64 between 0 and 1, 0 when the total is unknown
func (pr *ProgressReader) Progress() float64 {
	if pr.total <= 0 {
		return 0
	}
	return float64(pr.read.Load()) / float64(pr.total)
}
