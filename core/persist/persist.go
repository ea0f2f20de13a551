// Package persist writes the assets of a resource page into a storage.
package persist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/krau/ocw-saver/common/utils/fsutil"
	"github.com/krau/ocw-saver/common/utils/ioutil"
	"github.com/krau/ocw-saver/pkg/enums/ctxkey"
	"github.com/krau/ocw-saver/pkg/ocw"
	"github.com/krau/ocw-saver/pkg/scrape"
	"github.com/krau/ocw-saver/storage"
)

const (
	// MultiAssetOverwrite writes every asset of a resource to the same file; the last one wins.
	MultiAssetOverwrite = "overwrite"
	// MultiAssetSuffix keeps every asset: name.pdf, name_1.pdf, name_2.pdf...
	MultiAssetSuffix = "suffix"
)

const sniffLen = 3072

// File is one asset written to the storage.
type File struct {
	Source   string `yaml:"source"`
	Path     string `yaml:"path"`
	Bytes    int64  `yaml:"bytes"`
	MimeType string `yaml:"mime_type"`
}

type Result struct {
	Resource string
	Filename string
	Files    []File
}

// Record is handed to the history hook after each successful write.
type Record struct {
	Resource string
	File
}

type HistoryFunc func(ctx context.Context, rec Record) error

type Persister struct {
	client     *scrape.Client
	stor       storage.Storage
	multiAsset string
	history    HistoryFunc
	onBytes    ByteCounter
}

type Option func(*Persister)

func WithMultiAsset(policy string) Option {
	return func(p *Persister) {
		if policy != "" {
			p.multiAsset = policy
		}
	}
}

func WithHistory(fn HistoryFunc) Option {
	return func(p *Persister) {
		p.history = fn
	}
}

// ByteCounter receives the size of every chunk read from an asset body. ctx is the
// context handed to Persist.
type ByteCounter func(ctx context.Context, n int64)

func WithByteCounter(fn ByteCounter) Option {
	return func(p *Persister) {
		p.onBytes = fn
	}
}

func New(client *scrape.Client, stor storage.Storage, opts ...Option) (*Persister, error) {
	p := &Persister{
		client:     client,
		stor:       stor,
		multiAsset: MultiAssetOverwrite,
	}
	for _, opt := range opts {
		opt(p)
	}
	switch p.multiAsset {
	case MultiAssetOverwrite, MultiAssetSuffix:
	default:
		return nil, fmt.Errorf("unknown multi asset policy: %s", p.multiAsset)
	}
	return p, nil
}

// Persist streams every asset of resourceURL, in order, into destDir under the
// name derived from resourceURL. No asset means no file.
func (p *Persister) Persist(ctx context.Context, resourceURL string, assets []string, destDir string) (*Result, error) {
	logger := log.FromContext(ctx)
	filename := fsutil.NormalizePathname(ocw.DerivedFilename(resourceURL))
	res := &Result{Resource: resourceURL, Filename: filename}
	if len(assets) == 0 {
		logger.Debug("No assets on resource page", "resource", resourceURL)
		return res, nil
	}
	for i, asset := range assets {
		name := p.assetName(filename, i)
		storagePath := p.stor.JoinStoragePath(path.Join(destDir, name))
		logger.Info("Downloading", "file", name, "url", asset)
		file, err := p.persistAsset(ctx, asset, storagePath)
		if err != nil {
			return res, err
		}
		res.Files = append(res.Files, *file)
		if p.history != nil {
			if err := p.history(ctx, Record{Resource: resourceURL, File: *file}); err != nil {
				logger.Warn("Failed to record download", "path", storagePath, "err", err)
			}
		}
	}
	return res, nil
}

func (p *Persister) assetName(filename string, i int) string {
	if i == 0 || p.multiAsset != MultiAssetSuffix {
		return filename
	}
	ext := path.Ext(filename)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(filename, ext), i, ext)
}

func (p *Persister) persistAsset(ctx context.Context, assetURL, storagePath string) (*File, error) {
	logger := log.FromContext(ctx)
	resp, err := p.client.Get(ctx, assetURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body := bufio.NewReaderSize(resp.Body, sniffLen)
	head, err := body.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, &ocw.FetchError{URL: assetURL, Err: err}
	}
	mt := mimetype.Detect(head)
	if !mt.Is("application/pdf") {
		logger.Warn("Asset does not look like a PDF", "url", assetURL, "mime", mt.String())
	}

	var counted int64
	reader := ioutil.NewProgressReader(body, resp.ContentLength, func(read, total int64) {
		if p.onBytes != nil {
			p.onBytes(ctx, read-counted)
		}
		counted = read
	})
	if resp.ContentLength > 0 {
		ctx = context.WithValue(ctx, ctxkey.ContentLength, resp.ContentLength)
	}
	if err := p.stor.Save(ctx, reader, storagePath); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if readErr := reader.Err(); readErr != nil {
			return nil, &ocw.FetchError{URL: assetURL, Err: readErr}
		}
		return nil, &ocw.FilesystemError{Op: "write", Path: storagePath, Err: err}
	}
	logger.Info("Saved", "path", storagePath, "size", humanize.Bytes(uint64(reader.BytesRead())))
	return &File{
		Source:   assetURL,
		Path:     storagePath,
		Bytes:    reader.BytesRead(),
		MimeType: mt.String(),
	}, nil
}
