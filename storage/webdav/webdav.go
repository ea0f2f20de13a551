package webdav

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	config "github.com/krau/ocw-saver/config/storage"
	storenum "github.com/krau/ocw-saver/pkg/enums/storage"
)

type Webdav struct {
	config config.WebdavStorageConfig
	client *Client
	logger *log.Logger
}

func (w *Webdav) Init(ctx context.Context, cfg config.StorageConfig) error {
	webdavConfig, ok := cfg.(*config.WebdavStorageConfig)
	if !ok {
		return fmt.Errorf("failed to cast webdav config")
	}
	if err := webdavConfig.Validate(); err != nil {
		return err
	}
	w.config = *webdavConfig
	w.config.BasePath = strings.Trim(webdavConfig.BasePath, "/")
	w.logger = log.FromContext(ctx).WithPrefix(fmt.Sprintf("webdav[%s]", w.config.Name))
	w.client = NewClient(w.config.URL, w.config.Username, w.config.Password, &http.Client{})
	if _, err := w.client.MkDir(ctx, w.config.BasePath); err != nil {
		return fmt.Errorf("%w %s: %w", ErrFailedToCreateDirectory, w.config.BasePath, err)
	}
	return nil
}

func (w *Webdav) Type() storenum.StorageType {
	return storenum.Webdav
}

func (w *Webdav) Name() string {
	return w.config.Name
}

func (w *Webdav) JoinStoragePath(p string) string {
	return strings.TrimPrefix(path.Join(w.config.BasePath, p), "/")
}

func (w *Webdav) Save(ctx context.Context, r io.Reader, storagePath string) error {
	w.logger.Debugf("Saving file to %s", storagePath)
	if dir := path.Dir(storagePath); dir != "." {
		if _, err := w.client.MkDir(ctx, dir); err != nil {
			w.logger.Errorf("Failed to create directory %s: %v", dir, err)
			return fmt.Errorf("%w: %w", ErrFailedToCreateDirectory, err)
		}
	}
	if err := w.client.WriteFile(ctx, storagePath, r); err != nil {
		w.logger.Errorf("Failed to write file %s: %v", storagePath, err)
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}
	return nil
}

func (w *Webdav) MkDir(ctx context.Context, dirPath string) (bool, error) {
	created, err := w.client.MkDir(ctx, dirPath)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrFailedToCreateDirectory, dirPath, err)
	}
	return created, nil
}
