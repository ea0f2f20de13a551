package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/fileutil"
	config "github.com/krau/ocw-saver/config/storage"
	storenum "github.com/krau/ocw-saver/pkg/enums/storage"
)

type Local struct {
	config config.LocalStorageConfig
	logger *log.Logger
}

func (l *Local) Init(ctx context.Context, cfg config.StorageConfig) error {
	localConfig, ok := cfg.(*config.LocalStorageConfig)
	if !ok {
		return fmt.Errorf("failed to cast local config")
	}
	if err := localConfig.Validate(); err != nil {
		return err
	}
	l.config = *localConfig
	l.logger = log.FromContext(ctx).WithPrefix(fmt.Sprintf("local[%s]", l.config.Name))
	if err := os.MkdirAll(localConfig.BasePath, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create local storage directory: %w", err)
	}
	return nil
}

func (l *Local) Type() storenum.StorageType {
	return storenum.Local
}

func (l *Local) Name() string {
	return l.config.Name
}

func (l *Local) JoinStoragePath(p string) string {
	return filepath.Join(l.config.BasePath, filepath.FromSlash(p))
}

func (l *Local) Save(ctx context.Context, r io.Reader, storagePath string) error {
	l.logger.Debugf("Saving file to %s", storagePath)
	absPath, err := filepath.Abs(storagePath)
	if err != nil {
		return err
	}
	if err := fileutil.CreateDir(filepath.Dir(absPath)); err != nil {
		return err
	}
	file, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		if rmErr := os.Remove(absPath); rmErr != nil {
			l.logger.Warnf("Failed to remove partial file %s: %v", absPath, rmErr)
		}
		return err
	}
	return file.Close()
}

// MkDir relies on os.Mkdir failing with fs.ErrExist, so exactly one caller sees created == true.
func (l *Local) MkDir(ctx context.Context, dirPath string) (bool, error) {
	err := os.Mkdir(dirPath, os.ModePerm)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(dirPath), os.ModePerm); err != nil {
			return false, err
		}
		err = os.Mkdir(dirPath, os.ModePerm)
	}
	switch {
	case err == nil:
		l.logger.Debugf("Created directory %s", dirPath)
		return true, nil
	case errors.Is(err, fs.ErrExist):
		info, statErr := os.Stat(dirPath)
		if statErr != nil {
			return false, statErr
		}
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dirPath)
		}
		return false, nil
	default:
		return false, err
	}
}
