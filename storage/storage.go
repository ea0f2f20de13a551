package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/krau/ocw-saver/config"
	storcfg "github.com/krau/ocw-saver/config/storage"
	storenum "github.com/krau/ocw-saver/pkg/enums/storage"
	"github.com/krau/ocw-saver/storage/local"
	"github.com/krau/ocw-saver/storage/minio"
	"github.com/krau/ocw-saver/storage/webdav"
)

// Storage is a destination tree for downloaded files. Paths passed to Save and
// MkDir are the results of JoinStoragePath.
type Storage interface {
	Init(ctx context.Context, cfg storcfg.StorageConfig) error
	Type() storenum.StorageType
	Name() string
	JoinStoragePath(p string) string
	// Save writes r to storagePath, replacing any existing file.
	Save(ctx context.Context, r io.Reader, storagePath string) error
	// MkDir creates dirPath if absent and reports whether this call created it.
	MkDir(ctx context.Context, dirPath string) (bool, error)
}

var (
	_ Storage = (*local.Local)(nil)
	_ Storage = (*minio.Minio)(nil)
	_ Storage = (*webdav.Webdav)(nil)
)

var (
	Storages = make(map[string]Storage)
	mu       sync.Mutex
)

type StorageConstructor func() Storage

var storageConstructors = map[storenum.StorageType]StorageConstructor{
	storenum.Local:  func() Storage { return new(local.Local) },
	storenum.Webdav: func() Storage { return new(webdav.Webdav) },
	storenum.Minio:  func() Storage { return new(minio.Minio) },
}

func NewStorage(ctx context.Context, cfg storcfg.StorageConfig) (Storage, error) {
	constructor, ok := storageConstructors[cfg.GetType()]
	if !ok {
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.GetType())
	}

	storage := constructor()
	if err := storage.Init(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to init %s storage: %w", cfg.GetName(), err)
	}

	return storage, nil
}

// NewLocal returns a local storage rooted at basePath, used when no named storage is selected.
func NewLocal(ctx context.Context, basePath string) (Storage, error) {
	return NewStorage(ctx, &storcfg.LocalStorageConfig{
		BaseConfig: storcfg.BaseConfig{Name: "local", Type: string(storenum.Local), Enable: true},
		BasePath:   basePath,
	})
}

// GetStorageByName returns storage by name from cache or creates new one
func GetStorageByName(ctx context.Context, name string) (Storage, error) {
	if name == "" {
		return nil, ErrStorageNameEmpty
	}
	mu.Lock()
	defer mu.Unlock()

	storage, ok := Storages[name]
	if ok {
		return storage, nil
	}
	cfg := config.C().GetStorageByName(name)
	if cfg == nil {
		return nil, fmt.Errorf("storage %s not found", name)
	}

	storage, err := NewStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	Storages[name] = storage
	log.FromContext(ctx).Debugf("Loaded storage %s (%s)", name, storage.Type())
	return storage, nil
}
