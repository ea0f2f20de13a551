package storage

import (
	"fmt"
	"strings"
)

// StorageType names a storage backend in the [[storages]] config table.
type StorageType string

const (
	Local  StorageType = "local"
	Webdav StorageType = "webdav"
	Minio  StorageType = "minio"
)

var storageTypeNames = map[string]StorageType{
	string(Local):  Local,
	string(Webdav): Webdav,
	string(Minio):  Minio,
}

func (s StorageType) String() string {
	return string(s)
}

// ParseStorageType is case-insensitive.
func ParseStorageType(name string) (StorageType, error) {
	if st, ok := storageTypeNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%s is not a valid StorageType", name)
}

// StorageTypeNames lists the supported storage types.
func StorageTypeNames() []string {
	return []string{string(Local), string(Webdav), string(Minio)}
}
