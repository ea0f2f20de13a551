//go:build !no_minio

package minio

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	storconfig "github.com/krau/ocw-saver/config/storage"
	"github.com/krau/ocw-saver/pkg/enums/ctxkey"
	"github.com/minio/minio-go/v7"
)

func newTestContext(t *testing.T) context.Context {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{ReportTimestamp: false})
	return log.WithContext(context.Background(), logger)
}

func newFakeMinio(t *testing.T) *Minio {
	t.Helper()

	backend := s3mem.New()
	fakeSrv := gofakes3.New(backend)
	ts := httptest.NewServer(fakeSrv.Server())
	t.Cleanup(ts.Close)

	if err := backend.CreateBucket("ocw-bucket"); err != nil {
		t.Fatalf("failed to create fake bucket: %v", err)
	}

	cfg := &storconfig.MinioStorageConfig{
		BaseConfig: storconfig.BaseConfig{
			Name:   "test-minio",
			Type:   "minio",
			Enable: true,
		},
		Endpoint:        strings.TrimPrefix(ts.URL, "http://"),
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret",
		BucketName:      "ocw-bucket",
		BasePath:        "MIT_OCW",
		Region:          "us-east-1",
	}
	m := &Minio{}
	if err := m.Init(newTestContext(t), cfg); err != nil {
		t.Fatalf("init minio failed: %v", err)
	}
	return m
}

func save(t *testing.T, m *Minio, key string, content []byte) {
	t.Helper()
	ctx := context.WithValue(newTestContext(t), ctxkey.ContentLength, int64(len(content)))
	if err := m.Save(ctx, bytes.NewReader(content), key); err != nil {
		t.Fatalf("Save(%s) failed: %v", key, err)
	}
}

func TestMinio_JoinStoragePath(t *testing.T) {
	m := newFakeMinio(t)
	if got := m.JoinStoragePath("course/assignments/ha1.pdf"); got != "MIT_OCW/course/assignments/ha1.pdf" {
		t.Errorf("JoinStoragePath() = %q", got)
	}
}

func TestMinio_SaveOverwrites(t *testing.T) {
	m := newFakeMinio(t)
	ctx := newTestContext(t)
	key := m.JoinStoragePath("course/assignments/ha1.pdf")

	save(t, m, key, []byte("%PDF-1.4 first"))
	save(t, m, key, []byte("%PDF-1.4 second"))

	obj, err := m.client.GetObject(ctx, "ocw-bucket", key, minio.GetObjectOptions{})
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		t.Fatalf("read object failed: %v", err)
	}
	if string(data) != "%PDF-1.4 second" {
		t.Errorf("content = %q, want the second upload", data)
	}
	if _, err := m.client.StatObject(ctx, "ocw-bucket", m.JoinStoragePath("course/assignments/ha1_1.pdf"), minio.StatObjectOptions{}); err == nil {
		t.Error("Save must not create a suffixed copy")
	}
}

func TestMinio_MkDir(t *testing.T) {
	m := newFakeMinio(t)
	ctx := newTestContext(t)
	dir := m.JoinStoragePath("course")

	created, err := m.MkDir(ctx, dir)
	if err != nil || !created {
		t.Fatalf("MkDir() on empty prefix = %v, %v, want true, nil", created, err)
	}
	save(t, m, dir+"/Link_corso.txt", []byte("Link al corso:\nhttps://ocw.mit.edu/courses/x/"))
	created, err = m.MkDir(ctx, dir)
	if err != nil || created {
		t.Fatalf("MkDir() on populated prefix = %v, %v, want false, nil", created, err)
	}
}
