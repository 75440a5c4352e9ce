package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MichaelGalo/sushi-train/internal/frame"
	"github.com/MichaelGalo/sushi-train/internal/storage"
	"github.com/MichaelGalo/sushi-train/internal/urlutil"
)

type fakeStore struct {
	folder  string
	object  string
	payload []byte
	putErr  error
}

func (f *fakeStore) Put(_ context.Context, key string, _ io.Reader, size int64, _ storage.PutOptions) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{Key: key, Size: size}, nil
}

func (f *fakeStore) PutParquet(_ context.Context, folder, object string, payload []byte) (storage.ObjectInfo, error) {
	f.folder, f.object, f.payload = folder, object, payload
	if f.putErr != nil {
		return storage.ObjectInfo{}, f.putErr
	}
	return storage.ObjectInfo{Key: fmt.Sprintf("%s/%s", folder, object), Size: int64(len(payload))}, nil
}

func (f *fakeStore) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrObjectNotFound
}

func (f *fakeStore) Stat(context.Context, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, storage.ErrObjectNotFound
}

func (f *fakeStore) List(context.Context, string, string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStore) Delete(context.Context, string) error {
	return nil
}

func TestPullStagesUpstreamRecordsAsParquet(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"name":"salmon nigiri"},{"id":2,"name":"tuna roll"}]`)
	}))
	defer server.Close()

	store := &fakeStore{}
	fetcher := &Fetcher{Store: store}

	params := urlutil.Params{
		{Name: "limit", Value: 2},
		{Name: "fresh", Value: true},
		{Name: "cursor", Value: nil},
	}
	info, err := fetcher.Pull(context.Background(), server.URL+"/menu", params, "raw", "menu.parquet")
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}

	if gotQuery != "limit=2&fresh=true" {
		t.Fatalf("upstream query = %q, want %q", gotQuery, "limit=2&fresh=true")
	}
	if store.folder != "raw" || store.object != "menu.parquet" {
		t.Fatalf("staged as %q/%q", store.folder, store.object)
	}
	if info.Key != "raw/menu.parquet" {
		t.Fatalf("info.Key = %q", info.Key)
	}

	staged, err := frame.DecodeParquet(store.payload)
	if err != nil {
		t.Fatalf("DecodeParquet() error = %v", err)
	}
	if staged.Len() != 2 {
		t.Fatalf("staged rows = %d, want 2", staged.Len())
	}
	name, ok := staged.Value(1, "name")
	if !ok || name != "tuna roll" {
		t.Fatalf("staged name = %v, %v", name, ok)
	}
	id, ok := staged.Value(0, "id")
	if !ok || id != int64(1) {
		t.Fatalf("staged id = %v, %v", id, ok)
	}
}

func TestPullRejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := &Fetcher{Store: &fakeStore{}}
	if _, err := fetcher.Pull(context.Background(), server.URL, nil, "raw", "menu.parquet"); err == nil {
		t.Fatal("expected status error")
	}
}

func TestPullPropagatesUploadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1}]`)
	}))
	defer server.Close()

	store := &fakeStore{putErr: fmt.Errorf("bucket unreachable")}
	fetcher := &Fetcher{Store: store}
	if _, err := fetcher.Pull(context.Background(), server.URL, nil, "raw", "menu.parquet"); err == nil {
		t.Fatal("expected upload error to propagate")
	}
}
