package filestore

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/file"
)

// DummyStorage keeps uploaded objects in memory; used in tests.
type DummyStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailDelete makes Delete return an error; used to exercise the
	// keep-row-on-remote-failure path.
	FailDelete bool
}

var _ file.Storage = (*DummyStorage)(nil)

func NewDummyStorage() *DummyStorage {
	return &DummyStorage{objects: make(map[string][]byte)}
}

func (st *DummyStorage) Upload(ctx context.Context, content io.Reader, filename string) (file.UploadResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return file.UploadResult{}, errors.Wrap(err, "reading upload content")
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	publicID := uuid.NewString()
	st.objects[publicID] = data
	return file.UploadResult{
		URL:      "https://files.local/" + publicID + "/" + filename,
		PublicID: publicID,
	}, nil
}

func (st *DummyStorage) Delete(ctx context.Context, publicID string) error {
	if st.FailDelete {
		return errors.New("remote deletion failed")
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.objects, publicID)
	return nil
}

// Exists reports whether an object is still stored.
func (st *DummyStorage) Exists(publicID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.objects[publicID]
	return ok
}
