package problem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/itstheanurag/codejudge/internal/harness"
	"github.com/itstheanurag/codejudge/internal/judgeerr"
)

const (
	metadataFile      = "metadata.json"
	officialTestsFile = "official-tests.json"
	markerFile        = "Marker.java"
)

// FileStore reads problems from <dir>/<id>/.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) read(id, name string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, id, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindInternal, "failed to read "+name)
	}
	return data, nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Problem, error) {
	data, err := s.read(id, metadataFile)
	if err != nil {
		return nil, err
	}
	return decodeProblem(id, data)
}

func (s *FileStore) OfficialTests(_ context.Context, id string) ([]harness.TestCase, error) {
	data, err := s.read(id, officialTestsFile)
	if judgeerr.Is(err, judgeerr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeTests(id, data)
}

func (s *FileStore) Marker(_ context.Context, id string) (string, error) {
	data, err := s.read(id, markerFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
