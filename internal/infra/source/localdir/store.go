package localdir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yanqian/activity-for-you/internal/domain/activity"
)

// Store reads recommendation documents from {basePath}/{city}.json.
type Store struct {
	basePath string
}

// NewStore constructs a filesystem-backed source rooted at basePath.
func NewStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

// DocumentPath builds the on-disk location of a city's document.
func DocumentPath(basePath, city string) string {
	return filepath.Join(basePath, fmt.Sprintf("%s.json", city))
}

// Fetch reads the raw document for city.
func (s *Store) Fetch(ctx context.Context, city string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.basePath == "" {
		return nil, errors.New("document directory not configured")
	}
	path := DocumentPath(s.basePath, city)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, activity.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

var _ activity.DocumentSource = (*Store)(nil)
