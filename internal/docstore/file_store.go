package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FileStore keeps receipt documents on the local filesystem, one directory
// per practice. The lifecycle only ever sees the returned reference, so the
// backing storage can be swapped without touching the state machine.
type FileStore struct {
	baseDir string
	log     zerolog.Logger
}

func NewFileStore(baseDir string, log zerolog.Logger) (*FileStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("receipt directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt directory: %w", err)
	}
	return &FileStore{baseDir: baseDir, log: log}, nil
}

func (s *FileStore) StoreReceipt(_ context.Context, practiceID uuid.UUID, fileName string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("receipt content is empty")
	}

	name := sanitizeFileName(fileName)
	if name == "" {
		name = "receipt"
	}
	ref := filepath.Join(practiceID.String(), fmt.Sprintf("%s-%s", uuid.NewString()[:8], name))
	fullPath := filepath.Join(s.baseDir, ref)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create practice directory: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}

	s.log.Debug().Str("practice_id", practiceID.String()).Str("ref", ref).
		Int("size", len(content)).Msg("receipt stored")
	return ref, nil
}

func sanitizeFileName(input string) string {
	input = filepath.Base(strings.TrimSpace(input))
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_', r == '.':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-.")
}
