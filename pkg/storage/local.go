package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medivault/api/pkg/metrics"
)

// LocalStore persists blobs as files in a single uploads directory.
// Stored names are the upload instant in milliseconds, a dash, then the
// sanitized original name, so same-named uploads from different callers
// never overwrite each other.
type LocalStore struct {
	dir     string
	clock   Clock
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewLocalStore(dir string, clock Clock, logger *zerolog.Logger, m *metrics.Metrics) (*LocalStore, error) {
	if clock == nil {
		clock = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &LocalStore{dir: dir, clock: clock, logger: logger, metrics: m}, nil
}

func (s *LocalStore) Put(ctx context.Context, payload io.Reader, originalName string) (*StoredFile, error) {
	name, err := s.storedName(originalName)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.countFailure("put")
		return nil, fmt.Errorf("failed to create blob %s: %w", name, err)
	}

	written, err := io.Copy(f, payload)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Partial writes are not served; remove the file so a dangling
		// name is never handed back.
		os.Remove(filepath.Join(s.dir, name))
		s.countFailure("put")
		return nil, fmt.Errorf("failed to write blob %s: %w", name, err)
	}

	if s.metrics != nil {
		s.metrics.AttachmentsStored.Inc()
		s.metrics.AttachmentBytes.Add(float64(written))
	}
	if s.logger != nil {
		s.logger.Debug().Str("blob", name).Int64("size", written).Msg("blob stored")
	}

	return &StoredFile{Name: name, Size: written}, nil
}

func (s *LocalStore) Open(ctx context.Context, storedName string) (io.ReadCloser, *StoredFile, error) {
	info, err := s.Stat(ctx, storedName)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, storedName))
	if err != nil {
		s.countFailure("open")
		return nil, nil, fmt.Errorf("failed to open blob %s: %w", storedName, err)
	}

	if s.metrics != nil {
		s.metrics.AttachmentsServed.Inc()
	}
	return f, info, nil
}

func (s *LocalStore) Stat(ctx context.Context, storedName string) (*StoredFile, error) {
	if err := validateName(storedName); err != nil {
		return nil, err
	}

	info, err := os.Stat(filepath.Join(s.dir, storedName))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.countFailure("stat")
		return nil, fmt.Errorf("failed to stat blob %s: %w", storedName, err)
	}
	if info.IsDir() {
		return nil, ErrInvalidName
	}

	return &StoredFile{Name: storedName, Size: info.Size()}, nil
}

func (s *LocalStore) storedName(originalName string) (string, error) {
	base := sanitize(originalName)
	if base == "" {
		return "", ErrInvalidName
	}
	return strconv.FormatInt(s.clock().UnixMilli(), 10) + "-" + base, nil
}

func (s *LocalStore) countFailure(op string) {
	if s.metrics != nil {
		s.metrics.StorageFailures.WithLabelValues(op).Inc()
	}
}

// sanitize strips any path components from a client-supplied name.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." || name == ".." {
		return ""
	}
	return name
}

// validateName rejects names that could traverse outside the blob area.
func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\") {
		return ErrInvalidName
	}
	return nil
}
