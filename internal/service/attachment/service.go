package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/medivault/api/internal/model"
	apperrors "github.com/medivault/api/pkg/errors"
	"github.com/medivault/api/pkg/storage"
)

// AttachmentService sits between the HTTP layer and the blob store. It
// owns the upload policy (size bound, extension allowlist) and folds
// store errors into the application taxonomy.
type AttachmentService interface {
	Store(ctx context.Context, name string, size int64, r io.Reader) (*model.AttachmentRef, error)
	Open(ctx context.Context, name string) (io.ReadCloser, *model.AttachmentRef, error)
}

type Service struct {
	store       storage.Store
	maxBytes    int64
	allowedExts map[string]struct{}
}

func NewService(store storage.Store, maxBytes int64, allowedExtensions []string) *Service {
	exts := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Service{
		store:       store,
		maxBytes:    maxBytes,
		allowedExts: exts,
	}
}

// Store validates the upload and writes it to the blob store. It is
// always called before the owning record row is inserted, so the
// returned ref is what ends up embedded in the record.
func (s *Service) Store(ctx context.Context, name string, size int64, r io.Reader) (*model.AttachmentRef, error) {
	if size > s.maxBytes {
		return nil, apperrors.Validation(fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := s.allowedExts[ext]; !ok {
		return nil, apperrors.Validation(fmt.Sprintf("file type %q is not allowed", ext))
	}

	stored, err := s.store.Put(ctx, r, name)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return nil, apperrors.Validation("invalid file name")
		}
		return nil, apperrors.Storage("store attachment", err)
	}

	return &model.AttachmentRef{
		FileName: stored.Name,
		FileSize: stored.Size,
	}, nil
}

// Open returns the blob stream and its metadata for download.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, *model.AttachmentRef, error) {
	rc, info, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, nil, mapStoreErr("open attachment", err)
	}
	return rc, &model.AttachmentRef{FileName: info.Name, FileSize: info.Size}, nil
}

func mapStoreErr(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NotFound("attachment", err)
	case errors.Is(err, storage.ErrInvalidName):
		return apperrors.Validation("invalid file name")
	default:
		return apperrors.Storage(op, err)
	}
}
