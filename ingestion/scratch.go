package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// UploadedArtifact is the scratch-file handle for one ingestion run. The
// artifact is exclusively owned by its run and its file is deleted on every
// exit path.
type UploadedArtifact struct {
	Path         string
	OriginalName string
	ContentType  string
	Encoding     string
	Bucket       string
	Size         int64
}

// ScratchStore manages uniquely named local files holding inbound uploads for
// the duration of one ingestion run.
type ScratchStore struct {
	dir     string
	maxSize int64 // max bytes per upload, 0 means unlimited
	logger  *slog.Logger
}

// NewScratchStore creates a scratch store rooted at dir, creating the
// directory if needed. maxSize of 0 disables the upload size limit.
func NewScratchStore(dir string, maxSize int64, logger *slog.Logger) (*ScratchStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &ScratchStore{
		dir:     dir,
		maxSize: maxSize,
		logger:  logger.With("component", "scratch"),
	}, nil
}

// Acquire streams the inbound bytes into a uniquely named scratch file and
// returns the artifact describing it. If the configured size limit is crossed
// mid-write the partial file is removed and ErrSizeLimitExceeded is returned.
func (s *ScratchStore) Acquire(ctx context.Context, r io.Reader, name, contentType, encoding, bucket string) (*UploadedArtifact, error) {
	path := filepath.Join(s.dir, uuid.NewString())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, err
	}

	limit := s.maxSize
	if limit <= 0 {
		limit = int64(1) << 62
	}

	written, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.ReleaseFiles(path)
		return nil, err
	}
	if written > limit {
		s.ReleaseFiles(path)
		return nil, fmt.Errorf("%w: limit %d bytes", ErrSizeLimitExceeded, s.maxSize)
	}
	if written == 0 {
		s.ReleaseFiles(path)
		return nil, ErrEmptyFile
	}

	return &UploadedArtifact{
		Path:         path,
		OriginalName: name,
		ContentType:  contentType,
		Encoding:     encoding,
		Bucket:       bucket,
		Size:         written,
	}, nil
}

// ReleaseFiles deletes the listed scratch files. Missing files are tolerated,
// so releasing the same path twice is a no-op; other removal errors are
// logged but not returned.
func (s *ScratchStore) ReleaseFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("failed to remove scratch file", "path", path, "err", err)
		}
	}
}
