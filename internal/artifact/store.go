package artifact

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"

	"github.com/wagiedev/msf-mcp-go/internal/errors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store writes payload artifacts beneath a single directory.
type Store struct {
	log *slog.Logger
	fs  afero.Fs
	dir string
}

// NewStore creates a store rooted at dir on fs. A nil fs uses the OS
// filesystem.
func NewStore(log *slog.Logger, fs afero.Fs, dir string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Store{
		log: log.With("component", "artifact"),
		fs:  fs,
		dir: dir,
	}
}

// Dir returns the directory artifacts are written to.
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the artifact file name for module rendered in format.
func FileName(module, format string) string {
	return strings.ReplaceAll(module, "/", "_") + "." + format
}

// ValidFormat reports whether format can be used as a file extension. It
// must be non-empty and must not name a path.
func ValidFormat(format string) bool {
	return format != "" && !strings.ContainsAny(format, `/\`) && !strings.Contains(format, "..")
}

// path returns the location of name beneath the store directory, keeping a
// leading "./" of the configured directory. Names that resolve outside the
// directory are rejected.
func (s *Store) path(name string) (string, error) {
	path := filepath.Join(s.dir, name)

	rel, err := filepath.Rel(filepath.Clean(s.dir), path)
	if err != nil || rel == "." || rel == ".." || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("%w: %q is outside %s", errors.ErrUnsafeArtifactPath, name, s.dir)
	}

	if prefix := "." + string(filepath.Separator); strings.HasPrefix(s.dir, prefix) {
		path = prefix + path
	}

	return path, nil
}

// Save extracts the payload bytes from result and writes them to
// <dir>/FileName(module, format), creating the directory when needed.
// It returns the written path. Nothing is written outside the directory.
func (s *Store) Save(module, format string, result any) (string, error) {
	data, err := ExtractData(result)
	if err != nil {
		return "", &errors.ArtifactError{Module: module, Err: err}
	}

	path, err := s.path(FileName(module, format))
	if err != nil {
		return "", &errors.ArtifactError{Module: module, Err: err}
	}

	if err := s.fs.MkdirAll(s.dir, dirPerm); err != nil {
		return "", &errors.ArtifactError{Module: module, Err: fmt.Errorf("create %s: %w", s.dir, err)}
	}

	if err := afero.WriteFile(s.fs, path, data, filePerm); err != nil {
		return "", &errors.ArtifactError{Module: module, Err: fmt.Errorf("write %s: %w", path, err)}
	}

	s.log.Info("Saved payload", "module", module, "path", path, "bytes", len(data))

	return path, nil
}

// ExtractData returns the raw payload bytes carried in the "data" field of a
// generation result.
//
// msfrpcd encodes binary data in several ways depending on the transport in
// front of it, so the field may be a string, a list of byte values, or an
// object holding base64 text under "$binary" or "base64".
func ExtractData(result any) ([]byte, error) {
	fields, ok := result.(map[string]any)
	if !ok {
		return nil, errors.ErrNoPayloadData
	}

	raw, ok := fields["data"]
	if !ok || raw == nil {
		return nil, errors.ErrNoPayloadData
	}

	switch v := raw.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case []any:
		return bytesFromList(v)
	case map[string]any:
		for _, key := range []string{"$binary", "base64"} {
			encoded, ok := v[key].(string)
			if !ok {
				continue
			}

			data, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("decode %s data: %w", key, err)
			}

			return data, nil
		}
	}

	return nil, fmt.Errorf("%w: unsupported data encoding %T", errors.ErrNoPayloadData, raw)
}

func bytesFromList(items []any) ([]byte, error) {
	data := make([]byte, len(items))
	for i, item := range items {
		n, err := cast.ToIntE(item)
		if err != nil || n < 0 || n > 255 {
			return nil, fmt.Errorf("%w: element %d is not a byte", errors.ErrNoPayloadData, i)
		}

		data[i] = byte(n)
	}

	return data, nil
}
