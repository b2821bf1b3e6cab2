package files

import (
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	ErrTypeIO = "io_failure"

	// file permissions used when writing encoded files.
	filePerm = 0o644
)

// Store reads and writes whole files from the local filesystem.
type Store struct{}

func (Store) ReadBytes(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("reading file failed").
			WithType(ErrTypeIO).
			WithTag("file_name", path).
			Wrap(err)
	}
	return b, nil
}

func (Store) WriteBytes(path string, b []byte) error {
	if err := os.WriteFile(path, b, filePerm); err != nil {
		return errors.New("writing file failed").
			WithType(ErrTypeIO).
			WithTag("file_name", path).
			Wrap(err)
	}
	return nil
}

// FileHandler binds read and write operations to a single path.
type FileHandler struct {
	Path string
}

func NewFileHandler(path string) FileHandler {
	return FileHandler{Path: path}
}

func (h FileHandler) ReadBytes() ([]byte, error) {
	return Store{}.ReadBytes(h.Path)
}

func (h FileHandler) WriteBytes(b []byte) error {
	return Store{}.WriteBytes(h.Path, b)
}

// EncodedFile is a file known to hold encoded bytes.
type EncodedFile struct {
	FileHandler
}

func NewEncodedFile(path string) EncodedFile {
	return EncodedFile{FileHandler: NewFileHandler(path)}
}

// Bytes returns the content of the file.
func (f EncodedFile) Bytes() ([]byte, error) {
	return f.ReadBytes()
}
