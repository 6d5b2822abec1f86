// Package docroot resolves request paths to filesystem resources.
//
// Resolution is deliberately naive: names are used as given, and no
// traversal protection happens here. Callers are responsible for
// rejecting paths that escape the document root.
package docroot

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/pkg/errors"

	httperrors "github.com/nczempin/httpd-go-uring/errors"
)

// Kind tags the outcome of a resolution
type Kind int

const (
	RegularFile Kind = iota
	Directory
	NotFound
	Error
)

func (k Kind) String() string {
	switch k {
	case RegularFile:
		return "regular file"
	case Directory:
		return "directory"
	case NotFound:
		return "not found"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Resolution is the tagged result of resolving a name.
// Contents is set only for RegularFile, Err only for Error.
type Resolution struct {
	Kind     Kind
	Contents []byte
	Err      error
}

// DocumentRoot resolves a slash-separated name to a resource.
type DocumentRoot interface {
	Resolve(name string) Resolution
}

// Dir resolves names against the operating system filesystem.
// Names are passed to the os package unchanged.
type Dir struct{}

// NewDir returns a DocumentRoot backed by the local filesystem
func NewDir() Dir {
	return Dir{}
}

// Resolve stats name and reads it if it is a regular file
func (Dir) Resolve(name string) Resolution {
	info, err := os.Stat(name)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Resolution{Kind: NotFound}
		}
		return failed(httperrors.ResourceErrorUnreadable, name, err)
	}

	if info.IsDir() {
		return Resolution{Kind: Directory}
	}

	if !info.Mode().IsRegular() {
		return failed(httperrors.ResourceErrorUnsupportedType, name,
			errors.Errorf("unsupported file mode %s", info.Mode()))
	}

	contents, err := os.ReadFile(name)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Resolution{Kind: NotFound}
		}
		return failed(httperrors.ResourceErrorUnreadable, name, err)
	}

	return Resolution{Kind: RegularFile, Contents: contents}
}

func failed(code httperrors.ResourceError, name string, err error) Resolution {
	return Resolution{
		Kind: Error,
		Err:  httperrors.NewResourceError(code, name, errors.WithStack(err)),
	}
}
