package pid

import (
	"os"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/zensensors/internal/errors"
	"github.com/spf13/afero"
)

const filePerm = 0o600

// File guards against two instances running at once.
type File struct {
	fs   afero.Fs
	path string
}

// New returns a PID file at path on the OS filesystem.
func New(path string) *File {
	return NewWithFs(afero.NewOsFs(), path)
}

func NewWithFs(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

// Write writes the current process ID to the PID file, unless the file names
// a process that is still alive.
func (f *File) Write() error {
	errFactory := errors.New()

	if exists, err := afero.Exists(f.fs, f.path); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	} else if exists {
		// PID file exists, check if the process is running
		data, err := afero.ReadFile(f.fs, f.path)
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && isRunning(pid) {
			return errFactory.WithData(errors.ErrAlreadyRunning, pid)
		}
	}

	if err := afero.WriteFile(f.fs, f.path, []byte(strconv.Itoa(os.Getpid())), filePerm); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func (f *File) Remove() error {
	errFactory := errors.New()

	if exists, _ := afero.Exists(f.fs, f.path); !exists {
		return nil
	}

	if err := f.fs.Remove(f.path); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

func isRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}
