package host

// fs.go implements HOST_FS_INTR, a single interrupt code multiplexing filesystem
// sub-operations by the value of print: exists, read-all, write-all, create-file,
// create-dir. Paths are NUL-terminated strings read from the address in r1;
// read-all/write-all additionally use input as the data buffer address and r2 as its
// length.

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicobert/rvm/internal/vm"
)

// fsOp values select the HOST_FS_INTR sub-operation via print.
const (
	fsExists fsOp = iota
	fsReadAll
	fsWriteAll
	fsCreateFile
	fsCreateDir
)

type fsOp vm.Word

// Filesystem services HOST_FS_INTR, rooted at a directory so a program can't escape
// its sandbox via ".." components.
type Filesystem struct {
	root string
}

// NewFilesystem roots all paths a running program can name under root.
func NewFilesystem(root string) *Filesystem {
	return &Filesystem{root: root}
}

// Register installs this Filesystem's handler on h.
func (fsys *Filesystem) Register(h *Host) {
	h.Register(vm.HostFsIntr, fsys.dispatch)
}

func (fsys *Filesystem) resolve(p *vm.Processor) (string, bool) {
	raw, err := p.Mem.LoadCString(p.Regs[vm.R1])
	if err != nil {
		return "", false
	}

	clean := filepath.Clean(string(raw))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}

	return filepath.Join(fsys.root, clean), true
}

func (fsys *Filesystem) dispatch(_ context.Context, p *vm.Processor) error {
	path, ok := fsys.resolve(p)
	if !ok {
		setError(p, vm.PermissionDenied)
		return nil
	}

	switch fsOp(p.Regs[vm.Print]) {
	case fsExists:
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			p.Regs[vm.R1] = 0
		} else {
			p.Regs[vm.R1] = 1
		}

		setError(p, vm.NoError)

	case fsReadAll:
		data, err := os.ReadFile(path)
		if err != nil {
			setError(p, vm.NotFound)
			return nil
		}

		if err := p.Mem.StoreBytes(p.Regs[vm.Input], data); err != nil {
			setError(p, vm.OutOfBounds)
			return nil
		}

		p.Regs[vm.R2] = vm.Word(len(data))
		setError(p, vm.NoError)

	case fsWriteAll:
		data, err := p.Mem.LoadBytes(p.Regs[vm.Input], int(p.Regs[vm.R2]))
		if err != nil {
			setError(p, vm.OutOfBounds)
			return nil
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			setError(p, vm.WriteZero)
			return nil
		}

		setError(p, vm.NoError)

	case fsCreateFile:
		f, err := os.Create(path)
		if err != nil {
			setError(p, vm.AlreadyExists)
			return nil
		}
		_ = f.Close()

		setError(p, vm.NoError)

	case fsCreateDir:
		if err := os.MkdirAll(path, 0o755); err != nil {
			setError(p, vm.AlreadyExists)
			return nil
		}

		setError(p, vm.NoError)

	default:
		setError(p, vm.InvalidInput)
	}

	return nil
}
