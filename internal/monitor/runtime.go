// Package monitor bundles the default runtime library: assembly source, embedded in
// the binary, implementing the parts of the calling convention and heap that the
// processor itself does not -- a bump allocator over pep, the register save/restore
// macros, and the enter_frame/leave_frame macros a call/ret-based function uses to
// manage its frame. Programs pull these in the
// ordinary way, with `.include "rvm/alloc.rvmasm"` or `.include "rvm/callconv.rvmasm"`;
// they are never linked automatically.
package monitor

import (
	"embed"
	"io/fs"
	"os"
	"path"
)

//go:embed lib/*.rvmasm
var library embed.FS

// libraryPrefix is stripped from an include path before it is looked up in the
// embedded filesystem: `.include "rvm/alloc.rvmasm"` resolves to `lib/alloc.rvmasm`.
const libraryPrefix = "rvm/"

// Reader is an asm.FileReader that tries the local filesystem first and falls back to
// this package's embedded runtime library, so a program can `.include` the bundled
// allocator and calling-convention macros without the caller needing to unpack them to
// disk or extend -L for every build.
type Reader struct{}

// Read returns path's contents, from disk if it exists there, otherwise from the
// embedded library if path (stripped of libraryPrefix) names one of its files.
func (Reader) Read(p string) (string, error) {
	if b, err := os.ReadFile(p); err == nil {
		return string(b), nil
	}

	name := p
	if rel, ok := cutPrefix(p, libraryPrefix); ok {
		name = rel
	}

	b, err := library.ReadFile(path.Join("lib", name))
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}

	return s, false
}

// FS returns the embedded runtime library for callers that want to inspect or extract
// it directly rather than through a Reader.
func FS() fs.FS { return library }
