package asm

// unit.go resolves .include directives across multiple source files into one token
// stream before macro expansion and parsing ever see more than a single unit. Each
// file is read and lexed at most once (by canonical path), so a diamond of includes or
// an accidental cycle is a no-op on the second visit rather than a duplicate
// definition error.

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileReader loads a named source unit. The default implementation reads from the
// local filesystem; tests substitute an in-memory one.
type FileReader interface {
	Read(path string) (string, error)
}

// OSFileReader reads units from disk.
type OSFileReader struct{}

func (OSFileReader) Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// UnitResolver loads a root source file and every file it (transitively) includes via
// `.include "path"`, searching each include first relative to the including file, then
// relative to every directory in SearchPath, then $RUSTYVM_ASM_LIB if set.
type UnitResolver struct {
	reader     FileReader
	SearchPath []string

	seen map[string]bool
}

// NewUnitResolver returns a resolver that reads units via reader.
func NewUnitResolver(reader FileReader) *UnitResolver {
	return &UnitResolver{reader: reader, seen: map[string]bool{}}
}

// LibraryEnvVar names the environment variable holding additional colon-separated
// include search directories, consulted after SearchPath.
const LibraryEnvVar = "RUSTYVM_ASM_LIB"

// Resolve reads root and every unit it includes, returning their concatenated and
// lexed tokens in inclusion order, ending in a single TokEOF. Every unit's labels end
// up in one shared symbol table once parsed, so a label defined in an included file is
// visible to the whole program; the `@` and `@@` sigils are lexed but the parser does
// not accept them.
func (r *UnitResolver) Resolve(root string, errs *ErrorList) []Token {
	var all []Token

	r.resolve(root, filepath.Dir(root), errs, &all)

	// Each unit's lexer ends its stream with TokEOF; keep only one, at the very end, so
	// the parser does not stop at the end of the first included unit.
	merged := make([]Token, 0, len(all)+1)
	for _, tok := range all {
		if tok.Kind != TokEOF {
			merged = append(merged, tok)
		}
	}

	return append(merged, Token{Kind: TokEOF, Info: SourceInfo{File: root}})
}

func (r *UnitResolver) resolve(path, fromDir string, errs *ErrorList, out *[]Token) {
	canon, err := filepath.Abs(path)
	if err != nil {
		canon = path
	}

	if r.seen[canon] {
		return
	}
	r.seen[canon] = true

	src, err := r.reader.Read(path)
	if err != nil {
		errs.Add(&SyntaxError{Info: SourceInfo{File: path}, Msg: fmt.Sprintf("cannot read include: %s", err)})
		return
	}

	lexer := NewLexer(path, src)
	toks := lexer.Tokens(errs)

	for i := 0; i < len(toks); i++ {
		if toks[i].Kind == TokDirective && toks[i].Text == ".include" && i+1 < len(toks) && toks[i+1].Kind == TokString {
			incPath := toks[i+1].Text
			resolved := r.findInclude(incPath, fromDir)

			r.resolve(resolved, filepath.Dir(resolved), errs, out)

			i++ // consume the string token too

			continue
		}

		*out = append(*out, toks[i])
	}
}

// findInclude locates incPath relative to the including file's directory, then each
// entry of SearchPath, then $RUSTYVM_ASM_LIB, falling back to incPath itself (so a
// missing file still produces a clear read error at the right location).
func (r *UnitResolver) findInclude(incPath, fromDir string) string {
	candidates := []string{filepath.Join(fromDir, incPath)}

	for _, dir := range r.SearchPath {
		candidates = append(candidates, filepath.Join(dir, incPath))
	}

	if envPath := os.Getenv(LibraryEnvVar); envPath != "" {
		for _, dir := range filepath.SplitList(envPath) {
			candidates = append(candidates, filepath.Join(dir, incPath))
		}
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}

	return incPath
}
