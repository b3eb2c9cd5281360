// Package encoding marshals and unmarshals the bytecode container the assembler
// produces and the VM loader reads: a program image followed by an 8-byte entry
// address footer, with an optional debug-info prefix carrying label names, source file
// names, label addresses and a line-by-instruction map.
package encoding

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var order = binary.LittleEndian

// ErrMalformed is returned when a bytecode container fails to parse: too short, a
// section offset runs past the end of the blob it indexes into, or the debug flag byte
// is neither 0 nor 1.
var ErrMalformed = errors.New("malformed bytecode container")

// section is a half-open byte range [Start, End) into a DebugInfo's blob.
type section struct {
	Start, End uint64
}

// DebugInfo carries the assembler's source-mapping tables as opaque blobs: LabelNames
// holds NUL-terminated label names; SourceFiles holds NUL-terminated source file names;
// Labels holds one 8-byte little-endian address per name in LabelNames, in the same
// order; Instructions holds newline-terminated text records "file:line:col@address".
// The label table stores no name offsets, and the instruction records name their file
// directly rather than by index into SourceFiles.
type DebugInfo struct {
	LabelNames   []byte
	SourceFiles  []byte
	Labels       []byte
	Instructions []byte
}

func (d *DebugInfo) empty() bool {
	return d == nil || (len(d.LabelNames) == 0 && len(d.SourceFiles) == 0 &&
		len(d.Labels) == 0 && len(d.Instructions) == 0)
}

// Container is the complete on-disk representation of an assembled program.
type Container struct {
	Debug *DebugInfo
	Image []byte
	Entry uint64
}

// Marshal serializes c into the wire format: a one-byte debug-present flag, the four
// (start,end) section pairs and concatenated debug blob if present, then the program
// image, then the 8-byte little-endian entry address.
func (c Container) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	if c.Debug.empty() {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)

		blob := [][]byte{c.Debug.LabelNames, c.Debug.SourceFiles, c.Debug.Labels, c.Debug.Instructions}

		var offset uint64
		for _, part := range blob {
			sec := section{Start: offset, End: offset + uint64(len(part))}
			if err := binary.Write(&buf, order, sec); err != nil {
				return nil, fmt.Errorf("encoding: %w", err)
			}

			offset += uint64(len(part))
		}

		for _, part := range blob {
			buf.Write(part)
		}
	}

	buf.Write(c.Image)

	if err := binary.Write(&buf, order, c.Entry); err != nil {
		return nil, fmt.Errorf("encoding: %w", err)
	}

	return buf.Bytes(), nil
}

// Unmarshal parses b into a Container.
func Unmarshal(b []byte) (Container, error) {
	var c Container

	if len(b) < 9 {
		return c, fmt.Errorf("%w: only %d bytes", ErrMalformed, len(b))
	}

	r := bytes.NewReader(b)

	var hasDebug byte
	if err := binary.Read(r, order, &hasDebug); err != nil {
		return c, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch hasDebug {
	case 0:
		// no debug section
	case 1:
		var secs [4]section
		if err := binary.Read(r, order, &secs); err != nil {
			return c, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		total := secs[3].End
		blob := make([]byte, total)
		if _, err := r.Read(blob); err != nil {
			return c, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		slice := func(s section) ([]byte, error) {
			if s.End > total || s.Start > s.End {
				return nil, fmt.Errorf("%w: section range %d:%d exceeds blob of %d", ErrMalformed, s.Start, s.End, total)
			}

			return blob[s.Start:s.End], nil
		}

		var err error
		debug := &DebugInfo{}

		if debug.LabelNames, err = slice(secs[0]); err != nil {
			return c, err
		}
		if debug.SourceFiles, err = slice(secs[1]); err != nil {
			return c, err
		}
		if debug.Labels, err = slice(secs[2]); err != nil {
			return c, err
		}
		if debug.Instructions, err = slice(secs[3]); err != nil {
			return c, err
		}

		c.Debug = debug
	default:
		return c, fmt.Errorf("%w: debug flag %#x", ErrMalformed, hasDebug)
	}

	rest := make([]byte, r.Len())
	if _, err := r.Read(rest); err != nil {
		return c, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if len(rest) < 8 {
		return c, fmt.Errorf("%w: missing entry address footer", ErrMalformed)
	}

	c.Image = rest[:len(rest)-8]
	c.Entry = order.Uint64(rest[len(rest)-8:])

	return c, nil
}
