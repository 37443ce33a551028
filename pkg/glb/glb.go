// Package glb reads and writes binary glTF 2.0 (GLB) containers.
//
// Decoding and encoding go through qmuntal/gltf. This package checks the
// container up front so callers get stable sentinel errors, bounds-checks
// accessors before any element is read, and exposes the few document
// helpers a static product viewer needs. Animations, skins, textures and
// external buffers are not used.
package glb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/qmuntal/gltf"
)

// GLB format errors.
var (
	ErrInvalidMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedVersion = errors.New("unsupported glTF version")
	ErrTruncated          = errors.New("truncated GLB data")
	ErrMissingJSON        = errors.New("GLB has no JSON chunk")
	ErrInvalidAccessor    = errors.New("invalid accessor")
	ErrExternalBuffer     = errors.New("external buffers are not supported")
)

const (
	headerSize      = 12
	chunkHeaderSize = 8

	magicGLTF = 0x46546C67 // "glTF"
	chunkJSON = 0x4E4F534A // "JSON"
	chunkBIN  = 0x004E4942 // "BIN\0"
)

// File is a parsed GLB. The embedded BIN chunk is the data of the first
// buffer.
type File struct {
	Version  uint32
	Document *Document
}

// BIN returns the embedded binary payload, or nil when there is none.
func (f *File) BIN() []byte {
	if len(f.Document.Buffers) == 0 || f.Document.Buffers[0] == nil {
		return nil
	}
	return f.Document.Buffers[0].Data
}

// Parse parses GLB data from a byte slice.
func Parse(data []byte) (*File, error) {
	data, err := checkContainer(data)
	if err != nil {
		return nil, err
	}

	doc := new(gltf.Document)
	dec := gltf.NewDecoderFS(bytes.NewReader(data), noExternalFS{})
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode glTF: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: asset version %q", ErrUnsupportedVersion, doc.Asset.Version)
	}

	return &File{Version: 2, Document: doc}, nil
}

// checkContainer validates the GLB header and chunk layout and returns data
// trimmed to the declared length.
func checkContainer(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}

	if binary.LittleEndian.Uint32(data[0:4]) != magicGLTF {
		return nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != 2 {
		return nil, fmt.Errorf("%w: container version %d", ErrUnsupportedVersion, v)
	}

	length := binary.LittleEndian.Uint32(data[8:12])
	if uint64(length) > uint64(len(data)) || length < headerSize {
		return nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrTruncated, length, len(data))
	}
	data = data[:length]

	sawJSON := false
	offset := headerSize
	for i := 0; offset < len(data); i++ {
		if len(data)-offset < chunkHeaderSize {
			return nil, ErrTruncated
		}
		chunkLen := uint64(binary.LittleEndian.Uint32(data[offset:]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4:])
		start := offset + chunkHeaderSize
		if chunkLen > uint64(len(data)-start) {
			return nil, fmt.Errorf("%w: chunk %d", ErrTruncated, i)
		}
		if i == 0 {
			if chunkType != chunkJSON {
				return nil, ErrMissingJSON
			}
			sawJSON = true
		}
		offset = start + int(chunkLen)
	}
	if !sawJSON {
		return nil, ErrMissingJSON
	}
	return data, nil
}

// noExternalFS refuses every file so buffers and images referenced by URI
// fail to decode instead of being read from disk.
type noExternalFS struct{}

func (noExternalFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: ErrExternalBuffer}
}

// Decode reads a whole GLB stream.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading GLB: %w", err)
	}
	return Parse(data)
}

// ParseFile parses a GLB file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GLB file: %w", err)
	}
	return Parse(data)
}

// Encode writes doc as a GLB container. The first buffer becomes the BIN
// chunk.
func Encode(w io.Writer, doc *Document) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode GLB: %w", err)
	}
	return nil
}
