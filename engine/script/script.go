package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"gopkg.in/yaml.v3"
)

// Format identifies the syntax of a script document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

var (
	// ErrFormat is returned for a file extension or format name that is not supported.
	ErrFormat = errors.New("script: unsupported format")
	// ErrInvalid is returned for a document that decodes but cannot be built: duplicate or
	// missing fragment names, unknown references, or malformed data arrays.
	ErrInvalid = errors.New("script: invalid document")
)

// Document is a decoded script: replay settings, named data arrays and fragments.
type Document struct {
	Settings  Settings         `toml:"settings" yaml:"settings"`
	Data      map[string]*Data `toml:"data" yaml:"data"`
	Fragments []FragmentSpec   `toml:"fragment" yaml:"fragments"`
}

// Settings configures how a built program is replayed.
type Settings struct {
	// Mode is an optimization mode accepted by vm.ParseMode; empty means "both".
	Mode string `toml:"mode" yaml:"mode"`
	// Entry names the fragment the chain starts at; empty means the first fragment.
	Entry string `toml:"entry" yaml:"entry"`
	// FrameLimit caps the frame rate of windowed replay; 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit" yaml:"frame_limit"`
	// Frames stops windowed replay after this many frames; 0 runs until the window closes.
	Frames uint64 `toml:"frames" yaml:"frames"`
	// Title, Width and Height configure the replay window.
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// Data is a named host array referenced by pointer arguments as "@name". Exactly one of the
// element slices must be set.
type Data struct {
	Floats []float32 `toml:"floats" yaml:"floats"`
	Ints   []int32   `toml:"ints" yaml:"ints"`
	Uints  []uint32  `toml:"uints" yaml:"uints"`
}

// FragmentSpec describes one fragment: its blocks in order and the fragment it links to.
type FragmentSpec struct {
	Name   string      `toml:"name" yaml:"name"`
	Next   string      `toml:"next" yaml:"next"`
	Blocks []BlockSpec `toml:"block" yaml:"blocks"`
}

// BlockSpec lists the instructions of one block in assembly form, e.g. "BindProgram 3".
type BlockSpec struct {
	Instructions []string `toml:"instructions" yaml:"instructions"`
}

// ParseMode parses the Mode setting.
//
// Returns:
//   - vm.Mode: the parsed mode, vm.ModeAll when unset
//   - error: an error for an unknown mode name
func (s Settings) ParseMode() (vm.Mode, error) {
	if s.Mode == "" {
		return vm.ModeAll, nil
	}
	return vm.ParseMode(s.Mode)
}

// FormatOf returns the format implied by a file name extension.
//
// Parameters:
//   - path: the file name
//
// Returns:
//   - Format: FormatTOML for .toml, FormatYAML for .yaml and .yml
//   - error: ErrFormat for any other extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
}

// Load reads and decodes the script at path, choosing the format by extension.
//
// Parameters:
//   - path: the script file
//
// Returns:
//   - *Document: the decoded document
//   - error: a file system, format or decoding error
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a script document. Unknown keys are rejected in both formats.
//
// Parameters:
//   - data: the document text
//   - format: the document syntax
//
// Returns:
//   - *Document: the decoded document
//   - error: a decoding error or ErrFormat
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, fmt.Errorf("script: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("script: unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("script: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	return &doc, nil
}
