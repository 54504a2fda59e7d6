package cfg

import (
	"fmt"
	"os"
)

// GenericSection is one section of a file read with the shared grammar but
// no model-dialect interpretation. Params keeps the raw parameter lines in
// file order.
type GenericSection struct {
	Tag    string
	Params []string
	Line   int
}

// GenericFile is the uninterpreted section stream of a map-dialect file
// (global.cfg, tile maps, spline profiles). Callers walk Sections in order
// or pull all sections of one tag with Get.
type GenericFile struct {
	Path     string
	Sections []GenericSection
}

// ReadGeneric splits raw bytes into sections without interpreting any tag.
func ReadGeneric(data []byte, path string, opts ReadOptions) *GenericFile {
	f := &GenericFile{Path: path}
	for _, sec := range splitSections(data, opts.encoding()) {
		f.Sections = append(f.Sections, GenericSection{Tag: sec.tag, Params: sec.params, Line: sec.line})
	}
	return f
}

// ReadGenericFile reads a map-dialect file from disk.
func ReadGenericFile(path string, opts ReadOptions) (*GenericFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ReadGeneric(data, path, opts), nil
}

// Get returns the parameter blocks of every section with the given tag, in
// file order. The tag includes its brackets.
func (f *GenericFile) Get(tag string) [][]string {
	var out [][]string
	for _, sec := range f.Sections {
		if sec.Tag == tag {
			out = append(out, sec.Params)
		}
	}
	return out
}

// First returns the first section with the given tag, or nil.
func (f *GenericFile) First(tag string) *GenericSection {
	for i := range f.Sections {
		if f.Sections[i].Tag == tag {
			return &f.Sections[i]
		}
	}
	return nil
}

// Has reports whether any section carries the given tag.
func (f *GenericFile) Has(tag string) bool {
	return f.First(tag) != nil
}
