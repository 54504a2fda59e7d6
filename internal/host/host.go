// Package host supplies the filesystem capabilities the parsing core keeps
// injected: texture-file resolution and sidecar-config lookup. The core
// packages never search the filesystem themselves.
package host

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/o3dtools/o3dkit/pkg/cfg"
	"github.com/o3dtools/o3dkit/pkg/encoding"
	"github.com/o3dtools/o3dkit/pkg/sli"
)

// FS resolves assets under an installation root. Lookups are
// case-insensitive so maps authored on Windows load from case-sensitive
// filesystems.
type FS struct {
	// Root is the installation root; the upward texture search stops there.
	Root string
	// Encoding overrides the text encoding of sidecar configs.
	Encoding encoding.Name
}

// ResolveTexture locates a texture declared by a model, profile or map
// file. The first candidate follows the declaring file's convention (.sco
// keeps textures in a texture subfolder, .map under the installation root,
// model configs under ../texture); after that the search walks up the
// directory tree trying dir and dir/texture. At every step a .dds sibling
// of the declared name wins over the declared extension.
func (f *FS) ResolveTexture(baseFile, texture string) (string, bool) {
	rel := filepath.FromSlash(strings.ToLower(strings.ReplaceAll(texture, "\\", "/")))
	base := filepath.Dir(baseFile)

	var first string
	switch strings.ToLower(filepath.Ext(baseFile)) {
	case ".sco":
		first = filepath.Join(base, "texture", rel)
	case ".map":
		first = filepath.Join(base, "..", "..", rel)
	default:
		first = filepath.Join(base, "..", "texture", rel)
	}
	if p, ok := statPreferDDS(first); ok {
		return p, true
	}

	dir := base
	for {
		if p, ok := statPreferDDS(filepath.Join(dir, rel)); ok {
			return p, true
		}
		if p, ok := statPreferDDS(filepath.Join(dir, "texture", rel)); ok {
			return p, true
		}
		if f.Root != "" && sameFile(dir, f.Root) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// SidecarFinder adapts the resolver to the profile loader: the sidecar of
// a texture is "<texture>.cfg" next to the resolved file.
func (f *FS) SidecarFinder() sli.SidecarFinder {
	return func(profilePath, texture string) *cfg.GenericFile {
		tex, ok := f.ResolveTexture(profilePath, texture)
		if !ok {
			return nil
		}
		path, ok := statCaseInsensitive(tex + ".cfg")
		if !ok {
			return nil
		}
		sidecar, err := cfg.ReadGenericFile(path, cfg.ReadOptions{Encoding: f.Encoding})
		if err != nil {
			return nil
		}
		return sidecar
	}
}

// statPreferDDS resolves a candidate path, trying a .dds sibling before the
// declared extension.
func statPreferDDS(path string) (string, bool) {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".dds") {
		if p, ok := statCaseInsensitive(strings.TrimSuffix(path, ext) + ".dds"); ok {
			return p, true
		}
	}
	return statCaseInsensitive(path)
}

// statCaseInsensitive stats a path, falling back to a case-insensitive scan
// of the parent directory for the final element.
func statCaseInsensitive(path string) (string, bool) {
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return path, true
	}

	dir, name := filepath.Split(path)
	entries, err := os.ReadDir(filepath.Clean(dir))
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(filepath.Clean(dir), e.Name()), true
		}
	}
	return "", false
}

func sameFile(a, b string) bool {
	fa, errA := os.Stat(a)
	fb, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(fa, fb)
}
