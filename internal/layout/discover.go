package layout

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discovery is a sorted, glob-based listing of every shard under one
// source tree root, read back off disk before a pack operation.
type Discovery struct {
	Screens            []string
	ComponentSources   []string
	TestSources        []string
	EditorStates       []string
	ImportedComponents []string
	DataSources        []string
	Assets             []string
	OtherFiles         []string
}

// globRoot runs a single doublestar pattern rooted at root and returns
// the matches sorted for deterministic iteration.
func globRoot(root, pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Discover walks root's known shard locations plus its Other/
// passthrough bucket, returning every matched file sorted within each
// category.
func Discover(root string) (*Discovery, error) {
	d := &Discovery{}
	var err error
	if d.Screens, err = globRoot(root, "Src/*.pa.yaml"); err != nil {
		return nil, err
	}
	if d.ComponentSources, err = globRoot(root, "Src/Components/*.pa.yaml"); err != nil {
		return nil, err
	}
	if d.TestSources, err = globRoot(root, "Src/Tests/*.pa.yaml"); err != nil {
		return nil, err
	}
	if d.EditorStates, err = globRoot(root, "Src/EditorState/*.editorstate.json"); err != nil {
		return nil, err
	}
	if d.ImportedComponents, err = globRoot(root, "pkgs/Components/*.pa.yaml"); err != nil {
		return nil, err
	}
	if d.DataSources, err = globRoot(root, "DataSources/*.json"); err != nil {
		return nil, err
	}
	if d.Assets, err = globRoot(root, "Assets/*"); err != nil {
		return nil, err
	}
	d.Assets = filterOut(d.Assets, filepath.Join(root, AssetsManifestFile))

	other, err := globRoot(root, "Other/**")
	if err != nil {
		return nil, err
	}
	d.OtherFiles = filterDirs(other)

	return d, nil
}

// filterOut removes any path equal to one of excl from paths.
func filterOut(paths []string, excl ...string) []string {
	skip := make(map[string]bool, len(excl))
	for _, e := range excl {
		skip[e] = true
	}
	out := paths[:0]
	for _, p := range paths {
		if !skip[p] {
			out = append(out, p)
		}
	}
	return out
}

// filterDirs drops entries that are themselves directories, inferred
// from the glob having also matched a deeper path under them — a
// genuine file leaf never serves as another match's parent.
func filterDirs(paths []string) []string {
	isParent := make(map[string]bool, len(paths))
	for _, p := range paths {
		isParent[filepath.Dir(p)] = true
	}
	out := paths[:0]
	for _, p := range paths {
		if !isParent[p] && !strings.HasSuffix(p, string(filepath.Separator)) {
			out = append(out, p)
		}
	}
	return out
}
