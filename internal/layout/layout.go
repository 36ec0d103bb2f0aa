// Package layout implements the on-disk source tree: a rigid,
// multi-directory shape that SourceLayout writes a Document into and
// reads a Document back from. Directory discovery under Other/ (the
// passthrough bucket for files this tool does not interpret) goes
// through doublestar glob matching rather than hand-rolled path
// prefix checks.
package layout

import (
	"encoding/json"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Known top-level and nested shard paths, expressed as slash-separated
// paths relative to the source tree root.
const (
	CanvasManifestFile      = "CanvasManifest.json"
	ControlTemplatesFile    = "ControlTemplates.json"
	ComponentReferencesFile = "ComponentReferences.json"
	ConnectionsFile         = "Connections/Connections.json"
	ThemesFile              = "Src/Themes.json"
	AssetsManifestFile      = "Assets/Resources.json"
	EntropyFile             = "Entropy/Entropy.json"
	EntropyOverridesFile    = "Entropy/Overrides.toml"
	ChecksumFile            = "Entropy/Checksum.json"
	SarifFile               = "Entropy/AppCheckerResult.sarif"
)

// knownPatterns are doublestar glob patterns matching every path the
// tree shape recognizes; anything that matches none of them belongs
// under Other/.
var knownPatterns = []string{
	CanvasManifestFile,
	ControlTemplatesFile,
	ComponentReferencesFile,
	ConnectionsFile,
	"Src/*.pa.yaml",
	ThemesFile,
	"Src/Components/*.pa.yaml",
	"Src/Components/*.json",
	"Src/Tests/*.pa.yaml",
	"Src/EditorState/*.editorstate.json",
	"pkgs/*.xml",
	"pkgs/TableDefinitions/*.json",
	"pkgs/Wadl/*.xml",
	"pkgs/Swagger/*.json",
	"pkgs/Components/*.pa.yaml",
	"pkgs/Components/*.json",
	"DataSources/*.json",
	"Assets/*",
	AssetsManifestFile,
	EntropyFile,
	EntropyOverridesFile,
	ChecksumFile,
	SarifFile,
}

// IsKnownPath reports whether relPath (slash-separated, relative to
// the tree root) matches one of the rigid tree's recognized shard
// locations.
func IsKnownPath(relPath string) bool {
	relPath = strings.TrimPrefix(relPath, "/")
	for _, pattern := range knownPatterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// ScreenPath returns the Src/<name>.pa.yaml path for a screen or test
// root name.
func ScreenPath(name string) string {
	return path.Join("Src", name+".pa.yaml")
}

// ComponentSourcePath returns the Src/Components/<name>.pa.yaml path.
func ComponentSourcePath(name string) string {
	return path.Join("Src", "Components", name+".pa.yaml")
}

// ComponentTemplatePath returns the Src/Components/<name>.json path
// carrying a component template's own definition.
func ComponentTemplatePath(name string) string {
	return path.Join("Src", "Components", name+".json")
}

// TestSourcePath returns the Src/Tests/<name>.pa.yaml path.
func TestSourcePath(name string) string {
	return path.Join("Src", "Tests", name+".pa.yaml")
}

// EditorStatePath returns the Src/EditorState/<topParent>.editorstate.json path.
func EditorStatePath(topParent string) string {
	return path.Join("Src", "EditorState", topParent+".editorstate.json")
}

// ImportedComponentSourcePath returns the pkgs/Components/<name>.pa.yaml path.
func ImportedComponentSourcePath(name string) string {
	return path.Join("pkgs", "Components", name+".pa.yaml")
}

// ImportedComponentTemplatePath returns the pkgs/Components/<name>.json path.
func ImportedComponentTemplatePath(name string) string {
	return path.Join("pkgs", "Components", name+".json")
}

// DataSourcePath returns the DataSources/<name>.json path.
func DataSourcePath(name string) string {
	return path.Join("DataSources", name+".json")
}

// AssetPath returns the Assets/<fileName> path.
func AssetPath(fileName string) string {
	return path.Join("Assets", fileName)
}

// CanonicalizeJSON reparses and re-emits raw as JSON with recursively
// sorted object keys and two-space indentation, so unknown files
// written under Other/ produce a stable diff regardless of how the
// PKG serialized them. A value that is not valid JSON is returned
// unchanged — Other/ also carries non-JSON files verbatim.
func CanonicalizeJSON(raw []byte) []byte {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	sorted := sortKeys(v)
	out, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return raw
	}
	return append(out, '\n')
}

// sortKeys rebuilds v with every map converted to an orderedMap so
// json.Marshal emits its keys sorted, recursing into nested maps and
// slices.
func sortKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		om := orderedMap{keys: keys, values: make(map[string]any, len(t))}
		for _, k := range keys {
			om.values[k] = sortKeys(t[k])
		}
		return om
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = sortKeys(e)
		}
		return out
	default:
		return v
	}
}

// orderedMap marshals as a JSON object with its keys in the recorded
// order, so json.MarshalIndent's own (unordered) map handling never
// gets a chance to re-shuffle them.
type orderedMap struct {
	keys   []string
	values map[string]any
}

func (om orderedMap) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range om.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		vb, err := json.Marshal(om.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
