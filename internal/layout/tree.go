package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/dsl"
	"github.com/paconv/paconv/internal/entropy"
	"github.com/paconv/paconv/internal/model"
	"github.com/paconv/paconv/internal/schema"
)

// treeManifest mirrors pkgio's canvasManifest so the tree root carries
// the same screen/component enumeration order a PKG does.
type treeManifest struct {
	FormatVersion  string   `json:"formatVersion"`
	ScreenOrder    []string `json:"screenOrder"`
	ComponentOrder []string `json:"componentOrder"`
}

// WriteTree persists doc's full content into a source tree rooted at
// root, in the directory shape this package's path helpers describe.
// Directories are created as needed; existing files at the target
// paths are overwritten.
func WriteTree(root string, doc *model.Document, ec *diagnostics.ErrorContainer) error {
	w := &treeWriter{root: root, ec: ec}
	w.writeManifest(doc)
	w.writeJSON(ControlTemplatesFile, templateList(doc.Templates))
	w.writeRaw(ComponentReferencesFile, doc.ComponentReferences)
	w.writeRaw(ConnectionsFile, doc.Connections)
	w.writeRaw(ThemesFile, doc.Themes)
	w.writeRaw(AssetsManifestFile, doc.ResourcesManifest)
	w.writeEntropy(doc)

	for _, name := range doc.ScreenOrder {
		block, ok := doc.Screens[name]
		if !ok {
			continue
		}
		w.writeControlSource(ScreenPath(name), block)
	}
	for _, name := range doc.ComponentOrder {
		block, ok := doc.Components[name]
		if !ok {
			continue
		}
		w.writeControlSource(ComponentSourcePath(name), block)
	}

	w.writeEditorStates(doc.EditorStates)

	for name, blob := range doc.Assets {
		w.writeBytes(AssetPath(name), blob.Data)
	}
	for path, blob := range doc.UnknownFiles {
		w.writeBytes(filepath.Join("Other", path), CanonicalizeJSON(blob.Data))
	}

	return w.err
}

type treeWriter struct {
	root string
	ec   *diagnostics.ErrorContainer
	err  error
}

func (w *treeWriter) fail(path string, err error) {
	if w.err == nil {
		w.err = w.ec.Wrap(diagnostics.CodeInvalidPath, err, "writing %s", path)
	}
}

func (w *treeWriter) writeBytes(relPath string, data []byte) {
	if w.err != nil {
		return
	}
	full := filepath.Join(w.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		w.fail(relPath, err)
		return
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		w.fail(relPath, err)
	}
}

func (w *treeWriter) writeRaw(relPath string, data json.RawMessage) {
	if len(data) == 0 {
		return
	}
	w.writeBytes(relPath, CanonicalizeJSON(data))
}

func (w *treeWriter) writeJSON(relPath string, v any) {
	if w.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		w.fail(relPath, err)
		return
	}
	w.writeBytes(relPath, CanonicalizeJSON(data))
}

func (w *treeWriter) writeManifest(doc *model.Document) {
	w.writeJSON(CanvasManifestFile, treeManifest{
		FormatVersion:  doc.FormatVersion,
		ScreenOrder:    doc.ScreenOrder,
		ComponentOrder: doc.ComponentOrder,
	})
}

func (w *treeWriter) writeEntropy(doc *model.Document) {
	if w.err != nil || doc.Entropy == nil {
		return
	}
	data, err := json.Marshal(doc.Entropy)
	if err != nil {
		w.fail(EntropyFile, err)
		return
	}
	w.writeBytes(EntropyFile, CanonicalizeJSON(data))
}

func (w *treeWriter) writeControlSource(relPath string, block *model.IRBlock) {
	w.writeBytes(relPath, []byte(dsl.Render(block)))
}

func (w *treeWriter) writeEditorStates(states map[string]*model.ControlState) {
	if w.err != nil {
		return
	}
	byTopParent := make(map[string][]*model.ControlState)
	for _, cs := range states {
		key := cs.TopParentName
		if key == "" {
			key = cs.Name
		}
		byTopParent[key] = append(byTopParent[key], cs)
	}
	topParents := make([]string, 0, len(byTopParent))
	for tp := range byTopParent {
		topParents = append(topParents, tp)
	}
	sort.Strings(topParents)
	for _, tp := range topParents {
		list := byTopParent[tp]
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		w.writeJSON(EditorStatePath(tp), list)
	}
}

func templateList(templates map[string]*model.TemplateState) []*model.TemplateState {
	names := make([]string, 0, len(templates))
	for n := range templates {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*model.TemplateState, len(names))
	for i, n := range names {
		out[i] = templates[n]
	}
	return out
}

// ReadTree loads a source tree rooted at root into a fresh Document,
// the inverse of WriteTree. Control sources are parsed with dsl.Parse
// rather than rebuilt into PKG-shaped control subtrees — that step
// belongs to ir.Combine, run by the caller once every screen and
// component has been read back.
func ReadTree(root string, validator *schema.Validator, ec *diagnostics.ErrorContainer) (*model.Document, error) {
	r := &treeReader{root: root, validator: validator, ec: ec}
	doc := model.New()

	manifest, err := r.readManifest()
	if err != nil {
		return nil, err
	}
	doc.FormatVersion = manifest.FormatVersion
	doc.ScreenOrder = manifest.ScreenOrder
	doc.ComponentOrder = manifest.ComponentOrder

	doc.Entropy, err = r.readEntropy()
	if err != nil {
		return nil, err
	}
	if err := r.applyEntropyOverrides(doc); err != nil {
		return nil, err
	}

	templates, err := r.readTemplates()
	if err != nil {
		return nil, err
	}
	doc.Templates = templates

	doc.ComponentReferences = r.readRaw(ComponentReferencesFile)
	doc.Connections = r.readRaw(ConnectionsFile)
	doc.Themes = r.readRaw(ThemesFile)
	doc.ResourcesManifest = r.readRaw(AssetsManifestFile)

	for _, name := range doc.ScreenOrder {
		block, err := r.readControlSource(ScreenPath(name))
		if err != nil {
			return nil, err
		}
		doc.Screens[name] = block
	}
	for _, name := range doc.ComponentOrder {
		block, err := r.readControlSource(ComponentSourcePath(name))
		if err != nil {
			return nil, err
		}
		doc.Components[name] = block
	}

	editorStates, err := r.readEditorStates()
	if err != nil {
		return nil, err
	}
	doc.EditorStates = editorStates

	assets, err := r.readAssets()
	if err != nil {
		return nil, err
	}
	doc.Assets = assets

	unknown, err := r.readOther()
	if err != nil {
		return nil, err
	}
	doc.UnknownFiles = unknown

	doc.State = model.StateLoaded
	return doc, nil
}

type treeReader struct {
	root      string
	validator *schema.Validator
	ec        *diagnostics.ErrorContainer
}

func (r *treeReader) fullPath(relPath string) string {
	return filepath.Join(r.root, filepath.FromSlash(relPath))
}

func (r *treeReader) readBytes(relPath string) ([]byte, error) {
	data, err := os.ReadFile(r.fullPath(relPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, r.ec.Wrap(diagnostics.CodeInvalidPath, err, "reading %s", relPath)
	}
	return data, nil
}

func (r *treeReader) readRaw(relPath string) json.RawMessage {
	data, _ := r.readBytes(relPath)
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}

func (r *treeReader) readManifest() (treeManifest, error) {
	data, err := r.readBytes(CanvasManifestFile)
	if err != nil {
		return treeManifest{}, err
	}
	if len(data) == 0 {
		return treeManifest{}, r.ec.Error(diagnostics.CodeFormatNotSupported, "source tree is missing %s", CanvasManifestFile)
	}
	var m treeManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return treeManifest{}, r.ec.Wrap(diagnostics.CodeParseError, err, "parsing %s", CanvasManifestFile)
	}
	return m, nil
}

func (r *treeReader) readEntropy() (*entropy.Entropy, error) {
	data, err := r.readBytes(EntropyFile)
	if err != nil {
		return nil, err
	}
	ent := entropy.New()
	if len(data) == 0 {
		return ent, nil
	}
	if err := json.Unmarshal(data, ent); err != nil {
		return nil, r.ec.Wrap(diagnostics.CodeParseError, err, "parsing %s", EntropyFile)
	}
	return ent, nil
}

// applyEntropyOverrides reads Entropy/Overrides.toml, if present, and
// overlays it onto doc.Entropy before Combine ever sees it. A missing
// file is not an error — most trees never carry one.
func (r *treeReader) applyEntropyOverrides(doc *model.Document) error {
	data, err := r.readBytes(EntropyOverridesFile)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	ov, err := entropy.ParseOverrides(data)
	if err != nil {
		return r.ec.Wrap(diagnostics.CodeParseError, err, "parsing %s", EntropyOverridesFile)
	}
	known := make(map[string]bool, len(doc.ScreenOrder)+len(doc.ComponentOrder))
	for _, n := range doc.ScreenOrder {
		known[n] = true
	}
	for _, n := range doc.ComponentOrder {
		known[n] = true
	}
	entropy.Apply(doc.Entropy, ov, known, r.ec)
	return nil
}

func (r *treeReader) readTemplates() (map[string]*model.TemplateState, error) {
	data, err := r.readBytes(ControlTemplatesFile)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.TemplateState)
	if len(data) == 0 {
		return out, nil
	}
	var rawList []json.RawMessage
	if err := json.Unmarshal(data, &rawList); err != nil {
		return nil, r.ec.Wrap(diagnostics.CodeParseError, err, "parsing %s", ControlTemplatesFile)
	}
	for _, rawElem := range rawList {
		if r.validator != nil {
			if err := r.validator.ValidateTemplateState(rawElem); err != nil {
				r.ec.Warn(diagnostics.CodeValidationWarning, "template state in %s failed validation: %v", ControlTemplatesFile, err)
				return nil, err
			}
		}
		var t model.TemplateState
		if err := json.Unmarshal(rawElem, &t); err != nil {
			return nil, r.ec.Wrap(diagnostics.CodeParseError, err, "parsing template entry in %s", ControlTemplatesFile)
		}
		out[t.Name] = &t
	}
	return out, nil
}

func (r *treeReader) readControlSource(relPath string) (*model.IRBlock, error) {
	data, err := r.readBytes(relPath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, r.ec.Error(diagnostics.CodeParseError, "missing control source file %s", relPath)
	}
	block, err := dsl.Parse(string(data))
	if err != nil {
		return nil, r.ec.Wrap(diagnostics.CodeParseError, err, "parsing %s", relPath)
	}
	return block, nil
}

func (r *treeReader) readEditorStates() (map[string]*model.ControlState, error) {
	matches, err := globRoot(r.root, "Src/EditorState/*.editorstate.json")
	if err != nil {
		return nil, r.ec.Wrap(diagnostics.CodeInvalidPath, err, "globbing EditorState files")
	}
	out := make(map[string]*model.ControlState)
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, r.ec.Wrap(diagnostics.CodeInvalidPath, err, "reading %s", m)
		}
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, r.ec.Wrap(diagnostics.CodeParseError, err, "parsing %s", m)
		}
		for _, rawElem := range list {
			if r.validator != nil {
				if err := r.validator.ValidateControlState(rawElem); err != nil {
					r.ec.Warn(diagnostics.CodeValidationWarning, "control state in %s failed validation: %v", m, err)
					return nil, err
				}
			}
			var cs model.ControlState
			if err := json.Unmarshal(rawElem, &cs); err != nil {
				return nil, r.ec.Wrap(diagnostics.CodeParseError, err, "parsing control state entry in %s", m)
			}
			if err := insertEditorState(out, &cs, r.ec); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func insertEditorState(out map[string]*model.ControlState, cs *model.ControlState, ec *diagnostics.ErrorContainer) error {
	if _, exists := out[cs.Name]; exists {
		return ec.Error(diagnostics.CodeEditorStateError, "duplicate control state entry for control %q across EditorState files", cs.Name)
	}
	out[cs.Name] = cs
	return nil
}

func (r *treeReader) readAssets() (map[string]*model.AssetBlob, error) {
	matches, err := globRoot(r.root, "Assets/*")
	if err != nil {
		return nil, r.ec.Wrap(diagnostics.CodeInvalidPath, err, "globbing Assets files")
	}
	out := make(map[string]*model.AssetBlob)
	for _, m := range matches {
		if filepath.Base(m) == "Resources.json" {
			continue
		}
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, r.ec.Wrap(diagnostics.CodeInvalidPath, err, "reading %s", m)
		}
		out[filepath.Base(m)] = &model.AssetBlob{Data: data}
	}
	return out, nil
}

func (r *treeReader) readOther() (map[string]*model.Blob, error) {
	otherRoot := filepath.Join(r.root, "Other")
	out := make(map[string]*model.Blob)
	entries, err := os.ReadDir(otherRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, r.ec.Wrap(diagnostics.CodeInvalidPath, err, "reading Other/")
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(otherRoot, e.Name()))
		if err != nil {
			return nil, r.ec.Wrap(diagnostics.CodeInvalidPath, err, "reading Other/%s", e.Name())
		}
		out[e.Name()] = &model.Blob{Data: data}
	}
	return out, nil
}
