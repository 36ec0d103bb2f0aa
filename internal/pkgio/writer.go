package pkgio

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"sort"

	"github.com/paconv/paconv/internal/assets"
	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/editorstate"
	"github.com/paconv/paconv/internal/ir"
	"github.com/paconv/paconv/internal/model"
	"github.com/paconv/paconv/internal/pathcodec"
	"github.com/paconv/paconv/internal/template"
)

// Writer turns a Document back into a PKG archive's raw bytes: the
// mirror of Loader, built up as a set of normalized-path entries and
// flushed through archive/zip's Writer last.
type Writer struct {
	Document *model.Document
}

// NewWriter binds a Writer to doc, which must be in StateWritable.
func NewWriter(doc *model.Document) *Writer {
	return &Writer{Document: doc}
}

// WritePkg runs Combine over every control tree, restores assets
// through Stabilizer.RestoreOnPack, assembles every entry, computes
// the archive checksum, and serializes the result as a ZIP archive.
func (w *Writer) WritePkg(ec *diagnostics.ErrorContainer) ([]byte, error) {
	doc := w.Document

	store := template.NewStore()
	for _, t := range doc.Templates {
		store.Put(t)
	}
	editorStates := editorstate.NewStore()
	editorStates.PutAll(doc.EditorStates)

	combineCtx := &ir.CombineContext{
		Store:        store,
		EditorStates: editorStates,
		Entropy:      doc.Entropy,
	}

	entries := make(map[string][]byte)

	screenNames := make([]string, 0, len(doc.Screens))
	for name := range doc.Screens {
		screenNames = append(screenNames, name)
	}
	sort.Strings(screenNames)
	for _, name := range screenNames {
		if err := w.writeControlTree(entries, name, doc.Screens[name], combineCtx, ec); err != nil {
			return nil, err
		}
	}

	componentNames := make([]string, 0, len(doc.Components))
	for name := range doc.Components {
		componentNames = append(componentNames, name)
	}
	sort.Strings(componentNames)
	for _, name := range componentNames {
		if err := w.writeControlTree(entries, name, doc.Components[name], combineCtx, ec); err != nil {
			return nil, err
		}
	}

	manifest := &canvasManifest{
		FormatVersionMajor: CurrentFormatVersionMajor,
		FormatVersionMinor: CurrentFormatVersionMinor,
		ScreenOrder:        doc.ScreenOrder,
		ComponentOrder:     doc.ComponentOrder,
	}
	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return nil, ec.Wrap(diagnostics.CodeInternalError, err, "marshaling %s", entryCanvasManifest)
	}
	entries[entryCanvasManifest] = manifestBytes

	templatesBytes, err := marshalTemplates(doc.Templates)
	if err != nil {
		return nil, ec.Wrap(diagnostics.CodeInternalError, err, "marshaling %s", entryControlTemplates)
	}
	entries[entryControlTemplates] = templatesBytes

	if err := w.writeAssets(entries, ec); err != nil {
		return nil, err
	}

	entropyBytes, err := json.Marshal(doc.Entropy)
	if err != nil {
		return nil, ec.Wrap(diagnostics.CodeInternalError, err, "marshaling %s", entryEntropy)
	}
	entries[entryEntropy] = entropyBytes

	if len(doc.Themes) > 0 {
		entries[entryThemes] = doc.Themes
	}
	if len(doc.PublishInfo) > 0 {
		entries["publishinfo.json"] = doc.PublishInfo
	}
	if len(doc.ComponentReferences) > 0 {
		entries[entryComponentReferences] = doc.ComponentReferences
	}
	if len(doc.Connections) > 0 {
		entries[entryConnections] = doc.Connections
	}

	for path, blob := range doc.UnknownFiles {
		entries[path] = blob.Data
	}

	checksum := Checksum(entries)
	entries[checksumEntry] = []byte(`"` + checksum + `"`)
	doc.Checksum = checksum

	return buildZip(entries)
}

func (w *Writer) writeControlTree(entries map[string][]byte, name string, block *model.IRBlock, ctx *ir.CombineContext, ec *diagnostics.ErrorContainer) error {
	raw, err := ir.Combine(block, ctx, ec)
	if err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return ec.Wrap(diagnostics.CodeInternalError, err, "marshaling control tree for %q", name)
	}
	entries[pathcodec.Normalize(controlEntryPath(name))] = data
	return nil
}

func (w *Writer) writeAssets(entries map[string][]byte, ec *diagnostics.ErrorContainer) error {
	doc := w.Document
	table := assets.NewTable()
	for path, blob := range doc.Assets {
		table.Put(path, blob.Data, blob.DisplayName)
	}
	manifest := assets.NewManifest(doc.ResourcesManifest)
	stabilizer := assets.NewStabilizer(table, manifest, doc.Entropy)
	if err := stabilizer.RestoreOnPack(ec); err != nil {
		return err
	}
	if restored, err := assets.RestoreLogo(table, doc.PublishInfo, doc.Entropy); err == nil {
		doc.PublishInfo = restored
	}
	doc.ResourcesManifest = manifest.Raw()
	entries[entryResources] = manifest.Raw()
	for _, path := range table.SortedPaths() {
		entry, _ := table.Get(path)
		entries["assets/"+path] = entry.Data
	}
	return nil
}

func marshalTemplates(templates map[string]*model.TemplateState) ([]byte, error) {
	names := make([]string, 0, len(templates))
	for n := range templates {
		names = append(names, n)
	}
	sort.Strings(names)
	list := make([]*model.TemplateState, len(names))
	for i, n := range names {
		list[i] = templates[n]
	}
	return json.Marshal(list)
}

func buildZip(entries map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	keys := sortedKeys(entries)
	for _, k := range keys {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: k, Method: zip.Deflate})
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(entries[k]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
