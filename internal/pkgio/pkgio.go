// Package pkgio drives the ZIP archive on one side and an in-memory
// model.Document on the other: Loader enumerates entries, dispatches
// them by a fixed filename→kind table, and runs the split/stabilize
// passes; Writer performs the mirror sequence and computes the
// deterministic archive checksum.
package pkgio

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/paconv/paconv/internal/assets"
	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/editorstate"
	"github.com/paconv/paconv/internal/entropy"
	"github.com/paconv/paconv/internal/ir"
	"github.com/paconv/paconv/internal/model"
	"github.com/paconv/paconv/internal/pathcodec"
	"github.com/paconv/paconv/internal/schema"
	"github.com/paconv/paconv/internal/template"
)

// CurrentFormatVersion is the (major, minor) pair this tool accepts on
// load and stamps on write.
const (
	CurrentFormatVersionMajor = 0
	CurrentFormatVersionMinor = 18
)

const checksumEntry = "checksum.json"

// Fixed entry names this tool interprets. Anything else lands in
// Document.UnknownFiles, preserved verbatim.
const (
	entryCanvasManifest      = "canvasmanifest.json"
	entryControlTemplates    = "controltemplates.json"
	entryComponentReferences = "componentreferences.json"
	entryConnections         = "connections/connections.json"
	entryThemes              = "themes.json"
	entryResources           = "resources.json"
	entryEntropy             = "entropy.json"
)

// canvasManifest is the tool's own header format: format version, the
// deterministic screen/component enumeration order, and the names of
// every control subtree stored as its own archive entry.
type canvasManifest struct {
	FormatVersionMajor int      `json:"formatVersionMajor"`
	FormatVersionMinor int      `json:"formatVersionMinor"`
	ScreenOrder        []string `json:"screenOrder"`
	ComponentOrder     []string `json:"componentOrder"`
}

func controlEntryPath(name string) string {
	return "controls/" + pathcodec.EscapeFileName(name) + ".json"
}

// Loader reads one PKG archive into raw entries, ready for Load to
// turn into a Document.
type Loader struct {
	entries map[string][]byte // normalized path -> raw bytes
	order   []string          // original entry order, for deterministic unknownFiles iteration

	// Schema validates each TemplateState entry as it's read, when set.
	// Left nil, Load skips validation (the Validation.Enabled config
	// switch is off).
	Schema *schema.Validator
}

// NewLoader reads every entry out of a zip archive's raw bytes.
func NewLoader(pkgBytes []byte) (*Loader, error) {
	zr, err := zip.NewReader(bytes.NewReader(pkgBytes), int64(len(pkgBytes)))
	if err != nil {
		return nil, err
	}
	l := &Loader{entries: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := l.readEntry(f); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Loader) readEntry(f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	np := pathcodec.Normalize(f.Name)
	l.entries[np] = data
	l.order = append(l.order, np)
	return nil
}

// Load runs the full unpack pipeline: format-version check, raw
// control trees through ir.Split, assets through AssetStabilizer, and
// everything else passed through into the returned Document.
func (l *Loader) Load(ec *diagnostics.ErrorContainer) (*model.Document, error) {
	manifestRaw, ok := l.entries[entryCanvasManifest]
	if !ok {
		return nil, ec.Error(diagnostics.CodeFormatNotSupported, "archive is missing %s", entryCanvasManifest)
	}
	var manifest canvasManifest
	if err := json.Unmarshal(manifestRaw, &manifest); err != nil {
		return nil, ec.Wrap(diagnostics.CodeParseError, err, "parsing %s", entryCanvasManifest)
	}
	if manifest.FormatVersionMajor != CurrentFormatVersionMajor || manifest.FormatVersionMinor != CurrentFormatVersionMinor {
		return nil, ec.Error(diagnostics.CodeFormatNotSupported,
			"format version %d.%d not supported, expected %d.%d",
			manifest.FormatVersionMajor, manifest.FormatVersionMinor,
			CurrentFormatVersionMajor, CurrentFormatVersionMinor)
	}

	doc := model.New()
	doc.FormatVersion = formatVersionString(manifest.FormatVersionMajor, manifest.FormatVersionMinor)
	doc.ScreenOrder = manifest.ScreenOrder
	doc.ComponentOrder = manifest.ComponentOrder

	if raw, ok := l.entries[entryEntropy]; ok {
		ent := entropy.New()
		if err := json.Unmarshal(raw, ent); err != nil {
			return nil, ec.Wrap(diagnostics.CodeParseError, err, "parsing %s", entryEntropy)
		}
		doc.Entropy = ent
	}

	pkgTemplates, err := l.loadTemplates(l.entries[entryControlTemplates], ec)
	if err != nil {
		return nil, ec.Wrap(diagnostics.CodeParseError, err, "parsing %s", entryControlTemplates)
	}

	splitCtx := &ir.SplitContext{
		PKGTemplates: pkgTemplates,
		Store:        template.NewStore(),
		EditorStates: editorstate.NewStore(),
		Entropy:      doc.Entropy,
	}

	for _, name := range manifest.ScreenOrder {
		block, err := l.loadControlTree(name, splitCtx, ec)
		if err != nil {
			return nil, err
		}
		doc.Screens[name] = block
	}
	splitCtx.InTestSuite = false
	for _, name := range manifest.ComponentOrder {
		splitCtx.InTestSuite = isTestSuiteName(name)
		block, err := l.loadControlTree(name, splitCtx, ec)
		if err != nil {
			return nil, err
		}
		doc.Components[name] = block
	}

	doc.Templates = splitCtx.Store.All()
	doc.EditorStates = splitCtx.EditorStates.All()
	doc.Header = json.RawMessage(manifestRaw)
	doc.PublishInfo = l.entries["publishinfo.json"]
	doc.Themes = l.entries[entryThemes]
	doc.ResourcesManifest = l.entries[entryResources]
	doc.ComponentReferences = l.entries[entryComponentReferences]
	doc.Connections = l.entries[entryConnections]

	if err := l.loadAssets(doc, ec); err != nil {
		return nil, err
	}

	l.collectUnknownFiles(doc)

	doc.State = model.StateLoaded
	return doc, nil
}

func (l *Loader) loadControlTree(name string, ctx *ir.SplitContext, ec *diagnostics.ErrorContainer) (*model.IRBlock, error) {
	raw, ok := l.entries[pathcodec.Normalize(controlEntryPath(name))]
	if !ok {
		return nil, ec.Error(diagnostics.CodeParseError, "missing control tree entry for %q", name)
	}
	var rawControl ir.RawControl
	if err := json.Unmarshal(raw, &rawControl); err != nil {
		return nil, ec.Wrap(diagnostics.CodeParseError, err, "parsing control tree for %q", name)
	}
	return ir.Split(&rawControl, 0, ctx, ec)
}

func (l *Loader) loadTemplates(raw []byte, ec *diagnostics.ErrorContainer) (map[string]*model.TemplateState, error) {
	out := make(map[string]*model.TemplateState)
	if len(raw) == 0 {
		return out, nil
	}
	var rawList []json.RawMessage
	if err := json.Unmarshal(raw, &rawList); err != nil {
		return nil, err
	}
	for _, rawElem := range rawList {
		if l.Schema != nil {
			if err := l.Schema.ValidateTemplateState(rawElem); err != nil {
				ec.Warn(diagnostics.CodeValidationWarning, "template state failed validation: %v", err)
				return nil, err
			}
		}
		var t model.TemplateState
		if err := json.Unmarshal(rawElem, &t); err != nil {
			return nil, err
		}
		out[t.Name] = &t
	}
	return out, nil
}

func (l *Loader) loadAssets(doc *model.Document, ec *diagnostics.ErrorContainer) error {
	table := assets.NewTable()
	for np, data := range l.entries {
		if !isAssetEntry(np) {
			continue
		}
		// Resource references in the manifest name assets by their bare
		// filename, never by archive path, so the table is keyed the same
		// way: strip the "assets/" prefix on the way in, add it back on
		// the way out.
		name := strings.TrimPrefix(np, "assets/")
		table.Put(name, data, name)
	}
	manifest := assets.NewManifest(doc.ResourcesManifest)
	stabilizer := assets.NewStabilizer(table, manifest, doc.Entropy)
	if err := stabilizer.StabilizeOnUnpack(ec); err != nil {
		return err
	}
	if stabilizedInfo, err := assets.StabilizeLogo(table, doc.PublishInfo, doc.Entropy); err == nil {
		doc.PublishInfo = stabilizedInfo
	}
	doc.ResourcesManifest = manifest.Raw()
	for path, entry := range table.All() {
		doc.Assets[path] = &model.AssetBlob{Data: entry.Data, DisplayName: entry.DisplayName}
	}
	return nil
}

func (l *Loader) collectUnknownFiles(doc *model.Document) {
	known := map[string]bool{
		entryCanvasManifest: true, entryControlTemplates: true, entryComponentReferences: true,
		entryConnections: true, entryThemes: true, entryResources: true, entryEntropy: true,
		"publishinfo.json": true, checksumEntry: true,
	}
	for _, np := range l.order {
		if known[np] || isAssetEntry(np) || isControlEntry(np) {
			continue
		}
		doc.UnknownFiles[np] = &model.Blob{Data: l.entries[np]}
	}
}

func isAssetEntry(normalizedPath string) bool {
	return len(normalizedPath) > 7 && normalizedPath[:7] == "assets/"
}

func isControlEntry(normalizedPath string) bool {
	return len(normalizedPath) > 9 && normalizedPath[:9] == "controls/"
}

func isTestSuiteName(name string) bool {
	return len(name) >= 4 && name[:4] == "Test"
}

func formatVersionString(major, minor int) string {
	return itoa(major) + "." + itoa(minor)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// sortedKeys returns the keys of a normalized-path -> bytes map,
// sorted, for deterministic checksum and write-order iteration.
func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ChecksumOf opens a raw archive and computes its Checksum, for
// comparing two PKGs (e.g. a round-trip test) without fully loading
// either one into a Document.
func ChecksumOf(pkgBytes []byte) (string, error) {
	l, err := NewLoader(pkgBytes)
	if err != nil {
		return "", err
	}
	return Checksum(l.entries), nil
}

// Checksum computes a deterministic fingerprint across a canonicalized
// enumeration of archive entries, excluding the checksum entry itself.
func Checksum(entries map[string][]byte) string {
	keys := sortedKeys(entries)
	h := xxhash.New()
	for _, k := range keys {
		if k == checksumEntry {
			continue
		}
		_, _ = h.WriteString(k)
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(entries[k])
	}
	return hexEncode(h.Sum(nil))
}

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xF]
	}
	return string(out)
}
