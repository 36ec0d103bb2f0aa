package assets

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Manifest wraps the resource manifest's raw JSON bytes. Reads go
// through gjson and writes go through sjson so that every field this
// tool does not touch survives byte-for-byte — the manifest is an
// arbitrary JSON bag that must never be re-serialized through a typed
// shape.
type Manifest struct {
	raw []byte
}

// ResourceKind classifies one manifest entry.
type ResourceKind string

const ResourceKindLocalFile ResourceKind = "LocalFile"

// ResourceRef is a read-only view of one manifest entry.
type ResourceRef struct {
	Index    int
	Name     string
	Kind     ResourceKind
	FileName string
}

// NewManifest wraps raw resource-manifest JSON. A nil or empty raw is
// treated as an empty `{"Resources":[]}` manifest.
func NewManifest(raw json.RawMessage) *Manifest {
	if len(raw) == 0 {
		raw = json.RawMessage(`{"Resources":[]}`)
	}
	return &Manifest{raw: []byte(raw)}
}

// Raw returns the manifest's current raw JSON bytes.
func (m *Manifest) Raw() json.RawMessage {
	return json.RawMessage(m.raw)
}

// Resources lists every resource entry in manifest order.
func (m *Manifest) Resources() []ResourceRef {
	arr := gjson.GetBytes(m.raw, "Resources")
	if !arr.IsArray() {
		return nil
	}
	var out []ResourceRef
	i := 0
	arr.ForEach(func(_, v gjson.Result) bool {
		out = append(out, ResourceRef{
			Index:    i,
			Name:     v.Get("Name").String(),
			Kind:     ResourceKind(v.Get("ResourceKind").String()),
			FileName: v.Get("FileName").String(),
		})
		i++
		return true
	})
	return out
}

// SetFileName rewrites the FileName field of the resource at index,
// preserving every other byte of the manifest.
func (m *Manifest) SetFileName(index int, newName string) error {
	path := fmt.Sprintf("Resources.%d.FileName", index)
	updated, err := sjson.SetBytes(m.raw, path, newName)
	if err != nil {
		return fmt.Errorf("assets: set FileName at %s: %w", path, err)
	}
	m.raw = updated
	return nil
}

// LogoFileName reads PublishInfo's logo filename field.
func LogoFileName(publishInfo json.RawMessage) (string, bool) {
	if len(publishInfo) == 0 {
		return "", false
	}
	r := gjson.GetBytes(publishInfo, "LogoFileName")
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

// SetLogoFileName rewrites PublishInfo's logo filename field,
// preserving every other byte.
func SetLogoFileName(publishInfo json.RawMessage, newName string) (json.RawMessage, error) {
	updated, err := sjson.SetBytes([]byte(publishInfo), "LogoFileName", newName)
	if err != nil {
		return nil, fmt.Errorf("assets: set LogoFileName: %w", err)
	}
	return json.RawMessage(updated), nil
}
