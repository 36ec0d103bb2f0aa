package model

import (
	"encoding/json"

	"github.com/paconv/paconv/internal/entropy"
)

// State tracks a Document through its lifecycle:
//
//	(empty) --load--> Loaded --transformAfterLoad--> Ready
//	Ready  --writeSource--> Ready
//	Ready  --transformBeforeWrite--> Writable --writePkg--> Ready
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateReady
	StateWritable
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateReady:
		return "ready"
	case StateWritable:
		return "writable"
	default:
		return "unknown"
	}
}

// AssetBlob is one binary asset entry.
type AssetBlob struct {
	Data        []byte
	DisplayName string
}

// Blob is an opaque byte payload preserved verbatim for files this
// tool does not interpret (Document.UnknownFiles).
type Blob struct {
	Data []byte
}

// Document is the root aggregate a converted project lives in. It is
// created empty by either loader and mutated only during load and the
// explicit transform passes; writers treat it as read-only.
type Document struct {
	State State

	Screens        map[string]*IRBlock
	Components     map[string]*IRBlock
	ScreenOrder    []string
	ComponentOrder []string

	Templates    map[string]*TemplateState
	EditorStates map[string]*ControlState

	Assets       map[string]*AssetBlob // keyed by bare (stabilized) filename, no directory prefix
	UnknownFiles map[string]*Blob      // keyed by normalized archive path

	Entropy *entropy.Entropy

	Properties          json.RawMessage
	Header              json.RawMessage
	PublishInfo         json.RawMessage
	Themes              json.RawMessage
	ResourcesManifest   json.RawMessage
	ComponentReferences json.RawMessage
	Connections         json.RawMessage
	Checksum            string
	FormatVersion       string
}

// New creates an empty Document in StateEmpty, ready for a loader to
// populate.
func New() *Document {
	return &Document{
		State:        StateEmpty,
		Screens:      make(map[string]*IRBlock),
		Components:   make(map[string]*IRBlock),
		Templates:    make(map[string]*TemplateState),
		EditorStates: make(map[string]*ControlState),
		Assets:       make(map[string]*AssetBlob),
		UnknownFiles: make(map[string]*Blob),
		Entropy:      entropy.New(),
	}
}

// AllControlTrees returns every top-level IRBlock the document owns —
// screens first in ScreenOrder, then components in ComponentOrder —
// for passes that need to walk every tree without caring which bucket
// a root came from.
func (d *Document) AllControlTrees() []*IRBlock {
	out := make([]*IRBlock, 0, len(d.Screens)+len(d.Components))
	for _, name := range d.ScreenOrder {
		if b, ok := d.Screens[name]; ok {
			out = append(out, b)
		}
	}
	for _, name := range d.ComponentOrder {
		if b, ok := d.Components[name]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Walk visits every IRBlock in the tree rooted at b, including b
// itself, depth first, pre-order.
func Walk(b *IRBlock, visit func(*IRBlock)) {
	if b == nil {
		return
	}
	visit(b)
	for _, c := range b.Children {
		Walk(c, visit)
	}
}
