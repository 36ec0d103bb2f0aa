package ir

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const componentDefinitionInfoKey = "ComponentDefinitionInfo"
const lastModifiedTimestampKey = "LastModifiedTimestamp"

// lastModifiedTimestamp reads the preserved timestamp out of a
// control's extension-data bag, if one was captured at split time.
func lastModifiedTimestamp(extensionData json.RawMessage) (string, bool) {
	if len(extensionData) == 0 {
		return "", false
	}
	path := componentDefinitionInfoKey + "." + lastModifiedTimestampKey
	r := gjson.GetBytes(extensionData, path)
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

// attachComponentDefinitionInfo builds the ComponentDefinitionInfo bag
// Combine attaches for a component definition: the preserved
// lastModifiedTimestamp and the ordered child-name list, merged into
// extensionData without disturbing any other field.
func attachComponentDefinitionInfo(extensionData json.RawMessage, timestamp string, orderedChildNames []string) (json.RawMessage, error) {
	raw := []byte(extensionData)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var err error
	if timestamp != "" {
		raw, err = sjson.SetBytes(raw, componentDefinitionInfoKey+"."+lastModifiedTimestampKey, timestamp)
		if err != nil {
			return nil, fmt.Errorf("ir: attach component definition timestamp: %w", err)
		}
	}
	raw, err = sjson.SetBytes(raw, componentDefinitionInfoKey+".ChildTree", orderedChildNames)
	if err != nil {
		return nil, fmt.Errorf("ir: attach component definition child tree: %w", err)
	}
	return json.RawMessage(raw), nil
}
