package msf

import (
	"encoding/json"
	"maps"

	"github.com/wagiedev/msf-mcp-go/internal/errors"
)

// ModuleOptions is the datastore passed to a module invocation, keyed by
// option name (RHOSTS, LHOST, LPORT, PAYLOAD, ...). Unknown keys are passed
// to msfrpcd untouched.
type ModuleOptions map[string]any

// Merge copies overrides into o, replacing any existing keys, and returns
// the merged options. A nil receiver yields a fresh map.
func (o ModuleOptions) Merge(overrides map[string]any) ModuleOptions {
	if o == nil {
		o = make(ModuleOptions, len(overrides))
	}

	maps.Copy(o, overrides)

	return o
}

// ParseOptionsJSON decodes a caller-supplied JSON object of extra options.
// An empty blob yields nil. Anything that is not a JSON object is a
// ValidationError wrapping ErrInvalidOptionsJSON.
func ParseOptionsJSON(blob string) (map[string]any, error) {
	if blob == "" {
		return nil, nil
	}

	var extra map[string]any
	if err := json.Unmarshal([]byte(blob), &extra); err != nil || extra == nil {
		return nil, &errors.ValidationError{Field: "additional_options", Err: errors.ErrInvalidOptionsJSON}
	}

	return extra, nil
}
