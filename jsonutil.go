package chromatica

import "encoding/json"

// mustMarshal marshals v to JSON, panicking on failure. It is used only for
// the package's own statically-shaped request parameter structs, which
// cannot fail to marshal; a panic here indicates a programming error, not a
// runtime condition callers should handle.
func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// jsonUnmarshal is a small indirection point for decoding event params and
// command results, kept as a named helper (rather than scattering
// json.Unmarshal calls) so the package has one place to swap in easyjson
// decoding for a hot-path type later.
func jsonUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}
