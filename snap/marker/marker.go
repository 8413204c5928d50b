package marker

import (
	"slices"
	"strings"
)

// Metadata is the key/value payload carried by a marker line.
type Metadata map[string]string

// Parse reads a marker line of the form {key1=value1,key2=value2}.
// Lines without the surrounding braces yield an empty mapping.
// A pair is kept only when it has a non-empty key, values may be empty.
// There is no escaping, so keys and values can not contain ',' or '='.
// Duplicated keys: the last one wins.
func Parse(line string) Metadata {
	meta := Metadata{}

	if len(line) < 2 || !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
		return meta
	}

	for _, pair := range strings.Split(line[1:len(line)-1], ",") {
		index := strings.Index(pair, "=")
		if index <= 0 {
			continue
		}
		meta[pair[:index]] = pair[index+1:]
	}

	return meta
}

// Format renders meta back into the marker wire format with keys sorted.
func Format(meta Metadata) string {
	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(meta[key])
	}
	b.WriteByte('}')

	return b.String()
}
