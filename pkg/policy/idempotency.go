package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// IdempotencyKey derives the stable key attached to write calls. Retries of
// the same logical write in the same conversation hash to the same key, so
// the broker's idempotency cache collapses them to one tool invocation.
func IdempotencyKey(workspaceID, conversationID, tool string, args map[string]any) string {
	h := sha256.New()
	h.Write([]byte(workspaceID))
	h.Write([]byte{0})
	h.Write([]byte(conversationID))
	h.Write([]byte{0})
	h.Write([]byte(tool))
	h.Write([]byte{0})
	h.Write([]byte(canonicalJSON(args)))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// canonicalJSON renders args with sorted keys so equal maps hash equally
// regardless of insertion order. Nested maps are handled recursively.
func canonicalJSON(v any) string {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteByte(':')
			b.WriteString(canonicalJSON(t[k]))
		}
		b.WriteByte('}')
		return b.String()
	case []any:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(canonicalJSON(e))
		}
		b.WriteByte(']')
		return b.String()
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%q", fmt.Sprint(t))
		}
		return string(raw)
	}
}
