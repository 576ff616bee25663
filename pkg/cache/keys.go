package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Key joins prefix and parts with ':' (e.g. "forecast:SPY:30").
func Key(prefix string, parts ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		b.WriteByte(':')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// KeyOf derives a content key: prefix, then the first 16 hex chars of the
// SHA-1 of v's JSON encoding. encoding/json sorts map keys, so equal content
// yields equal keys.
func KeyOf(prefix string, v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", v))
	}
	sum := sha1.Sum(data)
	return Key(prefix, hex.EncodeToString(sum[:])[:16])
}
