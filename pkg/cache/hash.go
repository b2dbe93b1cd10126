package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key kinds. Every key starts with its kind so a backend listing can tell
// layouts from rendered artifacts.
const (
	KindLayout   = "layout"
	KindArtifact = "artifact"
)

// entryKey names one cached value by the hash of the input it was computed
// from and the options that shaped it. Equal inputs under equal options always
// share a key.
type entryKey struct {
	kind  string
	input string
	opts  any
}

// String renders the key as kind:hex, where hex is the SHA-256 of the input
// hash, a NUL separator and the JSON encoded options.
func (k entryKey) String() string {
	// options are plain structs of scalars and always encode
	opts, _ := json.Marshal(k.opts)
	h := sha256.New()
	h.Write([]byte(k.input))
	h.Write([]byte{0})
	h.Write(opts)
	return k.kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Documents and layouts are hashed with
// it before they are keyed.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
