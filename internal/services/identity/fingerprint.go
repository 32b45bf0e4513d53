package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// DefaultHeaders are the request headers that make up a fingerprint
var DefaultHeaders = []string{"user-agent", "accept-language"}

// Attributes are request-derived values keyed by lower-case header name
type Attributes map[string]string

// AttributesFromRequest collects the named headers. Missing headers become empty values.
// The remote address is never consulted.
func AttributesFromRequest(r *http.Request, headers []string) Attributes {
	attrs := make(Attributes, len(headers))
	for _, h := range headers {
		attrs[strings.ToLower(h)] = r.Header.Get(h)
	}
	return attrs
}

// Hasher turns attributes into a stable 64 character hex fingerprint
type Hasher struct {
	key []byte
}

// NewHasher creates a Hasher. With a non-empty secret the digest is an HMAC keyed from the secret.
func NewHasher(secret string) *Hasher {
	if secret == "" {
		return &Hasher{}
	}
	return &Hasher{key: deriveKey(secret, "omnigram fingerprint v1")}
}

// Fingerprint renders attributes as sorted name=value pairs joined by '|' and hashes them
func (h *Hasher) Fingerprint(attrs Attributes) string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + strings.TrimSpace(attrs[name])
	}

	var mac hash.Hash
	if h.key != nil {
		mac = hmac.New(sha256.New, h.key)
	} else {
		mac = sha256.New()
	}
	mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

// deriveKey expands secret into a 32 byte key bound to purpose
func deriveKey(secret, purpose string) []byte {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		// HKDF-SHA256 yields up to 8160 bytes; 32 cannot fail
		panic(err)
	}
	return key
}
