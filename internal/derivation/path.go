// Package derivation parses BIP32-style derivation path strings into the
// components internal/signer walks over internal/bip32 and internal/slip10.
// It performs no key derivation itself.
package derivation

import (
	"strconv"
	"strings"

	"github.com/vaultwallet/keyring/internal/model"
)

// PathComponent is one parsed segment of a derivation path: an index plus
// whether it carries the hardening marker.
type PathComponent struct {
	Index    uint32
	Hardened bool
}

// ParsePath parses a path of the form "m/44'/60'/0'/0/0" (hardening marker `'`
// or `h`). It fails with PathInvalid on a missing "m" root, an empty component,
// a non-numeric component, or an index that would overflow uint32 once the
// hardening offset is added.
func ParsePath(path string) ([]PathComponent, error) {
	if path == "" {
		return nil, model.New(model.ErrPathInvalid, "empty path")
	}
	segs := strings.Split(path, "/")
	if len(segs) < 1 || segs[0] != "m" {
		return nil, model.New(model.ErrPathInvalid, `path must start with "m"`)
	}
	segs = segs[1:]
	out := make([]PathComponent, 0, len(segs))
	for _, s := range segs {
		if s == "" {
			return nil, model.New(model.ErrPathInvalid, "empty path component")
		}
		hardened := false
		if strings.HasSuffix(s, "'") || strings.HasSuffix(s, "h") || strings.HasSuffix(s, "H") {
			hardened = true
			s = s[:len(s)-1]
		}
		if s == "" {
			return nil, model.New(model.ErrPathInvalid, "missing index before hardening marker")
		}
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, model.New(model.ErrPathInvalid, "non-numeric path component")
		}
		if n >= 0x80000000 {
			return nil, model.New(model.ErrPathInvalid, "index out of range")
		}
		out = append(out, PathComponent{Index: uint32(n), Hardened: hardened})
	}
	if len(out) == 0 {
		return nil, model.New(model.ErrPathInvalid, "path has no components")
	}
	return out, nil
}

// RawIndex returns the index with the SLIP/BIP32 hardening offset folded in
// when Hardened is set.
func (c PathComponent) RawIndex() uint32 {
	if c.Hardened {
		return c.Index + 0x80000000
	}
	return c.Index
}

// Format renders components back to the canonical "m/a'/b" string form.
func Format(components []PathComponent) string {
	var b strings.Builder
	b.WriteString("m")
	for _, c := range components {
		b.WriteString("/")
		b.WriteString(strconv.FormatUint(uint64(c.Index), 10))
		if c.Hardened {
			b.WriteString("'")
		}
	}
	return b.String()
}
