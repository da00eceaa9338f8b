package tursokv

import "strings"

// keyspace maps between the caller-visible keys and the keys stored by a
// driver. With a non-empty base every stored key is "base:key".
//
// The separator is plain concatenation: a key containing ':' right after the
// base is indistinguishable from a nested base. Stored data depends on this
// layout, so it must not be escaped.
type keyspace struct {
	base string
}

func (ks keyspace) physical(key string) string {
	if ks.base == "" {
		return key
	}
	return ks.base + ":" + key
}

// logical strips "base:" from physicalKey. It reports false for keys stored
// outside the base, which LIKE scans can return when the base holds '%' or
// '_' or differs only in ASCII case.
func (ks keyspace) logical(physicalKey string) (string, bool) {
	if ks.base == "" {
		return physicalKey, true
	}
	prefix := ks.base + ":"
	if !strings.HasPrefix(physicalKey, prefix) {
		return "", false
	}
	return physicalKey[len(prefix):], true
}

func (ks keyspace) prefix(subPrefix string) string {
	if ks.base == "" {
		return subPrefix
	}
	return ks.base + ":" + subPrefix
}

// pattern builds a LIKE pattern matching every key under subPrefix.
func (ks keyspace) pattern(subPrefix string) string {
	return ks.prefix(subPrefix) + "%"
}
