package lru

// Key and Value are the reference key/value configuration: 64-bit signed
// integer keys and 16-byte opaque values. The generic Cache[K, V] is
// retained for any hashable key and byte-copyable value, but this is the
// configuration the package ships as canonical.
type Key = int64
type Value = [16]byte

// NewCanonical constructs a Cache in the canonical Key/Value
// configuration. Equivalent to New[Key, Value](opt).
func NewCanonical(opt Options[Key, Value]) *Cache[Key, Value] {
	return New[Key, Value](opt)
}
