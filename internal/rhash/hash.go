// Package rhash provides the two decorrelated hash functions the router
// (C5) and the chaining index (C1) need: one to pick a shard, one to pick
// a bucket within a shard's index. Using the same hash for both would
// correlate shard selection with in-shard bucket selection and skew load
// across buckets whenever the shard mask and the bucket mask overlap bits.
package rhash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Index hashes a key for use inside the chaining index (C1). It is a
// 64-bit FNV-1a variant: cheap, well distributed for the small integer and
// string keys this cache is built for.
//
// Supported key kinds: all signed/unsigned integer widths, uintptr,
// string, []byte, [16]byte/[32]byte/[64]byte arrays, and fmt.Stringer as a
// fallback.
// Panicking on anything else is deliberate — a silently bad hash produces
// a silently bad cache, and the contract in spec.md assumes hashable
// integer keys.
func Index[K comparable](k K) uint64 {
	return fnv64a(k)
}

// Route hashes a key for shard selection (C5). It re-mixes Index's FNV
// value through xxhash's avalanche so that shard_index and bucket_index
// diverge even though both ultimately derive from the same key bytes.
func Route[K comparable](k K) uint64 {
	h := fnv64a(k)
	var buf [8]byte
	putUint64(buf[:], h)
	return xxhash.Sum64(buf[:])
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
}

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

func fnv64aBytes(b []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

func fnv64aUint64(u uint64) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < 8; i++ {
		h ^= uint64(byte(u))
		h *= fnvPrime64
		u >>= 8
	}
	return h
}

// fnv64a hashes common key kinds. Integer-like keys are hashed by their
// little-endian byte representation; string-like keys by their bytes.
func fnv64a[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return fnv64aBytes([]byte(v))
	case []byte:
		return fnv64aBytes(v)
	case [16]byte:
		return fnv64aBytes(v[:])
	case [32]byte:
		return fnv64aBytes(v[:])
	case [64]byte:
		return fnv64aBytes(v[:])

	case uint8:
		return fnv64aUint64(uint64(v))
	case uint16:
		return fnv64aUint64(uint64(v))
	case uint32:
		return fnv64aUint64(uint64(v))
	case uint64:
		return fnv64aUint64(v)
	case uint:
		return fnv64aUint64(uint64(v))
	case uintptr:
		return fnv64aUint64(uint64(v))
	case int8:
		return fnv64aUint64(uint64(uint8(v)))
	case int16:
		return fnv64aUint64(uint64(uint16(v)))
	case int32:
		return fnv64aUint64(uint64(uint32(v)))
	case int64:
		return fnv64aUint64(uint64(v))
	case int:
		return fnv64aUint64(uint64(v))

	case fmt.Stringer:
		return fnv64aBytes([]byte(v.String()))
	default:
		panic(fmt.Sprintf("rhash: unsupported key type %T; convert the key to string/int or hash it upstream", k))
	}
}
