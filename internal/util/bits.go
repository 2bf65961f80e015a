package util

import "runtime"

// ReasonableShardBits picks a practical default shard-count exponent based
// on CPU parallelism: the smallest S such that 2^S >= 2*GOMAXPROCS,
// clamped to [0..8] (1..256 shards). Sharply reduces lock contention
// without bloating memory overhead for small per-shard capacities.
func ReasonableShardBits() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := NextPow2(uint64(p * 2))
	bits := 0
	for n > 1 {
		n >>= 1
		bits++
	}
	if bits > 8 {
		bits = 8
	}
	return bits
}
