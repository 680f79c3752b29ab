package strata

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// probesPerIntensityLevel, scaled by mphBuildIntensity, bounds how many
// displacement values one bucket may try during construction before MPH
// build-up is declared to have failed. In practice a handful of probes
// resolves nearly every bucket; this is a generous ceiling, not an expected
// value.
const probesPerIntensityLevel = 1 << 14

// mphBuildIntensity is a var, not a const, so Config.Apply can raise or
// lower it for corpora whose key sets make the default probe ceiling a poor
// fit: a denser key set needs more probes per bucket to resolve the last
// few collisions, at the cost of slower builds.
var mphBuildIntensity = 3

func maxDisplacementProbe() uint32 {
	return uint32(mphBuildIntensity * probesPerIntensityLevel)
}

// MPH is a minimal perfect hash function over a fixed key set of type K,
// built with the CHD (compress, hash, displace) algorithm: keys are grouped
// into buckets by a primary hash, buckets are resolved largest-first, and
// each bucket is assigned a displacement seed that sends its keys to
// distinct, still-free output slots.
//
// The hash function maps unknown keys to some slot in range too — by
// itself it cannot distinguish "not in the set" from "collides with slot S".
// That is why MPH keeps the reordered key array: Lookup compares the key
// stored at the candidate slot with the requested one and reports ok=false
// on a mismatch (ImmutableMap.Get relies on this).
type MPH[K comparable] struct {
	seeds      []uint32
	numBuckets uint64
	n          uint64
	keys       []K // slot order: keys[Lookup(k)] == k, for k in the original set
	hash       func(K) uint64
}

func hashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

func hashUint32(v uint32) uint64 {
	var b [4]byte
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	return xxhash.Sum64(b[:])
}

func hashUint64(v uint64) uint64 {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return xxhash.Sum64(b[:])
}

func hashSentenceID(id SentenceID) uint64 {
	return hashUint64(id.Encode())
}

// mix combines a primary hash with a bucket's displacement seed, using a
// splitmix64-style finalizer for avalanche. Plain xxhash.Sum64 does not take
// a seed parameter in this package's v2 API, so displacement is folded in
// here rather than by re-hashing the key's bytes on every probe.
func mix(h uint64, d uint32) uint64 {
	h ^= uint64(d) * 0x9E3779B97F4A7C15
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// BuildMPH constructs a minimal perfect hash over keys, using hash as the
// primary per-key hash function. keys must not contain duplicates.
func BuildMPH[K comparable](keys []K, hash func(K) uint64) (*MPH[K], error) {
	n := uint64(len(keys))
	if n == 0 {
		return &MPH[K]{hash: hash}, nil
	}

	numBuckets := n
	primary := make([]uint64, len(keys))
	buckets := make([][]int, numBuckets)
	for i, k := range keys {
		h := hash(k)
		primary[i] = h
		b := h % numBuckets
		buckets[b] = append(buckets[b], i)
	}

	order := make([]int, numBuckets)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return len(buckets[order[i]]) > len(buckets[order[j]])
	})

	seeds := make([]uint32, numBuckets)
	slotKey := make([]K, n)
	taken := make([]bool, n)

	for _, b := range order {
		members := buckets[b]
		if len(members) == 0 {
			continue
		}

		found := false
		probeBound := maxDisplacementProbe()
		for d := uint32(0); d < probeBound; d++ {
			candidate := make([]uint64, len(members))
			ok := true
			seen := make(map[uint64]struct{}, len(members))
			for i, idx := range members {
				slot := mix(primary[idx], d) % n
				if taken[slot] {
					ok = false
					break
				}
				if _, dup := seen[slot]; dup {
					ok = false
					break
				}
				seen[slot] = struct{}{}
				candidate[i] = slot
			}
			if !ok {
				continue
			}
			for i, idx := range members {
				slot := candidate[i]
				taken[slot] = true
				slotKey[slot] = keys[idx]
			}
			seeds[b] = d
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("strata: could not build minimal perfect hash: bucket %d of %d keys has no free displacement within %d probes", b, len(members), probeBound)
		}
	}

	return &MPH[K]{
		seeds:      seeds,
		numBuckets: numBuckets,
		n:          n,
		keys:       slotKey,
		hash:       hash,
	}, nil
}

// Lookup returns the slot assigned to key, or ok=false if key's candidate
// slot does not actually hold key (i.e. key was never in the built set).
func (m *MPH[K]) Lookup(key K) (int, bool) {
	if m.n == 0 {
		return 0, false
	}
	h := m.hash(key)
	bucket := h % m.numBuckets
	d := m.seeds[bucket]
	slot := mix(h, d) % m.n
	if m.keys[slot] != key {
		return 0, false
	}
	return int(slot), true
}

// Len returns the number of keys the MPH was built over.
func (m *MPH[K]) Len() int {
	return int(m.n)
}
