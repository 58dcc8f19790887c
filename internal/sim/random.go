package sim

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// TickRNG returns the generator used for tick; replaying a tick with the same
// base seed yields the same draws.
func TickRNG(seed, tick uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed + tick)))
}

// SubsystemSeed derives a stable seed for label from the base seed.
func SubsystemSeed(seed uint64, label string) int64 {
	hasher := fnv.New64a()
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], seed)
	hasher.Write(raw[:])
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// SubsystemRNG returns a generator seeded from SubsystemSeed.
func SubsystemRNG(seed uint64, label string) *rand.Rand {
	return rand.New(rand.NewSource(SubsystemSeed(seed, label)))
}
