package RobinMap

import (
	"unsafe"

	"github.com/cespare/xxhash"
	Robin_Hood_Dict "github.com/cortexin/robin-hood-dict"
	"golang.org/x/exp/constraints"
)

// IntHasher hashes integer keys by their memory contents.
func IntHasher[K constraints.Integer]() func(K) uint {
	return func(key K) uint {
		l := int(unsafe.Sizeof(key))
		s := unsafe.Slice((*byte)(unsafe.Pointer(&key)), l)
		return uint(xxhash.Sum64(s))
	}
}

// StrHasher hashes string keys with the given seed.
func StrHasher(seed uint) func(string) uint {
	h := Robin_Hood_Dict.Hasher(seed)
	return func(key string) uint {
		return h.HashString(key)
	}
}

// MemHasher hashes keys of any comparable type by their raw memory with the given seed. Only use
// it for keys without indirection (no strings, pointers, or interfaces anywhere inside), since it
// reads the representation, not what it points to.
func MemHasher[K comparable](seed uint) func(K) uint {
	h := Robin_Hood_Dict.Hasher(seed)
	return func(key K) uint {
		return h.HashMem(unsafe.Pointer(&key), unsafe.Sizeof(key))
	}
}
