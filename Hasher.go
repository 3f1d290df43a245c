package Robin_Hood_Dict

import (
	_ "runtime"
	"unsafe"
)

//go:linkname RTHash runtime.memhash
//go:noescape
func RTHash(ptr unsafe.Pointer, seed uint, len uintptr) uint

//go:linkname RTHash64 runtime.memhash64
//go:noescape
func RTHash64(ptr unsafe.Pointer, seed uint) uint

//go:linkname RTHash32 runtime.memhash32
//go:noescape
func RTHash32(ptr unsafe.Pointer, seed uint) uint

//go:linkname RTStrHash runtime.strhash
//go:noescape
func RTStrHash(ptr unsafe.Pointer, seed uint) uint

// Hasher is a seed for the runtime hash functions. The receivers are stateless; the memory they
// read must not be mutated during the call.
type Hasher uint

// HashMem hashes the memory contents in the range [addr, addr+size) as bytes.
func (u Hasher) HashMem(addr unsafe.Pointer, size uintptr) uint {
	if size == 4 {
		return RTHash32(addr, uint(u))
	} else if size == 8 {
		return RTHash64(addr, uint(u))
	}
	return RTHash(addr, uint(u), size)
}

// HashBytes hashes the given byte slice.
func (u Hasher) HashBytes(b []byte) uint {
	return u.HashMem(unsafe.Pointer(&b[0]), uintptr(uint(len(b))))
}

// HashInt hashes v.
func (u Hasher) HashInt(v int) uint {
	if unsafe.Sizeof(v) == 4 {
		return RTHash32(unsafe.Pointer(&v), uint(u))
	}
	return RTHash64(unsafe.Pointer(&v), uint(u))
}

// HashString directly hashes a string's contents, it's faster than hashing it as bytes.
func (u Hasher) HashString(v string) uint {
	return RTStrHash(unsafe.Pointer(&v), uint(u))
}
