package RobinMap

// Observable slot states. A bucket itself only records used/free; the map's grave BitArray tells
// the two free states apart, since only Empty may terminate a probe.
const (
	empty byte = iota
	grave
	full
)

type bucket[K comparable, V any] struct {
	key  K
	val  V
	home int //hash(key) mod capacity at the time the entry was written here; never updated in place.
	used bool
}
