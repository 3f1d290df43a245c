package RobinMap

import (
	"errors"

	Robin_Hood_Dict "github.com/cortexin/robin-hood-dict"
)

// ErrKeyNotFound is returned by Load and Delete for absent keys. It's the only error this package
// produces.
var ErrKeyNotFound = errors.New("key not found")

const (
	minCap = 10
	//load factor bounds as integer ratios: grow at 2/3, rebuild toward 1/2, shrink at 1/4,
	//initial sizing at the (2/3+1/2)/2 = 7/12 midpoint.
)

// New RobinMap with the minimum capacity.
// hasher must be consistent for equal keys; see Hashers.go for stock choices.
func New[K comparable, V any](hasher func(K) uint) *RobinMap[K, V] {
	return &RobinMap[K, V]{bkt: make([]bucket[K, V], minCap), graves: Robin_Hood_Dict.NewBitArray(minCap), hash: hasher, mean: 1, max: 1}
}

// From builds a RobinMap holding the contents of base, sized so that no resize happens on the way.
func From[K comparable, V any](base map[K]V, hasher func(K) uint) *RobinMap[K, V] {
	n := len(base) * 12 / 7
	if n < minCap {
		n = minCap
	}
	u := &RobinMap[K, V]{bkt: make([]bucket[K, V], n), graves: Robin_Hood_Dict.NewBitArray(n), hash: hasher, mean: 1, max: 1}
	for k, v := range base {
		u.Store(k, v)
	}
	return u
}

// RobinMap is an open-addressed hash map using Robin Hood hashing with tombstoned deletion and a
// displacement-statistics guided search window. Probing runs in one direction only and never wraps
// past the last bucket; an insertion run that falls off the end grows the table instead.
// Not safe for concurrent use; callers need external exclusion around every method.
type RobinMap[K comparable, V any] struct {
	bkt    []bucket[K, V]
	graves Robin_Hood_Dict.BitArray //tombstoned indices; transparent to probing, reusable by inserts
	hash   func(K) uint
	sz     int
	//displacement statistics bounding the search window. mean is a cheap approximation, max is
	//exact after inserts and refreshed lazily after deletes (always >= the true maximum).
	mean, max int
}

func (u *RobinMap[K, V]) home(key K) int {
	return int(u.hash(key) % uint(len(u.bkt)))
}

func (u *RobinMap[K, V]) state(i int) byte {
	if u.bkt[i].used {
		return full
	}
	if u.graves.Get(i) {
		return grave
	}
	return empty
}

// Size returns the number of live entries.
func (u *RobinMap[K, V]) Size() int {
	return u.sz
}

// Store inserts or overwrites the value for key. It never fails; crossing the load factor bound
// grows the table before returning.
func (u *RobinMap[K, V]) Store(key K, val V) {
	h := u.home(key)
	if i := u.locate(h, key); i > -1 {
		u.bkt[i].val = val
		return
	}
	u.insert(h, key, val)
}

// Load returns the value for key, or ErrKeyNotFound.
func (u *RobinMap[K, V]) Load(key K) (V, error) {
	if i := u.locate(u.home(key), key); i > -1 {
		return u.bkt[i].val, nil
	}
	var v V
	return v, ErrKeyNotFound
}

// Has reports whether key is present.
func (u *RobinMap[K, V]) Has(key K) bool {
	return u.locate(u.home(key), key) > -1
}

// Delete removes key, leaving a tombstone, or returns ErrKeyNotFound. Removing the entry that set
// the maximum displacement recomputes it with a full scan; dropping to a quarter load shrinks the
// table.
func (u *RobinMap[K, V]) Delete(key K) error {
	h := u.home(key)
	i := u.locate(h, key)
	if i < 0 {
		return ErrKeyNotFound
	}
	u.bkt[i] = bucket[K, V]{}
	u.graves.Up(i)
	u.sz--
	d := i - h
	u.subMean(d)
	if d == u.max {
		u.refreshMax()
	}
	if c := len(u.bkt); u.sz*4 <= c {
		t := u.sz * 2
		if t < minCap {
			t = minCap
		}
		if t < c { //never churn a minimum-capacity table
			u.rehash(t)
		}
	}
	return nil
}

// Range calls f on every entry in current bucket order until f returns false. The order is not
// insertion order and changes across resizes.
func (u *RobinMap[K, V]) Range(f func(K, V) bool) {
	for i := range u.bkt {
		if u.bkt[i].used {
			if !f(u.bkt[i].key, u.bkt[i].val) {
				return
			}
		}
	}
}

// findSlot scans forward from h for the first bucket an entry homed at h may take: a free one, or
// an occupied one whose home hashed lower (which it then steals). Returns -1 if the run falls off
// the end of the array.
func (u *RobinMap[K, V]) findSlot(h int) int {
	for i := h; i < len(u.bkt); i++ {
		if b := &u.bkt[i]; !b.used || b.home < h {
			return i
		}
	}
	return -1
}

func (u *RobinMap[K, V]) insert(h int, key K, val V) {
	idx := u.findSlot(h)
	for idx < 0 { //ran off the end: no wraparound, so grow until the run fits
		u.rehash(len(u.bkt) * 2)
		h = u.home(key)
		idx = u.findSlot(h)
	}
	old := u.bkt[idx]
	u.bkt[idx] = bucket[K, V]{key: key, val: val, home: h, used: true}
	if !old.used {
		u.graves.Down(idx)
		u.sz++
	}
	d := idx - h
	u.addMean(d)
	if d > u.max {
		u.max = d
	}
	if old.used {
		//reinsert the displaced entry from its own home; the cascade ends at the write that
		//consumes a free slot.
		u.insert(old.home, old.key, old.val)
	} else if u.sz*3 >= len(u.bkt)*2 {
		u.rehash(u.sz * 2)
	}
}

// locate runs the search window for key homed at h. An Empty candidate proves absence: inserts
// always fill the first free-or-steal point of a run, so no entry of this home can sit past one.
// Graves don't appear as candidates at all.
func (u *RobinMap[K, V]) locate(h int, key K) int {
	for next := u.window(h); ; {
		i, ok := next()
		if !ok {
			return -1
		}
		b := &u.bkt[i]
		if !b.used {
			return -1
		}
		if b.home == h && b.key == key {
			return i
		}
	}
}

// window yields candidate indices interleaved outward from h+mean: ascending up to h+max
// alternating with descending down to h, each arm continuing alone once the other is spent.
// Arms are clamped to the last bucket so lookups stay in bounds near the array end.
func (u *RobinMap[K, V]) window(h int) func() (int, bool) {
	last := len(u.bkt) - 1
	hi := h + u.max
	if hi > last {
		hi = last
	}
	asc := h + u.mean
	desc := asc - 1
	if desc > last {
		desc = last
	}
	up := true
	return func() (int, bool) {
		for asc <= hi || desc >= h {
			if up {
				up = false
				if asc <= hi {
					i := asc
					asc++
					if !u.graves.Get(i) {
						return i, true
					}
				}
			} else {
				up = true
				if desc >= h {
					i := desc
					desc--
					if !u.graves.Get(i) {
						return i, true
					}
				}
			}
		}
		return -1, false
	}
}

// addMean folds d into the approximate mean displacement. The halving recurrence is deliberately
// inexact; it only has to stay a plausible center for the search window.
func (u *RobinMap[K, V]) addMean(d int) {
	u.mean = int((float64(u.mean) + float64(d)/float64(u.sz)) / 2)
}

// subMean reverses addMean approximately. With one or zero entries left the recurrence divides by
// zero, so the mean drops to 0 and the window degenerates to a plain forward scan.
func (u *RobinMap[K, V]) subMean(d int) {
	if u.sz > 1 {
		if m := (u.mean*u.sz - d) / (u.sz - 1); m > 0 {
			u.mean = m
		} else {
			u.mean = 0
		}
	} else {
		u.mean = 0
	}
}

func (u *RobinMap[K, V]) refreshMax() {
	m := 0
	for i := range u.bkt {
		if b := &u.bkt[i]; b.used {
			if d := i - b.home; d > m {
				m = d
			}
		}
	}
	u.max = m
}

// rehash replays every live entry through the full insertion path against a fresh array of n
// buckets. Tombstones are dropped and the displacement statistics restart from the replay.
func (u *RobinMap[K, V]) rehash(n int) {
	M := RobinMap[K, V]{bkt: make([]bucket[K, V], n), graves: Robin_Hood_Dict.NewBitArray(n), hash: u.hash, mean: 1, max: 1}
	for i := range u.bkt {
		if b := &u.bkt[i]; b.used {
			M.insert(M.home(b.key), b.key, b.val)
		}
	}
	*u = M
}
