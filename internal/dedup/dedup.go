// Package dedup detects brushes whose pixels repeat an earlier brush.
package dedup

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

type entry struct {
	index  int
	width  uint32
	height uint32
	depth  uint16
	data   []byte
}

// Set remembers the brushes added to it, keyed by a hash of their
// geometry and samples. Hash collisions are resolved by comparing samples.
type Set struct {
	seen map[uint64][]entry
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[uint64][]entry)}
}

// Sum hashes a brush's geometry followed by its samples.
func Sum(width, height uint32, depth uint16, data []byte) uint64 {
	var hdr [10]byte
	binary.BigEndian.PutUint32(hdr[0:], width)
	binary.BigEndian.PutUint32(hdr[4:], height)
	binary.BigEndian.PutUint16(hdr[8:], depth)

	d := xxhash.New()
	d.Write(hdr[:])
	d.Write(data)
	return d.Sum64()
}

// Add records a brush at index. If an identical brush was added before,
// Add returns its index and true and the set is left unchanged.
func (s *Set) Add(index int, width, height uint32, depth uint16, data []byte) (int, bool) {
	key := Sum(width, height, depth, data)
	for _, e := range s.seen[key] {
		if e.width == width && e.height == height && e.depth == depth && bytes.Equal(e.data, data) {
			return e.index, true
		}
	}
	s.seen[key] = append(s.seen[key], entry{index: index, width: width, height: height, depth: depth, data: data})
	return index, false
}

// Len returns the number of distinct brushes recorded.
func (s *Set) Len() int {
	n := 0
	for _, es := range s.seen {
		n += len(es)
	}
	return n
}
