package core

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math"
	"strconv"
)

// Fingerprint derives a deterministic cache token from the query parameters,
// suitable for use as an ETag. Alpha is hashed via its exact bit pattern so
// the token never drifts with decimal rendering. Field boundaries are
// delimited so adjacent string fields cannot alias each other.
func Fingerprint(q Query) string {
	h := fnv.New64a()

	io.WriteString(h, q.Text)
	h.Write([]byte{0})

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(q.TopK))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(q.Alpha))
	h.Write(buf[:])

	if q.FamilyFriendly {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	io.WriteString(h, q.Exclude)
	h.Write([]byte{0})
	io.WriteString(h, q.Include)

	return `"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}
