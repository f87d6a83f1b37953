package provider

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// expandSeed derives n bytes of seed material from a 32-bit profile seed,
// iteration index, and component label using SHAKE-256 with domain
// separation.
//
// Every field is written with a 4-byte big-endian length prefix so the input
// encoding is unambiguous: two iterations or two components can never absorb
// the same byte stream.
func expandSeed(domain string, seed, index uint64, label string, n int) []byte {
	h := sha3.NewShake256()
	lenBuf := make([]byte, 4)
	numBuf := make([]byte, 8)

	writeField := func(b []byte) {
		binary.BigEndian.PutUint32(lenBuf, uint32(len(b)))
		h.Write(lenBuf)
		h.Write(b)
	}

	writeField([]byte(domain))

	binary.BigEndian.PutUint64(numBuf, seed)
	writeField(numBuf)

	binary.BigEndian.PutUint64(numBuf, index)
	writeField(numBuf)

	writeField([]byte(label))

	out := make([]byte, n)
	_, _ = h.Read(out) // SHAKE256.Read never fails
	return out
}
