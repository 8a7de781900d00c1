package cryptoutils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/vilshansen/ecap-go/constants"
)

// PRNG is a counter-mode HMAC-SHA-256 byte stream, per spec §4.4. It is
// deterministic given its key: identical keys produce identical byte
// sequences, which is what lets the PNG backend rebuild the same
// permutation at decode time.
type PRNG struct {
	key     []byte
	counter uint32
	buf     [sha256.Size]byte
	pos     int
}

// NewPRNG seeds a PRNG directly from a 32-byte key.
func NewPRNG(key []byte) *PRNG {
	p := &PRNG{key: key, pos: sha256.Size}
	return p
}

// PermuteKey derives the PRNG seed used for PNG bit-position scattering:
// HMAC-SHA256(derivedKey, "ECAP-PERMUTE").
func PermuteKey(derivedKey []byte) []byte {
	mac := hmac.New(sha256.New, derivedKey)
	mac.Write([]byte(constants.PRNGPermuteLabel))
	return mac.Sum(nil)
}

func (p *PRNG) refill() {
	mac := hmac.New(sha256.New, p.key)
	var ctr [4]byte
	binary.BigEndian.PutUint32(ctr[:], p.counter)
	mac.Write(ctr[:])
	copy(p.buf[:], mac.Sum(nil))
	p.counter++
	p.pos = 0
}

// NextByte returns the next byte of the keystream.
func (p *PRNG) NextByte() byte {
	if p.pos >= sha256.Size {
		p.refill()
	}
	b := p.buf[p.pos]
	p.pos++
	return b
}

// NextUint32 concatenates four NextByte calls, big-endian.
func (p *PRNG) NextUint32() uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		v = v<<8 | uint32(p.NextByte())
	}
	return v
}

// FisherYatesPermute shuffles positions in place using the PRNG,
// walking from the last index down to 1 and swapping with
// prng.NextUint32() mod (i+1), per spec §4.5.
func FisherYatesPermute[T any](positions []T, prng *PRNG) {
	for i := len(positions) - 1; i >= 1; i-- {
		j := int(prng.NextUint32() % uint32(i+1))
		positions[i], positions[j] = positions[j], positions[i]
	}
}
