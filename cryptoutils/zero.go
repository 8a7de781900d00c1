// Package cryptoutils implements the codec's cryptographic primitives:
// adaptive scrypt key derivation, AES-256-GCM sealing, and the
// HMAC-SHA-256 counter PRNG used to scatter PNG payload bits.
package cryptoutils

// ZeroBytes overwrites b with zeros in place. Used to wipe password
// buffers and derived keys on every exit path, per spec §3's lifecycle
// requirement.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
