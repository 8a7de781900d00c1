// Package ecap is the library facade spec §4.10 describes: it wires
// together the header codec, the adaptive KDF, the AEAD, and the four
// carrier backends into two entry points, Encode and Decode.
package ecap

import (
	"crypto/rand"

	"github.com/vilshansen/ecap-go/backends"
	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/cryptoutils"
	"github.com/vilshansen/ecap-go/errs"
	"github.com/vilshansen/ecap-go/headers"
)

// options collects the tunables an Option can set. Zero values mean
// "use the package default."
type options struct {
	bitsPerChannel int
	maxPixels      int
	scryptBudget   uint64
}

// Option customizes a single Encode or Decode call.
type Option func(*options)

// WithBitsPerChannel opts into the PNG backend's 2-bits-per-channel mode
// (spec §5's resolved Open Question: off by default, since it roughly
// doubles visible noise for roughly double the capacity).
func WithBitsPerChannel(n int) Option {
	return func(o *options) { o.bitsPerChannel = n }
}

// WithMaxPixels overrides the PNG decode-side pixel ceiling.
func WithMaxPixels(n int) Option {
	return func(o *options) { o.maxPixels = n }
}

// WithScryptBudget overrides the memory budget DeriveAdaptive uses to
// pick logN during Encode. It has no effect on Decode, which always
// re-derives at the header's stored, fixed logN.
func WithScryptBudget(n uint64) Option {
	return func(o *options) { o.scryptBudget = n }
}

func resolveOptions(opts []Option) options {
	o := options{
		bitsPerChannel: constants.BitsPerChannelDefault,
		maxPixels:      constants.DefaultMaxPixels,
		scryptBudget:   constants.ScryptMemoryBudget,
	}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// Encode embeds plaintext into carrier under password, choosing the
// carrier backend from carrier's magic bytes and carrierExt, and
// returns the resulting carrier bytes. The derived key is zeroed before
// returning on every path.
func Encode(carrier []byte, carrierExt string, plaintext, password []byte, opts ...Option) ([]byte, error) {
	o := resolveOptions(opts)

	salt := make([]byte, constants.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errs.New(errs.KdfUnsupported, "failed to generate salt", err)
	}
	iv := make([]byte, constants.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errs.New(errs.KdfUnsupported, "failed to generate iv", err)
	}

	key, logN, err := cryptoutils.DeriveAdaptive(password, salt, o.scryptBudget)
	if err != nil {
		return nil, err
	}
	defer cryptoutils.ZeroBytes(key)

	ciphertext, tag, err := cryptoutils.Seal(key, iv, plaintext)
	if err != nil {
		return nil, err
	}

	kind := backends.Detect(carrier, carrierExt)

	flags := byte(constants.FlagEncrypted)
	if kind == backends.KindPNG {
		flags |= constants.FlagRandomized
	}

	headerBytes, err := headers.Serialize(headers.Params{
		Version:        constants.Version,
		Flags:          flags,
		BitsPerChannel: byte(o.bitsPerChannel),
		ChannelsMask:   constants.ChannelsMaskRGB,
		PayloadLen:     uint32(len(ciphertext)),
		KDF:            constants.KDFScrypt,
		LogN:           byte(logN),
		R:              constants.ScryptR,
		P:              constants.ScryptP,
		Salt:           salt,
		IV:             iv,
		Tag:            tag,
	})
	if err != nil {
		return nil, err
	}

	return backends.EncodeWith(kind, carrier, headerBytes, ciphertext, key, o.bitsPerChannel, o.maxPixels)
}

// Decode locates and decrypts a message previously embedded by Encode.
// It tries the carrier's detected backend first, then falls back across
// the remaining backends, per spec §4.9.
func Decode(carrier []byte, password []byte, opts ...Option) ([]byte, error) {
	o := resolveOptions(opts)
	plaintext, _, err := backends.DecodeAny(carrier, password, o.maxPixels)
	return plaintext, err
}
