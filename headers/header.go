// Package headers implements the codec's 60-byte on-disk header: the
// self-describing record binding carrier-format parameters,
// key-derivation parameters, and the AEAD authentication tag (spec §3,
// §4.1). Every backend embeds and extracts the same layout.
package headers

import (
	"encoding/binary"

	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/errs"
)

// Params is the parsed, in-memory form of the 60-byte header.
type Params struct {
	Version         byte
	Flags           byte
	BitsPerChannel  byte
	ChannelsMask    byte
	PayloadLen      uint32
	KDF             byte
	LogN            byte
	R               byte
	P               byte
	Salt            []byte // 16 bytes
	IV              []byte // 12 bytes
	Tag             []byte // 16 bytes
}

// Encrypted reports whether the header's encrypted flag bit is set.
func (p Params) Encrypted() bool { return p.Flags&constants.FlagEncrypted != 0 }

// Randomized reports whether the header's randomized flag bit is set.
func (p Params) Randomized() bool { return p.Flags&constants.FlagRandomized != 0 }

// Serialize writes Params into the canonical 60-byte layout of spec §3.
// All multi-byte integers are big-endian.
func Serialize(p Params) ([]byte, error) {
	if len(p.Salt) != constants.SaltSize {
		return nil, errs.New(errs.BadHeader, "salt must be 16 bytes", nil)
	}
	if len(p.IV) != constants.IVSize {
		return nil, errs.New(errs.BadHeader, "iv must be 12 bytes", nil)
	}
	if len(p.Tag) != constants.TagSize {
		return nil, errs.New(errs.BadHeader, "tag must be 16 bytes", nil)
	}

	buf := make([]byte, constants.HeaderSize)
	copy(buf[0:4], constants.Magic)
	buf[4] = p.Version
	buf[5] = p.Flags
	buf[6] = p.BitsPerChannel
	buf[7] = p.ChannelsMask
	binary.BigEndian.PutUint32(buf[8:12], p.PayloadLen)
	buf[12] = p.KDF
	buf[13] = p.LogN
	buf[14] = p.R
	buf[15] = p.P
	copy(buf[16:32], p.Salt)
	copy(buf[32:44], p.IV)
	copy(buf[44:60], p.Tag)
	return buf, nil
}

// Parse reads the first 60 bytes of b as a header. It validates magic,
// version, kdf, bits_per_channel (1 or 2), channels_mask (0b111), the
// logN range, and r/p >= 1, and returns the field values as-is;
// payload_len is not checked against any ciphertext slice here — that
// belongs to the caller holding the ciphertext (spec §4.1).
func Parse(b []byte) (Params, error) {
	var p Params
	if len(b) < constants.HeaderSize {
		return p, errs.New(errs.BadHeader, "header shorter than 60 bytes", nil)
	}
	if string(b[0:4]) != constants.Magic {
		return p, errs.New(errs.BadHeader, "magic mismatch", nil)
	}

	version := b[4]
	if version != constants.Version {
		return p, errs.New(errs.UnsupportedVersion, "unsupported header version", nil)
	}

	p.Version = version
	p.Flags = b[5]
	p.BitsPerChannel = b[6]
	p.ChannelsMask = b[7]
	p.PayloadLen = binary.BigEndian.Uint32(b[8:12])
	p.KDF = b[12]
	p.LogN = b[13]
	p.R = b[14]
	p.P = b[15]
	p.Salt = append([]byte(nil), b[16:32]...)
	p.IV = append([]byte(nil), b[32:44]...)
	p.Tag = append([]byte(nil), b[44:60]...)

	if p.KDF != constants.KDFScrypt {
		return p, errs.New(errs.BadHeader, "unknown kdf field", nil)
	}
	if p.BitsPerChannel != 1 && p.BitsPerChannel != 2 {
		return p, errs.New(errs.BadHeader, "bits_per_channel must be 1 or 2", nil)
	}
	if p.ChannelsMask != constants.ChannelsMaskRGB {
		return p, errs.New(errs.BadHeader, "channels_mask must be 0b111", nil)
	}
	if int(p.LogN) < constants.ScryptLogNFloor || int(p.LogN) > constants.ScryptLogNCeiling {
		return p, errs.New(errs.BadHeader, "logN out of range", nil)
	}
	if p.R < 1 || p.P < 1 {
		return p, errs.New(errs.BadHeader, "scrypt r/p must be >= 1", nil)
	}

	return p, nil
}
