package backends

import (
	"bytes"
	"encoding/binary"

	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/cryptoutils"
	"github.com/vilshansen/ecap-go/errs"
	"github.com/vilshansen/ecap-go/headers"
)

// EmbedWebP appends an ECAP chunk to the RIFF body and rewrites the
// RIFF size, per spec §4.7. derivedKey is accepted for interface
// symmetry but unused: WebP embedding is not randomized.
func EmbedWebP(carrier []byte, headerBytes, ciphertext, derivedKey []byte) ([]byte, error) {
	if !isWebP(carrier) {
		return nil, errs.New(errs.CarrierMalformed, "missing RIFF....WEBP prefix", nil)
	}

	blob := make([]byte, 0, len(headerBytes)+len(ciphertext))
	blob = append(blob, headerBytes...)
	blob = append(blob, ciphertext...)

	chunk := make([]byte, 0, 8+len(blob)+1)
	chunk = append(chunk, []byte(constants.WebPChunkFourCC)...)
	var sizeBytes [4]byte
	binary.LittleEndian.PutUint32(sizeBytes[:], uint32(len(blob)))
	chunk = append(chunk, sizeBytes[:]...)
	chunk = append(chunk, blob...)
	if len(blob)%2 != 0 {
		chunk = append(chunk, 0x00)
	}

	body := carrier[12:]
	newBody := make([]byte, 0, len(body)+len(chunk))
	newBody = append(newBody, body...)
	newBody = append(newBody, chunk...)

	out := make([]byte, 0, 12+len(newBody))
	out = append(out, carrier[0:4]...) // "RIFF"
	var riffSize [4]byte
	binary.LittleEndian.PutUint32(riffSize[:], uint32(len(newBody)+4)) // +4 for the "WEBP" FourCC
	out = append(out, riffSize[:]...)
	out = append(out, carrier[8:12]...) // "WEBP"
	out = append(out, newBody...)
	return out, nil
}

// extractWebPBlob iterates RIFF chunks from offset 12 looking for an
// ECAP chunk, returning its body.
func extractWebPBlob(carrier []byte) ([]byte, error) {
	if !isWebP(carrier) {
		return nil, errs.New(errs.CarrierMalformed, "missing RIFF....WEBP prefix", nil)
	}

	offset := 12
	for offset+8 <= len(carrier) {
		fourCC := string(carrier[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(carrier[offset+4 : offset+8]))
		dataStart := offset + 8
		if size < 0 || dataStart+size > len(carrier) {
			return nil, errs.New(errs.CarrierMalformed, "truncated RIFF chunk", nil)
		}

		if fourCC == constants.WebPChunkFourCC {
			return append([]byte(nil), carrier[dataStart:dataStart+size]...), nil
		}

		offset = dataStart + size
		if size%2 != 0 {
			offset++ // skip pad byte
		}
	}
	return nil, errs.New(errs.NoPayload, "no ECAP chunk found in RIFF body", nil)
}

// DecodeWebP extracts and decrypts a message embedded by EmbedWebP.
func DecodeWebP(carrier []byte, password []byte) ([]byte, error) {
	blob, err := extractWebPBlob(carrier)
	if err != nil {
		return nil, err
	}
	if len(blob) < constants.HeaderSize {
		return nil, errs.New(errs.BadHeader, "ECAP chunk shorter than the 60-byte header", nil)
	}
	if !bytes.Equal(blob[:4], []byte(constants.Magic)) {
		return nil, errs.New(errs.BadHeader, "magic mismatch inside ECAP chunk", nil)
	}

	hdr, err := headers.Parse(blob[:constants.HeaderSize])
	if err != nil {
		return nil, err
	}

	key, err := cryptoutils.DeriveFixed(password, hdr.Salt, int(hdr.LogN), int(hdr.R), int(hdr.P))
	if err != nil {
		return nil, err
	}
	defer cryptoutils.ZeroBytes(key)

	end := constants.HeaderSize + int(hdr.PayloadLen)
	if end > len(blob) {
		return nil, errs.New(errs.CarrierTooSmall, "ECAP chunk shorter than declared payload_len", nil)
	}
	ciphertext := blob[constants.HeaderSize:end]

	return cryptoutils.Open(key, hdr.IV, ciphertext, hdr.Tag)
}
