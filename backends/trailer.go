package backends

import (
	"bytes"
	"encoding/binary"

	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/cryptoutils"
	"github.com/vilshansen/ecap-go/errs"
	"github.com/vilshansen/ecap-go/headers"
)

// EmbedTrailer appends ECAPTR‖be32(payload_len)‖header‖ciphertext to
// carrier, with no closing sentinel (spec §4.8). derivedKey is accepted
// for interface symmetry but unused: trailer embedding is not randomized.
func EmbedTrailer(carrier []byte, headerBytes, ciphertext, derivedKey []byte) ([]byte, error) {
	out := make([]byte, 0, len(carrier)+len(constants.TrailerSignature)+4+len(headerBytes)+len(ciphertext))
	out = append(out, carrier...)
	out = append(out, []byte(constants.TrailerSignature)...)

	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(ciphertext)))
	out = append(out, lenBytes[:]...)
	out = append(out, headerBytes...)
	out = append(out, ciphertext...)
	return out, nil
}

// extractTrailerBlob locates the last ECAPTR occurrence and reads the
// be32-length-prefixed header‖ciphertext that follows it.
func extractTrailerBlob(carrier []byte) ([]byte, error) {
	sig := []byte(constants.TrailerSignature)
	idx := bytes.LastIndex(carrier, sig)
	if idx < 0 {
		return nil, errs.New(errs.NoPayload, "no ECAPTR signature found", nil)
	}

	lenStart := idx + len(sig)
	if lenStart+4 > len(carrier) {
		return nil, errs.New(errs.CarrierMalformed, "truncated trailer length field", nil)
	}
	payloadLen := int(binary.BigEndian.Uint32(carrier[lenStart : lenStart+4]))

	blobStart := lenStart + 4
	blobEnd := blobStart + constants.HeaderSize + payloadLen
	if blobEnd > len(carrier) {
		return nil, errs.New(errs.CarrierMalformed, "trailer blob extends past end of carrier", nil)
	}
	return carrier[blobStart:blobEnd], nil
}

// DecodeTrailer extracts and decrypts a message embedded by EmbedTrailer.
func DecodeTrailer(carrier []byte, password []byte) ([]byte, error) {
	blob, err := extractTrailerBlob(carrier)
	if err != nil {
		return nil, err
	}
	if len(blob) < constants.HeaderSize {
		return nil, errs.New(errs.BadHeader, "trailer blob shorter than the 60-byte header", nil)
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
		return nil, errs.New(errs.CarrierTooSmall, "trailer blob shorter than declared payload_len", nil)
	}
	ciphertext := blob[constants.HeaderSize:end]

	return cryptoutils.Open(key, hdr.IV, ciphertext, hdr.Tag)
}
