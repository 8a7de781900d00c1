package backends

import (
	"bytes"
	"encoding/binary"

	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/cryptoutils"
	"github.com/vilshansen/ecap-go/errs"
	"github.com/vilshansen/ecap-go/headers"
)

const (
	markerSOI  = 0xD8
	markerSOS  = 0xDA
	markerEOI  = 0xD9
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

// jpegInsertionOffset walks JPEG markers from offset 2 and returns the
// byte offset of the first SOS, EOI, or restart marker — the point
// spec §4.6 inserts the APP15 segment before.
func jpegInsertionOffset(carrier []byte) (int, error) {
	if len(carrier) < 2 || carrier[0] != 0xFF || carrier[1] != markerSOI {
		return 0, errs.New(errs.CarrierMalformed, "missing JPEG SOI marker", nil)
	}

	offset := 2
	for offset+1 < len(carrier) {
		if carrier[offset] != 0xFF {
			return 0, errs.New(errs.CarrierMalformed, "expected marker byte 0xFF", nil)
		}
		marker := carrier[offset+1]

		if marker == markerSOS || marker == markerEOI ||
			(marker >= markerRST0 && marker <= markerRST7) {
			return offset, nil
		}

		if offset+3 >= len(carrier) {
			return 0, errs.New(errs.CarrierMalformed, "truncated JPEG segment length", nil)
		}
		segLen := int(binary.BigEndian.Uint16(carrier[offset+2 : offset+4]))
		if segLen < 2 {
			return 0, errs.New(errs.CarrierMalformed, "invalid JPEG segment length", nil)
		}
		offset += 2 + segLen
	}
	return 0, errs.New(errs.CarrierMalformed, "no SOS/EOI/RST marker found before end of file", nil)
}

// EmbedJPEG inserts a single APP15 (0xFFEF) segment carrying
// header‖ciphertext immediately before the first SOS/EOI/RST marker
// (spec §4.6). derivedKey is accepted for interface symmetry with the
// other backends but unused: JPEG embedding is not randomized.
func EmbedJPEG(carrier []byte, headerBytes, ciphertext, derivedKey []byte) ([]byte, error) {
	offset, err := jpegInsertionOffset(carrier)
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, len(headerBytes)+len(ciphertext))
	blob = append(blob, headerBytes...)
	blob = append(blob, ciphertext...)
	if len(blob) > constants.JPEGMaxSegmentPayload {
		return nil, errs.New(errs.JpegSegmentOverflow,
			"header+ciphertext exceeds the 65533-byte JPEG segment ceiling; use a PNG carrier instead", nil)
	}

	segment := make([]byte, 0, 4+len(blob))
	segment = append(segment, 0xFF, constants.JPEGAPP15Marker)
	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], uint16(len(blob)+2))
	segment = append(segment, lenBytes[:]...)
	segment = append(segment, blob...)

	out := make([]byte, 0, len(carrier)+len(segment))
	out = append(out, carrier[:offset]...)
	out = append(out, segment...)
	out = append(out, carrier[offset:]...)
	return out, nil
}

// extractJPEGBlob scans APP15 segments for one whose body starts with
// the ECAP magic, returning header‖ciphertext.
func extractJPEGBlob(carrier []byte) ([]byte, error) {
	if len(carrier) < 2 || carrier[0] != 0xFF || carrier[1] != markerSOI {
		return nil, errs.New(errs.CarrierMalformed, "missing JPEG SOI marker", nil)
	}

	offset := 2
	for offset+1 < len(carrier) {
		if carrier[offset] != 0xFF {
			return nil, errs.New(errs.CarrierMalformed, "expected marker byte 0xFF", nil)
		}
		marker := carrier[offset+1]

		if marker == markerSOS || marker == markerEOI ||
			(marker >= markerRST0 && marker <= markerRST7) {
			break
		}

		if offset+3 >= len(carrier) {
			return nil, errs.New(errs.CarrierMalformed, "truncated JPEG segment length", nil)
		}
		segLen := int(binary.BigEndian.Uint16(carrier[offset+2 : offset+4]))
		if segLen < 2 || offset+2+segLen > len(carrier) {
			return nil, errs.New(errs.CarrierMalformed, "invalid JPEG segment length", nil)
		}

		body := carrier[offset+4 : offset+2+segLen]
		if marker == constants.JPEGAPP15Marker && len(body) >= 4 && bytes.Equal(body[:4], []byte(constants.Magic)) {
			return body, nil
		}

		offset += 2 + segLen
	}
	return nil, errs.New(errs.NoPayload, "no APP15 segment carrying the ECAP magic", nil)
}

// DecodeJPEG extracts and decrypts a message embedded by EmbedJPEG.
func DecodeJPEG(carrier []byte, password []byte) ([]byte, error) {
	blob, err := extractJPEGBlob(carrier)
	if err != nil {
		return nil, err
	}
	if len(blob) < constants.HeaderSize {
		return nil, errs.New(errs.BadHeader, "APP15 payload shorter than the 60-byte header", nil)
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
		return nil, errs.New(errs.CarrierTooSmall, "APP15 payload shorter than declared payload_len", nil)
	}
	ciphertext := blob[constants.HeaderSize:end]

	return cryptoutils.Open(key, hdr.IV, ciphertext, hdr.Tag)
}
