// Package backends implements the four carrier-format-specific embed/
// extract strategies (PNG LSB, JPEG APP15, WebP chunk, generic trailer)
// and the dispatcher that routes between them, per spec §4.5-§4.9.
package backends

import (
	"bytes"
	"strings"

	"github.com/vilshansen/ecap-go/errs"
)

// CarrierKind is the closed set of carrier formats this codec handles.
type CarrierKind int

const (
	KindPNG CarrierKind = iota
	KindJPEG
	KindWebP
	KindTrailer
)

func (k CarrierKind) String() string {
	switch k {
	case KindPNG:
		return "png"
	case KindJPEG:
		return "jpeg"
	case KindWebP:
		return "webp"
	case KindTrailer:
		return "trailer"
	default:
		return "unknown"
	}
}

var (
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegSignature = []byte{0xFF, 0xD8}
	pdfSignature  = []byte("%PDF-")
)

// Detect identifies the carrier kind from its magic bytes first, falling
// back to the file extension, per spec §4.9's precedence list. Unknown
// extensions fall back to the trailer backend, which never fails to
// apply to arbitrary binary.
func Detect(carrier []byte, ext string) CarrierKind {
	switch {
	case bytes.HasPrefix(carrier, pngSignature):
		return KindPNG
	case bytes.HasPrefix(carrier, jpegSignature):
		return KindJPEG
	case isWebP(carrier):
		return KindWebP
	case bytes.HasPrefix(carrier, pdfSignature):
		return KindTrailer
	}

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return KindPNG
	case "jpg", "jpeg":
		return KindJPEG
	case "webp":
		return KindWebP
	case "pdf":
		return KindTrailer
	default:
		return KindTrailer
	}
}

func isWebP(carrier []byte) bool {
	return len(carrier) >= 12 &&
		bytes.Equal(carrier[0:4], []byte("RIFF")) &&
		bytes.Equal(carrier[8:12], []byte("WEBP"))
}

// decodeFallbackOrder is the order the dispatcher tries backends during
// decode when the detected kind's own extraction fails (spec §4.9).
var decodeFallbackOrder = []CarrierKind{KindPNG, KindJPEG, KindWebP, KindTrailer}

// DecodeAny tries each backend in decodeFallbackOrder, starting from the
// detected kind, returning the first successful extraction. If no backend
// succeeds and one of them found a header but failed authentication
// (wrong password or tampered ciphertext), that AuthFail error is
// returned; otherwise it reports NoPayload.
func DecodeAny(carrier []byte, password []byte, maxPixels int) (plaintext []byte, usedKind CarrierKind, err error) {
	detected := Detect(carrier, "")
	order := orderedFrom(detected)

	var lastErr, authErr error
	for _, kind := range order {
		plaintext, err = decodeWith(kind, carrier, password, maxPixels)
		if err == nil {
			return plaintext, kind, nil
		}
		if k, ok := errs.KindOf(err); ok && k == errs.AuthFail && authErr == nil {
			authErr = err
		}
		lastErr = err
	}
	if authErr != nil {
		return nil, 0, authErr
	}
	return nil, 0, errs.New(errs.NoPayload, "no backend produced a valid payload", lastErr)
}

func orderedFrom(first CarrierKind) []CarrierKind {
	order := make([]CarrierKind, 0, len(decodeFallbackOrder))
	order = append(order, first)
	for _, k := range decodeFallbackOrder {
		if k != first {
			order = append(order, k)
		}
	}
	return order
}

func decodeWith(kind CarrierKind, carrier []byte, password []byte, maxPixels int) ([]byte, error) {
	switch kind {
	case KindPNG:
		return DecodePNG(carrier, password, maxPixels)
	case KindJPEG:
		return DecodeJPEG(carrier, password)
	case KindWebP:
		return DecodeWebP(carrier, password)
	case KindTrailer:
		return DecodeTrailer(carrier, password)
	default:
		return nil, errs.New(errs.CarrierUnrecognized, "unknown carrier kind", nil)
	}
}

// EncodeWith embeds header‖ciphertext into carrier using the backend
// named by kind. bitsPerChannel and maxPixels are only meaningful for
// KindPNG; the other backends ignore them.
func EncodeWith(kind CarrierKind, carrier []byte, headerBytes, ciphertext, derivedKey []byte, bitsPerChannel, maxPixels int) ([]byte, error) {
	switch kind {
	case KindPNG:
		return EmbedPNG(carrier, headerBytes, ciphertext, derivedKey, bitsPerChannel, maxPixels)
	case KindJPEG:
		return EmbedJPEG(carrier, headerBytes, ciphertext, derivedKey)
	case KindWebP:
		return EmbedWebP(carrier, headerBytes, ciphertext, derivedKey)
	case KindTrailer:
		return EmbedTrailer(carrier, headerBytes, ciphertext, derivedKey)
	default:
		return nil, errs.New(errs.CarrierUnrecognized, "unknown carrier kind", nil)
	}
}
