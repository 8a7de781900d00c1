package backends

import (
	"encoding/binary"
	"testing"

	"github.com/vilshansen/ecap-go/cryptoutils"
	"github.com/vilshansen/ecap-go/errs"
)

// minimalWebP builds a 20-byte RIFF/WEBP carrier wrapping a single
// empty VP8 chunk, enough for isWebP and extractWebPBlob to walk.
func minimalWebP() []byte {
	out := make([]byte, 0, 20)
	out = append(out, []byte("RIFF")...)
	var riffSize [4]byte
	binary.LittleEndian.PutUint32(riffSize[:], 4+8) // "WEBP" + one empty chunk header
	out = append(out, riffSize[:]...)
	out = append(out, []byte("WEBP")...)
	out = append(out, []byte("VP8 ")...)
	var chunkSize [4]byte
	binary.LittleEndian.PutUint32(chunkSize[:], 0)
	out = append(out, chunkSize[:]...)
	return out
}

func TestWebPRoundTrip(t *testing.T) {
	carrier := minimalWebP()
	password := []byte("pw")
	plaintext := []byte("webp-test")

	hdrBytes, ciphertext, key := buildHeaderAndCiphertext(t, password, plaintext, 1)
	defer cryptoutils.ZeroBytes(key)

	out, err := EmbedWebP(carrier, hdrBytes, ciphertext, key)
	if err != nil {
		t.Fatalf("EmbedWebP: %v", err)
	}

	got, err := DecodeWebP(out, password)
	if err != nil {
		t.Fatalf("DecodeWebP: %v", err)
	}
	if string(got) != "webp-test" {
		t.Errorf("decoded = %q, want %q", got, "webp-test")
	}
}

func TestWebPRIFFSizeRewritten(t *testing.T) {
	carrier := minimalWebP()
	password := []byte("pw")
	plaintext := []byte("x")

	hdrBytes, ciphertext, key := buildHeaderAndCiphertext(t, password, plaintext, 1)
	defer cryptoutils.ZeroBytes(key)

	blobLen := len(hdrBytes) + len(ciphertext)
	chunkLen := 8 + blobLen
	if blobLen%2 != 0 {
		chunkLen++
	}
	originalBody := carrier[8:]
	wantRiffSize := len(originalBody) + chunkLen

	out, err := EmbedWebP(carrier, hdrBytes, ciphertext, key)
	if err != nil {
		t.Fatalf("EmbedWebP: %v", err)
	}

	gotRiffSize := int(binary.LittleEndian.Uint32(out[4:8]))
	if gotRiffSize != wantRiffSize {
		t.Errorf("RIFF size = %d, want %d", gotRiffSize, wantRiffSize)
	}
	if len(out) != 8+wantRiffSize {
		t.Errorf("len(out) = %d, want %d", len(out), 8+wantRiffSize)
	}
}

func TestWebPRejectsNonRIFFCarrier(t *testing.T) {
	carrier := []byte("not a riff file at all")
	password := []byte("pw")
	plaintext := []byte("x")

	hdrBytes, ciphertext, key := buildHeaderAndCiphertext(t, password, plaintext, 1)
	defer cryptoutils.ZeroBytes(key)

	_, err := EmbedWebP(carrier, hdrBytes, ciphertext, key)
	if kind, ok := errs.KindOf(err); !ok || kind != errs.CarrierMalformed {
		t.Fatalf("EmbedWebP(non-RIFF): kind=%v ok=%v, want CarrierMalformed", kind, ok)
	}
}

func TestWebPPasswordSensitivity(t *testing.T) {
	carrier := minimalWebP()
	plaintext := []byte("hello")

	hdrBytes, ciphertext, key := buildHeaderAndCiphertext(t, []byte("right"), plaintext, 1)
	defer cryptoutils.ZeroBytes(key)

	out, err := EmbedWebP(carrier, hdrBytes, ciphertext, key)
	if err != nil {
		t.Fatalf("EmbedWebP: %v", err)
	}

	_, err = DecodeWebP(out, []byte("wrong"))
	if kind, ok := errs.KindOf(err); !ok || kind != errs.AuthFail {
		t.Fatalf("DecodeWebP(wrong password): kind=%v ok=%v, want AuthFail", kind, ok)
	}
}
