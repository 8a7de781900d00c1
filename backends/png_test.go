package backends

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/cryptoutils"
	"github.com/vilshansen/ecap-go/errs"
	"github.com/vilshansen/ecap-go/headers"
)

func gradientPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: 128,
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func buildHeaderAndCiphertext(t *testing.T, password []byte, plaintext []byte, bitsPerChannel byte) ([]byte, []byte, []byte) {
	t.Helper()
	salt := make([]byte, constants.SaltSize)
	iv := make([]byte, constants.IVSize)
	for i := range salt {
		salt[i] = byte(i)
	}
	for i := range iv {
		iv[i] = byte(i + 1)
	}

	key, logN, err := cryptoutils.DeriveAdaptive(password, salt, 5*1024*1024) // forces floor logN, fast tests
	if err != nil {
		t.Fatalf("DeriveAdaptive: %v", err)
	}

	ciphertext, tag, err := cryptoutils.Seal(key, iv, plaintext)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	hdrBytes, err := headers.Serialize(headers.Params{
		Version:        constants.Version,
		Flags:          constants.FlagEncrypted | constants.FlagRandomized,
		BitsPerChannel: bitsPerChannel,
		ChannelsMask:   constants.ChannelsMaskRGB,
		PayloadLen:     uint32(len(plaintext)),
		KDF:            constants.KDFScrypt,
		LogN:           byte(logN),
		R:              constants.ScryptR,
		P:              constants.ScryptP,
		Salt:           salt,
		IV:             iv,
		Tag:            tag,
	})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	return hdrBytes, ciphertext, key
}

func TestPNGRoundTrip(t *testing.T) {
	carrier := gradientPNG(t, 64, 64)
	password := []byte("pw")
	plaintext := []byte("hello")

	hdrBytes, ciphertext, key := buildHeaderAndCiphertext(t, password, plaintext, 1)
	defer cryptoutils.ZeroBytes(key)

	out, err := EmbedPNG(carrier, hdrBytes, ciphertext, key, 1, 0)
	if err != nil {
		t.Fatalf("EmbedPNG: %v", err)
	}

	got, err := DecodePNG(out, password, 0)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("decoded = %q, want %q", got, "hello")
	}
}

func TestPNGCapacityBoundary(t *testing.T) {
	// 64x64 at 1 bpc: (64*64*3 - 480)/8 = 1476 bytes per spec scenario 2.
	want := 1476
	got := PNGCapacityBytes(64, 64, 1)
	if got != want {
		t.Fatalf("PNGCapacityBytes(64,64,1) = %d, want %d", got, want)
	}

	carrier := gradientPNG(t, 64, 64)
	password := []byte("pw")

	overflow := make([]byte, 10000)
	hdrBytes, ciphertext, key := buildHeaderAndCiphertext(t, password, overflow, 1)
	defer cryptoutils.ZeroBytes(key)

	_, err := EmbedPNG(carrier, hdrBytes, ciphertext, key, 1, 0)
	if kind, ok := errs.KindOf(err); !ok || kind != errs.CarrierTooSmall {
		t.Fatalf("EmbedPNG(overflow): kind=%v ok=%v, want CarrierTooSmall", kind, ok)
	}
}

func TestPNGTamperDetection(t *testing.T) {
	carrier := gradientPNG(t, 64, 64)
	password := []byte("a")
	plaintext := []byte("secret")

	hdrBytes, ciphertext, key := buildHeaderAndCiphertext(t, password, plaintext, 1)
	defer cryptoutils.ZeroBytes(key)

	out, err := EmbedPNG(carrier, hdrBytes, ciphertext, key, 1, 0)
	if err != nil {
		t.Fatalf("EmbedPNG: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	rgba := img.(*image.RGBA)
	rgba.Pix[0] ^= 0x01 // flip low bit of the top-left red channel

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	_, err = DecodePNG(buf.Bytes(), password, 0)
	if kind, ok := errs.KindOf(err); !ok || (kind != errs.AuthFail && kind != errs.BadHeader) {
		t.Fatalf("DecodePNG(tampered): kind=%v ok=%v, want AuthFail or BadHeader", kind, ok)
	}
}

func TestPNGPasswordSensitivity(t *testing.T) {
	carrier := gradientPNG(t, 64, 64)
	plaintext := []byte("hello")

	hdrBytes, ciphertext, key := buildHeaderAndCiphertext(t, []byte("pw"), plaintext, 1)
	defer cryptoutils.ZeroBytes(key)

	out, err := EmbedPNG(carrier, hdrBytes, ciphertext, key, 1, 0)
	if err != nil {
		t.Fatalf("EmbedPNG: %v", err)
	}

	_, err = DecodePNG(out, []byte("wrong-password"), 0)
	if kind, ok := errs.KindOf(err); !ok || kind != errs.AuthFail {
		t.Fatalf("DecodePNG(wrong password): kind=%v ok=%v, want AuthFail", kind, ok)
	}
}

func TestPNGCarrierIntegrity(t *testing.T) {
	carrier := gradientPNG(t, 32, 32)
	password := []byte("pw")
	plaintext := []byte("x")

	hdrBytes, ciphertext, key := buildHeaderAndCiphertext(t, password, plaintext, 1)
	defer cryptoutils.ZeroBytes(key)

	out, err := EmbedPNG(carrier, hdrBytes, ciphertext, key, 1, 0)
	if err != nil {
		t.Fatalf("EmbedPNG: %v", err)
	}

	origImg, _ := png.Decode(bytes.NewReader(carrier))
	outImg, _ := png.Decode(bytes.NewReader(out))
	orig := origImg.(*image.RGBA)
	modified := outImg.(*image.RGBA)

	for i := 0; i < len(orig.Pix); i++ {
		if i%4 == 3 {
			// Alpha channel must be untouched.
			if orig.Pix[i] != modified.Pix[i] {
				t.Fatalf("alpha byte %d changed: %d -> %d", i, orig.Pix[i], modified.Pix[i])
			}
			continue
		}
		if orig.Pix[i]&^1 != modified.Pix[i]&^1 {
			t.Fatalf("high bits of RGB byte %d changed: %#x -> %#x", i, orig.Pix[i], modified.Pix[i])
		}
	}
}
