package headers

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/errs"
)

func validParams(t *testing.T) Params {
	t.Helper()
	salt := make([]byte, constants.SaltSize)
	iv := make([]byte, constants.IVSize)
	tag := make([]byte, constants.TagSize)
	rand.Read(salt)
	rand.Read(iv)
	rand.Read(tag)

	return Params{
		Version:        constants.Version,
		Flags:          constants.FlagEncrypted | constants.FlagRandomized,
		BitsPerChannel: 1,
		ChannelsMask:   constants.ChannelsMaskRGB,
		PayloadLen:     12345,
		KDF:            constants.KDFScrypt,
		LogN:           15,
		R:              constants.ScryptR,
		P:              constants.ScryptP,
		Salt:           salt,
		IV:             iv,
		Tag:            tag,
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	want := validParams(t)

	b, err := Serialize(want)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(b) != constants.HeaderSize {
		t.Fatalf("serialized header length = %d, want %d", len(b), constants.HeaderSize)
	}
	if string(b[0:4]) != constants.Magic {
		t.Fatalf("magic bytes = %q, want %q", b[0:4], constants.Magic)
	}

	got, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got.Version != want.Version || got.Flags != want.Flags ||
		got.BitsPerChannel != want.BitsPerChannel || got.ChannelsMask != want.ChannelsMask ||
		got.PayloadLen != want.PayloadLen || got.KDF != want.KDF ||
		got.LogN != want.LogN || got.R != want.R || got.P != want.P {
		t.Errorf("parsed scalar fields mismatch: got %+v, want %+v", got, want)
	}
	if !bytes.Equal(got.Salt, want.Salt) {
		t.Error("Salt mismatch")
	}
	if !bytes.Equal(got.IV, want.IV) {
		t.Error("IV mismatch")
	}
	if !bytes.Equal(got.Tag, want.Tag) {
		t.Error("Tag mismatch")
	}
}

func TestSerializeRejectsBadFieldWidths(t *testing.T) {
	p := validParams(t)
	p.Salt = p.Salt[:8]
	if _, err := Serialize(p); err == nil {
		t.Error("expected error for short salt")
	}

	p = validParams(t)
	p.IV = append(p.IV, 0)
	if _, err := Serialize(p); err == nil {
		t.Error("expected error for oversized iv")
	}

	p = validParams(t)
	p.Tag = p.Tag[:4]
	if _, err := Serialize(p); err == nil {
		t.Error("expected error for short tag")
	}
}

func TestParseRejectsShortInput(t *testing.T) {
	_, err := Parse(make([]byte, 10))
	if kind, ok := errs.KindOf(err); !ok || kind != errs.BadHeader {
		t.Fatalf("Parse(short): kind=%v ok=%v, want BadHeader", kind, ok)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	p := validParams(t)
	b, _ := Serialize(p)
	b[0] = 'X'
	_, err := Parse(b)
	if kind, ok := errs.KindOf(err); !ok || kind != errs.BadHeader {
		t.Fatalf("Parse(bad magic): kind=%v ok=%v, want BadHeader", kind, ok)
	}
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	p := validParams(t)
	p.Version = 0x02
	b, _ := Serialize(p)
	_, err := Parse(b)
	if kind, ok := errs.KindOf(err); !ok || kind != errs.UnsupportedVersion {
		t.Fatalf("Parse(bad version): kind=%v ok=%v, want UnsupportedVersion", kind, ok)
	}
}

func TestParseRejectsUnknownKDF(t *testing.T) {
	p := validParams(t)
	p.KDF = 0x02
	b, _ := Serialize(p)
	_, err := Parse(b)
	if kind, ok := errs.KindOf(err); !ok || kind != errs.BadHeader {
		t.Fatalf("Parse(bad kdf): kind=%v ok=%v, want BadHeader", kind, ok)
	}
}

func TestParseDoesNotValidatePayloadLenAgainstCiphertext(t *testing.T) {
	p := validParams(t)
	p.PayloadLen = 1 << 20 // absurdly large relative to any ciphertext slice
	b, _ := Serialize(p)
	got, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse should accept any payload_len value: %v", err)
	}
	if got.PayloadLen != p.PayloadLen {
		t.Errorf("PayloadLen = %d, want %d", got.PayloadLen, p.PayloadLen)
	}
}
