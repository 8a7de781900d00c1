package backends

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/cryptoutils"
	"github.com/vilshansen/ecap-go/errs"
	"github.com/vilshansen/ecap-go/headers"
)

// bitPos is a single PNG LSB write/read site: a byte offset into the
// decoded RGBA pixel buffer and which bit plane of that byte carries
// the payload bit.
type bitPos struct {
	idx   int
	plane uint
}

// rgbByteIndices returns the raster-order (top-left to bottom-right)
// byte offsets of the R, G, B channels of img.Pix, skipping A — the
// "RGB-byte indices" of spec §3.
func rgbByteIndices(img *image.RGBA) []int {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	indices := make([]int, 0, width*height*3)
	for y := 0; y < height; y++ {
		rowStart := y * img.Stride
		for x := 0; x < width; x++ {
			pixStart := rowStart + x*4
			indices = append(indices, pixStart, pixStart+1, pixStart+2)
		}
	}
	return indices
}

func decodePNGToRGBA(carrier []byte, maxPixels int) (*image.RGBA, error) {
	src, err := png.Decode(bytes.NewReader(carrier))
	if err != nil {
		return nil, errs.New(errs.CarrierMalformed, "failed to decode PNG", err)
	}

	bounds := src.Bounds()
	if maxPixels > 0 && bounds.Dx()*bounds.Dy() > maxPixels {
		return nil, errs.New(errs.CarrierMalformed, "decoded pixel count exceeds configured ceiling", nil)
	}

	// Every source color model, including an already-RGBA source, is
	// copied into a fresh, tightly-packed RGBA buffer so rgbByteIndices
	// can assume Stride == width*4 and Bounds.Min-relative offsets.
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, src, bounds.Min, draw.Src)
	return rgba, nil
}

// writeHeaderBits writes the 60-byte header, MSB-first byte 0 bit 7
// first, into the low bit of the first HeaderRGBBytes RGB-byte
// indices (spec §4.5).
func writeHeaderBits(pix []byte, rgbIndices []int, headerBytes []byte) {
	bit := 0
	for _, b := range headerBytes {
		for shift := 7; shift >= 0; shift-- {
			idx := rgbIndices[bit]
			v := (b >> uint(shift)) & 1
			pix[idx] = (pix[idx] &^ 1) | v
			bit++
		}
	}
}

func readHeaderBits(pix []byte, rgbIndices []int) []byte {
	out := make([]byte, constants.HeaderSize)
	bit := 0
	for i := range out {
		var b byte
		for shift := 7; shift >= 0; shift-- {
			idx := rgbIndices[bit]
			b |= (pix[idx] & 1) << uint(shift)
			bit++
		}
		out[i] = b
	}
	return out
}

// buildPayloadPositions constructs the (byte_index, plane) list from
// the RGB-byte indices beyond the header region, per spec §4.5.
func buildPayloadPositions(rgbIndices []int, bitsPerChannel int) []bitPos {
	rest := rgbIndices[constants.HeaderRGBBytes:]
	positions := make([]bitPos, 0, len(rest)*bitsPerChannel)
	for _, idx := range rest {
		positions = append(positions, bitPos{idx: idx, plane: 0})
		if bitsPerChannel == 2 {
			positions = append(positions, bitPos{idx: idx, plane: 1})
		}
	}
	return positions
}

func permutedPayloadPositions(rgbIndices []int, bitsPerChannel int, permuteKey []byte) []bitPos {
	positions := buildPayloadPositions(rgbIndices, bitsPerChannel)
	cryptoutils.FisherYatesPermute(positions, cryptoutils.NewPRNG(permuteKey))
	return positions
}

// EmbedPNG writes headerBytes and ciphertext into carrier's pixel data
// using randomized LSB embedding, keyed by derivedKey, and re-encodes
// the result as PNG (spec §4.5).
func EmbedPNG(carrier []byte, headerBytes, ciphertext, derivedKey []byte, bitsPerChannel int, maxPixels int) ([]byte, error) {
	rgba, err := decodePNGToRGBA(carrier, maxPixels)
	if err != nil {
		return nil, err
	}

	rgbIndices := rgbByteIndices(rgba)
	if len(rgbIndices) < constants.HeaderRGBBytes {
		return nil, errs.New(errs.CarrierTooSmall, "PNG too small to hold the header", nil)
	}

	capacityBytes := PNGCapacityBytes(rgba.Bounds().Dx(), rgba.Bounds().Dy(), bitsPerChannel)
	if len(ciphertext) > capacityBytes {
		return nil, errs.New(errs.CarrierTooSmall, "ciphertext exceeds PNG capacity at this bits_per_channel", nil)
	}

	writeHeaderBits(rgba.Pix, rgbIndices, headerBytes)

	permuteKey := cryptoutils.PermuteKey(derivedKey)
	positions := permutedPayloadPositions(rgbIndices, bitsPerChannel, permuteKey)

	pos := 0
	for _, b := range ciphertext {
		for shift := 7; shift >= 0; shift-- {
			bit := byte((b >> uint(shift)) & 1)
			p := positions[pos]
			rgba.Pix[p.idx] = (rgba.Pix[p.idx] &^ (1 << p.plane)) | (bit << p.plane)
			pos++
		}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, rgba); err != nil {
		return nil, errs.New(errs.CarrierMalformed, "failed to re-encode PNG", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG extracts and decrypts a message embedded by EmbedPNG. It
// reads the header deterministically, derives the key from the stored
// KDF parameters, rebuilds the identical permutation, and reads exactly
// payload_len ciphertext bytes before decrypting (spec §4.5).
func DecodePNG(carrier []byte, password []byte, maxPixels int) ([]byte, error) {
	rgba, err := decodePNGToRGBA(carrier, maxPixels)
	if err != nil {
		return nil, err
	}

	rgbIndices := rgbByteIndices(rgba)
	if len(rgbIndices) < constants.HeaderRGBBytes {
		return nil, errs.New(errs.CarrierTooSmall, "PNG too small to hold the header", nil)
	}

	headerBytes := readHeaderBits(rgba.Pix, rgbIndices)
	hdr, err := headers.Parse(headerBytes)
	if err != nil {
		return nil, err
	}

	key, err := cryptoutils.DeriveFixed(password, hdr.Salt, int(hdr.LogN), int(hdr.R), int(hdr.P))
	if err != nil {
		return nil, err
	}
	defer cryptoutils.ZeroBytes(key)

	permuteKey := cryptoutils.PermuteKey(key)
	positions := permutedPayloadPositions(rgbIndices, int(hdr.BitsPerChannel), permuteKey)

	neededBits := int(hdr.PayloadLen) * 8
	if neededBits > len(positions) {
		return nil, errs.New(errs.CarrierTooSmall, "carrier too small for the declared payload length", nil)
	}

	ciphertext := make([]byte, hdr.PayloadLen)
	pos := 0
	for i := range ciphertext {
		var b byte
		for shift := 7; shift >= 0; shift-- {
			p := positions[pos]
			bit := (rgba.Pix[p.idx] >> p.plane) & 1
			b |= bit << uint(shift)
			pos++
		}
		ciphertext[i] = b
	}

	return cryptoutils.Open(key, hdr.IV, ciphertext, hdr.Tag)
}
