package backends

import "github.com/vilshansen/ecap-go/constants"

// PNGCapacityBytes returns the maximum ciphertext length (in bytes) a
// PNG of the given pixel dimensions can carry at bitsPerChannel bits
// per RGB byte, after reserving the first HeaderRGBBytes RGB bytes for
// the header itself (spec §4.5, scenario 2).
func PNGCapacityBytes(width, height, bitsPerChannel int) int {
	rgbBytes := width * height * 3
	available := rgbBytes - constants.HeaderRGBBytes
	if available <= 0 {
		return 0
	}
	capacityBits := available * bitsPerChannel
	return capacityBits / 8
}

// JPEGCapacityBytes returns the largest ciphertext length that fits in
// the JPEG APP15 segment alongside the 60-byte header (spec §4.6).
func JPEGCapacityBytes() int {
	return constants.JPEGMaxSegmentPayload - constants.HeaderSize
}
