// Package constants holds the fixed, wire-level parameters of the ECAP
// header and the format markers each carrier backend looks for.
package constants

const (
	// Magic is the 4-byte ASCII marker every ECAP header starts with.
	Magic = "ECAP"
	// Version is the only header version this implementation understands.
	Version = 0x01

	// HeaderSize is the fixed, on-disk size of a serialized header.
	HeaderSize = 60

	// FlagEncrypted and FlagRandomized are the two bits defined in the
	// header's flags byte.
	FlagEncrypted  = 1 << 0
	FlagRandomized = 1 << 1

	// ChannelsMaskRGB is the only channels_mask value this implementation emits.
	ChannelsMaskRGB = 0b00000111

	// BitsPerChannelDefault and BitsPerChannelMax bound the PNG bits_per_channel field.
	BitsPerChannelDefault = 1
	BitsPerChannelMax     = 2

	// KDFScrypt is the only kdf field value this implementation understands.
	KDFScrypt = 0x01

	// Scrypt defaults and bounds. logN is adaptive (§4.2); r and p are fixed.
	ScryptLogNPreferred = 15
	ScryptLogNFloor     = 12
	ScryptLogNCeiling   = 20
	ScryptR             = 8
	ScryptP             = 1
	ScryptMemoryBudget  = 512 * 1024 * 1024 // 512 MiB, per call

	// KeySize is the AES-256-GCM key length in bytes.
	KeySize = 32
	// SaltSize and IVSize are the header's salt/iv field widths.
	SaltSize = 16
	IVSize   = 12
	// TagSize is the GCM authentication tag width.
	TagSize = 16

	// PRNGPermuteLabel seeds the keyed PRNG used to scatter PNG payload bits.
	PRNGPermuteLabel = "ECAP-PERMUTE"

	// HeaderRGBBytes is the number of raster-order RGB bytes the 60-byte
	// header occupies (one bit per byte, MSB-first).
	HeaderRGBBytes = HeaderSize * 8

	// TrailerSignature marks the start of a trailer-backend blob.
	TrailerSignature = "ECAPTR"
	// WebPChunkFourCC is the FourCC of the chunk the WebP backend appends.
	WebPChunkFourCC = "ECAP"
	// JPEGAPP15Marker is the marker byte pair the JPEG backend inserts.
	JPEGAPP15Marker = 0xEF // preceded by 0xFF
	// JPEGMaxSegmentPayload is the largest header+ciphertext blob that fits
	// in a single JPEG segment (65535 minus the 2 length bytes, which the
	// length field counts; the 2 marker bytes lie outside it, see §4.6).
	JPEGMaxSegmentPayload = 65533

	// DefaultMaxPixels bounds decoded PNG pixel counts to protect memory;
	// callers may override it (see config.Tunables).
	DefaultMaxPixels = 256 * 1024 * 1024
)

// HelpText is the CLI's built-in usage text, in the teacher's
// NAVN/SYNOPSIS/BESKRIVELSE/PARAMETRE/EKSEMPLER documentation format.
const HelpText = `
NAVN
    ecap - skjuler og udtrækker en krypteret besked i et bærerfil (PNG, JPEG, WebP eller vilkårlig binær).

SYNOPSIS
    Skjul:    ecap -hide -carrier <fil|mønster> -message <fil> -out <fil> [-p <kodeord>]
    Udtræk:   ecap -reveal -carrier <fil> -out <fil> [-p <kodeord>]

BESKRIVELSE
    ecap indlejrer en kort, autentificeret-krypteret besked i en almindelig bærerfil, så bærerfilen
    forbliver strukturelt gyldig og visuelt uændret. Den samme adgangskode kræves for at udtrække
    beskeden igen.

PARAMETRE
    -hide
        Skjuler -message i -carrier og skriver resultatet til -out.

    -reveal
        Udtrækker den skjulte besked fra -carrier og skriver den til -out.

    -carrier <fil|mønster>
        Bærerfilen. Ved -hide kan dette være et glob-mønster for batch-behandling af flere filer.

    -message <fil>
        Filen med klartekst, der skal skjules (kun -hide).

    -out <fil>
        Destinationsfil. Ved batch-behandling er dette mappen, som resultaterne skrives til.

    -p <kodeord>
        Angiver adgangskoden direkte. Hvis udeladt, bedes der interaktivt om den.

    -logfile <fil>
        Skriver strukturerede logs til den angivne fil (roteres automatisk).

EKSEMPLER
    ecap -hide -carrier photo.png -message secret.txt -out out.png
    ecap -reveal -carrier out.png -out secret.txt

KILDEKODE
    https://github.com/vilshansen/ecap-go/

`
