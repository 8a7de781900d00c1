package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/errs"
)

// Seal encrypts plaintext under key/iv with AES-256-GCM and no AAD,
// returning the ciphertext and the 16-byte tag separately so the caller
// can place them in the header's distinct fields (spec §4.3).
func Seal(key, iv, plaintext []byte) (ciphertext, tag []byte, err error) {
	if len(key) != constants.KeySize {
		return nil, nil, errs.New(errs.BadHeader, "AES-256-GCM key must be 32 bytes", nil)
	}
	if len(iv) != constants.IVSize {
		return nil, nil, errs.New(errs.BadHeader, "GCM IV must be 12 bytes", nil)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, errs.New(errs.BadHeader, "failed to create AES cipher", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, constants.TagSize)
	if err != nil {
		return nil, nil, errs.New(errs.BadHeader, "failed to create GCM", err)
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ciphertext = sealed[:len(sealed)-constants.TagSize]
	tag = sealed[len(sealed)-constants.TagSize:]
	return ciphertext, tag, nil
}

// Open decrypts ciphertext under key/iv/tag with AES-256-GCM. Any tag
// mismatch — wrong password or tampered data — is reported uniformly as
// errs.AuthFail, per spec §4.3.
func Open(key, iv, ciphertext, tag []byte) ([]byte, error) {
	if len(key) != constants.KeySize {
		return nil, errs.New(errs.BadHeader, "AES-256-GCM key must be 32 bytes", nil)
	}
	if len(iv) != constants.IVSize {
		return nil, errs.New(errs.BadHeader, "GCM IV must be 12 bytes", nil)
	}
	if len(tag) != constants.TagSize {
		return nil, errs.New(errs.BadHeader, "GCM tag must be 16 bytes", nil)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.New(errs.BadHeader, "failed to create AES cipher", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, constants.TagSize)
	if err != nil {
		return nil, errs.New(errs.BadHeader, "failed to create GCM", err)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, errs.New(errs.AuthFail, "GCM authentication failed", nil)
	}
	return plaintext, nil
}
