package cryptoutils

import (
	"github.com/vilshansen/ecap-go/constants"
	"github.com/vilshansen/ecap-go/errs"
	"golang.org/x/crypto/scrypt"
)

// scryptMemoryBytes estimates scrypt's peak memory usage for the given
// N and r, following the standard 128*r*N formula (RFC 7914 §2).
func scryptMemoryBytes(logN int, r int) uint64 {
	n := uint64(1) << uint(logN)
	return 128 * uint64(r) * n
}

// DeriveAdaptive derives a 32-byte key from password and salt, starting
// at ScryptLogNPreferred and stepping logN down whenever the estimated
// memory footprint exceeds budget or the underlying call fails, per
// spec §4.2. It returns the key and the logN actually used, so the
// caller can store it in the header for later fixed-parameter decode.
func DeriveAdaptive(password, salt []byte, budget uint64) (key []byte, logNUsed int, err error) {
	if budget == 0 {
		budget = constants.ScryptMemoryBudget
	}

	for logN := constants.ScryptLogNPreferred; logN >= constants.ScryptLogNFloor; logN-- {
		if scryptMemoryBytes(logN, constants.ScryptR) > budget {
			continue
		}
		n := 1 << uint(logN)
		key, err = scrypt.Key(password, salt, n, constants.ScryptR, constants.ScryptP, constants.KeySize)
		if err == nil {
			return key, logN, nil
		}
	}
	return nil, 0, errs.New(errs.KdfUnsupported, "no scrypt logN between floor and preferred fit the memory budget", err)
}

// DeriveFixed re-derives the key for decode, using the exact logN, r, p
// stored in the header — no retry loop, per spec §4.2's determinism
// contract.
func DeriveFixed(password, salt []byte, logN, r, p int) ([]byte, error) {
	if logN < constants.ScryptLogNFloor || logN > constants.ScryptLogNCeiling {
		return nil, errs.New(errs.KdfUnsupported, "logN out of supported range", nil)
	}
	if r < 1 || p < 1 {
		return nil, errs.New(errs.BadHeader, "scrypt r/p out of range", nil)
	}
	n := 1 << uint(logN)
	key, err := scrypt.Key(password, salt, n, r, p, constants.KeySize)
	if err != nil {
		return nil, errs.New(errs.KdfUnsupported, "scrypt derivation failed", err)
	}
	return key, nil
}
