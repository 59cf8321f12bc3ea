// Package zcrypt compresses and encrypts byte streams into a self-contained
// container that can be reversed with the same password.
//
// # Overview
//
// Encode pulls plaintext through a zstd encoder and then through an
// XChaCha20 keystream overlay, writing a short clear-text header followed by
// the encrypted payload. Decode reverses the chain. Both run as a sequential
// pull pipeline with memory bounded by internal buffers, so inputs of any
// length (including pipes) are supported.
//
// # Basic Usage
//
//	password := []byte("correct horse battery staple")
//
//	// Encode takes ownership of password and zeroes it.
//	if _, err := zcrypt.Encode(src, dst, password, zcrypt.DefaultOptions()); err != nil {
//	    return err
//	}
//
//	// Decoding needs a fresh copy of the password.
//	if _, err := zcrypt.Decode(src, dst, []byte("correct horse battery staple")); err != nil {
//	    if zcrypt.IsCorruptionError(err) {
//	        // wrong password or damaged container
//	    }
//	    return err
//	}
//
// # Container Format
//
// Containers use the following layout:
//   - Nonce (24 bytes): random XChaCha20 extended nonce
//   - Salt (40 bytes): random Argon2id salt
//   - Payload (remainder): zstd frame with checksum, XChaCha20 encrypted
//
// There is no magic number and no version field. The salt length identifies
// this revision of the format; containers written with a 32-byte salt are not
// readable.
//
// # Key Derivation
//
// Keys are derived with Argon2id using fixed costs (65535 KiB memory,
// 10 iterations, parallelism 4, 32-byte output). The costs are part of the
// format and cannot be configured per container.
//
// # Security Considerations
//
// Protected Against:
//   - Reading the plaintext without the password
//   - Precomputed dictionary attacks (per-container salt)
//   - Offline brute force, to the extent Argon2id slows it down
//
// Not Protected Against:
//   - Tampering: the payload carries no authentication tag. Modified
//     ciphertext is only caught if it breaks the zstd framing or checksum.
//   - Distinguishing a wrong password from a damaged container
//   - Length leakage (the container size follows the compressed size)
//
// The password and the derived key are zeroed before Encode and Decode
// return. The keystream state is cleared when the cipher reader closes.
package zcrypt
