/*
Package fieldcrypt provides authenticated encryption of individual text values, intended for sealing sensitive fields of a record before it's handed to a storage layer.

# How it works:

A Cipher is constructed from a caller-supplied 32 byte key.
The key is never used directly: a sub-key for each supported envelope version is expanded from it with HKDF-SHA256, so the same caller key can open envelopes of every version while each AEAD suite gets its own key.

Seal encrypts a value with a fresh random nonce drawn from crypto/rand and returns an envelope token.
The token is the standard base64 encoding of a small binary structure:

	version (1 byte) | kind (1 byte) | nonce | tag (16 bytes) | ciphertext

The version selects the AEAD suite (AES-256-GCM or XChaCha20-Poly1305), and the kind records whether the sealed value was text, a number, or a boolean.
Both header bytes are authenticated along with an optional context string (the field name when sealing record fields), so an envelope can't be relabeled or moved to another field without failing authentication.

Open reverses the process.
A token that isn't a well-formed envelope fails with ErrFormat, and an envelope whose tag doesn't validate (tampering or the wrong key) fails with ErrIntegrity.
Neither case ever yields the token back as if it were plain text.

# General guidelines:
  - Empty input is never sealed: Seal("") and Open("") both return "".
  - Keys must come from a key management collaborator, see package keys. Never derive them from the clock or other predictable input.
  - A Cipher holds no mutable state after construction and may be shared between goroutines.
  - Hash is a structural fingerprint for change detection only. It's a 32-bit rolling hash with no resistance to collisions or pre-images, and must not be used for any security decision.
*/
package fieldcrypt
