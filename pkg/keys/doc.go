/*
Package keys provides the key material used to seal and open record fields.

# How it works:

A Key is 32 secure random bytes, created with Generate and stored as base64 or hex text wherever the caller keeps secrets.
Alternatively, a Key can be derived from a passphrase with a KeyGenerator.
A random salt is generated along with the key, and both the salt and the KDF tuning values are returned in a Descriptor.
The Descriptor holds nothing secret, and its text form is persisted alongside configuration so the same key can be derived later given the same passphrase.
Scrypt and argon2id are both memory and CPU hard, so it's impractical to brute force the passphrase, provided that sufficient tuning values are provided to the KeyGenerator.

Code that needs a key depends on a Provider, rather than on where the key comes from.

# General guidelines:
  - It's possible to customize the CPU cost, iteration count, memory, and relative block size parameters directly for key generation. If you're not an expert, then don't use SetIterations, SetCPUCost, SetMemory, or SetRelativeBlockSize.
  - Both short and long delay iteration GeneratorOpt functions are provided, choose the correct iterations for your use-case using either SetLongDelayIterations or SetShortDelayIterations.
  - A wrong passphrase doesn't fail derivation, it produces a different key. Opening a field with that key fails with an integrity error.
  - Keys are never derived from the clock or any other predictable input.
*/
package keys
