/*
Package legacy reads records written by the FinanceFlow browser helper, so they can be migrated to fieldcrypt envelopes.

Note that the legacy format is NOT encryption, since it is easily reversible.
It's an XOR screen with a key made from a fixed string and six digits of the clock at the time the record was written.
There's no integrity check, so a wrong key suffix produces garbage rather than an error.
Nothing in this package should be used to protect new data.

# How it works:

A key is used to apply a bitwise XOR to every byte that passes through Reader or Writer.
Once a key byte is used, the screen will progress to the next byte in the key.
When the last byte is used, the first will be used again, operating like a ring buffer.

The helper screened each Latin-1 character of a field value with the session key and stored the result as base64.
Unscreen reverses this for one value, and DecodeRecord for every configured field of a record marked with "_encrypted".

# General guidelines:
  - Decode legacy records, then seal them with a record.Transform before writing them back.
  - The key suffix is the last six digits of the millisecond timestamp of the browser session that wrote the record. SuffixAt computes it when that time is known.
  - Values that decode to unexpected text most likely used a different suffix.
*/
package legacy
