/*
Package record applies field level encryption to key/value records before they're persisted by a document store.

# How it works:

A Record is an ordered set of named values (text, numbers, booleans, or null) plus two markers, Encrypted and EncryptionVersion, that travel with it to storage.
A Transform is configured with the names of the sensitive fields and the envelope version to seal with.

Transform.Seal replaces each configured field that holds a non-empty value with a fieldcrypt envelope bound to the field's name, then marks the record as encrypted.
Transform.Open reverses this for records marked as encrypted.
Neither operation modifies its input; a new Record is returned, or an error and no record at all, so a record is never seen half transformed.

Every field failure encountered by Open is collected into a FieldErrors value that names each failed field, so a caller can report exactly which values are unavailable.

# General guidelines:
  - Sealing an already encrypted record, or opening a plain one, returns an unchanged copy.
  - Empty text and null values are left as they are.
  - Renaming a sealed field breaks its envelope, since envelopes are bound to field names. Open records before reshaping them.
  - Treat any error as "field unavailable", never as "field empty".
*/
package record
