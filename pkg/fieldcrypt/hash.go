package fieldcrypt

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// HashLen is the fixed length of tokens returned by Hash.
const HashLen = 6

// Hash returns a deterministic structural fingerprint of text.
//
// This is NOT a cryptographic hash.
// It's a 32-bit rolling hash (h = h*31 + c over UTF-16 code units) rendered as the base 36 absolute value, zero padded to HashLen characters.
// Different inputs may produce the same token, so only use it to notice that a value probably changed.
// Trimming the leading zeros yields the same value the FinanceFlow web helper stored.
func Hash(text string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(text)) {
		h = h*31 + int32(unit)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	token := strconv.FormatInt(abs, 36)
	return strings.Repeat("0", HashLen-len(token)) + token
}
