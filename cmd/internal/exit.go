package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/saylorsolutions/fieldseal/pkg/record"
)

// Fatal will Echo the message and os.Exit with code 1.
func Fatal(msg string, args ...any) {
	Echo(msg, args...)
	os.Exit(1)
}

// Fail will report err with Describe and os.Exit with code 1.
func Fail(msg string, err error) {
	Echo("%s", Describe(msg, err))
	os.Exit(1)
}

// Describe formats err for a terminal.
// Field failures are listed one per line, so it's clear which values are unavailable.
func Describe(msg string, err error) string {
	var fieldErrs record.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Sprintf("%s: %v", msg, err)
	}
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "%s: %d field(s) unavailable", msg, len(fieldErrs))
	for _, fe := range fieldErrs {
		_, _ = fmt.Fprintf(&sb, "\n    %s: %v", fe.Field, fe.Err)
	}
	return sb.String()
}

// Echo will emit the given message without any logging formatting.
func Echo(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = fmt.Fprintf(os.Stderr, msg, args...)
}
