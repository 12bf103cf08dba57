// Package phone compares claimed phone numbers against stored ones under
// normalization rules tolerant of country codes and formatting noise.
package phone

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Characters stripped before digit extraction: bidirectional controls and
// the no-break space, which pasted numbers often carry.
var stripped = strings.NewReplacer(
	"\u200e", "",
	"\u200f", "",
	"\u202a", "",
	"\u202b", "",
	"\u202c", "",
	"\u00a0", " ",
)

// Digits extracts the decimal digits of s as an ASCII string. Any Unicode
// decimal digit is mapped to its value, not only ASCII 0-9.
func Digits(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKD.String(stripped.Replace(s))
	var b strings.Builder
	for _, r := range s {
		if d := digitValue(r); d >= 0 {
			b.WriteByte(byte('0' + d))
		}
	}
	return b.String()
}

func digitValue(r rune) int {
	if !unicode.IsDigit(r) {
		return -1
	}
	for _, rng := range unicode.Nd.R16 {
		if uint16(r) >= rng.Lo && uint16(r) <= rng.Hi && rng.Stride == 1 {
			return int(uint16(r)-rng.Lo) % 10
		}
	}
	for _, rng := range unicode.Nd.R32 {
		if uint32(r) >= rng.Lo && uint32(r) <= rng.Hi && rng.Stride == 1 {
			return int(uint32(r)-rng.Lo) % 10
		}
	}
	return -1
}

// LastN returns the last n digits of s, or all of them when fewer.
func LastN(s string, n int) string {
	d := Digits(s)
	if len(d) >= n {
		return d[len(d)-n:]
	}
	return d
}

// Matches reports whether a claimed number and the expected number refer to
// the same phone. Two digit strings match when identical, or when both
// carry at least 10 digits and agree on the last 10, or at least 9 digits
// and agree on the last 9 (locales quoting mobiles without the trunk
// digit). Mismatches are logged with the extracted digit strings only.
func Matches(log *slog.Logger, claimed, expected string) bool {
	ci := Digits(claimed)
	ex := Digits(expected)
	ok := ci == ex ||
		(len(ci) >= 10 && len(ex) >= 10 && ci[len(ci)-10:] == ex[len(ex)-10:]) ||
		(len(ci) >= 9 && len(ex) >= 9 && ci[len(ci)-9:] == ex[len(ex)-9:])
	if log != nil {
		if ok {
			log.Info("phone matched")
		} else {
			log.Warn("phone mismatch",
				slog.String("claimed_digits", ci),
				slog.String("expected_digits", ex),
				slog.String("claimed_last10", LastN(claimed, 10)),
				slog.String("expected_last10", LastN(expected, 10)),
			)
		}
	}
	return ok
}
