package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigits(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "+34 612 345 678", "34612345678"},
		{"punctuation", "(093) 123-45-67", "0931234567"},
		{"empty", "", ""},
		{"no digits", "call me", ""},
		{"bidi marks", "\u200e+380\u200f 93 123 45 67\u202c", "380931234567"},
		{"nbsp", "+34\u00a0612\u00a0345\u00a0678", "34612345678"},
		{"arabic-indic", "٠١٢٣", "0123"},
		{"fullwidth", "１２３", "123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Digits(tc.in))
		})
	}
}

func TestLastN(t *testing.T) {
	assert.Equal(t, "1234567890", LastN("+380 12 345 678 90", 10))
	assert.Equal(t, "123", LastN("1-2-3", 10))
	assert.Equal(t, "", LastN("", 10))
}

func TestMatches(t *testing.T) {
	cases := []struct {
		name     string
		claimed  string
		expected string
		want     bool
	}{
		{"identical", "+380931234567", "+380931234567", true},
		{"formatting noise", "(093) 123-45-67 ", "0931234567", true},
		{"country code vs trunk zero last10", "380931234567", "0931234567", true},
		{"last nine without trunk digit", "931234567", "0931234567", true},
		{"different numbers", "+380931234567", "+380937654321", false},
		{"both short but equal", "12345", "12345", true},
		{"both short unequal", "12345", "54321", false},
		{"claimed empty", "", "+380931234567", false},
		{"expected empty", "+380931234567", "", false},
		{"both empty", "", "", true},
		{"suffix of short vs long", "1234567", "380931234567", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(nil, tc.claimed, tc.expected))
		})
	}
}
