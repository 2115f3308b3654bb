package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		number string
		cvv    string
		want   bool
	}{
		{"ValidVisa", "4111111111111111", "123", true},
		{"ValidWithSpaces", "4111 1111 1111 1111", "123", true},
		{"ValidWithHyphens", "4111-1111-1111-1111", "1234", true},
		{"BadChecksum", "4111111111111112", "123", false},
		{"EmptyNumber", "", "123", false},
		{"EmptyCVV", "4111111111111111", "", false},
		{"LettersInNumber", "41111111111111ab", "123", false},
		{"LettersInCVV", "4111111111111111", "12a", false},
		{"TooShort", "411111111111", "123", false},
		{"TooLong", "41111111111111111111", "123", false},
		{"CVVTooShort", "4111111111111111", "12", false},
		{"CVVTooLong", "4111111111111111", "12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.number, tt.cvv))
		})
	}
}

func TestLuhnValid(t *testing.T) {
	// Known-good test numbers from the usual card networks.
	valid := []string{
		"4111111111111111",
		"5555555555554444",
		"378282246310005",
		"6011111111111117",
	}
	for _, n := range valid {
		assert.True(t, luhnValid(n), "expected %s to pass Luhn", n)
	}

	assert.False(t, luhnValid("4111111111111112"))
	assert.False(t, luhnValid("1234567890123456"))
}
