package card

import "strings"

// Validate checks a payment instrument before any order state is touched.
// It is a pure precondition gate: no lookups, no side effects.
func Validate(cardNumber, cvv string) bool {
	if cardNumber == "" || cvv == "" {
		return false
	}

	// Card numbers arrive formatted with spaces or hyphens.
	cardNumber = strings.ReplaceAll(cardNumber, " ", "")
	cardNumber = strings.ReplaceAll(cardNumber, "-", "")

	if !digitsOnly(cardNumber) || !digitsOnly(cvv) {
		return false
	}

	if len(cardNumber) < 13 || len(cardNumber) > 19 {
		return false
	}

	if len(cvv) < 3 || len(cvv) > 4 {
		return false
	}

	return luhnValid(cardNumber)
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// luhnValid runs the mod-10 checksum, doubling every second digit from the
// right and folding results above 9 back into a single digit.
func luhnValid(number string) bool {
	sum := 0
	double := false

	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')

		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		double = !double
	}

	return sum%10 == 0
}
