// Package validator provides format checks for Polish business identifiers.
package validator

import "regexp"

var (
	nipPattern   = regexp.MustCompile(`^\d{10}$`)
	phonePattern = regexp.MustCompile(`^(48)?\d{9}$`)
)

// nipWeights are the official checksum weights for the first nine digits.
var nipWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// IsValidNIP reports whether s is a ten digit tax identifier with a
// correct checksum. The checksum is the weighted sum of the first nine
// digits modulo 11 and must equal the tenth digit; a remainder of 10 is
// never valid.
func IsValidNIP(s string) bool {
	if !nipPattern.MatchString(s) {
		return false
	}
	sum := 0
	for i, w := range nipWeights {
		sum += int(s[i]-'0') * w
	}
	check := sum % 11
	if check == 10 {
		return false
	}
	return check == int(s[9]-'0')
}

// IsValidPhone reports whether s is a nine digit phone number,
// optionally prefixed with the country code 48.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}
