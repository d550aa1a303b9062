package notify

import "strings"

// MinPhoneDigits is the shortest phone (area code + number) that can receive messages.
const MinPhoneDigits = 10

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether phone has at least MinPhoneDigits digits.
func ValidPhone(phone string) bool {
	return len(NormalizePhone(phone)) >= MinPhoneDigits
}

// Destination returns the country-code prefixed number for phone, or "" when the
// phone is not valid. Numbers already carrying the country code are kept as is.
func Destination(countryCode, phone string) string {
	digits := NormalizePhone(phone)
	if len(digits) < MinPhoneDigits {
		return ""
	}
	if countryCode != "" && strings.HasPrefix(digits, countryCode) && len(digits) > MinPhoneDigits+1 {
		return digits
	}
	return countryCode + digits
}
