package domain

import "strconv"

// Inclusive bounds of a five-digit verification code.
const (
	MinVerificationCode VerificationCode = 10000
	MaxVerificationCode VerificationCode = 99999
)

// VerificationCode is a five-digit code. Leading zeros are impossible by
// construction, so the decimal form is always exactly five characters.
type VerificationCode int

// IsWellFormed reports whether c has exactly five decimal digits.
func (c VerificationCode) IsWellFormed() bool {
	return c >= MinVerificationCode && c <= MaxVerificationCode
}

func (c VerificationCode) String() string { return strconv.Itoa(int(c)) }
