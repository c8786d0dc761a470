// utils/validator.go - Password rules shared by auth handlers
package utils

// ValidatePassword reports whether a new password is acceptable, with a
// human-readable reason when it is not. The upper bound matches bcrypt's
// 72-byte input limit.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 72 {
		return false, "Password must be at most 72 characters"
	}
	return true, ""
}
