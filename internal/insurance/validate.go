package insurance

import "strings"

// Validate checks the insurance fields collected at booking time. All three
// must be present and the member ID must be at least six characters.
func Validate(carrier, memberID, group string) bool {
	carrier = strings.TrimSpace(carrier)
	memberID = strings.TrimSpace(memberID)
	group = strings.TrimSpace(group)

	if carrier == "" || memberID == "" || group == "" {
		return false
	}
	if len(memberID) < 6 {
		return false
	}
	return true
}
