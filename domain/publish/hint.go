package publish

import (
	"fmt"
	"strings"
)

var (
	accessPatterns = []string{
		"not found",
		"notfound",
		"insufficient permission",
		"insufficientfilepermissions",
		"insufficient permissions",
		"forbidden",
		"error 403",
		"error 404",
	}
	quotaPatterns = []string{
		"storage quota",
		"storagequotaexceeded",
		"quota exceeded",
		"do not have storage quota",
	}
)

// Hint returns a human-readable remediation for recognized Drive failures, or ""
// when the message matches no known pattern. identity is the service account email
// when one is configured.
func Hint(message, identity string) string {
	msg := strings.ToLower(message)

	if containsAny(msg, quotaPatterns) {
		if identity != "" {
			return fmt.Sprintf("Storage quota exceeded. Service accounts have no Drive storage of their own: "+
				"set DESTINATION_FOLDER_ID to a folder owned by a user and share it with %s, "+
				"or switch to OAuth2 refresh token credentials", identity)
		}
		return "Storage quota exceeded. Free up space in the destination Drive or use an account with available quota"
	}

	if containsAny(msg, accessPatterns) {
		if identity != "" {
			return fmt.Sprintf("Share the destination folder with the service identity %s as Editor "+
				"and check that DESTINATION_FOLDER_ID is correct", identity)
		}
		return "Share the destination folder with the service identity used by this deployment " +
			"and check that the folder ID is correct"
	}

	return ""
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
