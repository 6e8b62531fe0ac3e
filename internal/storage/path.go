package storage

import (
	"regexp"  // File name sanitizing
	"strconv" // Millisecond formatting
	"strings" // Path segments
	"time"    // Upload timestamps
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFileName replaces every character outside [a-zA-Z0-9.-] with '-'
func SanitizeFileName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "-")
}

// GenerateStoragePath lays out the object path of a budget attachment:
//
//	events/{eventID}/budgets/{userID}/{unixMillis}-{sanitizedName}
//
// Two calls with the same arguments in the same millisecond return the same path.
func GenerateStoragePath(userID, eventID, fileName string, now time.Time) string {
	return "events/" + eventID + "/budgets/" + userID + "/" +
		strconv.FormatInt(now.UnixMilli(), 10) + "-" + SanitizeFileName(fileName)
}

// FileNameFromPath returns the last segment of an object path
func FileNameFromPath(p string) string {
	return p[strings.LastIndex(p, "/")+1:]
}
