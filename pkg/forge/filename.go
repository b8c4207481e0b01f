package forge

import (
	"regexp"
	"strings"
)

// DefaultFileName names the attachment when the request brings none.
const DefaultFileName = "AUREA_excel.xlsx"

var illegalFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFileName scrubs characters that break Content-Disposition or
// filesystems, caps length at 80 and enforces the .xlsx suffix.
func SanitizeFileName(name string) string {
	raw := strings.TrimSpace(name)
	if raw == "" {
		raw = DefaultFileName
	}
	cleaned := illegalFileChars.ReplaceAllString(raw, "_")
	if len(cleaned) > 80 {
		cleaned = cleaned[:80]
	}
	if !strings.HasSuffix(strings.ToLower(cleaned), ".xlsx") {
		cleaned += ".xlsx"
	}
	return cleaned
}
