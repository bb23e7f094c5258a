package common

import "strings"

// ToSnakeCase converts a Go identifier to snake_case, keeping acronyms
// together: "HTTPClient" -> "http_client", "someWord" -> "some_word".
func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if i > 0 && isUpper(r) {
			prevIsLower := isLower(runes[i-1]) || isDigit(runes[i-1])
			// end of an acronym: "XMLParser" at 'P'
			nextIsLower := i+1 < len(runes) && isLower(runes[i+1])
			if prevIsLower || nextIsLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// FactoryFileName is the file the dispatcher for iface is written to.
func FactoryFileName(iface string) string {
	return ToSnakeCase(iface) + "_factory.go"
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
