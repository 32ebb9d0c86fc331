package sqlutil

import "strings"

// TableName builds the physical table name for a namespace region.
func TableName(prefix, namespace string) string {
	return prefix + "_" + namespace
}

// QuoteIdentifier quotes a SQL identifier with the dialect's quote rune.
func QuoteIdentifier(name, quote string) string {
	return quote + escapeIdentifier(name, quote) + quote
}

func escapeIdentifier(name, quote string) string {
	if name == "" {
		return ""
	}
	escapedQuote := quote + quote
	return strings.ReplaceAll(name, quote, escapedQuote)
}
