package util

// TruncateRunes returns at most limit runes of text without splitting a multi-byte character.
func TruncateRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for idx := range text {
		if count == limit {
			return text[:idx]
		}
		count++
	}
	return text
}
