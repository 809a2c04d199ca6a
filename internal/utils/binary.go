package utils

import (
	"bytes"
	"unicode/utf8"
)

// SniffLength defines the maximum number of bytes inspected when detecting binary content.
const SniffLength = 8 * 1024

// IsBinary reports whether the provided byte slice appears to contain binary data.
// Only the first SniffLength bytes are inspected. A NUL byte or invalid UTF-8 marks the data as binary;
// a multi-byte rune cut by the sniff window is tolerated.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	window := data
	truncated := false
	if len(window) > SniffLength {
		window = window[:SniffLength]
		truncated = true
	}
	if bytes.IndexByte(window, 0) >= 0 {
		return true
	}
	if truncated {
		window = trimIncompleteRune(window)
	}
	return !utf8.Valid(window)
}

// trimIncompleteRune drops a trailing partial UTF-8 sequence.
func trimIncompleteRune(data []byte) []byte {
	for trimmed := 0; trimmed < utf8.UTFMax && trimmed < len(data); trimmed++ {
		index := len(data) - 1 - trimmed
		if utf8.RuneStart(data[index]) {
			if !utf8.FullRune(data[index:]) {
				return data[:index]
			}
			return data
		}
	}
	return data
}
