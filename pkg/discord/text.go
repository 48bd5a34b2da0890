package discord

// LimitStr truncates s to max runes, ending with … when cut.
func LimitStr(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(runes[:max-1]) + "…"
}

// ChunkLines joins lines into blocks of at most maxLen runes each,
// splitting only at line boundaries. Discord embed fields cap at 1024
// characters.
func ChunkLines(lines []string, maxLen int) []string {
	var chunks []string
	var cur string
	for _, ln := range lines {
		candidate := ln
		if cur != "" {
			candidate = cur + "\n" + ln
		}
		if len([]rune(candidate)) > maxLen && cur != "" {
			chunks = append(chunks, cur)
			cur = ln
			continue
		}
		cur = candidate
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}
	return chunks
}
