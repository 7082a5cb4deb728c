package node

// TruncateByRunes 按字符数截断，不切断多字节字符。
// range 按 rune 起始字节走位，因此切点永远落在字符边界上。
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	for i := range s {
		if maxRunes--; maxRunes < 0 {
			return s[:i]
		}
	}
	return s
}
