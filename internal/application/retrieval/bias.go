package retrieval

import (
	"regexp"
	"strings"
)

// 运单号/跟踪码形态的模式（例：APX3002345386815CN）
var trackingCodeRe = regexp.MustCompile(`(?i)\b[A-Z]{2,6}\d{8,20}[A-Z]{0,4}\b`)

var nonAlnumRe = regexp.MustCompile(`[^A-Z0-9]`)

// 运单/配送查询类问题中常见的关键词
var shippingKeywords = []string{
	"운송장", "송장", "트래킹", "배송", "배송조회", "운송", "택배",
	"INVOICE", "TRACK", "TRACKING", "WAYBILL",
	"APX", "4PX", "DHL", "FEDEX", "UPS",
}

// looksLikeTrackingQuery 判断查询是否为运单号/快递类关键词查询。
// 这类查询对 OCR 扫描文档中的精确字符串匹配依赖更强，
// 检索时优先限定在 OCR 领域以补偿其嵌入质量较差的问题。
func looksLikeTrackingQuery(q string) bool {
	s := strings.TrimSpace(q)
	if s == "" {
		return false
	}

	up := strings.ToUpper(s)

	for _, k := range shippingKeywords {
		if strings.Contains(up, k) {
			return true
		}
	}

	if trackingCodeRe.MatchString(up) {
		return true
	}

	// 字母数字混合且较长的串，大概率是某种单号
	alnum := nonAlnumRe.ReplaceAllString(up, "")
	if len(alnum) >= 10 &&
		strings.ContainsAny(alnum, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") &&
		strings.ContainsAny(alnum, "0123456789") {
		return true
	}

	return false
}
