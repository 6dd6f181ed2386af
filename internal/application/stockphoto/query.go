package stockphoto

import (
	"regexp"
	"strings"
)

// DefaultQuery 未传 q 时使用的关键词
const DefaultQuery = "repair,tools,electronics"

// maxQueryKeywords 进入图库查询的关键词上限
const maxQueryKeywords = 3

var (
	nonKeywordChars = regexp.MustCompile(`[^a-z0-9\s]`)
	laptopPattern   = regexp.MustCompile(`(?i)macbook|laptop|computer|screen|display|keyboard|trackpad|battery|logic|board`)
	phonePattern    = regexp.MustCompile(`(?i)phone|iphone|android|mobile|smartphone|cell`)
)

// CleanKeywords 拆分逗号分隔的关键词，转小写、去掉非字母数字字符，最多保留 3 个
func CleanKeywords(q string) []string {
	out := make([]string, 0, maxQueryKeywords)
	for _, k := range strings.Split(q, ",") {
		k = nonKeywordChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(k)), "")
		if k == "" {
			continue
		}
		out = append(out, k)
		if len(out) == maxQueryKeywords {
			break
		}
	}
	return out
}

// BuildSearchQuery 根据设备类别补充上下文词，手机优先于笔记本
func BuildSearchQuery(q string) string {
	keywords := strings.Join(CleanKeywords(q), " ")

	switch {
	case phonePattern.MatchString(keywords):
		return keywords + " smartphone mobile phone repair technician"
	case laptopPattern.MatchString(keywords):
		return keywords + " laptop computer repair technician"
	default:
		return keywords + " repair technology electronics tools"
	}
}
