package imagery

import (
	"regexp"
	"strings"
)

const maxSearchKeywords = 4

var (
	nonKeywordChars = regexp.MustCompile(`[^a-z0-9\s]`)

	titleStopWords = map[string]struct{}{
		"step": {}, "with": {}, "from": {}, "that": {}, "this": {},
	}

	// repairContext 追加在末尾的领域上下文词
	repairContext = []string{"repair", "tool", "fix", "hardware", "maintenance"}
)

func cleanKeyword(s string) string {
	return strings.TrimSpace(nonKeywordChars.ReplaceAllString(strings.ToLower(s), ""))
}

// ExtractKeywords 从步骤标题与前两个工具中提取搜索关键词，去重后最多 4 个
func ExtractKeywords(title string, tools []string) []string {
	candidates := make([]string, 0, 12)

	for _, w := range strings.Fields(cleanKeyword(title)) {
		if len(w) <= 3 {
			continue
		}
		if _, stop := titleStopWords[w]; stop {
			continue
		}
		candidates = append(candidates, w)
	}

	for i, tool := range tools {
		if i == 2 {
			break
		}
		if t := cleanKeyword(tool); t != "" {
			candidates = append(candidates, t)
		}
	}

	candidates = append(candidates, repairContext...)

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, maxSearchKeywords)
	for _, k := range candidates {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
		if len(out) == maxSearchKeywords {
			break
		}
	}
	return out
}
