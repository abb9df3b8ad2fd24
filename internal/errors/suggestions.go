package errors

import (
	"strings"

	"github.com/tangzhangming/phplite/internal/i18n"
)

// ============================================================================
// 修复建议
// ============================================================================

// GetSuggestions 根据错误码和上下文获取修复建议
//
// 上下文键：
//   - "variable": 变量名（含 $）
//   - "token":    出错 token 的种类名
//   - "class":    new 表达式中的类名
func GetSuggestions(code string, context map[string]interface{}) []string {
	switch code {
	case E0100, E0102:
		if name, ok := context["variable"].(string); ok && name != "" {
			return []string{i18n.T(i18n.HintDeclareFirst, name, name)}
		}
	case E0001:
		tok, _ := context["token"].(string)
		switch tok {
		case "PHP_CLOSE", "RBRACE":
			return []string{i18n.T(i18n.HintAddSemicolon)}
		case "SEMICOLON":
			if class, ok := context["class"].(string); ok && class != "" {
				return []string{i18n.T(i18n.HintNewNeedsParen, class)}
			}
		}
	}
	return nil
}

// ============================================================================
// 相似名称查找
// ============================================================================

// FindSimilar 在候选中查找与 name 编辑距离不超过 maxDistance 的最接近名称
//
// 距离相同时取先出现的候选；name 本身不会被返回。
func FindSimilar(name string, candidates []string, maxDistance int) string {
	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		if candidate == name {
			continue
		}
		distance := levenshteinDistance(name, candidate)
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance 计算忽略大小写的 Levenshtein 编辑距离
func levenshteinDistance(s1, s2 string) int {
	s1 = strings.ToLower(s1)
	s2 = strings.ToLower(s2)
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// 两行滚动数组
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min3(
				prev[j]+1,      // 删除
				curr[j-1]+1,    // 插入
				prev[j-1]+cost, // 替换
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
