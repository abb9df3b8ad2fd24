// Package i18n 提供编译器诊断消息的多语言支持
package i18n

import (
	"fmt"
	"strings"
	"sync"
)

// Language 语言类型
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

// 全局语言设置
//
// 只在进程启动时由配置设置一次，编译过程只读。
var (
	currentLang Language = LangEnglish
	mu          sync.RWMutex
)

// SetLanguage 设置当前语言
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	currentLang = lang
}

// ParseLanguage 解析语言名称，未知名称返回 false
func ParseLanguage(name string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "en", "en-us", "en-gb", "english":
		return LangEnglish, true
	case "zh", "zh-cn", "zh-tw", "zh-hk", "chinese":
		return LangChinese, true
	}
	return LangEnglish, false
}

// SetLanguageFromString 从字符串设置语言，未知名称回退到英文
func SetLanguageFromString(name string) {
	lang, _ := ParseLanguage(name)
	SetLanguage(lang)
}

// GetLanguage 获取当前语言
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return currentLang
}

// T 按当前语言翻译消息（支持格式化参数）
func T(msgID string, args ...interface{}) string {
	return TLang(GetLanguage(), msgID, args...)
}

// TLang 按指定语言翻译消息
//
// 找不到翻译时回退到英文，英文也没有则返回消息 ID 本身。
func TLang(lang Language, msgID string, args ...interface{}) string {
	var messages map[string]string
	switch lang {
	case LangChinese:
		messages = messagesZH
	default:
		messages = messagesEN
	}

	msg, ok := messages[msgID]
	if !ok {
		msg, ok = messagesEN[msgID]
	}
	if !ok {
		return msgID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Has 检查英文目录中是否存在该消息
func Has(msgID string) bool {
	_, ok := messagesEN[msgID]
	return ok
}
