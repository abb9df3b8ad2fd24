package lsp

import (
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/tangzhangming/phplite/internal/compiler"
)

// maxDocumentSize 文档大小限制（500KB），超过时不做分析
const maxDocumentSize = 500 * 1024

// Document 表示一个打开的文档
type Document struct {
	URI     protocol.DocumentURI
	Path    string // URI 对应的文件路径，用作编译结果的 SourcePath
	Content string
	Version int32
	Lines   []string // 按行分割的内容

	// 最近一次编译结果；文档过大时为 nil
	Result *compiler.Result
}

// DocumentManager 文档管理器
type DocumentManager struct {
	cache     *compiler.Cache
	documents map[protocol.DocumentURI]*Document
	mu        sync.RWMutex
}

// NewDocumentManager 创建文档管理器
func NewDocumentManager(cache *compiler.Cache) *DocumentManager {
	return &DocumentManager{
		cache:     cache,
		documents: make(map[protocol.DocumentURI]*Document),
	}
}

// Open 打开文档并立即编译
func (dm *DocumentManager) Open(docURI protocol.DocumentURI, content string, version int32) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc := &Document{
		URI:     docURI,
		Path:    uriToPath(docURI),
		Content: content,
		Version: version,
	}
	dm.refresh(doc)
	dm.documents[docURI] = doc
	return doc
}

// Close 关闭文档
func (dm *DocumentManager) Close(docURI protocol.DocumentURI) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if doc, ok := dm.documents[docURI]; ok {
		dm.cache.Invalidate(doc.Path)
		delete(dm.documents, docURI)
	}
}

// Get 获取文档
func (dm *DocumentManager) Get(docURI protocol.DocumentURI) *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.documents[docURI]
}

// Len 打开的文档数
func (dm *DocumentManager) Len() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// UpdateContent 整体替换文档内容
func (dm *DocumentManager) UpdateContent(docURI protocol.DocumentURI, content string) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[docURI]
	if !ok {
		return nil
	}
	doc.Content = content
	dm.refresh(doc)
	return doc
}

// ApplyChanges 依次应用变更并重新编译
func (dm *DocumentManager) ApplyChanges(docURI protocol.DocumentURI, changes []protocol.TextDocumentContentChangeEvent, version int32) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[docURI]
	if !ok {
		return nil
	}

	for _, change := range changes {
		// 省略 range 时新文本是文档的完整内容
		if isFullReplace(change) {
			doc.Content = change.Text
		} else {
			doc.Content = applyTextEdit(doc.Content, change.Range, change.Text)
		}
	}
	doc.Version = version
	dm.refresh(doc)
	return doc
}

// refresh 重新分行并编译，调用方持有锁
func (dm *DocumentManager) refresh(doc *Document) {
	doc.Lines = splitLines(doc.Content)
	if len(doc.Content) > maxDocumentSize {
		doc.Result = nil
		return
	}
	doc.Result, _ = dm.cache.Compile(doc.Content, doc.Path)
}

func isFullReplace(change protocol.TextDocumentContentChangeEvent) bool {
	r := change.Range
	return r.Start.Line == 0 && r.Start.Character == 0 &&
		r.End.Line == 0 && r.End.Character == 0 &&
		change.RangeLength == 0
}

// GetLine 获取指定行内容
func (doc *Document) GetLine(line int) string {
	if line < 0 || line >= len(doc.Lines) {
		return ""
	}
	return doc.Lines[line]
}

// GetWordAt 获取指定位置的单词
func (doc *Document) GetWordAt(line, character int) string {
	lineText := doc.GetLine(line)
	if character < 0 || character > len(lineText) {
		return ""
	}

	// 向前查找单词开始
	start := character
	for start > 0 && isWordChar(lineText[start-1]) {
		start--
	}

	// 向后查找单词结束
	end := character
	for end < len(lineText) && isWordChar(lineText[end]) {
		end++
	}

	return lineText[start:end]
}

// splitLines 将内容按行分割
func splitLines(content string) []string {
	// 处理不同的换行符
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

// applyTextEdit 应用文本编辑
func applyTextEdit(content string, rang protocol.Range, newText string) string {
	lines := splitLines(content)

	startLine := clamp(int(rang.Start.Line), 0, len(lines)-1)
	endLine := clamp(int(rang.End.Line), 0, len(lines)-1)

	startLineText := lines[startLine]
	endLineText := lines[endLine]

	// 确保字符位置有效
	startChar := clamp(int(rang.Start.Character), 0, len(startLineText))
	endChar := clamp(int(rang.End.Character), 0, len(endLineText))

	var result strings.Builder

	// 开始位置之前的内容
	for i := 0; i < startLine; i++ {
		result.WriteString(lines[i])
		result.WriteString("\n")
	}
	result.WriteString(startLineText[:startChar])

	result.WriteString(newText)

	// 结束位置之后的内容
	result.WriteString(endLineText[endChar:])
	for i := endLine + 1; i < len(lines); i++ {
		result.WriteString("\n")
		result.WriteString(lines[i])
	}

	return result.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// isWordChar 判断是否是单词字符
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '$'
}

// uriToPath 将 URI 转换为文件路径，非 file 方案原样返回
func uriToPath(docURI protocol.DocumentURI) string {
	u, err := uri.Parse(string(docURI))
	if err != nil || !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return string(docURI)
	}
	return u.Filename()
}
