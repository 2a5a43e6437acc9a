package llm

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultMaxFileChars caps inlined text attachments
	DefaultMaxFileChars = 10000
	truncatedMarker     = "\n... (truncated)"
	defaultImagePrompt  = "What is in this image?"
)

// FileKind is how an attachment is inlined into the request
type FileKind int

const (
	FileOther FileKind = iota
	FileImage
	FileText
)

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".json": true, ".js": true, ".ts": true,
	".css": true, ".html": true, ".py": true, ".java": true, ".c": true,
	".cpp": true, ".go": true, ".rs": true,
}

// DetectMimeType returns the declared MIME type, sniffing the bytes when none was given
func DetectMimeType(f *File) string {
	if f.MimeType != "" {
		return f.MimeType
	}
	if len(f.Data) == 0 {
		return "application/octet-stream"
	}
	return mimetype.Detect(f.Data).String()
}

// ClassifyFile decides how a file is presented to the model
func ClassifyFile(f *File) FileKind {
	mime := DetectMimeType(f)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return FileImage
	case mime == "text/plain" || strings.HasPrefix(mime, "text/plain;"):
		return FileText
	case textExtensions[strings.ToLower(filepath.Ext(f.Name))]:
		return FileText
	default:
		return FileOther
	}
}

// EnsureSystemPrompt returns messages with exactly one system entry, placed first
// and set to prompt. Other system entries are dropped.
func EnsureSystemPrompt(messages []ChatMessage, prompt string) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages)+1)
	out = append(out, ChatMessage{Role: RoleSystem, Content: TextContent(prompt)})
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ApplyAttachment folds the file into the last user message.
// The input slice is not modified.
func ApplyAttachment(messages []ChatMessage, f *File, maxChars int) []ChatMessage {
	out := append([]ChatMessage(nil), messages...)
	if f == nil {
		return out
	}

	idx := lastUserIndex(out)
	if idx < 0 {
		return out
	}
	text := out[idx].Text()

	switch ClassifyFile(f) {
	case FileImage:
		if text == "" {
			text = defaultImagePrompt
		}
		out[idx] = ChatMessage{
			Role:    RoleUser,
			Content: MultiPartContent{TextPart(text), ImagePart(dataURL(f))},
		}
	case FileText:
		out[idx] = ChatMessage{
			Role:    RoleUser,
			Content: TextContent(fmt.Sprintf("%s\n\n[File: %s]\n```\n%s\n```", text, f.Name, truncateText(string(f.Data), maxChars))),
		}
	default:
		out[idx] = ChatMessage{
			Role:    RoleUser,
			Content: TextContent(fmt.Sprintf("%s\n\n[Attached file: %s (%s)]", text, f.Name, DetectMimeType(f))),
		}
	}
	return out
}

func lastUserIndex(messages []ChatMessage) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return i
		}
	}
	return -1
}

func dataURL(f *File) string {
	return "data:" + DetectMimeType(f) + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

func truncateText(s string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxFileChars
	}
	s = strings.ToValidUTF8(s, "�")
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars]) + truncatedMarker
}
