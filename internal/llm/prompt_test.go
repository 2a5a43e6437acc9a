package llm_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Rrens/qorix-chat/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFile(t *testing.T) {
	tests := []struct {
		name string
		file llm.File
		want llm.FileKind
	}{
		{"declared image", llm.File{Name: "a.bin", MimeType: "image/jpeg"}, llm.FileImage},
		{"sniffed png", llm.File{Name: "cat", Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")}, llm.FileImage},
		{"plain text", llm.File{Name: "notes", MimeType: "text/plain"}, llm.FileText},
		{"plain text with charset", llm.File{Name: "notes", MimeType: "text/plain; charset=utf-8"}, llm.FileText},
		{"go source by extension", llm.File{Name: "main.go", MimeType: "application/octet-stream"}, llm.FileText},
		{"extension is case insensitive", llm.File{Name: "README.MD", MimeType: "application/x-unknown"}, llm.FileText},
		{"pdf", llm.File{Name: "paper.pdf", MimeType: "application/pdf"}, llm.FileOther},
		{"yaml is not allowlisted", llm.File{Name: "c.yaml", MimeType: "application/yaml"}, llm.FileOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llm.ClassifyFile(&tt.file))
		})
	}
}

func TestEnsureSystemPrompt(t *testing.T) {
	sys := func(s string) llm.ChatMessage { return llm.ChatMessage{Role: llm.RoleSystem, Content: llm.TextContent(s)} }
	user := func(s string) llm.ChatMessage { return llm.ChatMessage{Role: llm.RoleUser, Content: llm.TextContent(s)} }

	tests := []struct {
		name string
		in   []llm.ChatMessage
	}{
		{"missing", []llm.ChatMessage{user("hi")}},
		{"overwritten", []llm.ChatMessage{sys("old"), user("hi")}},
		{"duplicates dropped", []llm.ChatMessage{sys("old"), user("hi"), sys("late")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := llm.EnsureSystemPrompt(tt.in, "persona")

			require.Len(t, out, 2)
			assert.Equal(t, llm.RoleSystem, out[0].Role)
			assert.Equal(t, "persona", out[0].Text())
			assert.Equal(t, "hi", out[1].Text())
		})
	}
}

func TestApplyAttachment(t *testing.T) {
	history := func(last string) []llm.ChatMessage {
		return []llm.ChatMessage{
			{Role: llm.RoleUser, Content: llm.TextContent("earlier")},
			{Role: llm.RoleAssistant, Content: llm.TextContent("reply")},
			{Role: llm.RoleUser, Content: llm.TextContent(last)},
		}
	}

	t.Run("no file", func(t *testing.T) {
		in := history("hi")
		out := llm.ApplyAttachment(in, nil, 0)
		assert.Equal(t, in, out)
	})

	t.Run("image becomes multi-part", func(t *testing.T) {
		f := &llm.File{Name: "cat.png", MimeType: "image/png", Data: []byte{1, 2, 3}}
		out := llm.ApplyAttachment(history(""), f, 0)

		parts, ok := out[2].Content.(llm.MultiPartContent)
		require.True(t, ok)
		require.Len(t, parts, 2)
		assert.Equal(t, "What is in this image?", parts[0].Text)
		assert.Equal(t, llm.PartImageURL, parts[1].Type)
		assert.Equal(t, "data:image/png;base64,AQID", parts[1].ImageURL.URL)
		assert.Equal(t, "earlier", out[0].Text(), "only the last user message changes")
	})

	t.Run("image keeps typed text", func(t *testing.T) {
		f := &llm.File{Name: "cat.png", MimeType: "image/png", Data: []byte{1}}
		out := llm.ApplyAttachment(history("is this a cat?"), f, 0)
		assert.Equal(t, "is this a cat?", out[2].Text())
	})

	t.Run("text file inlined", func(t *testing.T) {
		f := &llm.File{Name: "main.go", MimeType: "text/plain", Data: []byte("package main")}
		out := llm.ApplyAttachment(history("review"), f, 0)
		assert.Equal(t, "review\n\n[File: main.go]\n```\npackage main\n```", out[2].Text())
	})

	t.Run("text file truncated", func(t *testing.T) {
		f := &llm.File{Name: "big.txt", MimeType: "text/plain", Data: []byte(strings.Repeat("é", 30))}
		out := llm.ApplyAttachment(history(""), f, 10)
		want := "\n\n[File: big.txt]\n```\n" + strings.Repeat("é", 10) + "\n... (truncated)\n```"
		assert.Equal(t, want, out[2].Text())
	})

	t.Run("other file described", func(t *testing.T) {
		f := &llm.File{Name: "paper.pdf", MimeType: "application/pdf", Data: []byte("%PDF-1.4")}
		out := llm.ApplyAttachment(history("summarize"), f, 0)
		assert.Equal(t, "summarize\n\n[Attached file: paper.pdf (application/pdf)]", out[2].Text())
	})

	t.Run("input not modified", func(t *testing.T) {
		in := history("review")
		f := &llm.File{Name: "a.txt", MimeType: "text/plain", Data: []byte("x")}
		llm.ApplyAttachment(in, f, 0)
		assert.Equal(t, "review", in[2].Text())
	})
}

func TestChatMessageJSON(t *testing.T) {
	text, err := json.Marshal(llm.ChatMessage{Role: llm.RoleUser, Content: llm.TextContent("hi")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(text))

	multi, err := json.Marshal(llm.ChatMessage{
		Role:    llm.RoleUser,
		Content: llm.MultiPartContent{llm.TextPart("look"), llm.ImagePart("data:image/png;base64,AA==")},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":[
		{"type":"text","text":"look"},
		{"type":"image_url","image_url":{"url":"data:image/png;base64,AA=="}}
	]}`, string(multi))

	var decoded llm.ChatMessage
	require.NoError(t, json.Unmarshal(multi, &decoded))
	parts, ok := decoded.Content.(llm.MultiPartContent)
	require.True(t, ok)
	assert.Equal(t, "look", decoded.Text())
	assert.Len(t, parts, 2)
}
