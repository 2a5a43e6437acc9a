package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTitleFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "New Conversation"},
		{"short", "Hello", "Hello"},
		{"exactly 25", strings.Repeat("a", 25), strings.Repeat("a", 25)},
		{"26 is cut", strings.Repeat("a", 26), strings.Repeat("a", 25) + "..."},
		{"sentence", "How do I write a web server in Go?", "How do I write a web serv..."},
		{"emoji counted as one", strings.Repeat("👍🏽", 26), strings.Repeat("👍🏽", 25) + "..."},
		{"combining marks kept", strings.Repeat("é", 25), strings.Repeat("é", 25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.TitleFromContent(tt.content))
		})
	}
}

func TestNewSession(t *testing.T) {
	at := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)
	s := domain.NewSession(at)

	assert.Equal(t, "1735689540000", s.ID)
	assert.Equal(t, "12/31/2024", s.CreatedDate)
	assert.Equal(t, domain.DefaultSessionTitle, s.Title)
	assert.NotNil(t, s.Messages)
}

func TestNewMessageID(t *testing.T) {
	at := time.UnixMilli(1718000000123)
	assert.Equal(t, "user_1718000000123", domain.NewMessageID(domain.RoleUser, at))
	assert.Equal(t, "assistant_1718000000123", domain.NewMessageID(domain.RoleAssistant, at))
}

func TestThemeValid(t *testing.T) {
	assert.True(t, domain.ThemeLight.Valid())
	assert.True(t, domain.ThemeDark.Valid())
	assert.False(t, domain.Theme("sepia").Valid())
}
