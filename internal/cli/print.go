package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rrens/qorix-chat/internal/domain"
)

func printSessionLine(w io.Writer, s *domain.Session, active bool) {
	marker := " "
	if active {
		marker = "*"
	}
	fmt.Fprintf(w, "%s %s  %-10s  %-28s  %d messages\n", marker, s.ID, s.CreatedDate, s.Title, len(s.Messages))
}

func printTranscript(w io.Writer, s *domain.Session) {
	fmt.Fprintf(w, "# %s (%s)\n", s.Title, s.ID)
	for _, m := range s.Messages {
		printMessage(w, m)
	}
}

func printMessage(w io.Writer, m domain.Message) {
	fmt.Fprintf(w, "\n[%s] %s\n", m.Role, m.ID)
	if m.Content != "" {
		fmt.Fprintln(w, strings.TrimRight(m.Content, "\n"))
	}
	if m.Attachment != nil {
		fmt.Fprintf(w, "(attachment: %s, %s)\n", m.Attachment.Name, m.Attachment.MimeType)
	}
}
