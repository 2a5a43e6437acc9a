package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rrens/qorix-chat/internal/service"
	"github.com/spf13/cobra"
)

var (
	sendFile    string
	sendSession string
)

var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send a message and print the reply",
	Long: `Send a message to a conversation and print the assistant reply.

The active (newest) conversation is used unless --session is given.

Examples:
  chatctl send "What is a goroutine?"
  chatctl send "Describe this picture" --file cat.png
  chatctl send --file main.go --session 1718000000000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "attach a file")
	sendCmd.Flags().StringVarP(&sendSession, "session", "s", "", "conversation id")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	input := service.SendMessageInput{SessionID: sendSession}
	if len(args) == 1 {
		input.Text = args[0]
	}

	if sendFile != "" {
		info, err := os.Stat(sendFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		if limit := a.Config.Uploads.MaxBytes; limit > 0 && info.Size() > limit {
			return fmt.Errorf("file size must be less than %dMB", limit>>20)
		}
		data, err := os.ReadFile(sendFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		input.File = &service.UploadedFile{Name: filepath.Base(sendFile), Data: data}
	}

	out, err := a.Chat.SendMessage(ctx, input)
	if err != nil {
		return err
	}
	if out.Status == service.StatusFailed {
		return errors.New(out.Notice)
	}

	fmt.Fprintln(cmd.OutOrStdout(), out.Reply.Content)
	return nil
}
