package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/poegate/poegate"
	"github.com/poegate/poegate/config"
	"github.com/poegate/poegate/poe"
	"github.com/spf13/cobra"
)

var (
	askBot        string
	askAttachment string
	askThinking   bool
	askPlain      bool
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send a one-shot prompt to a bot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		provider := poe.New(cfg.PoeAPIKey, poe.WithTimeout(cfg.Timeout()))
		client := poegate.NewClient(provider,
			poegate.WithClaudeCompatible(cfg.ClaudeCompatible),
			poegate.WithMaxFileSize(cfg.MaxFileSizeMB),
		)

		prompt := args[0]
		var thinking *poegate.ThinkingConfig
		if askThinking {
			t := poegate.DefaultThinking()
			thinking = &t
		}

		res, err := client.Query(cmd.Context(), poegate.QueryRequest{
			Bot:            askBot,
			Prompt:         prompt,
			AttachmentPath: askAttachment,
			Thinking:       thinking,
		})
		if err != nil {
			fallback := func(ctx context.Context, p string, cfg poegate.ThinkingConfig) (poegate.QueryResult, error) {
				return client.Query(ctx, poegate.QueryRequest{
					Bot:            askBot,
					Prompt:         p,
					AttachmentPath: askAttachment,
					Thinking:       &cfg,
				})
			}
			fb := client.HandleQueryError(cmd.Context(), err, fallback, askBot, prompt)
			if fb.Text == "" {
				return errors.New(fb.ErrMessage)
			}
			fmt.Fprintln(os.Stderr, "warning: "+fb.ErrMessage)
			return renderMarkdown(fb.Text)
		}

		if res.Errored() {
			fmt.Fprintln(os.Stderr, "warning: "+res.ErrMessage)
		}
		return renderMarkdown(res.Text)
	},
}

// renderMarkdown pretty-prints a bot reply. Rendering problems degrade to
// plain output rather than failing the command.
func renderMarkdown(text string) error {
	if askPlain {
		fmt.Println(text)
		return nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Println(text)
		return nil
	}
	out, err := renderer.Render(text)
	if err != nil {
		fmt.Println(text)
		return nil
	}
	fmt.Print(out)
	return nil
}

func init() {
	askCmd.Flags().StringVarP(&askBot, "bot", "b", "Claude-3-Sonnet", "Target bot identifier")
	askCmd.Flags().StringVarP(&askAttachment, "attachment", "a", "", "Path to a file to attach")
	askCmd.Flags().BoolVar(&askThinking, "thinking", false, "Enable the thinking protocol")
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "Print raw text without markdown rendering")
	rootCmd.AddCommand(askCmd)
}
