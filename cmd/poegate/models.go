package main

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/poegate/poegate"
	"github.com/poegate/poegate/config"
	"github.com/poegate/poegate/poe"
	"github.com/spf13/cobra"
)

var (
	modelsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62"))

	claudeModelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212"))

	modelNoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the bots the upstream currently serves",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		provider := poe.New(cfg.PoeAPIKey, poe.WithTimeout(cfg.Timeout()))

		models, err := provider.ListModels(cmd.Context())
		if err != nil {
			slog.Warn("upstream model listing failed, showing static list", "error", err)
			models = poe.DefaultModels()
		}

		fmt.Println(modelsHeaderStyle.Render(fmt.Sprintf("Available bots (%d)", len(models))))
		for _, m := range models {
			if poegate.IsClaudeModel(m) {
				fmt.Printf("  %s %s\n", claudeModelStyle.Render(m),
					modelNoteStyle.Render("(thinking protocol)"))
			} else {
				fmt.Printf("  %s\n", m)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
