package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"daimon/internal/council"
	"daimon/internal/registry"
)

var (
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2a2a44"))
	verbStyle  = lipgloss.NewStyle().Italic(true).Faint(true)
	savedStyle = lipgloss.NewStyle().Faint(true)
)

// formatResult renders one daimon's reply for the terminal, in the daimon's
// registry color.
func formatResult(r council.StreamResult, savedPath string) string {
	color := "#e8e0d0"
	if d, ok := registry.Lookup(r.Daimon); ok {
		color = d.Color
	}
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)

	text := strings.TrimSpace(r.Text)
	if text == "" {
		text = "[no words]"
	}

	rule := ruleStyle.Render(strings.Repeat("=", 60))
	header := fmt.Sprintf("  %s %s", nameStyle.Render(strings.ToUpper(r.Daimon)), verbStyle.Render(r.Verb))

	out := fmt.Sprintf("\n%s\n%s\n%s\n\n%s\n", rule, header, rule, text)
	if savedPath != "" {
		out += savedStyle.Render(fmt.Sprintf("\n  [Vision saved: %s]", savedPath)) + "\n"
	}
	return out
}

// writeTranscript saves a stream run as a Markdown transcript.
func writeTranscript(path, message string, results []council.StreamResult) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Council Session - %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("## Topic: %s\n\n", message))
	for _, r := range results {
		b.WriteString(fmt.Sprintf("### %s\n\n", strings.ToUpper(r.Daimon)))
		text := strings.TrimSpace(r.Text)
		if text == "" {
			text = "[silence]"
		}
		b.WriteString(text + "\n\n")
		if r.SavedPath != "" {
			b.WriteString(fmt.Sprintf("**Vision**: `%s`\n\n", r.SavedPath))
		}
	}
	b.WriteString("---\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// saveImage decodes a base64 image onto disk, creating parent directories.
func saveImage(path, b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
