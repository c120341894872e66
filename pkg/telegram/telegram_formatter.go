package telegram

import (
	"fmt"
	"strings"

	"golang-disclosure-watcher/internal/executor/dto"
)

// Telegram caps messages at 4096 characters; leave a little headroom.
const maxMessageLen = 4090

// FormatImportResultsForTelegram formats per-ticker import results into one
// or more Markdown messages, splitting whenever a message would exceed the
// Telegram length cap.
func FormatImportResultsForTelegram(results []dto.ImportResult) []string {
	if len(results) == 0 {
		return []string{"No disclosure documents imported today."}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString("📄 *Disclosure Import Report* 📄\n\n")
		} else {
			current.WriteString(fmt.Sprintf("---*Disclosure Import Report Part %d*---\n\n", part))
		}
	}

	startNewPart()

	for _, r := range results {
		var entry strings.Builder
		icon := "✅"
		if !r.IsSuccess {
			icon = "⚠️"
		}
		entry.WriteString(fmt.Sprintf("%s *- - - - - %s - - - - -*\n", icon, r.Ticker))
		entry.WriteString(fmt.Sprintf("🆕 *Stored:* %d  ♻️ *Existing:* %d\n", r.Stored, r.Existing))
		entry.WriteString(fmt.Sprintf("🚫 *Failed:* %d  ⏭ *Skipped:* %d\n", r.Failed, r.Skipped))
		if r.Analyzed > 0 || r.AnalysisFailed > 0 {
			entry.WriteString(fmt.Sprintf("🧠 *Analyzed:* %d (failed %d)\n", r.Analyzed, r.AnalysisFailed))
		}
		if r.Customized > 0 || r.CustomizeFailed > 0 {
			entry.WriteString(fmt.Sprintf("👤 *Customized:* %d (failed %d)\n", r.Customized, r.CustomizeFailed))
		}
		if r.Error != "" {
			entry.WriteString(fmt.Sprintf("❗ *Error:* %s\n", r.Error))
		}
		entry.WriteString("\n")

		if current.Len()+entry.Len() > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry.String())
	}

	messages = append(messages, current.String())
	return messages
}

// FormatRegenerationResultForTelegram formats the outcome of a prompt-change
// regeneration run.
func FormatRegenerationResultForTelegram(r *dto.RegenerationResult) string {
	var b strings.Builder
	b.WriteString("🔄 *Analysis Regeneration Complete* 🔄\n\n")
	b.WriteString(fmt.Sprintf("📈 *Ticker:* %s\n", r.Ticker))
	b.WriteString(fmt.Sprintf("🗂 *Releases:* %d\n", r.Total))
	b.WriteString(fmt.Sprintf("🧠 *Regenerated:* %d\n", r.Regenerated))
	b.WriteString(fmt.Sprintf("⚡ *From cache:* %d\n", r.Cached))
	b.WriteString(fmt.Sprintf("⏭ *Skipped:* %d\n", r.Skipped))
	return b.String()
}
