package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"paytak/internal/api"
	"paytak/internal/config"
	"paytak/internal/domain/models"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	timeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sectionStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
)

// View implements tea.Model.
func (m Model) View() string {
	switch m.screen {
	case screenLogin:
		return m.loginView()
	case screenLedger:
		return m.ledgerView()
	default:
		return m.chatView()
	}
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Paytak AI") + "\n\n")
	if m.passwords {
		b.WriteString("Password for " + m.username + ":\n")
	} else {
		b.WriteString("Sign in to your account.\n")
	}
	b.WriteString(m.input.View() + "\n")
	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice) + "\n")
	}
	return b.String()
}

func (m Model) chatView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Paytak AI") + "  " + timeStyle.Render("diet assistant") + "\n\n")

	if history := m.session.History(); len(history) > 0 {
		b.WriteString(sectionStyle.Render("History") + "\n")
		for i, h := range history {
			b.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1, historyTitle(h.Title), timeStyle.Render("("+relativeDate(h.Date, time.Now())+")")))
		}
		b.WriteString("\n")
	}

	if len(m.foods) > 0 {
		b.WriteString(sectionStyle.Render("Foods") + "\n")
		for i, f := range m.foods {
			line := fmt.Sprintf("  [%d] %s (%.0f kcal, %.1fg protein)", i+1, f.Name, f.Calories.Float64(), f.Protein.Float64())
			b.WriteString(suggestionStyle.Render(line) + "\n")
		}
		b.WriteString(timeStyle.Render("  /log N to add one") + "\n\n")
	}

	if m.scan != nil {
		line := fmt.Sprintf("Label: %s (%.0f kcal, %.1fg protein, %.1fg carbs, %.1fg fat)",
			m.scan.FoodName, m.scan.Calories.Float64(), m.scan.Protein.Float64(),
			m.scan.Carbs.Float64(), m.scan.Fat.Float64())
		b.WriteString(suggestionStyle.Render(line) + "\n\n")
	}

	for _, msg := range m.session.Transcript() {
		b.WriteString(m.renderMessage(msg))
	}

	if m.session.Composing() {
		b.WriteString(m.spin.View() + " Paytak AI is typing...\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + m.input.View() + "\n")
	return b.String()
}

// historyTitle shortens a title the same way the backend builds one from
// the first message.
func historyTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= config.HistoryTitleLength {
		return s
	}
	return string(runes[:config.HistoryTitleLength]) + "..."
}

// relativeDate shortens a YYYY-MM-DD history date to "today" or
// "yesterday" when it matches the local calendar, else "Jan 2".
func relativeDate(raw string, now time.Time) string {
	switch raw {
	case api.LocalDate(now):
		return "today"
	case api.LocalDate(now.AddDate(0, 0, -1)):
		return "yesterday"
	}
	d, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return raw
	}
	return d.Format("Jan 2")
}

func (m Model) renderMessage(msg models.ChatMessage) string {
	var b strings.Builder
	prefix := assistantStyle.Render("Paytak")
	if msg.Sender == models.SenderUser {
		prefix = userStyle.Render("You")
	}
	b.WriteString(fmt.Sprintf("%s %s\n%s\n", prefix, timeStyle.Render(msg.Time), msg.Text))
	for i, sug := range msg.Suggestions {
		line := fmt.Sprintf("  [%d] + Add: %s (%.0f kcal)", i+1, sug.FoodName, sug.Calories)
		b.WriteString(suggestionStyle.Render(line) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) ledgerView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Today's meals") + "\n\n")

	meals := m.ledger.Meals()
	if len(meals) == 0 {
		b.WriteString("Nothing logged yet today.\n")
	}
	for _, meal := range meals {
		name := meal.FoodName
		if name == "" && meal.FoodDetails != nil {
			name = meal.FoodDetails.Name
		}
		qty := meal.Quantity.Float64()
		if qty <= 0 {
			qty = 1
		}
		b.WriteString(fmt.Sprintf("  %s  x%.1g  %s\n", name, qty, timeStyle.Render(string(meal.MealTime))))
	}

	totals := m.ledger.Totals()
	b.WriteString("\n" + sectionStyle.Render("Totals") + "\n")
	b.WriteString(fmt.Sprintf("  carbs %.1fg  protein %.1fg  fat %.1fg  (%.0f kcal)\n",
		totals.Carb, totals.Protein, totals.Fat, m.ledger.CalorieSum()))

	if m.stats != nil {
		b.WriteString("\n" + sectionStyle.Render("Dashboard") + "\n")
		b.WriteString(fmt.Sprintf("  today %.0f / %.0f kcal  BMI %.1f  goal %s\n",
			m.stats.TodayCalories.Float64(), m.stats.DailyNeed.Float64(),
			m.stats.BMI.Float64(), m.stats.Goal))
	}

	if weekly := m.ledger.Weekly(); len(weekly) > 0 {
		b.WriteString("\n" + sectionStyle.Render("This week") + "\n")
		for _, day := range weekly {
			b.WriteString(fmt.Sprintf("  %s  %.0f kcal\n", day.Date, day.Calories.Float64()))
		}
	}

	b.WriteString("\n" + timeStyle.Render("esc to go back") + "\n")
	return b.String()
}
