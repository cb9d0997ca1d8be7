// Package tui is the terminal front-end: a thin presentational layer over
// the chat session, ledger, and API client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"paytak/internal/api"
	"paytak/internal/chat"
	"paytak/internal/config"
	"paytak/internal/domain"
	"paytak/internal/domain/models"
	"paytak/internal/ledger"
)

type screen int

const (
	screenLogin screen = iota
	screenChat
	screenLedger
)

type (
	loggedInMsg  struct{}
	replyMsg     struct{ err error }
	historyMsg   struct{ err error }
	sessionMsg   struct{ err error }
	committedMsg struct {
		key string
		err error
	}
	ledgerMsg     struct{ err error }
	errMsg        struct{ err error }
	searchTickMsg struct {
		gen   uint64
		query string
	}
	foodsMsg struct {
		gen   uint64
		foods []models.Food
		err   error
	}
	mealLoggedMsg struct {
		name string
		err  error
	}
	scanMsg struct {
		result *models.ScanResult
		err    error
	}
	statsMsg struct {
		stats *models.DashboardStats
		err   error
	}
)

// Model is the bubbletea model for the whole client.
type Model struct {
	client  *api.Client
	session *chat.Session
	ledger  *ledger.Ledger
	logger  *slog.Logger

	screen screen
	input  textinput.Model
	spin   spinner.Model

	username  string
	passwords bool // input is collecting the password
	notice    string
	width     int
	height    int

	// committing guards double confirmation of the same suggestion: the
	// pipeline itself does not deduplicate.
	committing map[string]bool

	// searchGen invalidates pending debounce ticks and in-flight search
	// responses when a newer query arrives.
	searchGen uint64
	foods     []models.Food
	scan      *models.ScanResult
	stats     *models.DashboardStats
}

// New builds the initial model. If the auth context already holds a live
// token the login screen is skipped.
func New(client *api.Client, session *chat.Session, led *ledger.Ledger, loggedIn bool, logger *slog.Logger) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = config.MaxChatMessageLength
	in.Width = 60
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	m := Model{
		client:     client,
		session:    session,
		ledger:     led,
		logger:     logger,
		screen:     screenLogin,
		input:      in,
		spin:       sp,
		committing: map[string]bool{},
	}
	if loggedIn {
		m.screen = screenChat
		m.input.Placeholder = "Ask Paytak AI... (/help for commands)"
	} else {
		m.input.Placeholder = "username"
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.screen == screenChat {
		return tea.Batch(m.spin.Tick, m.refreshHistory(), m.refreshLedger())
	}
	return m.spin.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if w := msg.Width - 4; w > 20 {
			m.input.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if m.screen == screenLedger {
				m.screen = screenChat
				return m, nil
			}
		case tea.KeyEnter:
			return m.submit()
		}

	case loggedInMsg:
		m.screen = screenChat
		m.notice = ""
		m.input.Placeholder = "Ask Paytak AI... (/help for commands)"
		m.input.SetValue("")
		return m, tea.Batch(m.refreshHistory(), m.refreshLedger())

	case replyMsg:
		if m.sessionExpired(msg.err) {
			return m.toLogin()
		}
		return m, nil

	case sessionMsg:
		if m.sessionExpired(msg.err) {
			return m.toLogin()
		}
		if msg.err != nil {
			m.notice = "Couldn't load that conversation."
		}
		return m, nil

	case historyMsg, ledgerMsg:
		return m, nil

	case committedMsg:
		delete(m.committing, msg.key)
		if m.sessionExpired(msg.err) {
			return m.toLogin()
		}
		return m, nil

	case errMsg:
		if m.sessionExpired(msg.err) {
			return m.toLogin()
		}
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		return m, nil

	case searchTickMsg:
		// A newer query within the debounce window supersedes this tick.
		if msg.gen != m.searchGen {
			return m, nil
		}
		return m, m.searchFoods(msg.gen, msg.query)

	case foodsMsg:
		if m.sessionExpired(msg.err) {
			return m.toLogin()
		}
		if msg.gen != m.searchGen {
			return m, nil
		}
		if msg.err != nil {
			m.notice = "Search failed."
			return m, nil
		}
		m.foods = msg.foods
		if len(m.foods) == 0 {
			m.notice = "No foods matched."
		}
		return m, nil

	case mealLoggedMsg:
		if m.sessionExpired(msg.err) {
			return m.toLogin()
		}
		if msg.err != nil {
			m.notice = "Couldn't log that meal."
			return m, nil
		}
		m.notice = fmt.Sprintf("Logged %s.", msg.name)
		return m, m.refreshLedger()

	case scanMsg:
		if m.sessionExpired(msg.err) {
			return m.toLogin()
		}
		if msg.err != nil {
			m.notice = "Couldn't analyze that image."
			return m, nil
		}
		m.scan = msg.result
		return m, nil

	case statsMsg:
		if m.sessionExpired(msg.err) {
			return m.toLogin()
		}
		if msg.err != nil {
			m.notice = "Couldn't load your stats."
			return m, nil
		}
		m.stats = msg.stats
		m.screen = screenLedger
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.screen {
	case screenLogin:
		return m.submitLogin(value)
	case screenChat:
		return m.submitChat(value)
	}
	return m, nil
}

func (m Model) submitLogin(value string) (tea.Model, tea.Cmd) {
	if value == "" {
		return m, nil
	}
	if !m.passwords {
		m.username = value
		m.passwords = true
		m.input.SetValue("")
		m.input.Placeholder = "password"
		m.input.EchoMode = textinput.EchoPassword
		return m, nil
	}

	password := value
	m.passwords = false
	m.input.SetValue("")
	m.input.EchoMode = textinput.EchoNormal
	m.notice = "Signing in..."

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.client.Login(ctx, m.username, password); err != nil {
			return errMsg{fmt.Errorf("login failed: %w", err)}
		}
		return loggedInMsg{}
	}
}

func (m Model) submitChat(value string) (tea.Model, tea.Cmd) {
	if value == "" {
		return m, nil
	}
	m.input.SetValue("")
	m.notice = ""

	if strings.HasPrefix(value, "/") {
		return m.command(value)
	}
	if len([]rune(value)) > config.MaxChatMessageLength {
		m.notice = fmt.Sprintf("That message is too long (max %d characters).", config.MaxChatMessageLength)
		return m, nil
	}
	if m.session.Composing() {
		m.notice = "Paytak AI is still typing..."
		return m, nil
	}

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return replyMsg{m.session.Send(ctx, value)}
	}
}

// command dispatches slash commands.
func (m Model) command(value string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(value)
	switch fields[0] {
	case "/quit":
		return m, tea.Quit

	case "/new":
		m.session.Start()
		return m, nil

	case "/meals":
		m.screen = screenLedger
		return m, m.refreshLedger()

	case "/open":
		if len(fields) < 2 {
			m.notice = "Usage: /open <number from the history list>"
			return m, nil
		}
		history := m.session.History()
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(history) {
			m.notice = "No such conversation."
			return m, nil
		}
		id := history[n-1].ID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return sessionMsg{m.session.SelectHistoryEntry(ctx, id)}
		}

	case "/add":
		if len(fields) < 2 {
			m.notice = "Usage: /add <suggestion number>"
			return m, nil
		}
		return m.commitSuggestion(fields[1])

	case "/search":
		if len(fields) < 2 {
			m.notice = "Usage: /search <food name>"
			return m, nil
		}
		query := strings.Join(fields[1:], " ")
		m.searchGen++
		gen := m.searchGen
		return m, tea.Tick(config.SearchDebounce, func(time.Time) tea.Msg {
			return searchTickMsg{gen: gen, query: query}
		})

	case "/log":
		if len(fields) < 2 {
			m.notice = "Usage: /log <number from the food list> [quantity]"
			return m, nil
		}
		return m.logFood(fields[1:])

	case "/scan":
		if len(fields) < 2 {
			m.notice = "Usage: /scan <image file>"
			return m, nil
		}
		return m, m.analyzeLabel(strings.Join(fields[1:], " "))

	case "/stats":
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			stats, err := m.client.Dashboard(ctx)
			return statsMsg{stats: stats, err: err}
		}

	case "/logout":
		m.client.Logout()
		return m.toLogin()

	case "/help":
		m.notice = "/new  /open N  /add N  /search Q  /log N  /scan FILE  /meals  /stats  /logout  /quit"
		return m, nil
	}

	m.notice = "Unknown command. /help lists what I know."
	return m, nil
}

func (m Model) commitSuggestion(arg string) (tea.Model, tea.Cmd) {
	suggestions := currentSuggestions(m.session.Transcript())
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(suggestions) {
		m.notice = "No such suggestion."
		return m, nil
	}
	cand := suggestions[n-1]

	key := fmt.Sprintf("%d:%s", n, cand.FoodName)
	if m.committing[key] {
		m.notice = "Already adding that one."
		return m, nil
	}
	m.committing[key] = true

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return committedMsg{key: key, err: m.session.CommitSuggestion(ctx, cand)}
	}
}

func (m Model) searchFoods(gen uint64, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		foods, err := m.client.SearchFoods(ctx, query)
		return foodsMsg{gen: gen, foods: foods, err: err}
	}
}

// logFood adds the Nth food from the last search, with an optional quantity
// as the second argument.
func (m Model) logFood(args []string) (tea.Model, tea.Cmd) {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(m.foods) {
		m.notice = "No such food. /search first, then /log its number."
		return m, nil
	}
	food := m.foods[n-1]

	quantity := 1.0
	if len(args) > 1 {
		quantity, err = strconv.ParseFloat(args[1], 64)
		if err != nil || quantity <= 0 {
			m.notice = "Quantity must be a positive number."
			return m, nil
		}
	}

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		req := api.AddMealRequest{
			FoodID:   food.ID,
			Quantity: quantity,
			MealTime: chat.DeriveMealTime(time.Now()),
			Date:     api.LocalDate(time.Now()),
		}
		return mealLoggedMsg{name: food.Name, err: m.client.AddMeal(ctx, req)}
	}
}

func (m Model) analyzeLabel(path string) tea.Cmd {
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return scanMsg{err: err}
		}
		defer file.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		result, err := m.client.AnalyzeLabel(ctx, filepath.Base(path), file)
		return scanMsg{result: result, err: err}
	}
}

func (m Model) refreshHistory() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return historyMsg{m.session.RefreshHistory(ctx)}
	}
}

func (m Model) refreshLedger() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		date := api.LocalDate(time.Now())
		meals, err := m.client.Meals(ctx, date)
		if err != nil {
			return ledgerMsg{err}
		}
		m.ledger.SetMeals(meals)
		if weekly, err := m.client.WeeklyReport(ctx); err == nil {
			m.ledger.SetWeekly(weekly)
		}
		return ledgerMsg{nil}
	}
}

func (m Model) toLogin() (tea.Model, tea.Cmd) {
	m.screen = screenLogin
	m.passwords = false
	m.username = ""
	m.notice = "Session expired, please sign in again."
	m.input.SetValue("")
	m.input.Placeholder = "username"
	m.input.EchoMode = textinput.EchoNormal
	return m, nil
}

func (m Model) sessionExpired(err error) bool {
	return err != nil && errors.Is(err, domain.ErrUnauthorized)
}

// currentSuggestions collects the suggestions of the latest assistant
// message that carries any; /add indexes into this list.
func currentSuggestions(transcript []models.ChatMessage) []models.MealCandidate {
	for i := len(transcript) - 1; i >= 0; i-- {
		if len(transcript[i].Suggestions) > 0 {
			return transcript[i].Suggestions
		}
	}
	return nil
}
