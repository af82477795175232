package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"newsletter-rag/internal/rag"
	"newsletter-rag/internal/vectorstore"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// runInteractive opens the interactive search prompt.
func runInteractive(ctx context.Context, retriever *rag.Retriever, store *vectorstore.QdrantStore) error {
	input := textinput.New()
	input.Placeholder = "Ask about your newsletters (or \"stats\", ctrl+c to quit)"
	input.Focus()
	input.CharLimit = 200
	input.Width = 80

	model := searchModel{
		ctx:       ctx,
		retriever: retriever,
		store:     store,
		input:     input,
	}

	_, err := tea.NewProgram(model).Run()
	return err
}

type searchModel struct {
	ctx       context.Context
	retriever *rag.Retriever
	store     *vectorstore.QdrantStore

	input     textinput.Model
	output    string
	searching bool
}

type resultsMsg struct{ text string }

type searchErrMsg struct{ err error }

func (m searchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.searching {
				return m, nil
			}
			m.input.SetValue("")
			m.searching = true
			if question == "stats" {
				return m, m.fetchStats()
			}
			return m, m.search(question)
		}

	case resultsMsg:
		m.searching = false
		m.output = msg.text
		return m, nil

	case searchErrMsg:
		m.searching = false
		m.output = errorStyle.Render("Error: " + msg.err.Error())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m searchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("newsletter-rag search"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString(statusStyle.Render("Searching..."))
		b.WriteString("\n")
	} else if m.output != "" {
		b.WriteString(m.output)
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: search · \"stats\": collection info · esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m searchModel) search(question string) tea.Cmd {
	return func() tea.Msg {
		chunks, err := m.retriever.Retrieve(m.ctx, question, searchTopK, searchNewsletter)
		if err != nil {
			return searchErrMsg{err}
		}
		if len(chunks) == 0 {
			return resultsMsg{helpStyle.Render("No relevant newsletter content found.")}
		}
		return resultsMsg{renderChunks(chunks)}
	}
}

func (m searchModel) fetchStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.store.Stats(m.ctx)
		if err != nil {
			return searchErrMsg{err}
		}
		return resultsMsg{renderStats(stats)}
	}
}

func renderStats(stats *rag.CollectionStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Documents: %d\n", stats.TotalDocuments)
	if !stats.EarliestDate.IsZero() {
		fmt.Fprintf(&b, "Date range: %s to %s\n",
			stats.EarliestDate.Format("2006-01-02"),
			stats.LatestDate.Format("2006-01-02"))
	}

	names := make([]string, 0, len(stats.NewsletterDistribution))
	for name := range stats.NewsletterDistribution {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&b, "  %-30s %d\n", name, stats.NewsletterDistribution[name])
	}

	return b.String()
}
