package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	okColor      = lipgloss.Color("#10B981") // Green
	alertColor   = lipgloss.Color("#EF4444") // Red
	accentColor  = lipgloss.Color("#F59E0B") // Amber
	surfaceColor = lipgloss.Color("#1F2937") // Dark gray
	textColor    = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor   = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor  = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Align(lipgloss.Center)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	sequenceStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#111827")).
			Padding(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	sectionTitleStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	labelStyle        = lipgloss.NewStyle().Foreground(mutedColor)

	// Verdict styles
	verdictSignificantStyle  = lipgloss.NewStyle().Foreground(alertColor).Bold(true)
	verdictNotSignifStyle    = lipgloss.NewStyle().Foreground(okColor).Bold(true)
	verdictInsufficientStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// Record mirrors one entry of the results JSON written by the analyzer CLI.
type Record struct {
	Accession string `json:"accession"`
	Result    struct {
		RecordID  string  `json:"record_id"`
		Length    int     `json:"length"`
		GCPercent float64 `json:"gc_percent"`
		Counts    struct {
			A int `json:"a"`
			C int `json:"c"`
			G int `json:"g"`
			T int `json:"t"`
		} `json:"counts"`
		Test *struct {
			Statistic  float64 `json:"statistic"`
			PValue     float64 `json:"p_value"`
			ObservedGC float64 `json:"observed_gc_percent"`
			ExpectedGC float64 `json:"expected_gc_percent"`
			TotalBases int     `json:"total_classified_bases"`
		} `json:"test"`
	} `json:"result"`
	Summary struct {
		Verdict string `json:"verdict"`
		Tested  bool   `json:"tested"`
	} `json:"summary"`
	Bases string `json:"bases"`
}

func verdictStyle(verdict string) lipgloss.Style {
	switch verdict {
	case "significant deviation":
		return verdictSignificantStyle
	case "not significant":
		return verdictNotSignifStyle
	default:
		return verdictInsufficientStyle
	}
}

type listItem struct {
	record Record
}

func (i listItem) FilterValue() string {
	if i.record.Accession != "" {
		return i.record.Accession
	}
	return i.record.Result.RecordID
}

func (i listItem) Title() string {
	if i.record.Accession != "" {
		return i.record.Accession
	}
	return i.record.Result.RecordID
}

func (i listItem) Description() string {
	verdict := verdictStyle(i.record.Summary.Verdict).Render(i.record.Summary.Verdict)
	return fmt.Sprintf("GC: %.2f%%    len: %d    %s", i.record.Result.GCPercent, i.record.Result.Length, verdict)
}

type mode int

const (
	modeComposition mode = iota
	modeTest
	modeSequence
)

func (m mode) String() string {
	switch m {
	case modeComposition:
		return "Composition"
	case modeTest:
		return "Chi-square"
	case modeSequence:
		return "Sequence"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	records       []Record
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	totalRecords  int
	selectedIndex int
}

func loadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func newModel(records []Record) model {
	items := make([]list.Item, len(records))
	for i, record := range records {
		items[i] = listItem{record: record}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "GC Content Results"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:         l,
		records:      records,
		currentMode:  modeComposition,
		totalRecords: len(records),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) cycleMode() model {
	switch m.currentMode {
	case modeComposition:
		m.currentMode = modeTest
	case modeTest:
		m.currentMode = modeSequence
	default:
		m.currentMode = modeComposition
	}
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// left panel takes 1/3 of width
		m.list.SetWidth(msg.Width / 3)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "h":
			m.showHelp = !m.showHelp
			return m, nil

		case "tab":
			return m.cycleMode(), nil

		case "1":
			m.currentMode = modeComposition
			return m, nil

		case "2":
			m.currentMode = modeTest
			return m, nil

		case "3":
			m.currentMode = modeSequence
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpModal()
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftPanel(),
		m.renderRightPanel(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		m.renderStatusBar(),
	)
}

func (m model) renderLeftPanel() string {
	listWidth := m.width / 3
	return containerStyle.
		Width(listWidth - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

func (m model) renderRightPanel() string {
	rightWidth := (m.width * 2) / 3

	if len(m.records) == 0 {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No records available")
	}

	selectedItem := m.list.SelectedItem()
	if selectedItem == nil {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No item selected")
	}

	record := selectedItem.(listItem).record
	lines := m.buildRightLines(record)

	return containerStyle.
		Width(rightWidth - 2).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// buildRightLines assembles the right-panel content for one record in the
// current mode.
func (m model) buildRightLines(record Record) []string {
	header := titleStyle.Render(record.Result.RecordID)
	verdict := verdictStyle(record.Summary.Verdict).Render(record.Summary.Verdict)
	meta := labelStyle.Render("Verdict: ") + verdict +
		labelStyle.Render(fmt.Sprintf("    Length: %d    GC: %.2f%%", record.Result.Length, record.Result.GCPercent))

	lines := []string{header, meta, ""}

	switch m.currentMode {
	case modeComposition:
		c := record.Result.Counts
		lines = append(lines,
			sectionTitleStyle.Render("Nucleotide counts:"),
			"",
			fmt.Sprintf("  A: %d", c.A),
			fmt.Sprintf("  C: %d", c.C),
			fmt.Sprintf("  G: %d", c.G),
			fmt.Sprintf("  T: %d", c.T),
			fmt.Sprintf("  other: %d", record.Result.Length-(c.A+c.C+c.G+c.T)),
		)
	case modeTest:
		lines = append(lines, sectionTitleStyle.Render("Chi-square goodness of fit:"), "")
		if t := record.Result.Test; t != nil {
			lines = append(lines,
				fmt.Sprintf("  statistic: %.4f", t.Statistic),
				fmt.Sprintf("  p-value: %.4f", t.PValue),
				fmt.Sprintf("  observed GC: %.2f%%", t.ObservedGC),
				fmt.Sprintf("  expected GC: %.2f%%", t.ExpectedGC),
				fmt.Sprintf("  classified bases: %d", t.TotalBases),
			)
		} else {
			lines = append(lines, labelStyle.Render("  test not computable for this record"))
		}
	case modeSequence:
		lines = append(lines, m.formatSequence(record.Bases))
	}
	return lines
}

func (m model) formatSequence(sequence string) string {
	if sequence == "" {
		return labelStyle.Render("No sequence available")
	}

	cleanSequence := strings.ReplaceAll(sequence, "\n", "")
	cleanSequence = strings.ReplaceAll(cleanSequence, "\r", "")

	titleStr := sectionTitleStyle.Render("Bases:")

	sequenceContent := sequenceStyle.
		Width(m.width*2/3 - 6).
		Render(cleanSequence)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStr,
		"",
		sequenceContent,
	)
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d records", m.selectedIndex+1, m.totalRecords)
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode.String())
	rightInfo := "Press 'h' for help, 'q' to quit"

	totalUsed := len(leftInfo) + len(centerInfo) + len(rightInfo)
	spacing := m.width - totalUsed - 6

	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		rightSpacing := spacing - leftSpacing
		statusContent = leftInfo +
			strings.Repeat(" ", leftSpacing) +
			centerInfo +
			strings.Repeat(" ", rightSpacing) +
			rightInfo
	} else {
		// narrow terminals
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}

	return statusBarStyle.
		Width(m.width).
		Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `GC Content Results Browser - Help

Navigation:
  up/down, j/k  Navigate list
  /             Filter records
  Enter         Select record

View Modes:
  1, tab        Show nucleotide composition
  2             Show chi-square test detail
  3             Show raw sequence

General:
  h             Toggle this help
  q, Ctrl+C     Quit

Current Mode: ` + m.currentMode.String() + `
Total Records: ` + fmt.Sprintf("%d", m.totalRecords) + `
`

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Align(lipgloss.Center)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalStyle.Render(helpContent),
	)
}

func main() {
	dataFlag := flag.String("data", "results.json", "results JSON written by the analyzer")
	flag.Parse()

	records, err := loadRecords(*dataFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *dataFlag, err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(records), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
