package console

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/hupe1980/agentzero/agent"
	"github.com/hupe1980/agentzero/core"
)

// Styles holds the lipgloss styles of the narration.
type Styles struct {
	Header       lipgloss.Style
	Stream       lipgloss.Style
	ToolHeader   lipgloss.Style
	ToolBody     lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	Intervention lipgloss.Style
	Prompt       lipgloss.Style
	Answer       lipgloss.Style
}

// DefaultStyles returns the default palette bound to renderer r.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1D8348")),
		Stream:       r.NewStyle().Italic(true).Foreground(lipgloss.Color("#B3FFD9")),
		ToolHeader:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#1B4F72")).Background(lipgloss.Color("#FFFFFF")),
		ToolBody:     r.NewStyle().Foreground(lipgloss.Color("#85C1E9")),
		Warning:      r.NewStyle().Foreground(lipgloss.Color("#FFA500")),
		Error:        r.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		Intervention: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#6C3483")),
		Prompt:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#6C3483")),
		Answer:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1D8348")),
	}
}

// Printer narrates agent progress to a writer. It implements agent.Callbacks
// and is safe for concurrent use.
type Printer struct {
	mu        sync.Mutex
	out       io.Writer
	styles    Styles
	streaming bool
}

var _ agent.Callbacks = (*Printer)(nil)

// NewPrinter creates a Printer writing to w. Colors follow the capabilities
// of w; a non-terminal writer gets plain text.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		out:    w,
		styles: DefaultStyles(lipgloss.NewRenderer(w)),
	}
}

// Styles returns the palette in use.
func (p *Printer) Styles() Styles { return p.styles }

// OnGenerationStart implements agent.Callbacks.
func (p *Printer) OnGenerationStart(info core.AgentInfo) {
	p.block(p.styles.Header.Render(info.Name + ": Starting a message:"))
}

// OnStream implements agent.Callbacks.
func (p *Printer) OnStream(_ core.AgentInfo, chunk string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.streaming = true
	fmt.Fprint(p.out, p.styles.Stream.Render(chunk))
}

// OnGenerationEnd implements agent.Callbacks.
func (p *Printer) OnGenerationEnd(core.AgentInfo, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endStream()
}

// OnRepeat implements agent.Callbacks.
func (p *Printer) OnRepeat(_ core.AgentInfo, notice string) {
	p.block(p.styles.Warning.Render(notice))
}

// OnToolUse implements agent.Callbacks. Attributes other than the name are
// listed before the body.
func (p *Printer) OnToolUse(info core.AgentInfo, req core.ToolRequest) {
	lines := []string{p.styles.ToolHeader.Render(fmt.Sprintf("%s: Using tool %s:", info.Name, req.Name))}

	params := req.Params()
	for _, k := range slices.Sorted(maps.Keys(params)) {
		lines = append(lines, p.styles.ToolBody.Render(fmt.Sprintf("%s: %s", k, params[k])))
	}
	if req.Body != "" {
		lines = append(lines, p.styles.ToolBody.Render(req.Body))
	}

	p.block(lines...)
}

// OnToolResponse implements agent.Callbacks.
func (p *Printer) OnToolResponse(info core.AgentInfo, tool string, response string) {
	lines := []string{p.styles.ToolHeader.Render(fmt.Sprintf("%s: Response from tool %s:", info.Name, tool))}
	if response != "" {
		lines = append(lines, p.styles.ToolBody.Render(response))
	}
	p.block(lines...)
}

// OnToolNotFound implements agent.Callbacks.
func (p *Printer) OnToolNotFound(_ core.AgentInfo, notice string) {
	p.block(p.styles.Warning.Render(notice))
}

// OnIntervention implements agent.Callbacks.
func (p *Printer) OnIntervention(info core.AgentInfo, message string) {
	p.block(p.styles.Intervention.Render(fmt.Sprintf("%s: Intervention received:", info.Name)), message)
}

// OnError implements agent.Callbacks.
func (p *Printer) OnError(_ core.AgentInfo, notice string) {
	p.block(p.styles.Error.Render(notice))
}

// Answer prints the final answer of the root agent.
func (p *Printer) Answer(info core.AgentInfo, text string) {
	p.block(p.styles.Answer.Render(info.Name+": response:"), text)
}

// Prompt prints a styled prompt label without a trailing newline.
func (p *Printer) Prompt(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.endStream()
	fmt.Fprint(p.out, "\n"+p.styles.Prompt.Render(label)+" ")
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.block(p.styles.Error.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) block(lines ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.endStream()
	fmt.Fprint(p.out, "\n"+strings.Join(lines, "\n")+"\n")
}

func (p *Printer) endStream() {
	if p.streaming {
		fmt.Fprint(p.out, "\n")
		p.streaming = false
	}
}
