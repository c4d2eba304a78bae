package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
)

const sepWidth = 72

// amountField is the pseudo-parameter shown for a payable function's value.
const amountField = "value (ETH)"

// resultMsg carries a finished dispatch back into the event loop.
type resultMsg struct{ result contract.Result }

// connectedMsg carries the outcome of a connect request.
type connectedMsg struct {
	accounts []common.Address
	err      error
}

// section is one labelled group of functions in the panel.
type section struct {
	title string
	fns   []*contract.Function
}

// PanelModel is the interactive contract panel. Functions are listed in
// payable, write and read sections; selecting one opens its input form, and
// running it dispatches asynchronously. Results are applied only in Update.
type PanelModel struct {
	session *contract.Session
	ctx     context.Context

	sections []section
	nav      []*contract.Function
	cursor   int

	editing bool
	field   int

	account  string
	inFlight map[string]int
	status   string

	Quitting bool
}

// NewPanel builds the panel for a session. ctx bounds every dispatch the
// panel starts.
func NewPanel(ctx context.Context, s *contract.Session) PanelModel {
	m := PanelModel{
		session:  s,
		ctx:      ctx,
		inFlight: make(map[string]int),
		sections: []section{
			{"Payable", s.Groups.Payable},
			{"Write", s.Groups.NonPayable},
			{"Read", s.Groups.ReadOnly},
		},
	}
	for _, sec := range m.sections {
		m.nav = append(m.nav, sec.fns...)
	}
	return m
}

// Init checks whether an account is already connected.
func (m PanelModel) Init() tea.Cmd {
	if !m.session.HasWallet() {
		return nil
	}
	return func() tea.Msg {
		accounts, err := m.session.Accounts(m.ctx)
		return connectedMsg{accounts: accounts, err: err}
	}
}

func (m PanelModel) current() *contract.Function {
	if len(m.nav) == 0 {
		return nil
	}
	return m.nav[m.cursor]
}

// fields lists the editable slots of fn: its parameters, then the amount
// for payable functions.
func fields(fn *contract.Function) []string {
	out := make([]string, 0, len(fn.Inputs)+1)
	for i, p := range fn.Inputs {
		out = append(out, contract.ParamKey(i, p))
	}
	if fn.IsPayable() {
		out = append(out, amountField)
	}
	return out
}

func (m PanelModel) value(fn *contract.Function, field string) string {
	if field == amountField {
		return m.session.Bindings.Amount(fn.Key())
	}
	v, _ := m.session.Bindings.Get(fn.Key(), field)
	return v
}

func (m PanelModel) setValue(fn *contract.Function, field, v string) {
	if field == amountField {
		m.session.Bindings.SetAmount(fn.Key(), v)
		return
	}
	m.session.Bindings.Set(fn.Key(), field, v)
}

func (m PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		key := msg.result.Function
		if m.inFlight[key] > 0 {
			m.inFlight[key]--
		}
		m.session.Apply(msg.result)
		return m, nil

	case connectedMsg:
		switch {
		case msg.err != nil:
			m.status = Err(msg.err.Error())
		case len(msg.accounts) > 0:
			m.account = msg.accounts[0].Hex()
			m.status = Success("connected " + TruncateAddr(m.account))
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m PanelModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.Quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.nav)-1 {
			m.cursor++
		}
	case "c":
		return m.connect()
	case "enter", "e":
		fn := m.current()
		if fn == nil {
			return m, nil
		}
		if len(fields(fn)) == 0 {
			return m.run(fn)
		}
		m.editing, m.field = true, 0
	case "x":
		if fn := m.current(); fn != nil {
			return m.run(fn)
		}
	}
	return m, nil
}

func (m PanelModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fn := m.current()
	fs := fields(fn)

	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyCtrlC:
		m.Quitting = true
		return m, tea.Quit
	case tea.KeyUp, tea.KeyShiftTab:
		if m.field > 0 {
			m.field--
		}
	case tea.KeyDown, tea.KeyTab:
		if m.field < len(fs)-1 {
			m.field++
		}
	case tea.KeyEnter:
		m.editing = false
		return m.run(fn)
	case tea.KeyBackspace:
		if v := []rune(m.value(fn, fs[m.field])); len(v) > 0 {
			m.setValue(fn, fs[m.field], string(v[:len(v)-1]))
		}
	case tea.KeySpace:
		m.setValue(fn, fs[m.field], m.value(fn, fs[m.field])+" ")
	case tea.KeyRunes:
		m.setValue(fn, fs[m.field], m.value(fn, fs[m.field])+string(msg.Runes))
	}
	return m, nil
}

func (m PanelModel) connect() (tea.Model, tea.Cmd) {
	if !m.session.HasWallet() {
		m.status = Err(contract.ErrWalletUnavailable.Error())
		return m, nil
	}
	m.status = Info("connecting…")
	return m, func() tea.Msg {
		accounts, err := m.session.Connect(m.ctx)
		return connectedMsg{accounts: accounts, err: err}
	}
}

// run issues fn and returns a command that dispatches it off the event loop.
// State-changing calls need a connected account first.
func (m PanelModel) run(fn *contract.Function) (tea.Model, tea.Cmd) {
	if !fn.IsReadOnly() && m.account == "" {
		m.status = Warn("connect an account first (press c)")
		return m, nil
	}
	p, err := m.session.Prepare(fn.Key())
	if err != nil {
		m.status = Err(err.Error())
		return m, nil
	}
	m.status = ""
	m.inFlight[fn.Key()]++
	session, ctx := m.session, m.ctx
	return m, func() tea.Msg {
		return resultMsg{result: session.Run(ctx, p)}
	}
}

func (m PanelModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("  "+Banner()) + "\n")

	sb.WriteString(fmt.Sprintf("  %-10s %s\n", StyleMeta.Render("Contract"), StyleAddress.Render(m.session.Contract)))
	account := StyleMeta.Render("not connected")
	if m.account != "" {
		account = StyleAddress.Render(m.account)
	}
	sb.WriteString(fmt.Sprintf("  %-10s %s\n", StyleMeta.Render("Account"), account))
	sb.WriteString(fmt.Sprintf("  %-10s %s\n\n", StyleMeta.Render("ABI"),
		StyleInfo.Render(fmt.Sprintf("%d functions", len(m.nav)))))

	pos := 0
	for _, sec := range m.sections {
		if len(sec.fns) == 0 {
			continue
		}
		hdr := fmt.Sprintf("  ── %s (%d) ", sec.title, len(sec.fns))
		fill := max(sepWidth-len(hdr)-2, 0)
		sb.WriteString(StyleHeader.Render(hdr) + StyleMeta.Render(strings.Repeat("─", fill)) + "\n")

		for _, fn := range sec.fns {
			selected := pos == m.cursor
			sb.WriteString(m.renderFunction(fn, selected))
			if selected {
				sb.WriteString(m.renderForm(fn))
			}
			pos++
		}
		sb.WriteString("\n")
	}

	ruler := StyleMeta.Render(strings.Repeat("─", sepWidth))
	sb.WriteString(ruler + "\n")
	if m.status != "" {
		sb.WriteString("  " + m.status + "\n")
	}
	sb.WriteString(ruler + "\n\n")

	if m.editing {
		sb.WriteString(StyleMeta.Render("  [ ↑↓ / tab ]") + " field   " +
			StyleInfo.Render("[ Enter ]") + " run   " +
			StyleMeta.Render("[ esc ]") + " back\n")
	} else {
		sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ]") + " navigate   " +
			StyleInfo.Render("[ Enter ]") + " edit   " +
			StyleInfo.Render("[ x ]") + " run   " +
			StyleInfo.Render("[ c ]") + " connect   " +
			StyleMeta.Render("[ q ]") + " quit\n")
	}
	return sb.String()
}

func (m PanelModel) renderFunction(fn *contract.Function, selected bool) string {
	name := StyleValue.Render(fn.Name)
	switch {
	case fn.IsPayable():
		name = StylePayable.Render(fn.Name)
	case !fn.IsReadOnly():
		name = StyleWarning.Render(fn.Name)
	}

	prefix := "    "
	if selected {
		prefix = "  ▸ "
	}
	line := fmt.Sprintf("%s%s  %s(%s)", prefix,
		StyleMeta.Render(hexutil.Encode(fn.Selector())), name, StyleMeta.Render(paramSig(fn.Inputs)))
	if outs := fn.OutputTypes(); len(outs) > 0 {
		line += StyleMeta.Render("  →  " + strings.Join(outs, ", "))
	}
	if n := m.inFlight[fn.Key()]; n > 0 {
		line += StyleInfo.Render(fmt.Sprintf("  ⋯ %d running", n))
	}
	if selected && !m.editing {
		return StyleSelected.Render(line) + "\n"
	}
	return line + "\n"
}

func (m PanelModel) renderForm(fn *contract.Function) string {
	var sb strings.Builder
	for i, f := range fields(fn) {
		cursor := "  "
		if m.editing && i == m.field {
			cursor = "› "
		}
		sb.WriteString(fmt.Sprintf("        %s%-14s %s\n", cursor, StyleMeta.Render(f), StyleValue.Render(m.value(fn, f))))
	}
	if r, ok := m.session.Results.Get(fn.Key()); ok {
		style := StyleSuccess
		if r.Status == contract.StatusError {
			style = StyleError
		}
		sb.WriteString("        " + style.Render(r.Rendered) + "\n")
	}
	return sb.String()
}

// paramSig formats params as "type name, type name".
func paramSig(params []contract.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Name != "" {
			parts[i] = p.Type + " " + p.Name
		} else {
			parts[i] = p.Type
		}
	}
	return strings.Join(parts, ", ")
}

// RunPanel runs the panel full-screen until the user quits.
func RunPanel(ctx context.Context, s *contract.Session) error {
	p := tea.NewProgram(NewPanel(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	return nil
}
