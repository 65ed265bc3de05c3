package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/stockwatch/internal/theme"
)

// SubmitMsg is dispatched when the user submits the login form.
type SubmitMsg struct {
	Email    string
	Password string
}

// RegisterMsg is dispatched when the user submits the registration form.
type RegisterMsg struct {
	Username string
	Email    string
	Password string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	username string
	email    string
	password string
}

// Model is the Bubble Tea model for the login / registration form.
type Model struct {
	form         *huh.Form
	fb           *formBindings
	registerMode bool
	errMessage   string
	width        int
	height       int
}

// New creates a new login form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form in login mode.
func (m *Model) Start() tea.Cmd {
	m.registerMode = false
	m.errMessage = ""
	m.fb.password = ""
	m.form = m.buildLoginForm()
	return m.form.Init()
}

// StartRegister initializes the form in registration mode.
func (m *Model) StartRegister() tea.Cmd {
	m.registerMode = true
	m.errMessage = ""
	m.fb.password = ""
	m.form = m.buildRegisterForm()
	return m.form.Init()
}

// SetError displays an authentication failure message and re-arms the
// form so the user can retry.
func (m *Model) SetError(message string) tea.Cmd {
	m.errMessage = message
	if m.registerMode {
		m.form = m.buildRegisterForm()
	} else {
		m.form = m.buildLoginForm()
	}
	return m.form.Init()
}

// Update handles messages for the login form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	// ctrl+r toggles between login and registration.
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+r" {
		if m.registerMode {
			return m, m.Start()
		}
		return m, m.StartRegister()
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		// Re-arm so the form stays usable.
		return m, m.Start()
	}

	return m, cmd
}

// handleSubmit dispatches the submit message for the current mode.
func (m *Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	if m.registerMode {
		return func() tea.Msg {
			return RegisterMsg{
				Username: strings.TrimSpace(fb.username),
				Email:    strings.TrimSpace(fb.email),
				Password: fb.password,
			}
		}
	}
	return func() tea.Msg {
		return SubmitMsg{
			Email:    strings.TrimSpace(fb.email),
			Password: fb.password,
		}
	}
}

// View renders the login form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Sign in"
	if m.registerMode {
		titleText = "Create account"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n"
	if m.errMessage != "" {
		content += lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render(m.errMessage) + "\n\n"
	}
	content += m.form.View()
	content += "\n" + theme.HelpStyle.Render("ctrl+r switch login/register")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateRequired("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("password")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m *Model) buildRegisterForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.fb.username).
				Validate(validateRequired("username")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateRequired("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("password")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m *Model) formWidth() int {
	w := m.width - 8
	if w < 30 {
		w = 30
	}
	if w > 60 {
		w = 60
	}
	return w
}

// validateRequired rejects empty input for the named field.
func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
