package main

import (
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	helpHeaderStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	helpCmdStyle    = lipgloss.NewStyle().Foreground(colorPrimaryLight)
)

// Root command groups, in the order help lists them.
var commandGroups = []*cobra.Group{
	{ID: "content", Title: "Content Commands:"},
	{ID: "remote", Title: "Remote Commands:"},
	{ID: "tools", Title: "Integration Commands:"},
}

// groupOf files each root subcommand under a group. Unlisted commands
// (help, completion) fall under "Additional Commands".
var groupOf = map[string]string{
	"generate":  "content",
	"theme":     "content",
	"reconcile": "content",
	"validate":  "content",
	"outline":   "content",
	"sync":      "remote",
	"wipe":      "remote",
	"status":    "remote",
	"mcp":       "tools",
	"version":   "tools",
}

func styledWith(style lipgloss.Style) func(string) string {
	return func(s string) string {
		if isTTY() {
			return style.Render(s)
		}
		return s
	}
}

var helpTemplateFuncs = template.FuncMap{
	"header": styledWith(helpHeaderStyle),
	"cmd":    styledWith(helpCmdStyle),
	"muted":  styledWith(mutedStyle),
}

// helpTemplate lists grouped commands first; local and inherited flags
// follow. Leaf commands show their examples.
const helpTemplate = `{{with .Long}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{header "Usage:"}}
  {{cmd .UseLine}}{{if .HasAvailableSubCommands}}
  {{cmd .CommandPath}} {{muted "[command]"}}{{end}}

{{end}}{{if gt (len .Aliases) 0}}{{header "Aliases:"}}
  {{.NameAndAliases}}

{{end}}{{if .HasExample}}{{header "Examples:"}}
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{range $group := .Groups}}{{header $group.Title}}
{{range $cmds}}{{if and (eq .GroupID $group.ID) .IsAvailableCommand}}  {{cmd (rpad .Name .NamePadding)}} {{.Short}}
{{end}}{{end}}
{{end}}{{if not .AllChildCommandsHaveGroup}}{{header "Additional Commands:"}}
{{range $cmds}}{{if and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help"))}}  {{cmd (rpad .Name .NamePadding)}} {{.Short}}
{{end}}{{end}}
{{end}}{{end}}{{if .HasAvailableLocalFlags}}{{header "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}{{header "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}{{muted "Run"}} {{cmd (printf "%s <command> --help" .CommandPath)}} {{muted "for command details."}}
{{end}}`

// initHelp groups the root's subcommands and installs the styled help
// template on every command. It is safe to call more than once.
func initHelp(root *cobra.Command) {
	for name, fn := range helpTemplateFuncs {
		cobra.AddTemplateFunc(name, fn)
	}
	for _, g := range commandGroups {
		if !root.ContainsGroup(g.ID) {
			root.AddGroup(g)
		}
	}
	for _, c := range root.Commands() {
		if id, ok := groupOf[c.Name()]; ok {
			c.GroupID = id
		}
	}
	setHelpTemplate(root)
}

func setHelpTemplate(cmd *cobra.Command) {
	cmd.SetHelpTemplate(helpTemplate)
	for _, sub := range cmd.Commands() {
		setHelpTemplate(sub)
	}
}
