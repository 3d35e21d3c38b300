// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ToolchainConfigInvalidId Id = iota + 1
	UnknownVersionId
	InterpreterNotFoundId
	ProgramNotFoundId
	CommandFailedId
	CommandTimedOutId
	VirtualenvFailedId
	SettingsLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation shipped with the project
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown. stylePath is a glamour
// standard style name ("dark", "light", "notty") or a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, links := range [][]HttpLink{i.docLinks, i.extLinks} {
			for _, link := range links {
				md.WriteString("- <" + string(link) + ">\n")
			}
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	toolchainConfigInvalidIssue = &Issue{
		id: ToolchainConfigInvalidId,
		mdMsg: `
# Malformed toolchain configuration

One of the toolchain files could not be read. Every file on the search path
must be a flat JSON object that maps a version label to an interpreter path.

## Example
~~~json
{
  "2.7": "/opt/python2.7/bin/python",
  "3.12": "/usr/bin/python3.12"
}
~~~

## Things you can try
- See which files are consulted, in precedence order:
~~~
$ cish config path
~~~
- Remove trailing commas and make sure every value is a non-empty string.`,
	}

	unknownVersionIssue = &Issue{
		id: UnknownVersionId,
		mdMsg: `
# Unknown toolchain version

The requested label is not defined in any toolchain file.

## Things you can try
- List the labels that are defined:
~~~
$ cish envs
~~~
- Add the label to your user file (later files override earlier ones), or
  point ` + "`CISH_TOOLCHAINS`" + ` at a file that defines it.
- Use the label ` + "`default`" + ` to run the interpreter found on PATH.`,
	}

	interpreterNotFoundIssue = &Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# Interpreter not found

The toolchain is defined, but its interpreter does not exist on this machine
or is not executable.

## Things you can try
- Check the path recorded for the label:
~~~
$ cish envs --output json
~~~
- Install the toolchain, or fix the path in the file that defines it.`,
	}

	programNotFoundIssue = &Issue{
		id: ProgramNotFoundId,
		mdMsg: `
# Program not found in toolchain

The program was resolved inside the toolchain's tool directory, but no such
file exists there.

## Things you can try
- Show where cish looked:
~~~
$ cish which <label> <program> --search
~~~
- Install the package that provides the program, for example:
~~~
$ cish pip <label> -- install <package>
~~~`,
	}

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# Command failed

The program ran but exited with a nonzero status. Its standard error is shown
above.

## Things you can try
- Re-run with ` + "`--no-check`" + ` to treat the exit status as data.
- Re-run with ` + "`--verbose`" + ` to log the exact command line.`,
	}

	commandTimedOutIssue = &Issue{
		id: CommandTimedOutId,
		mdMsg: `
# Command timed out

The program did not finish within the configured timeout and was killed.

## Things you can try
- Raise the limit for one run with ` + "`--timeout 30m`" + `.
- Raise or remove it for all runs with ` + "`timeout`" + ` in config.cue or ` + "`CISH_TIMEOUT`" + `.`,
	}

	virtualenvFailedIssue = &Issue{
		id: VirtualenvFailedId,
		mdMsg: `
# Virtual environment creation failed

The creation tool exited with an error or did not produce an interpreter.

## Things you can try
- With ` + "`venv`" + `, make sure the base toolchain ships the venv module
  (some distributions package it separately, e.g. python3-venv).
- With ` + "`virtualenv`" + `, install it into the base toolchain first:
~~~
$ cish pip <label> -- install virtualenv
~~~
- Pass ` + "`--clear`" + ` to start from an empty directory.`,
	}

	settingsLoadFailedIssue = &Issue{
		id: SettingsLoadFailedId,
		mdMsg: `
# Failed to load settings

config.cue does not match the settings schema, or a CISH_* environment
variable holds an invalid value.

## Things you can try
- Print the effective settings and their location:
~~~
$ cish config show
$ cish config path
~~~
- Regenerate a default file with ` + "`cish config init`" + ` after moving the broken one away.`,
	}

	issues = map[Id]*Issue{
		toolchainConfigInvalidIssue.Id(): toolchainConfigInvalidIssue,
		unknownVersionIssue.Id():         unknownVersionIssue,
		interpreterNotFoundIssue.Id():    interpreterNotFoundIssue,
		programNotFoundIssue.Id():        programNotFoundIssue,
		commandFailedIssue.Id():          commandFailedIssue,
		commandTimedOutIssue.Id():        commandTimedOutIssue,
		virtualenvFailedIssue.Id():       virtualenvFailedIssue,
		settingsLoadFailedIssue.Id():     settingsLoadFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
