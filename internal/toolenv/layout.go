// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"path"
	"strings"

	"github.com/cish/cish/pkg/platform"
)

// interpreterName is the logical program name that always means the
// environment's own interpreter.
const interpreterName = "python"

type (
	// layout derives toolchain directories from an interpreter path and
	// resolves program names. Implementations are pure string functions so
	// that both families can be verified on any host.
	layout interface {
		// root is the installation root (the virtualenv directory, or the
		// directory that holds bin/ or Scripts\).
		root(interpreter string) string
		toolDir(interpreter string) string
		libraryPath(interpreter string) string
		// program resolves a logical name inside toolDir.
		program(toolDir, name string) string
		// venvInterpreter is the interpreter a virtual environment in dir has.
		venvInterpreter(dir string) string
		// isInterpreter reports whether name refers to the interpreter itself.
		isInterpreter(interpreter, name string) bool
		// pathEntries are prepended to PATH for child processes.
		pathEntries(interpreter string) []string
	}

	posixLayout struct{}

	windowsLayout struct{}
)

func (posixLayout) root(interpreter string) string {
	dir := path.Dir(interpreter)
	if path.Base(dir) == "bin" {
		return path.Dir(dir)
	}
	return dir
}

func (posixLayout) toolDir(interpreter string) string {
	return path.Dir(interpreter)
}

func (l posixLayout) libraryPath(interpreter string) string {
	return path.Join(l.root(interpreter), "lib")
}

func (posixLayout) program(toolDir, name string) string {
	if path.IsAbs(name) {
		return name
	}
	return path.Join(toolDir, name)
}

func (posixLayout) venvInterpreter(dir string) string {
	return path.Join(dir, "bin", interpreterName)
}

func (posixLayout) isInterpreter(interpreter, name string) bool {
	return name == interpreterName || name == path.Base(interpreter)
}

func (l posixLayout) pathEntries(interpreter string) []string {
	return []string{l.toolDir(interpreter)}
}

func (windowsLayout) root(interpreter string) string {
	dir := winDir(interpreter)
	if strings.EqualFold(winBase(dir), "Scripts") {
		return winDir(dir)
	}
	return dir
}

func (l windowsLayout) toolDir(interpreter string) string {
	dir := winDir(interpreter)
	if strings.EqualFold(winBase(dir), "Scripts") {
		return dir
	}
	return winJoin(l.root(interpreter), "Scripts")
}

func (l windowsLayout) libraryPath(interpreter string) string {
	return winJoin(l.root(interpreter), "Lib")
}

func (windowsLayout) program(toolDir, name string) string {
	if !hasExeSuffix(name) {
		name += platform.ExeSuffix
	}
	if winIsAbs(name) {
		return name
	}
	return winJoin(toolDir, name)
}

func (windowsLayout) venvInterpreter(dir string) string {
	return winJoin(dir, "Scripts", interpreterName+platform.ExeSuffix)
}

func (windowsLayout) isInterpreter(interpreter, name string) bool {
	bare := trimExe(name)
	return strings.EqualFold(bare, interpreterName) || strings.EqualFold(bare, trimExe(winBase(interpreter)))
}

func (l windowsLayout) pathEntries(interpreter string) []string {
	root, tools := l.root(interpreter), l.toolDir(interpreter)
	if strings.EqualFold(root, tools) {
		return []string{tools}
	}
	return []string{tools, root}
}

func hasExeSuffix(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), platform.ExeSuffix)
}

func trimExe(name string) string {
	if hasExeSuffix(name) {
		return name[:len(name)-len(platform.ExeSuffix)]
	}
	return name
}

// Windows path helpers accept both separators and always produce
// backslashes, independent of the host OS.

func isWinSep(c byte) bool { return c == '\\' || c == '/' }

func winDir(p string) string {
	i := len(p) - 1
	for i >= 0 && !isWinSep(p[i]) {
		i--
	}
	if i < 0 {
		return "."
	}
	dir := p[:i]
	// Keep the separator of a drive root: C:\python.exe -> C:\
	if dir == "" || (len(dir) == 2 && dir[1] == ':') {
		return p[:i+1]
	}
	return dir
}

func winBase(p string) string {
	p = strings.TrimRight(p, `\/`)
	if i := strings.LastIndexAny(p, `\/`); i >= 0 {
		return p[i+1:]
	}
	return p
}

func winJoin(elem ...string) string {
	var sb strings.Builder
	for _, e := range elem {
		if sb.Len() > 0 {
			e = strings.TrimLeft(e, `\/`)
		}
		if e == "" {
			continue
		}
		if sb.Len() > 0 && !isWinSep(sb.String()[sb.Len()-1]) {
			sb.WriteByte('\\')
		}
		sb.WriteString(strings.ReplaceAll(e, "/", `\`))
	}
	return sb.String()
}

func winIsAbs(p string) bool {
	return (len(p) >= 3 && p[1] == ':' && isWinSep(p[2])) || strings.HasPrefix(p, `\\`)
}
