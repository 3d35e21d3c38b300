// SPDX-License-Identifier: MPL-2.0

package procexec

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// CommandLine renders an argument vector as a single Bash-quoted line.
// It is used for logs and messages only; invocations never go through a shell.
func CommandLine(path string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteWord(path))
	for _, arg := range args {
		parts = append(parts, quoteWord(arg))
	}
	return strings.Join(parts, " ")
}

func quoteWord(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Quote rejects strings Bash cannot represent (e.g. NUL bytes).
		return strconv.Quote(s)
	}
	return q
}
