// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/cish/cish/internal/toolenv"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputTOML = "toml"
)

type (
	// envsReport is the machine-readable form of `cish envs`.
	envsReport struct {
		Default     string      `json:"default" toml:"default"`
		SearchPaths []string    `json:"search_paths" toml:"search_paths"`
		Toolchains  []toolchain `json:"toolchains" toml:"toolchain"`
	}

	toolchain struct {
		Label       string `json:"label" toml:"label"`
		Interpreter string `json:"interpreter" toml:"interpreter"`
		Source      string `json:"source" toml:"source"`
		Exists      bool   `json:"exists" toml:"exists"`
	}
)

func newEnvsCommand(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "envs",
		Short: "List configured toolchains",
		Long: `List the toolchains defined by the toolchain files on the search path,
after later files have overridden earlier ones, plus the interpreter the
"default" label resolves to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case outputText, outputJSON, outputTOML:
			default:
				return fmt.Errorf("invalid --output %q (want text, json or toml)", output)
			}

			cfg, err := app.settings(cmd.Context())
			if err != nil {
				return err
			}
			reg, paths, err := app.registry(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return writeEnvs(app.stdout, output, buildEnvsReport(reg, paths))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or toml")
	return cmd
}

func buildEnvsReport(reg *toolenv.Registry, paths []string) envsReport {
	report := envsReport{SearchPaths: paths}
	if _, defined := reg.Entry(defaultLabel); !defined {
		report.Default = reg.Default().Interpreter()
	}
	for _, label := range reg.Labels() {
		entry, _ := reg.Entry(label)
		_, statErr := os.Stat(entry.Interpreter)
		report.Toolchains = append(report.Toolchains, toolchain{
			Label:       string(entry.Label),
			Interpreter: entry.Interpreter,
			Source:      entry.Source,
			Exists:      statErr == nil,
		})
	}
	return report
}

func writeEnvs(w io.Writer, format string, report envsReport) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case outputTOML:
		return toml.NewEncoder(w).Encode(report)
	}

	if len(report.Toolchains) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("No toolchains configured. Searched:"))
		for _, p := range report.SearchPaths {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}

	width := len(defaultLabel)
	for _, tc := range report.Toolchains {
		width = max(width, len(tc.Label))
	}
	label := labelColumnStyle.Width(width + 2)

	for _, tc := range report.Toolchains {
		interp := SuccessStyle.Render(tc.Interpreter)
		if !tc.Exists {
			interp = WarningStyle.Render(tc.Interpreter + " (missing)")
		}
		fmt.Fprintf(w, "%s%s  %s\n", label.Render(tc.Label), interp, SubtitleStyle.Render(tc.Source))
	}
	if report.Default != "" {
		fmt.Fprintf(w, "%s%s  %s\n", label.Render(string(defaultLabel)), SuccessStyle.Render(report.Default), SubtitleStyle.Render("(current interpreter)"))
	}
	return nil
}
