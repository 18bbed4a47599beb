package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/macropower/gitprof/pkg/yaml"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")

	AllFormats = []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	if slices.Contains(AllFormats, string(f)) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q, must be one of %v", ErrUnknownFormat, s, AllFormats)
}

// addOutputFlag registers -o/--output on cmd.
func addOutputFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVarP(p, "output", "o", string(FormatText),
		fmt.Sprintf("Output format, one of: %s", AllFormats))
	must(cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))
}

// Printer writes values in a [Format].
type Printer struct {
	w      io.Writer
	format Format
}

func NewPrinter(w io.Writer, format string) (*Printer, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	return &Printer{w: w, format: f}, nil
}

// Print writes v as JSON or YAML, or calls text for [FormatText].
func (p *Printer) Print(v any, text func(w io.Writer) error) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

	case FormatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		_, err = p.w.Write(b)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}

	case FormatText:
		return text(p.w)
	}

	return nil
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Render()
}

func writeLines(w io.Writer, lines ...string) error {
	for _, l := range lines {
		_, err := fmt.Fprintln(w, l)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	return nil
}

func formatScore(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
