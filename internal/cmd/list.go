package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/Alia5/factorygen/internal/codegen/generator"
)

var stdout io.Writer = os.Stdout

// isTerminal is replaced in tests.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type List struct {
	Inputs `embed:""`
	Format string `help:"Output format: auto picks table on a terminal and plain otherwise" enum:"auto,table,plain,json" default:"auto" env:"FACTORYGEN_LIST_FORMAT"`
}

// Row is one line of the dispatch table.
type Row struct {
	Interface  string `json:"interface"`
	ID         int    `json:"id"`
	Producer   string `json:"producer"`
	ShadowedBy string `json:"shadowedBy,omitempty"`
}

// Run is called by Kong when the list command is executed.
func (c *List) Run(ctx context.Context, logger *slog.Logger) error {
	res, err := generator.New(c.config(), logger, nil).Plan(ctx)
	if err != nil {
		return report(logger, err)
	}
	rows := DispatchTable(res)

	format := c.Format
	if format == "auto" || format == "" {
		format = "plain"
		if isTerminal(stdout) {
			format = "table"
		}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "table":
		_, err := fmt.Fprintln(stdout, renderTable(rows))
		return err
	default:
		return writePlain(stdout, rows)
	}
}

// DispatchTable flattens a pass into rows in dispatch order: interfaces in
// first-seen order, producers in registration order, ids as declared.
func DispatchTable(res *generator.Result) []Row {
	var rows []Row
	if res.Registry == nil {
		return rows
	}
	for _, iface := range res.Registry.Interfaces() {
		key := iface.QualifiedName()

		shadowed := make(map[string]string) // producer + id -> owner
		for _, o := range res.Overlaps[key] {
			for _, s := range o.Shadowed {
				shadowed[s.QualifiedName()+"#"+strconv.Itoa(o.ID)] = o.Owner.QualifiedName()
			}
		}

		for e := range res.Registry.EntriesFor(key) {
			for _, id := range e.IDs() {
				rows = append(rows, Row{
					Interface:  key,
					ID:         id,
					Producer:   e.QualifiedName(),
					ShadowedBy: shadowed[e.QualifiedName()+"#"+strconv.Itoa(id)],
				})
			}
		}
	}
	return rows
}

func writePlain(w io.Writer, rows []Row) error {
	for _, r := range rows {
		line := strings.Join([]string{r.Interface, strconv.Itoa(r.ID), r.Producer, r.ShadowedBy}, "\t")
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, "\t")); err != nil {
			return err
		}
	}
	return nil
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	shadowedStyle = cellStyle.Foreground(lipgloss.Color("#7f849c")).Strikethrough(true)
)

func renderTable(rows []Row) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#585b70"))).
		Headers("INTERFACE", "ID", "PRODUCER", "SHADOWED BY")

	for _, r := range rows {
		t.Row(r.Interface, strconv.Itoa(r.ID), r.Producer, r.ShadowedBy)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row >= 0 && row < len(rows) && rows[row].ShadowedBy != "":
			return shadowedStyle
		default:
			return cellStyle
		}
	})
	return t.Render()
}
