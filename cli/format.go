package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/output"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = amountStyle.Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// grid is a table being filled row by row. Amount columns are right-aligned
// and total rows are bold.
type grid struct {
	table  *table.Table
	data   *table.StringData
	totals map[int]bool
}

func newGrid(headers []string, amountCols ...int) *grid {
	isAmount := make(map[int]bool, len(amountCols))
	for _, c := range amountCols {
		isAmount[c] = true
	}
	g := &grid{data: table.NewStringData(), totals: map[int]bool{}}
	g.table = table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Data(g.data).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case isAmount[col] && g.totals[row]:
				return totalStyle
			case isAmount[col]:
				return amountStyle
			default:
				return cellStyle
			}
		})
	return g
}

func (g *grid) row(cells ...string) {
	g.data.Append(cells)
}

func (g *grid) total(cells ...string) {
	g.totals[g.data.Rows()] = true
	g.data.Append(cells)
}

func (g *grid) render(w io.Writer) {
	_, _ = fmt.Fprintln(w, g.table.Render())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderEntries(w io.Writer, entries []ledger.Entry) {
	g := newGrid([]string{"ID", "Created", "Category", "Label", "Amount", "Linked to"}, 4)
	for _, e := range entries {
		g.row(
			shortID(e.ID),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(e.Category),
			output.PadRight(e.Label, 40),
			output.FormatAmount(e.Amount),
			shortID(e.LinkedTo),
		)
	}
	g.render(w)
}

func renderBalanceSheet(w io.Writer, bs *ledger.BalanceSheet) {
	title := "Balance sheet"
	if bs.Closed {
		title += " (closed)"
	}
	_, _ = fmt.Fprintln(w, titleStyle.Render(title))

	side := func(name string, sections []ledger.BalanceSheetSection, total decimal.Decimal) {
		g := newGrid([]string{name, "", "Amount"}, 2)
		for _, sec := range sections {
			for _, line := range sec.Lines {
				g.row(sectionLabel(sec.Section), line.Label, output.FormatAmount(line.Amount))
			}
			g.total("", "Total "+sectionLabel(sec.Section), output.FormatAmount(sec.Total))
		}
		g.total("Total", "", output.FormatAmount(total))
		g.render(w)
	}
	side("Assets", bs.Assets, bs.TotalAssets)
	side("Liabilities", bs.Liabilities, bs.TotalLiabilities)

	if bs.Balanced() {
		printSuccess(w, "Balanced")
	} else {
		printError(w, fmt.Sprintf("Not balanced: assets exceed liabilities by %s", output.FormatAmount(bs.Imbalance())))
	}
}

func sectionLabel(s ledger.Section) string {
	return strings.ReplaceAll(string(s), "_", " ")
}

func renderIncomeStatement(w io.Writer, is *ledger.IncomeStatement) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("Income statement"))

	g := newGrid([]string{"", "Label", "Amount"}, 2)
	for _, l := range is.Products {
		g.row("Products", l.Label, output.FormatAmount(l.Amount))
	}
	g.total("", "Total products", output.FormatAmount(is.TotalProducts))
	for _, l := range is.Charges {
		g.row("Charges", l.Label, output.FormatAmount(l.Amount))
	}
	g.total("", "Total charges", output.FormatAmount(is.TotalCharges))
	g.total("Net result", "", output.FormatAmount(is.NetResult))
	g.render(w)
}

func renderCashflow(w io.Writer, cf *ledger.Cashflow) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("Cash-flow statement"))

	g := newGrid([]string{"Activity", "Detail", "Amount"}, 2)
	rows := []struct {
		activity, detail string
		amount           decimal.Decimal
		total            bool
	}{
		{"Operating", "Client collections", cf.ClientCollections, false},
		{"", "Supplier payments", cf.SupplierPayments.Neg(), false},
		{"", "Operating charges paid", cf.OperatingChargesPaid.Neg(), false},
		{"", "Interest paid", cf.InterestPaid.Neg(), false},
		{"", "Net operating", cf.Operating, true},
		{"Investing", "Investments recorded", cf.InvestmentsRecorded.Neg(), false},
		{"", "Financed by payables", cf.OffsetByPayables, false},
		{"", "Financed by loans", cf.OffsetByLoans, false},
		{"", "Net investing", cf.Investing, true},
		{"Financing", "Capital contributions", cf.CapitalContributions, false},
		{"", "Loans received", cf.LoansReceived, false},
		{"", "Repayments", cf.Repayments, false},
		{"", "Net financing", cf.Financing, true},
		{"Net change in cash", "", cf.Net, true},
	}
	for _, r := range rows {
		if r.total {
			g.total(r.activity, r.detail, output.FormatAmount(r.amount))
			continue
		}
		g.row(r.activity, r.detail, output.FormatAmount(r.amount))
	}
	g.render(w)
}

func renderCategories(w io.Writer) {
	g := newGrid([]string{"Key", "Label", "Group", "Section", "Statements"})
	for _, row := range categoryRows() {
		statements := make([]string, 0, len(row.Statements))
		for _, s := range row.Statements {
			statements = append(statements, string(s))
		}
		g.row(string(row.Category), row.Label, string(row.Group), sectionLabel(row.Section), strings.Join(statements, ", "))
	}
	g.render(w)
}

type categoryRow struct {
	ledger.CategoryInfo
	Statements []ledger.Statement `json:"statements"`
}

func categoryRows() []categoryRow {
	taxonomy := ledger.Taxonomy()
	rows := make([]categoryRow, len(taxonomy))
	for i, info := range taxonomy {
		rows[i] = categoryRow{CategoryInfo: info, Statements: info.Category.Statements()}
	}
	return rows
}
