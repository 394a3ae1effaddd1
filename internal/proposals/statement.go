package proposals

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Simplici0/staffquote/internal/pricing"
)

// WriteStatement renders the detailed plain-text statement of a stored
// proposal. It only formats: every figure comes from the snapshot.
func WriteStatement(w io.Writer, snap Snapshot) error {
	bw := bufio.NewWriter(w)
	res := snap.Result

	fmt.Fprintf(bw, "Proposta %s\n", snap.ID)
	if snap.Title != "" {
		fmt.Fprintf(bw, "Título: %s\n", snap.Title)
	}
	if snap.Client != "" {
		fmt.Fprintf(bw, "Cliente: %s\n", snap.Client)
	}
	if snap.CreatedAt != "" {
		fmt.Fprintf(bw, "Emitida em: %s\n", snap.CreatedAt)
	}

	for i, p := range res.Positions {
		writePosition(bw, i+1, p)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Resumo:")
	line(bw, "Total mensal", res.Summary.MonthlyTotal)
	line(bw, "Total anual", res.Summary.AnnualTotal)
	line(bw, "Tributos (mensal)", res.Summary.TaxTotal)
	line(bw, "Lucro (mensal)", res.Summary.ProfitTotal)

	return bw.Flush()
}

func writePosition(w io.Writer, n int, p pricing.PositionResult) {
	req := p.Request
	b := p.Breakdown

	place := req.State
	if req.City != "" {
		place = req.City + "/" + req.State
	}
	title := req.Function
	if req.Role != "" {
		title += " (" + req.Role + ")"
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Posto %d: %s - %s\n", n, title, place)
	fmt.Fprintf(w, "  Escala: %s, %s-%s, %d posto(s)\n", strings.Join(req.WorkDays, "/"), req.StartTime, req.EndTime, req.Headcount)
	switch {
	case p.FromDefaults:
		fmt.Fprintln(w, "  Regra: parâmetros padrão")
	case p.FallbackRule:
		fmt.Fprintf(w, "  Regra: %s (regra padrão, sem correspondência)\n", p.RuleID)
	default:
		fmt.Fprintf(w, "  Regra: %s\n", p.RuleID)
	}

	fmt.Fprintln(w, "  Remuneração:")
	line(w, "    Salário base", b.BaseWage)
	optional(w, "    Gratificação", b.RoleBonus)
	optional(w, "    Insalubridade", b.Additions.Unhealthy)
	optional(w, "    Periculosidade", b.Additions.Hazard)
	optional(w, "    Adicional noturno", b.Additions.NightShift)
	optional(w, "    Intrajornada", b.Additions.MealBreak)
	optional(w, "    DSR", b.Additions.RestDayReflex)
	optional(w, "    Adicional de copa", b.Additions.PantryAllowance)
	line(w, "    Total", b.Remuneration)

	fmt.Fprintln(w, "  Benefícios:")
	optional(w, "    Vale-refeição", b.Benefits.MealVoucher)
	optional(w, "    Vale-transporte", b.Benefits.Transport)
	optional(w, "    Cesta básica", b.Benefits.FoodBasket)
	optional(w, "    Uniforme", b.Benefits.Uniform)
	optional(w, "    Adicional de copa", b.Benefits.PantryAllowance)
	optional(w, "    Refeição em férias", b.Benefits.VacationMeal)
	optional(w, "    Desconto refeição", b.Benefits.MealDiscount)
	optional(w, "    Desconto transporte", b.Benefits.TransportDiscount)
	line(w, "    Total", b.Benefits.Total)

	line(w, "  Encargos sociais", b.Charges.Total)
	line(w, "  Provisões", b.Provisions.Total)
	line(w, "  Custos operacionais", b.Operational.Total)
	optional(w, "  Insumos", b.Materials)
	line(w, "  Custo operacional", b.OperatingCost)
	line(w, "  Lucro", b.Profit)
	line(w, "  Tributos ("+formatPercent(b.TaxRate)+")", b.Tax)
	line(w, "  Preço unitário", b.UnitPrice)
	line(w, "  Preço total", p.TotalPrice)
}

func line(w io.Writer, label string, v float64) {
	fmt.Fprintf(w, "%-30s %s\n", label, FormatBRL(v))
}

func optional(w io.Writer, label string, v float64) {
	if v != 0 {
		line(w, label, v)
	}
}

// FormatBRL formats an amount as Brazilian reais, e.g. "R$ 1.234,56".
// Amounts that round to zero cents carry no sign.
func FormatBRL(v float64) string {
	cents := math.Round(v * 100)
	if cents == 0 {
		return "R$ 0,00"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
	}
	return sign + "R$ " + humanize.FormatFloat("#.###,##", math.Abs(cents)/100)
}

func formatPercent(rate float64) string {
	return humanize.FormatFloat("#,##", rate*100) + "%"
}
