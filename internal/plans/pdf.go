package plans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/fdg312/fitplan/internal/planner"
	"github.com/fdg312/fitplan/internal/storage"
)

const pdfFont = "Helvetica"

// Meals listed first when present, in this order.
var mealOrder = []string{"Breakfast", "Morning Snack", "Lunch", "Afternoon Snack", "Snack", "Snacks", "Dinner", "Evening Snack"}

type pdfDoc struct {
	*gofpdf.Fpdf
	tr func(string) string
}

func renderPDF(plan *storage.Plan, image []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	doc := &pdfDoc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetTitle(plan.Title, true)
	pdf.SetCreator("fitplan", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	doc.heading(plan.Title, 16)
	pdf.SetFont(pdfFont, "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.Cell(0, 5, doc.tr(fmt.Sprintf("%s plan, saved %s", plan.PlanType, plan.CreatedAt.Format("2 Jan 2006"))))
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(10)

	var err error
	switch plan.Format {
	case storage.FormatStructured:
		var parsed planner.GeneratedPlan
		parsed, err = planner.ParsePlanResponse(planner.Kind(plan.PlanType), string(plan.Content))
		if err != nil {
			return nil, fmt.Errorf("stored plan is unreadable: %w", err)
		}
		if plan.PlanType == storage.PlanTypeWorkout {
			doc.workout(parsed)
		} else {
			doc.meal(parsed)
		}
	case storage.FormatRaw:
		var text string
		if err = json.Unmarshal(plan.Content, &text); err != nil {
			return nil, fmt.Errorf("stored plan text is unreadable: %w", err)
		}
		pdf.SetFont(pdfFont, "", 10)
		pdf.MultiCell(0, 5, doc.tr(text), "", "L", false)
	case storage.FormatScreenshot:
		err = doc.screenshot(plan, image)
	default:
		return nil, fmt.Errorf("unknown plan format %q", plan.Format)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *pdfDoc) heading(text string, size float64) {
	d.SetFont(pdfFont, "B", size)
	d.Cell(0, size/2+2, d.tr(text))
	d.Ln(size/2 + 3)
}

func (d *pdfDoc) line(label, value string) {
	if value == "" {
		return
	}
	d.SetFont(pdfFont, "B", 10)
	d.Cell(35, 6, d.tr(label))
	d.SetFont(pdfFont, "", 10)
	d.Cell(0, 6, d.tr(value))
	d.Ln(6)
}

func (d *pdfDoc) bullets(items []string) {
	d.SetFont(pdfFont, "", 10)
	for _, item := range items {
		d.MultiCell(0, 5, d.tr("- "+item), "", "L", false)
	}
	d.Ln(3)
}

func (d *pdfDoc) workout(plan planner.GeneratedPlan) {
	d.line("Type", text(plan["type"]))
	d.line("Level", text(plan["level"]))
	d.line("Goal", text(plan["goal"]))
	if v := text(plan["duration"]); v != "" {
		d.line("Duration", v+" min")
	}
	d.line("Intensity", text(plan["intensity"]))
	d.line("Preference", text(plan["preference"]))
	if areas := texts(plan["focusAreas"]); len(areas) > 0 {
		d.line("Focus areas", strings.Join(areas, ", "))
	}
	d.Ln(4)

	d.phase("Warm-up", plan["warmup"])

	d.heading("Main workout", 12)
	d.SetFont(pdfFont, "B", 9)
	d.CellFormat(80, 6, "Exercise", "1", 0, "L", false, 0, "")
	d.CellFormat(20, 6, "Sets", "1", 0, "C", false, 0, "")
	d.CellFormat(20, 6, "Reps", "1", 0, "C", false, 0, "")
	d.CellFormat(40, 6, "Rest", "1", 1, "C", false, 0, "")
	d.SetFont(pdfFont, "", 9)
	rows, _ := plan["mainWorkout"].([]any)
	for _, r := range rows {
		row, _ := r.(map[string]any)
		d.CellFormat(80, 6, d.tr(text(row["name"])), "1", 0, "L", false, 0, "")
		d.CellFormat(20, 6, text(row["sets"]), "1", 0, "C", false, 0, "")
		d.CellFormat(20, 6, d.tr(text(row["reps"])), "1", 0, "C", false, 0, "")
		d.CellFormat(40, 6, d.tr(text(row["rest"])), "1", 1, "C", false, 0, "")
	}
	d.Ln(5)

	d.phase("Cool-down", plan["cooldown"])

	if tips := texts(plan["hydrationTips"]); len(tips) > 0 {
		d.heading("Hydration", 12)
		d.bullets(tips)
	}
	if recs := texts(plan["recommendations"]); len(recs) > 0 {
		d.heading("Recommendations", 12)
		d.bullets(recs)
	}
}

func (d *pdfDoc) phase(title string, v any) {
	phase, ok := v.(map[string]any)
	if !ok {
		return
	}
	if minutes := text(phase["duration"]); minutes != "" {
		title = fmt.Sprintf("%s (%s min)", title, minutes)
	}
	d.heading(title, 12)
	d.bullets(texts(phase["exercises"]))
}

func (d *pdfDoc) meal(plan planner.GeneratedPlan) {
	total := 0.0
	for _, mealType := range orderedMeals(plan) {
		d.heading(mealType, 12)
		d.SetFont(pdfFont, "B", 9)
		d.CellFormat(55, 6, "Item", "1", 0, "L", false, 0, "")
		d.CellFormat(105, 6, "Description", "1", 0, "L", false, 0, "")
		d.CellFormat(25, 6, "kcal", "1", 1, "R", false, 0, "")
		d.SetFont(pdfFont, "", 9)

		items, _ := plan[mealType].([]any)
		for _, it := range items {
			item, _ := it.(map[string]any)
			if n, ok := item["Calories"].(json.Number); ok {
				if f, err := n.Float64(); err == nil {
					total += f
				}
			}
			d.CellFormat(55, 6, d.tr(text(item["Name"])), "1", 0, "L", false, 0, "")
			d.CellFormat(105, 6, d.tr(truncate(text(item["Description"]), 70)), "1", 0, "L", false, 0, "")
			d.CellFormat(25, 6, text(item["Calories"]), "1", 1, "R", false, 0, "")
		}
		d.Ln(4)
	}
	d.line("Total", fmt.Sprintf("%.0f kcal", total))
}

func (d *pdfDoc) screenshot(plan *storage.Plan, image []byte) error {
	imageType := "PNG"
	if plan.ContentType != nil && *plan.ContentType == "image/jpeg" {
		imageType = "JPG"
	}
	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	name := plan.ID.String()
	d.RegisterImageOptionsReader(name, opts, bytes.NewReader(image))
	if err := d.Error(); err != nil {
		return fmt.Errorf("screenshot is not a readable %s: %w", imageType, err)
	}
	left, _, right, _ := d.GetMargins()
	pageW, _ := d.GetPageSize()
	d.ImageOptions(name, left, d.GetY(), pageW-left-right, 0, false, opts, 0, "")
	return nil
}

func orderedMeals(plan planner.GeneratedPlan) []string {
	seen := make(map[string]bool, len(plan))
	var out []string
	for _, m := range mealOrder {
		if _, ok := plan[m]; ok {
			out = append(out, m)
			seen[m] = true
		}
	}
	var rest []string
	for m := range plan {
		if !seen[m] {
			rest = append(rest, m)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func texts(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
