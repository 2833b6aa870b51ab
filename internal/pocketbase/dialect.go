package pocketbase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Status texts written by the status-field dialect.
const (
	estadoDisponible = "Disponible"
	estadoPrestadoA  = "Prestado a "
)

// dialect names the collection fields that carry each canonical field.
// status is empty when the collection has no free-text status field and
// the status is derived from the borrower.
type dialect struct {
	name      string
	title     string
	category  string
	box       string
	borrower  string
	status    string
	author    string
	publisher string
	year      string
	isbn      string
	notes     string
	cover     string
	summary   string
}

var dialects = map[string]dialect{
	types.DialectLoanField: {
		name: types.DialectLoanField, title: "titulo", category: "categoria", box: "caja",
		borrower: "prestado", author: "autor", publisher: "editorial", year: "anio",
		isbn: "isbn", notes: "notas", cover: "urldelaimagen", summary: "resumen",
	},
	types.DialectStatusField: {
		name: types.DialectStatusField, title: "titulo", category: "categoria", box: "caja",
		borrower: "prestadoa", status: "estado", author: "autor", publisher: "editorial",
		year: "anio", isbn: "isbn", notes: "notas", cover: "urldelaimagen", summary: "resumen",
	},
}

func lookupDialect(name string) (dialect, error) {
	if name == "" {
		name = types.DialectLoanField
	}
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %q", types.ErrDialectUnknown, name)
	}
	return d, nil
}

// record converts a collection item into the canonical record.
func (d dialect) record(item map[string]any) types.Record {
	r := types.Record{
		ID:        str(item["id"]),
		Title:     str(item[d.title]),
		Category:  str(item[d.category]),
		Box:       str(item[d.box]),
		LoanedTo:  str(item[d.borrower]),
		Author:    str(item[d.author]),
		Publisher: str(item[d.publisher]),
		Year:      str(item[d.year]),
		ISBN:      str(item[d.isbn]),
		Notes:     str(item[d.notes]),
		CoverURL:  str(item[d.cover]),
		Summary:   str(item[d.summary]),
		CreatedAt: parseTimestamp(str(item["created"])),
		UpdatedAt: parseTimestamp(str(item["updated"])),
	}
	if d.status != "" {
		estado := str(item[d.status])
		if !strings.EqualFold(estado, estadoDisponible) {
			r.LoanStatus = estado
		}
	}
	r.Normalize()
	return r
}

// body converts a patch into the JSON body of an update request.
func (d dialect) body(p types.RecordPatch) map[string]any {
	body := make(map[string]any)
	set := func(field string, v *string) {
		if v != nil && field != "" {
			body[field] = *v
		}
	}
	set(d.title, p.Title)
	set(d.category, p.Category)
	set(d.box, p.Box)
	set(d.author, p.Author)
	set(d.publisher, p.Publisher)
	set(d.year, p.Year)
	set(d.isbn, p.ISBN)
	set(d.notes, p.Notes)
	set(d.cover, p.CoverURL)
	set(d.summary, p.Summary)

	switch {
	case p.LoanedTo != nil:
		borrower := strings.TrimSpace(*p.LoanedTo)
		body[d.borrower] = borrower
		if d.status != "" {
			body[d.status] = estadoFor(borrower)
		}
	case p.LoanStatus != nil && *p.LoanStatus == types.StatusAvailable:
		body[d.borrower] = ""
		if d.status != "" {
			body[d.status] = estadoDisponible
		}
	case p.LoanStatus != nil && d.status != "":
		body[d.status] = *p.LoanStatus
	}
	return body
}

// filter builds a PocketBase filter expression. Text matches the title with
// the ~ (contains) operator.
func (d dialect) filter(f types.Filters) string {
	var parts []string
	if f.Text != "" {
		parts = append(parts, fmt.Sprintf("%s ~ %s", d.title, quote(f.Text)))
	}
	if f.Category != "" {
		parts = append(parts, fmt.Sprintf("%s = %s", d.category, quote(f.Category)))
	}
	if f.Box != "" {
		parts = append(parts, fmt.Sprintf("%s = %s", d.box, quote(f.Box)))
	}
	if f.Status != "" {
		parts = append(parts, d.statusFilter(f.Status))
	}
	return strings.Join(parts, " && ")
}

func (d dialect) statusFilter(status string) string {
	if status == types.StatusAvailable {
		return fmt.Sprintf(`%s = ""`, d.borrower)
	}
	if d.status != "" {
		return fmt.Sprintf("%s = %s", d.status, quote(status))
	}
	return fmt.Sprintf("%s = %s", d.borrower, quote(strings.TrimPrefix(status, "loaned to ")))
}

func estadoFor(borrower string) string {
	if borrower == "" {
		return estadoDisponible
	}
	return estadoPrestadoA + borrower
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// str renders a JSON scalar as text. Numbers keep their shortest form so a
// numeric box 3 reads "3".
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// PocketBase timestamps look like "2024-01-02 15:04:05.000Z".
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05.000Z", "2006-01-02 15:04:05Z", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
