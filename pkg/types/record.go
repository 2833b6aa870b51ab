package types

import (
	"strings"
	"time"
)

// StatusAvailable is the loan status of a record nobody has borrowed.
const StatusAvailable = "available"

// loanedPrefix builds the derived status of a borrowed record.
const loanedPrefix = "loaned to "

// Record is the canonical, backend-agnostic book entry.
//
// The lightweight fields (ID through LoanedTo) are present on every record;
// the remaining fields are only filled by RecordStore.Get.
type Record struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Box        string `json:"box"`
	LoanStatus string `json:"loan_status"`
	LoanedTo   string `json:"loaned_to"`

	Author    string    `json:"author,omitempty"`
	Publisher string    `json:"publisher,omitempty"`
	Year      string    `json:"year,omitempty"`
	ISBN      string    `json:"isbn,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CoverURL  string    `json:"cover_url,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// LoanStatusFor derives the loan status from the borrower field. An empty
// borrower always means available.
func LoanStatusFor(loanedTo string) string {
	loanedTo = strings.TrimSpace(loanedTo)
	if loanedTo == "" {
		return StatusAvailable
	}
	return loanedPrefix + loanedTo
}

// Available reports whether nobody holds the book.
func (r Record) Available() bool {
	return strings.TrimSpace(r.LoanedTo) == ""
}

// Lightweight returns a copy carrying only the listing fields.
func (r Record) Lightweight() Record {
	return Record{
		ID:         r.ID,
		Title:      r.Title,
		Category:   r.Category,
		Box:        r.Box,
		LoanStatus: r.LoanStatus,
		LoanedTo:   r.LoanedTo,
	}
}

// Normalize enforces the loan invariant: LoanStatus is "available" exactly
// when LoanedTo is empty, and never empty otherwise.
func (r *Record) Normalize() {
	r.LoanedTo = strings.TrimSpace(r.LoanedTo)
	if r.LoanedTo == "" {
		r.LoanStatus = StatusAvailable
		return
	}
	if r.LoanStatus == "" || r.LoanStatus == StatusAvailable {
		r.LoanStatus = LoanStatusFor(r.LoanedTo)
	}
}

// RecordPatch is a partial record. Nil fields are left untouched.
type RecordPatch struct {
	Title      *string `json:"title,omitempty"`
	Category   *string `json:"category,omitempty"`
	Box        *string `json:"box,omitempty"`
	LoanedTo   *string `json:"loaned_to,omitempty"`
	LoanStatus *string `json:"loan_status,omitempty"`

	Author    *string `json:"author,omitempty"`
	Publisher *string `json:"publisher,omitempty"`
	Year      *string `json:"year,omitempty"`
	ISBN      *string `json:"isbn,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	CoverURL  *string `json:"cover_url,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

// Ptr returns a pointer to s, for building patches inline.
func Ptr(s string) *string { return &s }

// LoanPatch sets the borrower and the matching derived status.
func LoanPatch(borrower string) RecordPatch {
	borrower = strings.TrimSpace(borrower)
	return RecordPatch{LoanedTo: Ptr(borrower), LoanStatus: Ptr(LoanStatusFor(borrower))}
}

// ReturnPatch clears the borrower.
func ReturnPatch() RecordPatch {
	return RecordPatch{LoanedTo: Ptr(""), LoanStatus: Ptr(StatusAvailable)}
}

// PatchFrom builds the patch that brings a lightweight record in line with
// an authoritative one.
func PatchFrom(r Record) RecordPatch {
	return RecordPatch{
		Title:      Ptr(r.Title),
		Category:   Ptr(r.Category),
		Box:        Ptr(r.Box),
		LoanedTo:   Ptr(r.LoanedTo),
		LoanStatus: Ptr(r.LoanStatus),
	}
}

// Empty reports whether the patch changes nothing.
func (p RecordPatch) Empty() bool {
	return p.Title == nil && p.Category == nil && p.Box == nil &&
		p.LoanedTo == nil && p.LoanStatus == nil && p.Author == nil &&
		p.Publisher == nil && p.Year == nil && p.ISBN == nil &&
		p.Notes == nil && p.CoverURL == nil && p.Summary == nil
}

// Apply merges the patch into r and re-derives the loan status.
//
// A status of "available" clears the borrower. A free-text status is only
// kept when the record ends up with a borrower.
func (p RecordPatch) Apply(r *Record) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&r.Title, p.Title)
	set(&r.Category, p.Category)
	set(&r.Box, p.Box)
	set(&r.Author, p.Author)
	set(&r.Publisher, p.Publisher)
	set(&r.Year, p.Year)
	set(&r.ISBN, p.ISBN)
	set(&r.Notes, p.Notes)
	set(&r.CoverURL, p.CoverURL)
	set(&r.Summary, p.Summary)

	if p.LoanedTo != nil {
		r.LoanedTo = *p.LoanedTo
		r.LoanStatus = ""
	}
	if p.LoanStatus != nil {
		if *p.LoanStatus == StatusAvailable {
			r.LoanedTo = ""
		}
		r.LoanStatus = *p.LoanStatus
	}
	r.Normalize()
}
