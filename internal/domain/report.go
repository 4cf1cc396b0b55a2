package domain

// Report is the immutable outcome of a completed validation run.
type Report struct {
	findings []Finding
	passed   bool
}

// Aggregate merges structural and content findings into a Report. Structural
// findings come first and producer order is preserved. Nothing is
// de-duplicated: a file flagged by both passes appears twice.
func Aggregate(structural, content []Finding) Report {
	findings := make([]Finding, 0, len(structural)+len(content))
	findings = append(findings, structural...)
	findings = append(findings, content...)
	return Report{
		findings: findings,
		passed:   len(structural) == 0 && len(content) == 0,
	}
}

// Passed reports whether the run produced no findings at all.
func (r Report) Passed() bool {
	return r.passed
}

// Findings returns a copy of the ordered findings.
func (r Report) Findings() []Finding {
	out := make([]Finding, len(r.findings))
	copy(out, r.findings)
	return out
}

// Len returns the number of findings.
func (r Report) Len() int {
	return len(r.findings)
}

// ByCategory returns the findings of one category in report order.
func (r Report) ByCategory(c Category) []Finding {
	var out []Finding
	for _, f := range r.findings {
		if f.Category == c {
			out = append(out, f)
		}
	}
	return out
}

// Count returns how many findings belong to the category.
func (r Report) Count(c Category) int {
	n := 0
	for _, f := range r.findings {
		if f.Category == c {
			n++
		}
	}
	return n
}
