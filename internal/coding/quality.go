package coding

import "sort"

// ParseIssue records one malformed input row: the offending token, why it
// failed, and enough context to find the row in the source file.
type ParseIssue struct {
	Row      int    `json:"row"` // 1-based data row in the source, excluding the header
	Contract string `json:"contract"`
	Coder    string `json:"coder"`
	Service  string `json:"service"`
	Token    string `json:"token"`
	Reason   string `json:"reason"`
}

// Quality tallies what ingestion saw. Malformed rows are excluded from
// computation but never silently dropped; missing-code rows stay in the
// dataset flagged Missing. Nothing here aborts a run.
type Quality struct {
	TotalRows          int          `json:"total_rows"`
	KeptRows           int          `json:"kept_rows"`
	MissingCodes       int          `json:"missing_codes"`
	MultiCode          int          `json:"multi_code"`
	MalformedRows      []ParseIssue `json:"malformed_rows,omitempty"`
	UnknownSectorCodes []string     `json:"unknown_sector_codes,omitempty"`
}

// NoteUnknownSector records a structurally valid code whose leading two
// digits are not a NAICS sector. Kept distinct and sorted.
func (q *Quality) NoteUnknownSector(code string) {
	for _, c := range q.UnknownSectorCodes {
		if c == code {
			return
		}
	}
	q.UnknownSectorCodes = append(q.UnknownSectorCodes, code)
	sort.Strings(q.UnknownSectorCodes)
}

// MalformedCount returns the number of excluded rows.
func (q Quality) MalformedCount() int {
	return len(q.MalformedRows)
}
