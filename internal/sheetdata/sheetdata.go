// Package sheetdata prepares the booklet's data file from the published
// expo spreadsheets: room assignments and student exhibit responses. The
// two sheets are merged, normalized, filtered of logistics rows, and sorted
// into booklet order before being written as CSV for the booklet page.
package sheetdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// Published-spreadsheet CSV endpoints.
const (
	RoomsURL = "https://docs.google.com/spreadsheets/d/e/" +
		"2PACX-1vRU55NCazcagM1ugIwGa-oTuqATCc-Ilye0P8AnoPXZFeEMuvO9B6r51Uxh8ktLiRiDCR-q_O-7TQ-F" +
		"/pub?gid=920592641&single=true&output=csv"

	ExhibitsURL = "https://docs.google.com/spreadsheets/d/e/" +
		"2PACX-1vTlzXK2SdVT1gPIO5pPNaGx1T9uAoCsXKszEin1ZrmS7w2NmcxXbKgAynkYEvrPy15Gol7xwfKcWyrl" +
		"/pub?output=csv"
)

// OutputName is the data file the booklet page loads.
const OutputName = "expo_booklet_data.csv"

// missingDescription fills in for exhibits with no submitted description.
const missingDescription = "No exhibit description - attention needed"

// Sentinel errors for data preparation.
var (
	ErrMissingColumn = errors.New("required column not found")
	ErrEmptySheet    = errors.New("sheet has no data rows")
)

// Record is one booklet entry: an exhibit with its resolved location.
type Record struct {
	Award           string
	BookletLocation string
	DayWarning      string
	Organization    string
	ExhibitTitle    string
	Description     string
}

// locationOrder is the fixed booklet ordering of locations; anything else
// sorts to the end.
var locationOrder = []string{
	"E Hall | Lobby",
	"E Hall | Floor 1",
	"E Hall | Floor 2",
	"ME | Lobby",
	"ME | Floor 1",
	"ME | Floor 2",
	"ECB | Atrium",
}

// excludeKeywords marks logistics rows that are not exhibits.
var excludeKeywords = []string{"lunch", "sponsor", "speakers", "storage", "changing room", "activities"}

var (
	atriumRe = regexp.MustCompile(`(?i)atrium`)
	tableRe  = regexp.MustCompile(`(?i)^(.*?)\s*table\s*[\d-]+`)
)

// BookletLocation derives the booklet's location label from a building and
// raw room value. Lobby and atrium areas collapse to their area name, table
// assignments keep only their area prefix, and numeric rooms map to a floor
// from the leading digit. Anything else passes through as-is.
func BookletLocation(building, room string) string {
	building = strings.TrimSpace(building)
	room = strings.TrimSpace(room)

	if strings.Contains(strings.ToLower(room), "lobby") {
		return building + " | Lobby"
	}
	if atriumRe.MatchString(room) {
		return building + " | Atrium"
	}
	if m := tableRe.FindStringSubmatch(room); m != nil {
		area := strings.Trim(m[1], " |,")
		if area == "" {
			return building + " | Lobby"
		}
		return building + " | " + area
	}
	switch {
	case strings.HasPrefix(room, "1"):
		return building + " | Floor 1"
	case strings.HasPrefix(room, "2"):
		return building + " | Floor 2"
	}
	return building + " | " + room
}

// DayWarning flags exhibits present on only one of the two expo days.
func DayWarning(friday, saturday string) string {
	fri := parseBool(friday)
	sat := parseBool(saturday)
	switch {
	case fri && !sat:
		return "Friday Only"
	case sat && !fri:
		return "Saturday Only"
	}
	return ""
}

// parseBool accepts the truthy spellings the sheets actually contain.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// table is a parsed CSV sheet with header-based column access.
type table struct {
	header []string
	rows   [][]string
}

// parseTable reads a CSV sheet. Rows shorter than the header are padded so
// column access never panics on ragged exports.
func parseTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptySheet
	}
	t := &table{header: records[0]}
	for _, row := range records[1:] {
		for len(row) < len(t.header) {
			row = append(row, "")
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// columnIndex finds the first header cell matching any of the names, either
// exactly or by prefix. The exhibit sheet's form headers are long prompts,
// so prefix matching keeps this robust against prompt edits.
func (t *table) columnIndex(names ...string) (int, error) {
	for _, name := range names {
		for i, h := range t.header {
			h = strings.TrimSpace(h)
			if h == name || strings.HasPrefix(h, name) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(names, " / "))
}

// Build merges the two sheets into booklet records: locations and day
// warnings derived from the rooms sheet, descriptions joined in from the
// exhibits sheet by title, logistics rows dropped, and the result sorted
// into the fixed booklet location order.
func Build(rooms, exhibits *table) ([]Record, error) {
	buildingCol, err := rooms.columnIndex("Building")
	if err != nil {
		return nil, err
	}
	roomCol, err := rooms.columnIndex("Room #")
	if err != nil {
		return nil, err
	}
	friCol, err := rooms.columnIndex("Friday")
	if err != nil {
		return nil, err
	}
	satCol, err := rooms.columnIndex("Saturday")
	if err != nil {
		return nil, err
	}
	orgCol, err := rooms.columnIndex("Organization")
	if err != nil {
		return nil, err
	}
	titleCol, err := rooms.columnIndex("Exhibit Title")
	if err != nil {
		return nil, err
	}
	// The award column name drifts between sheet revisions.
	awardCol, err := rooms.columnIndex("Award", "2025 Award Recipient")
	if err != nil {
		awardCol = -1
	}

	exTitleCol, err := exhibits.columnIndex("Exhibit Title:", "Exhibit Title")
	if err != nil {
		return nil, err
	}
	exDescCol, err := exhibits.columnIndex("Exhibit Description:", "Exhibit Description")
	if err != nil {
		return nil, err
	}

	descByTitle := make(map[string]string, len(exhibits.rows))
	for _, row := range exhibits.rows {
		title := strings.TrimSpace(row[exTitleCol])
		if title == "" {
			continue
		}
		if _, seen := descByTitle[title]; !seen {
			descByTitle[title] = strings.TrimSpace(row[exDescCol])
		}
	}

	var out []Record
	for _, row := range rooms.rows {
		org := strings.TrimSpace(row[orgCol])
		title := strings.TrimSpace(row[titleCol])
		if excludeRow(org, title) {
			continue
		}

		desc := descByTitle[title]
		if desc == "" {
			desc = missingDescription
		}
		award := ""
		if awardCol >= 0 {
			award = strings.TrimSpace(row[awardCol])
		}

		out = append(out, Record{
			Award:           award,
			BookletLocation: BookletLocation(row[buildingCol], row[roomCol]),
			DayWarning:      DayWarning(row[friCol], row[satCol]),
			Organization:    org,
			ExhibitTitle:    title,
			Description:     desc,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return locationRank(out[i].BookletLocation) < locationRank(out[j].BookletLocation)
	})
	return out, nil
}

// excludeRow drops logistics rows: blank organizations, known non-exhibit
// keywords, and sponsor placeholders.
func excludeRow(org, title string) bool {
	if org == "" || strings.EqualFold(org, "nan") {
		return true
	}
	lower := strings.ToLower(org)
	for _, kw := range excludeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return strings.Contains(title, "SPONSOR")
}

// locationRank orders locations by the fixed booklet sequence.
func locationRank(loc string) int {
	for i, l := range locationOrder {
		if l == loc {
			return i
		}
	}
	return len(locationOrder)
}

// WriteCSV writes records in the booklet's column order.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Award", "booklet_location", "day_warning", "Organization", "Exhibit Title", "exhibit_description"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Award, r.BookletLocation, r.DayWarning, r.Organization, r.ExhibitTitle, r.Description}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
