package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrImportNoData      = errors.New("the workbook has no data rows (row 1 is the header)")
	ErrImportTooManyRows = errors.New("the workbook has too many data rows")
	ErrImportBadHeader   = errors.New("the header row is missing required columns")
	ErrImportUnreadable  = errors.New("the file is not a readable xlsx workbook")
)

// column aliases, matched case-insensitively after trimming
var (
	mappingColumns = map[string][]string{
		"department": {"department", "dept"},
		"semester":   {"semester", "sem"},
		"staff":      {"staff", "staff name", "staff_name", "faculty"},
		"subject":    {"subject", "subject name", "subject_name", "course"},
	}
	studentColumns = map[string][]string{
		"register_no": {"register_no", "registerno", "register no", "register number", "regno", "reg no"},
		"department":  {"department", "dept"},
		"semester":    {"semester", "sem"},
	}
)

// ParseMappingFile reads mapping rows from the first sheet of an xlsx workbook
func ParseMappingFile(reader io.Reader, maxRows int) ([]MappingRow, error) {
	records, err := readSheet(reader, mappingColumns, maxRows)
	if err != nil {
		return nil, err
	}
	rows := make([]MappingRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, MappingRow{
			Row:        r.row,
			Department: r.values["department"],
			Semester:   r.values["semester"],
			Staff:      r.values["staff"],
			Subject:    r.values["subject"],
		})
	}
	return rows, nil
}

// ParseStudentFile reads student rows from the first sheet of an xlsx workbook
func ParseStudentFile(reader io.Reader, maxRows int) ([]StudentRow, error) {
	records, err := readSheet(reader, studentColumns, maxRows)
	if err != nil {
		return nil, err
	}
	rows := make([]StudentRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, StudentRow{
			Row:        r.row,
			RegisterNo: r.values["register_no"],
			Department: r.values["department"],
			Semester:   r.values["semester"],
		})
	}
	return rows, nil
}

type sheetRecord struct {
	row    int
	values map[string]string
}

func readSheet(reader io.Reader, columns map[string][]string, maxRows int) ([]sheetRecord, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0], columns)
	var missing []string
	for name, idx := range colIndex {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrImportBadHeader, strings.Join(missing, ", "))
	}

	var records []sheetRecord
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		rec := sheetRecord{row: i + 1, values: make(map[string]string, len(colIndex))}
		empty := true
		for name, idx := range colIndex {
			if idx < len(row) {
				v := strings.TrimSpace(row[idx])
				rec.values[name] = v
				if v != "" {
					empty = false
				}
			}
		}
		if empty {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrImportNoData
	}
	if maxRows > 0 && len(records) > maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrImportTooManyRows, len(records), maxRows)
	}
	return records, nil
}

// parseHeaderIndex maps each canonical column to its index in the header, -1 when absent
func parseHeaderIndex(header []string, columns map[string][]string) map[string]int {
	idx := make(map[string]int, len(columns))
	for name := range columns {
		idx[name] = -1
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		for name, aliases := range columns {
			if idx[name] >= 0 {
				continue
			}
			for _, a := range aliases {
				if lower == a {
					idx[name] = i
				}
			}
		}
	}
	return idx
}

// ── templates ──

// MappingTemplate sample workbook for mapping uploads
func MappingTemplate() (*bytes.Buffer, error) {
	return buildTemplate("Mappings",
		[]string{"Department", "Semester", "Staff", "Subject"},
		[][]string{
			{"CSE-A", "2", "Dr. Example", "Data Structures"},
			{"CSE-A", "2", "Prof. Sample", "Operating Systems"},
		},
	)
}

// StudentTemplate sample workbook for student uploads
func StudentTemplate() (*bytes.Buffer, error) {
	return buildTemplate("Students",
		[]string{"Register No", "Department", "Semester"},
		[][]string{
			{"23CS001", "CSE-A", "2"},
			{"23CS002", "CSE-A", "2"},
		},
	)
}

func buildTemplate(sheet string, header []string, samples [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})

	for c, h := range header {
		f.SetCellValue(sheet, cell(colName(c), 1), h)
		f.SetColWidth(sheet, colName(c), colName(c), 22)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(header)-1), 1), headerStyle)

	for r, sample := range samples {
		for c, v := range sample {
			// text cells keep leading zeros of register numbers
			f.SetCellStr(sheet, cell(colName(c), r+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
