package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
)

// ── export module errors ──

var (
	ErrExportNoAssignments = errors.New("the group has no mapped staff or subjects")
	ErrExportGenerateFail  = errors.New("failed to generate the xlsx file")
)

// ExportService renders reports as xlsx workbooks.
// Workbooks are returned as a buffer plus a suggested file name; the handler writes the response.
type ExportService interface {
	ExportDepartmentReport(ctx context.Context, department, semester string) (*bytes.Buffer, string, error)
	ExportNonSubmission(ctx context.Context, req *dto.NonSubmissionSummaryRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	reports ReportService
	logger  *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(reports ReportService, logger *zap.Logger) ExportService {
	return &exportService{reports: reports, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportDepartmentReport
// ═══════════════════════════════════════════════════════════
//
// Layout:
//   - sheet "Report": one row per expected assignment, columns
//     Ref | Staff | Subject | Responses | Q1..Q10 | Average | Total (/100)
//   - sheet "Questions": the question text behind each Q column
//
// Cells for pairs nobody rated stay empty rather than showing 0.

func (s *exportService) ExportDepartmentReport(ctx context.Context, department, semester string) (*bytes.Buffer, string, error) {
	report, err := s.reports.DepartmentReport(ctx, department, semester)
	if err != nil {
		return nil, "", err
	}
	if len(report.Entries) == 0 {
		return nil, "", ErrExportNoAssignments
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Report"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	numStyle, _ := f.NewStyle(&excelize.Style{
		CustomNumFmt: strPtr("0.00"),
	})

	header := []string{"Ref", "Staff", "Subject", "Responses"}
	for q := 1; q <= len(report.Entries[0].PerQuestionAverages); q++ {
		header = append(header, fmt.Sprintf("Q%d", q))
	}
	header = append(header, "Average", "Total (/100)")
	lastCol := colName(len(header) - 1)

	// title row
	f.SetCellValue(sheet, "A1", fmt.Sprintf("Feedback report: %s, semester %s", report.Department, report.Semester))
	f.MergeCell(sheet, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	// header row
	for c, h := range header {
		f.SetCellValue(sheet, cell(colName(c), 2), h)
	}
	f.SetCellStyle(sheet, "A2", cell(lastCol, 2), headerStyle)
	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", "C", 28)
	f.SetColWidth(sheet, "D", lastCol, 11)

	// data rows
	row := 3
	for _, e := range report.Entries {
		f.SetCellValue(sheet, cell("A", row), e.Reference)
		f.SetCellValue(sheet, cell("B", row), e.Staff)
		f.SetCellValue(sheet, cell("C", row), e.Subject)
		f.SetCellValue(sheet, cell("D", row), e.Count)

		col := 4
		for _, v := range e.PerQuestionAverages {
			setOptionalFloat(f, sheet, cell(colName(col), row), v)
			col++
		}
		setOptionalFloat(f, sheet, cell(colName(col), row), e.Average)
		setOptionalFloat(f, sheet, cell(colName(col+1), row), e.TotalScore)
		row++
	}
	f.SetCellStyle(sheet, "E3", cell(lastCol, row-1), numStyle)

	// question legend
	qSheet := "Questions"
	f.NewSheet(qSheet)
	f.SetCellValue(qSheet, "A1", "Q")
	f.SetCellValue(qSheet, "B1", "Question")
	f.SetCellStyle(qSheet, "A1", "B1", headerStyle)
	f.SetColWidth(qSheet, "B", "B", 90)
	for i, q := range report.Questions {
		f.SetCellValue(qSheet, cell("A", i+2), fmt.Sprintf("Q%d", i+1))
		f.SetCellValue(qSheet, cell("B", i+2), q)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("feedback_%s_sem%s.xlsx", fileSafe(report.Department), fileSafe(report.Semester))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportNonSubmission
// ═══════════════════════════════════════════════════════════
//
// Layout:
//   - sheet "Summary": Department | Semester | Total | Submitted | Pending | Status
//   - sheet "Pending": Department | Semester | Register No, one row per non-submitter

func (s *exportService) ExportNonSubmission(ctx context.Context, req *dto.NonSubmissionSummaryRequest) (*bytes.Buffer, string, error) {
	summary, err := s.reports.NonSubmissionSummary(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})

	sheet := "Summary"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for c, h := range []string{"Department", "Semester", "Total", "Submitted", "Pending", "Status"} {
		f.SetCellValue(sheet, cell(colName(c), 1), h)
	}
	f.SetCellStyle(sheet, "A1", "F1", headerStyle)
	f.SetColWidth(sheet, "A", "B", 20)
	f.SetColWidth(sheet, "F", "F", 30)

	row := 2
	for _, g := range summary.Groups {
		f.SetCellValue(sheet, cell("A", row), g.Department)
		f.SetCellValue(sheet, cell("B", row), g.Semester)
		if g.Excluded {
			f.SetCellValue(sheet, cell("F", row), "excluded: no mapped subjects")
		} else {
			f.SetCellValue(sheet, cell("C", row), g.Total)
			f.SetCellValue(sheet, cell("D", row), g.Submitted)
			f.SetCellValue(sheet, cell("E", row), g.NotSubmitted)
		}
		row++
	}
	f.SetCellValue(sheet, cell("A", row), "All groups")
	f.SetCellValue(sheet, cell("C", row), summary.Total)
	f.SetCellValue(sheet, cell("D", row), summary.Submitted)
	f.SetCellValue(sheet, cell("E", row), summary.NotSubmitted)
	f.SetCellStyle(sheet, cell("A", row), cell("F", row), headerStyle)

	pending := "Pending"
	f.NewSheet(pending)
	for c, h := range []string{"Department", "Semester", "Register No"} {
		f.SetCellValue(pending, cell(colName(c), 1), h)
	}
	f.SetCellStyle(pending, "A1", "C1", headerStyle)
	f.SetColWidth(pending, "A", "C", 20)

	row = 2
	for _, g := range summary.Groups {
		for _, regNo := range g.RegisterNos {
			f.SetCellValue(pending, cell("A", row), g.Department)
			f.SetCellValue(pending, cell("B", row), g.Semester)
			f.SetCellStr(pending, cell("C", row), regNo)
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	name := "all"
	if req.Department != "" || req.Semester != "" {
		name = fileSafe(strings.Trim(req.Department+"_"+req.Semester, "_"))
	}
	return buf, fmt.Sprintf("non_submission_%s.xlsx", name), nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func setOptionalFloat(f *excelize.File, sheet, axis string, v *float64) {
	if v == nil {
		return
	}
	f.SetCellFloat(sheet, axis, *v, -1, 64)
}

func strPtr(s string) *string { return &s }

// fileSafe replaces characters that are awkward in a download file name
func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
