// Package export renders report tables as CSV, XLSX or PDF documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnsupportedFormat = internal.NewValidationError("unsupported export format", internal.ErrCodeInvalidFormat)

// ParseFormat accepts csv, xlsx and pdf; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Filename builds "<base>_<date>.<ext>".
func (f Format) Filename(base, date string) string {
	return fmt.Sprintf("%s_%s.%s", base, date, f)
}

// Table is one titled grid of cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Field is a labelled summary value printed above the tables.
type Field struct {
	Label string
	Value string
}

type Document struct {
	Title   string
	Summary []Field
	Tables  []Table
}

// Render writes doc in format f.
func Render(f Format, doc Document) ([]byte, error) {
	switch f {
	case FormatCSV:
		return CSV(doc)
	case FormatXLSX:
		return XLSX(doc)
	case FormatPDF:
		return PDF(doc)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// CSV writes the first table only, headers first, so the file opens cleanly
// in spreadsheet tools.
func CSV(doc Document) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	if len(doc.Tables) > 0 {
		table := doc.Tables[0]
		if err := writer.Write(table.Headers); err != nil {
			return nil, err
		}
		if err := writer.WriteAll(table.Rows); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX writes one sheet per table plus a summary sheet when doc has one.
func XLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	first := true
	addSheet := func(name string) (string, error) {
		name = sheetName(name)
		if first {
			first = false
			return name, f.SetSheetName("Sheet1", name)
		}
		_, err := f.NewSheet(name)
		return name, err
	}

	if len(doc.Summary) > 0 {
		sheet, err := addSheet("Summary")
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, "A1", doc.Title)
		_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)
		for i, field := range doc.Summary {
			row := i + 3
			_ = f.SetCellValue(sheet, cell(0, row), field.Label)
			_ = f.SetCellValue(sheet, cell(1, row), field.Value)
		}
	}

	for i, table := range doc.Tables {
		title := table.Title
		if title == "" {
			title = fmt.Sprintf("Sheet%d", i+1)
		}
		sheet, err := addSheet(title)
		if err != nil {
			return nil, err
		}
		for col, header := range table.Headers {
			_ = f.SetCellValue(sheet, cell(col, 1), header)
		}
		if len(table.Headers) > 0 {
			_ = f.SetCellStyle(sheet, cell(0, 1), cell(len(table.Headers)-1, 1), headerStyle)
		}
		for r, row := range table.Rows {
			for col, value := range row {
				_ = f.SetCellValue(sheet, cell(col, r+2), value)
			}
		}
	}

	if first {
		// nothing was written; keep the default sheet
		_ = f.SetCellValue("Sheet1", "A1", doc.Title)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF lays out the summary as label/value lines followed by each table.
func PDF(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr(doc.Title))
	pdf.Ln(12)

	if len(doc.Summary) > 0 {
		pdf.SetFont("Arial", "", 10)
		for _, field := range doc.Summary {
			pdf.Cell(60, 8, tr(field.Label+":"))
			pdf.Cell(60, 8, tr(field.Value))
			pdf.Ln(6)
		}
		pdf.Ln(6)
	}

	const pageWidth = 190.0
	for _, table := range doc.Tables {
		if table.Title != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.Cell(40, 10, tr(table.Title))
			pdf.Ln(10)
		}
		if len(table.Headers) == 0 {
			continue
		}
		width := pageWidth / float64(len(table.Headers))

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(224, 224, 224)
		for _, header := range table.Headers {
			pdf.CellFormat(width, 7, tr(header), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range table.Rows {
			for _, value := range row {
				pdf.CellFormat(width, 6, tr(truncate(value, 40)), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

// sheetName trims to the 31 characters Excel allows and drops forbidden runes.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, name)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
