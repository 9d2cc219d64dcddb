// Package export renders generated reports as downloadable PDF and Excel files.
package export

import (
	"fmt"
	"strings"
	"time"

	"storeroom/pkg/ledger"
)

// Format is a supported download format.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

// ParseFormat accepts pdf, excel and xlsx in any case.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pdf":
		return FormatPDF, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

func (f Format) ContentType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return "pdf"
}

// FileName builds an attachment name such as inventory_report_2024-03-05.pdf.
func (f Format) FileName(generated time.Time) string {
	return "inventory_report_" + generated.Format(ledger.DateLayout) + "." + f.Extension()
}

// Render dispatches to the matching renderer.
func Render(f Format, report ledger.Report) ([]byte, error) {
	switch f {
	case FormatPDF:
		return PDF(report)
	case FormatExcel:
		return Excel(report)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}
