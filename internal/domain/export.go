package domain

import (
	"fmt"
	"time"
)

// ExportKind is one of the backend's downloadable exports.
type ExportKind int

const (
	ExportPredictions ExportKind = iota
	ExportLogs
	ExportReport
)

// ExportKinds lists every export in display order.
var ExportKinds = []ExportKind{ExportPredictions, ExportLogs, ExportReport}

// ParseExportKind resolves the URL slug of an export.
func ParseExportKind(s string) (ExportKind, error) {
	for _, k := range ExportKinds {
		if k.Slug() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExport, s)
}

// Slug is the export's URL segment.
func (k ExportKind) Slug() string {
	switch k {
	case ExportPredictions:
		return "predictions"
	case ExportLogs:
		return "logs"
	case ExportReport:
		return "report"
	default:
		panic(fmt.Sprintf("domain: unhandled export kind %d", int(k)))
	}
}

// Path is the backend endpoint serving the export.
func (k ExportKind) Path() string {
	return "/api/export/" + k.Slug()
}

// Accept is the media type requested from the backend.
func (k ExportKind) Accept() string {
	switch k {
	case ExportPredictions, ExportLogs:
		return "text/csv"
	case ExportReport:
		return "application/pdf"
	default:
		panic(fmt.Sprintf("domain: unhandled export kind %d", int(k)))
	}
}

// Filename names the downloaded file. CSV exports carry the UTC day, the
// report carries the UTC month.
func (k ExportKind) Filename(now time.Time) string {
	now = now.UTC()
	switch k {
	case ExportPredictions:
		return "predictions_" + now.Format(time.DateOnly) + ".csv"
	case ExportLogs:
		return "logs_" + now.Format(time.DateOnly) + ".csv"
	case ExportReport:
		return "harara_report_" + now.Format("2006-01") + ".pdf"
	default:
		panic(fmt.Sprintf("domain: unhandled export kind %d", int(k)))
	}
}

func (k ExportKind) Title() string {
	switch k {
	case ExportPredictions:
		return "Export Predictions"
	case ExportLogs:
		return "Export System Logs"
	case ExportReport:
		return "Generate Monthly Report"
	default:
		panic(fmt.Sprintf("domain: unhandled export kind %d", int(k)))
	}
}

func (k ExportKind) Description() string {
	switch k {
	case ExportPredictions:
		return "Download all prediction data as CSV file"
	case ExportLogs:
		return "Download system logs and events as CSV file"
	case ExportReport:
		return "Generate comprehensive PDF report with charts"
	default:
		panic(fmt.Sprintf("domain: unhandled export kind %d", int(k)))
	}
}

// Payload is a binary response body.
type Payload struct {
	Data        []byte
	ContentType string
}
