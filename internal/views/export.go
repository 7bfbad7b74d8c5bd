package views

import (
	"context"
	"errors"

	"github.com/harara-heat/harara-dashboard/internal/domain"
)

// ExportPage lists the available downloads.
type ExportPage struct {
	Kinds  []domain.ExportKind
	Notice *Notice
}

func (s *Service) Exports() *ExportPage {
	s.rendered("export")
	return &ExportPage{Kinds: domain.ExportKinds}
}

// Download is a file ready to be sent to the browser.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export fetches one export. Each call is independent, so several exports may
// run at once for the same operator.
func (s *Service) Export(ctx context.Context, api API, operator string, kind domain.ExportKind) (*Download, error) {
	payload, err := api.Export(ctx, kind)
	s.Record(ctx, operator, domain.ActionExport, "", err)
	if err != nil {
		s.metrics.Exports.WithLabelValues(kind.Slug(), domain.OutcomeFailure).Inc()
		if !errors.Is(err, domain.ErrUnauthorized) {
			s.logger.Error("export failed", "kind", kind.Slug(), "error", err)
		}
		return nil, err
	}
	s.metrics.Exports.WithLabelValues(kind.Slug(), domain.OutcomeSuccess).Inc()

	contentType := payload.ContentType
	if contentType == "" {
		contentType = kind.Accept()
	}
	return &Download{
		Filename:    kind.Filename(domain.Now()),
		ContentType: contentType,
		Data:        payload.Data,
	}, nil
}

// ExportFailure is the notice shown when an export cannot be downloaded.
func ExportFailure(kind domain.ExportKind) Notice {
	return failure("Failed to export " + kind.Slug())
}
