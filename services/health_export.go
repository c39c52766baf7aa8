package services

import (
	"context"
	"fmt"
	"sort"

	"agentgift-service/apperrors"
	"agentgift-service/models"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Uploader stores a blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type HealthReport struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	SizeBytes int    `json:"size_bytes"`
}

// HealthExporter renders a snapshot as an .xlsx workbook and uploads it.
type HealthExporter struct {
	Uploader Uploader
	Prefix   string
}

func NewHealthExporter(uploader Uploader) *HealthExporter {
	return &HealthExporter{Uploader: uploader, Prefix: "reports/giftverse-health"}
}

func (e *HealthExporter) Export(ctx context.Context, snap *models.HealthSnapshot) (*HealthReport, error) {
	body, err := RenderHealthWorkbook(snap)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to render health report")
	}

	key := fmt.Sprintf("%s/%s.xlsx", e.Prefix, snap.GeneratedAt.UTC().Format("2006-01-02T150405Z"))
	url, err := e.Uploader.Upload(ctx, key, body, xlsxContentType)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to upload health report")
	}
	return &HealthReport{Key: key, URL: url, SizeBytes: len(body)}, nil
}

// RenderHealthWorkbook builds a two-sheet workbook: headline metrics and users per tier.
func RenderHealthWorkbook(snap *models.HealthSnapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Generated at", snap.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")},
		{"Total users", snap.TotalUsers},
		{"XP issued (7d)", snap.XPIssued7d},
		{"XP removed (7d)", snap.XPRemoved7d},
		{"Credits spent (7d)", snap.CreditsSpent7d},
		{"Credits granted (7d)", snap.CreditsGranted7d},
		{"Badges awarded (7d)", snap.BadgesAwarded7d},
		{"Active bans", snap.ActiveBans},
		{"Emotional signals (7d)", snap.EmotionalSignals7d},
		{"Pending nominations", snap.PendingNominations},
		{"Admin actions (24h)", snap.AdminActions24h},
		{"Admin action errors (24h)", snap.AdminActionErrors24h},
	}
	if err := writeRows(f, summary, rows); err != nil {
		return nil, err
	}

	const tiers = "Tiers"
	if _, err := f.NewSheet(tiers); err != nil {
		return nil, err
	}
	tierRows := [][]interface{}{{"Tier", "Users"}}
	names := make([]string, 0, len(snap.UsersByTier))
	for t := range snap.UsersByTier {
		names = append(names, string(t))
	}
	sort.Strings(names)
	for _, t := range names {
		tierRows = append(tierRows, []interface{}{t, snap.UsersByTier[models.Tier(t)]})
	}
	if err := writeRows(f, tiers, tierRows); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(summary, "A", "A", 28); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for _, sheet := range []string{summary, tiers} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	return nil
}
