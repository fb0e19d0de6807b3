// services/archive.go
package services

import (
	"context"
	"fmt"

	"upvote-club/utils"

	"github.com/gosimple/slug"
)

// ReportArchiver persists sweep reports for later auditing.
type ReportArchiver interface {
	Archive(ctx context.Context, report *SweepReport) (string, error)
}

type R2ReportArchiver struct{}

func (R2ReportArchiver) Archive(ctx context.Context, report *SweepReport) (string, error) {
	return utils.UploadJSONToR2(ctx, ArchiveKey(report), report)
}

// ArchiveKey is sweeps/<sweep-slug>/<started-at>.json.
func ArchiveKey(report *SweepReport) string {
	return fmt.Sprintf("sweeps/%s/%s.json", slug.Make(report.Sweep), report.StartedAt.UTC().Format("20060102T150405Z"))
}
