package executors

import (
	"context"
	"fmt"

	"github.com/yurifrl/lunchsync/pkg/models"
)

// Apply uploads every mapped transaction of the report. Unmapped
// transactions are counted as skipped.
func (e *Executor) Apply(ctx context.Context, report *Report) (*models.UploadResult, error) {
	if e.uploader == nil {
		return nil, fmt.Errorf("no uploader configured")
	}
	e.logger.Debug("applying report", "uploader", e.uploader.Name())

	for _, account := range report.UnmappedAccounts() {
		e.logger.Warn("account has no asset mapping, skipping", "account", account)
	}

	result := &models.UploadResult{}
	uploads := report.Uploads()
	if len(uploads) > 0 {
		res, err := e.uploader.Upload(ctx, uploads)
		if err != nil {
			return nil, fmt.Errorf("%s upload failed: %w", e.uploader.Name(), err)
		}
		result.Merge(res)
	}
	result.Skipped += report.UnmappedCount()

	e.logger.Info("upload complete", "uploader", e.uploader.Name(), "uploaded", result.Uploaded, "skipped", result.Skipped, "errors", len(result.Errors))
	return result, nil
}
