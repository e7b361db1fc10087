package models

// Upload pairs a transaction with the remote asset it should be created in.
type Upload struct {
	Transaction Transaction
	AssetID     string
}

// UploadResult summarises an upload to a budgeting service.
type UploadResult struct {
	Uploaded int
	Skipped  int
	Errors   []string
}

// Merge adds the counters of other into r.
func (r *UploadResult) Merge(other *UploadResult) {
	if other == nil {
		return
	}
	r.Uploaded += other.Uploaded
	r.Skipped += other.Skipped
	r.Errors = append(r.Errors, other.Errors...)
}
