package upload

type Stage string

const (
	StageBlobStoreFailed    Stage = "blob_store_failed"
	StageRecordCreateFailed Stage = "record_create_failed"
	StageSucceeded          Stage = "succeeded"
)

// Result reports how far an upload got. RemoteURL is set from the record
// create stage onwards, TimelineRecordID only on success.
type Result struct {
	Stage            Stage
	RemoteURL        string
	TimelineRecordID string
	Filename         string
	Err              error
}

func (r Result) Succeeded() bool {
	return r.Stage == StageSucceeded
}

// Orphaned reports whether a blob was stored without a timeline record
// referencing it.
func (r Result) Orphaned() bool {
	return r.Stage == StageRecordCreateFailed
}
