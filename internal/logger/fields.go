package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldUserID is the authenticated owner of the request
	FieldUserID = "user_id"

	// FieldGenerationID is the prompt generation record ID
	FieldGenerationID = "generation_id"

	// FieldStage is the pipeline stage a log line belongs to
	FieldStage = "stage"

	// FieldStoragePath is a blob path inside the object storage namespace
	FieldStoragePath = "storage_path"
)

// Metric fields, attached per entry for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
