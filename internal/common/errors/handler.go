package errors

// ErrorHandler normalizes record-level errors and logs them with their
// category so one failing record never interrupts the batch.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleRecordError logs err for the given input row and returns it as a
// StandardError for the outcome report.
func (h *ErrorHandler) HandleRecordError(row int, doi string, err error) *StandardError {
	stdErr := AsStandardError(err)
	if stdErr == nil {
		return nil
	}

	fields := map[string]interface{}{
		"row":           row,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if doi != "" {
		fields["doi"] = doi
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	h.logger.Error("Record failed", fields)

	return stdErr
}
