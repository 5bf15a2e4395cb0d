package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bulk-doi/internal/common/errors"
	createdoi "bulk-doi/internal/workers/doi/create-doi"
)

// Summary counts the outcomes of one batch run.
type Summary struct {
	RunID     string `json:"runId,omitempty"`
	Total     int    `json:"total"`
	Rejected  int    `json:"rejected"`
	DryRun    int    `json:"dryRun"`
	Created   int    `json:"created"`
	Published int    `json:"published"`
	Failed    int    `json:"failed"`
	Live      bool   `json:"live"`
	Submitted bool   `json:"submitted"`
}

func (s *Summary) add(status createdoi.Status, out *createdoi.Outcome) {
	s.Total++
	switch status {
	case createdoi.StatusRejected:
		s.Rejected++
		return
	case createdoi.StatusDryRun:
		s.DryRun++
	}
	if out.Created {
		s.Created++
	}
	if out.Published {
		s.Published++
	}
	if out.Err != nil {
		s.Failed++
	}
}

// Fields returns the summary as log fields.
func (s *Summary) Fields() map[string]interface{} {
	return map[string]interface{}{
		"runId":     s.RunID,
		"total":     s.Total,
		"rejected":  s.Rejected,
		"dryRun":    s.DryRun,
		"created":   s.Created,
		"published": s.Published,
		"failed":    s.Failed,
	}
}

// writeRejected reports a record that failed validation.
func writeRejected(w io.Writer, row int, problems []string) error {
	line := []string{
		field("row", strconv.Itoa(row)),
		field("status", string(createdoi.StatusRejected)),
		field("doi", ""),
		field("error", strings.Join(problems, "; ")),
	}
	_, err := fmt.Fprintln(w, strings.Join(line, " "))
	return err
}

// writeOutcome reports a submitted (or dry run) record.
func writeOutcome(w io.Writer, out *createdoi.Outcome) error {
	status := out.Status()
	line := []string{
		field("row", strconv.Itoa(out.Row)),
		field("status", string(status)),
		field("doi", out.DOI),
	}

	switch status {
	case createdoi.StatusCreated, createdoi.StatusPublished, createdoi.StatusCreateFailed, createdoi.StatusPublishFailed, createdoi.StatusPayloadInvalid:
		if !out.DryRun {
			line = append(line,
				field("created", strconv.FormatBool(out.Created)),
				field("published", strconv.FormatBool(out.Published)),
			)
		}
	}

	if out.Err != nil {
		line = append(line, field("error", errorText(out.Err)))
	}

	if out.DryRun && out.Payload != nil {
		payload, err := json.Marshal(out.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload for row %d: %w", out.Row, err)
		}
		// last on the line and never quoted
		line = append(line, "payload="+string(payload))
	}

	_, err := fmt.Fprintln(w, strings.Join(line, " "))
	return err
}

func errorText(e *errors.StandardError) string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// field renders key=value, quoting values that are empty or would break
// the space separated format.
func field(key, value string) string {
	if value == "" || strings.ContainsAny(value, " \t\"=\n\r") {
		value = strconv.Quote(value)
	}
	return key + "=" + value
}
