package presenter

import (
	"encoding/json"
	"io"

	"github.com/themis-iprm/themis/internal/application/port/output"
)

// JSONPresenter implements output.Presenter for JSON output
// Formats all output as JSON for programmatic consumption
type JSONPresenter struct {
	output io.Writer
}

// NewJSONPresenter creates a new JSON presenter
func NewJSONPresenter(output io.Writer) output.Presenter {
	return &JSONPresenter{output: output}
}

func (p *JSONPresenter) encode(v interface{}) error {
	enc := json.NewEncoder(p.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PresentSuccess presents a successful result as JSON
func (p *JSONPresenter) PresentSuccess(message string, data interface{}) error {
	return p.encode(map[string]interface{}{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// PresentError presents an error as JSON
func (p *JSONPresenter) PresentError(err error) error {
	if encErr := p.encode(map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	}); encErr != nil {
		return encErr
	}
	return err
}

// PresentProgress presents progress information as JSON
func (p *JSONPresenter) PresentProgress(message string, progress int, total int) error {
	percent := 0.0
	if total > 0 {
		percent = float64(progress) / float64(total) * 100
	}
	return p.encode(map[string]interface{}{
		"type":     "progress",
		"message":  message,
		"progress": progress,
		"total":    total,
		"percent":  percent,
	})
}

// New returns the presenter for format: "json" or anything else for text
func New(format string, w io.Writer) output.Presenter {
	if format == "json" {
		return NewJSONPresenter(w)
	}
	return NewCLIWizardPresenter(w)
}
