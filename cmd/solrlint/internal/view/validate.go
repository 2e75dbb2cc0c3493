package view

import (
	"encoding/json"
	"time"

	"github.com/fatih/color"
)

type ValidateView interface {
	Render(result ValidateResult)
}

type ValidateResult struct {
	FileCount int
	Files     []string
	Errors    []ValidateFileError
}

// ValidateFileError is the first violation found in one file. Code is empty
// when the file could not be read.
type ValidateFileError struct {
	File    string `json:"file"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (r ValidateResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r ValidateResult) failed(file string) (ValidateFileError, bool) {
	for _, e := range r.Errors {
		if e.File == file {
			return e, true
		}
	}
	return ValidateFileError{}, false
}

// Human view implementation.

type validateHumanView struct {
	*HumanView
}

func newValidateHumanView(hv *HumanView) *validateHumanView {
	return &validateHumanView{HumanView: hv}
}

func (v *validateHumanView) Render(result ValidateResult) {
	for _, file := range result.Files {
		if e, ok := result.failed(file); ok {
			v.Println(color.RGB(229, 50, 50).Sprintf("Error!"), e.File+":", e.Message)
			v.Printf("%s fails to validate\n", file)
			continue
		}
		v.Printf("%s validates\n", file)
	}

	if !result.HasErrors() {
		v.Println(color.RGB(50, 108, 229).Sprintf("Valid!"), "no errors found.")
	}
}

// JSON view implementation.

type validateJSONView struct {
	*JSONView
}

func newValidateJSONView(jv *JSONView) *validateJSONView {
	return &validateJSONView{JSONView: jv}
}

type validateJSONResult struct {
	Type      string              `json:"type"`
	Status    string              `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Files     int                 `json:"files"`
	Errors    []ValidateFileError `json:"errors,omitempty"`
}

func (v *validateJSONView) Render(result ValidateResult) {
	out := validateJSONResult{
		Type:      "validate",
		Timestamp: time.Now(),
		Files:     result.FileCount,
	}

	if result.HasErrors() {
		out.Status = "error"
		out.Errors = result.Errors
	} else {
		out.Status = "success"
	}

	if data, err := json.Marshal(out); err == nil {
		v.Println(string(data))
	}
}

func NewValidateView(v Viewer) ValidateView {
	switch vt := v.(type) {
	case *HumanView:
		return newValidateHumanView(vt)
	case *JSONView:
		return newValidateJSONView(vt)
	default:
		panic("unknown view type")
	}
}
