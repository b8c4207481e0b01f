package models

import "encoding/json"

// Wizard carries the structured wizard answers from the client.
type Wizard struct {
	Purpose     string `json:"purpose"`
	Level       string `json:"level"`
	Periodicity string `json:"periodicity"`
	Industry    string `json:"industry"`
}

// Preferences carries presentation choices.
type Preferences struct {
	Theme      string `json:"theme"`
	WantCharts bool   `json:"wantCharts"`
	WantImages bool   `json:"wantImages"`
}

// FileOptions names the output attachment.
type FileOptions struct {
	FileName  string `json:"fileName"`
	SheetName string `json:"sheetName,omitempty"`
}

// GenerateRequest is the wire shape of a generation request. At least one of
// Prompt, Wizard or Spec must be present.
type GenerateRequest struct {
	Prompt      string          `json:"prompt,omitempty"`
	Wizard      *Wizard         `json:"wizard,omitempty"`
	Preferences Preferences     `json:"preferences"`
	Context     map[string]any  `json:"context,omitempty"`
	File        *FileOptions    `json:"file,omitempty"`
	LogoDataURL string          `json:"logoDataUrl,omitempty"`
	Mode        string          `json:"mode,omitempty"` // "" or "spec"
	Spec        json.RawMessage `json:"spec,omitempty"`
}
