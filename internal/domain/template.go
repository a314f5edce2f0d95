package domain

// Template is a prompt template loaded from the registry file.
type Template struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Body     string `json:"prompt"`
	Tone     string `json:"tone,omitempty"`
}
