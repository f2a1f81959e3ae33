package models

// APIStatus is the status block every venue response carries.
type APIStatus struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failed reports whether the venue flagged the response as unsuccessful.
func (s APIStatus) Failed() bool {
	return !s.Success
}

// Reason returns the most specific failure text the venue sent.
func (s APIStatus) Reason() string {
	if s.Error != "" {
		return s.Error
	}
	if s.Message != "" {
		return s.Message
	}
	return "request was not successful"
}
