package api

type (
	// DataInput carries a JSON payload
	DataInput struct {
		Data string `json:"data"`
	}

	// RequestInput names a request
	RequestInput struct {
		RequestID string `json:"requestId"`
	}

	// UserInput names a request and a user
	UserInput struct {
		RequestID string `json:"requestId"`
		User      string `json:"user"`
	}

	// AssignInput names reviewers for a request
	AssignInput struct {
		Assignees []string `json:"assignees"`
		RequestID string `json:"requestId"`
	}

	// ReviewInput carries a review payload
	ReviewInput struct {
		Data      string `json:"data"`
		RequestID string `json:"requestId"`
	}

	// EvaluationInput carries a board evaluation
	EvaluationInput struct {
		Data      string `json:"data"`
		RequestID string `json:"requestId"`
		Decision  string `json:"decision"`
	}

	// Output collects result fields
	Output struct {
		Fields map[string]interface{}
	}
)

// Set sets a result field
func (o *Output) Set(name string, value interface{}) {
	if o.Fields == nil {
		o.Fields = map[string]interface{}{}
	}
	o.Fields[name] = value
}
