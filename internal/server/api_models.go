package server

// PredictRequest is the body of a single classification request.
type PredictRequest struct {
	URL *string `json:"url" example:"paypa1-login.secure-account.tk"`
}

// ValidationErrorResponse lists the problems with each request field.
type ValidationErrorResponse struct {
	URL []string `json:"url" example:"This field is required."`
}

// StartBatchJobRequest lists the URLs a batch job classifies.
type StartBatchJobRequest struct {
	URLs []string `json:"urls" example:"[\"https://example.com\",\"http://paypa1.com\"]"`
}

// HealthResponse reports that the server is up.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"model artifacts unavailable"`
}

const (
	msgFieldRequired = "This field is required."
	msgFieldBlank    = "This field may not be blank."
	msgFieldNull     = "This field may not be null."
)
