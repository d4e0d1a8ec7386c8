package model

// RunResult captures one analyzer invocation against one contract.
// Raw stdout/stderr live on disk; only their locations and the outcome
// travel between stages.
type RunResult struct {
	Contract      string  `json:"contract"`
	ContractPath  string  `json:"contract_path"`
	Tool          string  `json:"tool"`
	Success       bool    `json:"success"`
	ExecutionTime float64 `json:"execution_time"`
	RawPath       string  `json:"raw_path,omitempty"`
	StderrPath    string  `json:"stderr_path,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// ParsedResult is the on-disk shape of one parsed report,
// written under <results>/parsed/<tool>/<contract>_<tool>_parsed.json.
type ParsedResult struct {
	Contract      string   `json:"contract"`
	Tool          string   `json:"tool"`
	ExecutionTime float64  `json:"execution_time,omitempty"`
	Analysis      Analysis `json:"analysis"`
}
