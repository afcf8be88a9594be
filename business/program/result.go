package program

import "ceap/domain"

type ResultStatus string

const (
	StatusSuccess         ResultStatus = "success"
	StatusValidationError ResultStatus = "validation_error"
	StatusNotFound        ResultStatus = "not_found"
	StatusError           ResultStatus = "error"
)

// OperationResult is the tagged outcome of a registry operation.
// Expected outcomes (validation failures, missing programs) are result
// variants rather than errors; Err is populated only for repository
// failures.
type OperationResult struct {
	Status   ResultStatus
	Program  *domain.ProgramConfig
	Programs []domain.ProgramConfig
	Message  string
	Err      error
}

func (r OperationResult) OK() bool {
	return r.Status == StatusSuccess
}

func success(cfg *domain.ProgramConfig) OperationResult {
	return OperationResult{Status: StatusSuccess, Program: cfg}
}

func successList(cfgs []domain.ProgramConfig) OperationResult {
	return OperationResult{Status: StatusSuccess, Programs: cfgs}
}

func validationFailure(msg string) OperationResult {
	return OperationResult{Status: StatusValidationError, Message: msg}
}

func notFound(programID string) OperationResult {
	return OperationResult{Status: StatusNotFound, Message: "program " + programID + " not found"}
}

func failure(op string, err error) OperationResult {
	return OperationResult{Status: StatusError, Err: &domain.OperationError{Op: op, Err: err}}
}
