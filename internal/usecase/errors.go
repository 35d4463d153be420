package usecase

import "errors"

const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeForbiddenTransition = "FORBIDDEN_TRANSITION"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeExpired             = "EXPIRED"
	CodeAlreadyResponded    = "ALREADY_RESPONDED"
	CodeConflict            = "CONFLICT"
	CodeForbidden           = "FORBIDDEN"
	CodeDatabase            = "DATABASE_ERROR"
	CodeStorage             = "STORAGE_ERROR"
)

// DomainError é erro de regra de negócio: a requisição não pode ser atendida como veio.
type DomainError struct {
	Code    string
	Message string
	Details map[string]string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é falha de infraestrutura (banco, storage, rede).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func notFound(err error) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: err.Error(), Err: err}
}

func validationFailed(errs []ValidationError) *DomainError {
	details := make(map[string]string, len(errs))
	msg := "validation failed: "
	for i, e := range errs {
		details[e.Field] = e.Message
		if i > 0 {
			msg += ", "
		}
		msg += e.Field + " (" + e.Message + ")"
	}
	return &DomainError{Code: CodeValidation, Message: msg, Details: details}
}

func invalidField(field, message string) *DomainError {
	return validationFailed([]ValidationError{{Field: field, Message: message}})
}

func databaseError(message string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: message, Err: err}
}
