package result

// Status identifies the outcome variant carried by a Result.
type Status int

const (
	// StatusUnspecified is the zero value. A default-constructed Result is
	// never a success; only the constructors below produce one.
	StatusUnspecified Status = iota
	// StatusSuccess means the operation completed and Value is set.
	StatusSuccess
	// StatusInvalid means the input failed validation; Errors is set.
	StatusInvalid
	// StatusNotFound means the target aggregate does not exist or is deleted.
	StatusNotFound
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of a command or query. It is always exactly one of
// success, invalid or not-found, and can only be built through the
// constructors below.
type Result[T any] struct {
	status  Status
	value   T
	message string
	errors  []FieldError
}

// Success builds a successful result carrying a value and a message.
func Success[T any](value T, message string) Result[T] {
	return Result[T]{
		status:  StatusSuccess,
		value:   value,
		message: message,
	}
}

// Invalid builds a validation-failure result. The error order is preserved.
func Invalid[T any](errs ...FieldError) Result[T] {
	return Result[T]{
		status: StatusInvalid,
		errors: errs,
	}
}

// NotFound builds a not-found result with a message describing the miss.
func NotFound[T any](message string) Result[T] {
	return Result[T]{
		status:  StatusNotFound,
		message: message,
	}
}

// Status returns the outcome variant.
func (r Result[T]) Status() Status {
	return r.status
}

// Value returns the success value. It is the zero value unless IsSuccess.
func (r Result[T]) Value() T {
	return r.value
}

// Message returns the success or not-found message.
func (r Result[T]) Message() string {
	return r.message
}

// ValidationErrors returns the field errors of an invalid result in the
// order they were reported.
func (r Result[T]) ValidationErrors() []FieldError {
	return r.errors
}

// IsSuccess reports whether the result is the success variant.
func (r Result[T]) IsSuccess() bool {
	return r.status == StatusSuccess
}

// IsInvalid reports whether the result is the validation-failure variant.
func (r Result[T]) IsInvalid() bool {
	return r.status == StatusInvalid
}

// IsNotFound reports whether the result is the not-found variant.
func (r Result[T]) IsNotFound() bool {
	return r.status == StatusNotFound
}
