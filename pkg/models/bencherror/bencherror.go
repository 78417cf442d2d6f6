package bencherror

import (
	"errors"
	"fmt"
)

const (
	BENCH_UNEXPECTED = "BENCHU"
	BENCH_CONFIG     = "BENCHC"
	BENCH_INIT       = "BENCHI"
	BENCH_OPERATION  = "BENCHO"
	BENCH_RECORD     = "BENCHR"
	BENCH_NOT_READY  = "BENCHN"
	BENCH_LAUNCH     = "BENCHL"
)

var existingErrorCodeMap = map[string]string{
	BENCH_CONFIG:    "Configuration error",
	BENCH_INIT:      "Initialization failure",
	BENCH_OPERATION: "Operation failure",
	BENCH_RECORD:    "Performance record error",
	BENCH_NOT_READY: "Store not ready",
	BENCH_LAUNCH:    "Launch failure",
}

func GetMessageByCode(errorCode string) string {
	rep, ok := existingErrorCodeMap[errorCode]
	if ok {
		return rep
	}
	return "Unexpected error"
}

var _ error = &BenchError{}

type BenchError struct {
	Err error

	ErrorCode string
}

func New(errorCode string, errorMsg string) *BenchError {
	return &BenchError{
		Err:       errors.New(errorMsg),
		ErrorCode: errorCode,
	}
}

func Newf(errorCode string, format string, a ...any) *BenchError {
	return &BenchError{
		Err:       fmt.Errorf(format, a...),
		ErrorCode: errorCode,
	}
}

func (er *BenchError) Error() string {
	return fmt.Sprintf("%s: %s", GetMessageByCode(er.ErrorCode), er.Err)
}

func (er *BenchError) Unwrap() error {
	return er.Err
}

// Is reports whether any error in err's chain is a BenchError with the given code.
func Is(err error, code string) bool {
	var be *BenchError
	if errors.As(err, &be) {
		return be.ErrorCode == code
	}
	return false
}
