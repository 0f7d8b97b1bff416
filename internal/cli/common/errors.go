package common

import (
	"github.com/crmarques/credstore/faults"
)

func ValidationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func ioError(message string, cause error) error {
	return faults.NewTypedError(faults.IOError, message, cause)
}
