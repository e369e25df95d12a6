package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

var ErrorDatasetMissing = errors.New("required dataset not provided")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
