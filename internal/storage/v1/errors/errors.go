package errors

import (
	"fmt"
)

type (
	FileError struct {
		Err error
	}
	CapacityExceededError struct {
		ID string
	}
	NotEnoughFundsError struct {
		ID     string
		Amount float64
		Min    float64
	}
	NotFoundError struct {
		Err error
		ID  string
	}
	ContextTimeoutExceededError struct {
		Err error
	}
)

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: could not access database file", e.Err.Error())
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: max screenshots reached", e.ID)
}

func (e *NotEnoughFundsError) Error() string {
	return fmt.Sprintf("%s: not enough funds, present - %v, required - %v", e.ID, e.Amount, e.Min)
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found", e.ID)
}

func (e *ContextTimeoutExceededError) Error() string {
	return fmt.Sprintf("%s: context timeout exceeded", e.Err.Error())
}
