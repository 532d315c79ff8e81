package errors_test

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/ajitpratap0/stockpile/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeLookup, "prototype not registered").
		WithDetail("key", "ghost")

	fmt.Println(err.Error())
	fmt.Println(err.Details["key"])

	// Output:
	// lookup: prototype not registered
	// ghost
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeFile, "failed to read pool config").
		WithDetail("file", "pool.yaml")

	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("This is a file error")
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Cause is preserved")
	}

	// Output:
	// This is a file error
	// Cause is preserved
}

// ExampleTypeOf shows how pool callers classify failures.
func ExampleTypeOf() {
	cfgErr := errors.New(errors.ErrorTypeConfig, "pool already configured")
	retErr := errors.Newf(errors.ErrorTypeReturn, "no recycle bucket for key %q", "boss")

	fmt.Println(errors.TypeOf(cfgErr))
	fmt.Println(errors.TypeOf(retErr))
	fmt.Println(errors.TypeOf(io.EOF))
	fmt.Printf("%q\n", errors.TypeOf(nil))

	// Output:
	// config
	// return
	// internal
	// ""
}
