// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"bytes"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

// ParseResult contains the result of a successful CUE parse operation.
type ParseResult[T any] struct {
	// Value is the decoded Go value.
	Value *T

	// Unified is the unified CUE value, available for callers that need to
	// inspect the validated document further.
	Unified cue.Value
}

// ParseAndDecode compiles data as CUE, unifies it with the schema
// definition at schemaPath (e.g. "#Config"), requires every field to be
// concrete, and decodes the result into T. Errors name the file given by
// WithFilename and the JSON path of each offending value.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	userValue := ctx.CompileBytes(data, cue.Filename(options.filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), options.filename)
	}

	return unifyAndDecode[T](ctx, schema, schemaPath, userValue, options)
}

// DecodeJSON is ParseAndDecode for JSON documents. The document is extracted
// with the CUE JSON encoder, so JSON syntax errors carry file positions, and is
// then validated against the same kind of schema definition.
func DecodeJSON[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: empty JSON document", options.filename)
	}

	expr, err := cuejson.Extract(options.filename, data)
	if err != nil {
		return nil, FormatError(err, options.filename)
	}

	ctx := cuecontext.New()
	userValue := ctx.BuildExpr(expr)
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), options.filename)
	}

	return unifyAndDecode[T](ctx, schema, schemaPath, userValue, options)
}

func applyOptions(opts []Option) parseOptions {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.filename == "" {
		options.filename = "<input>"
	}
	return options
}

func unifyAndDecode[T any](ctx *cue.Context, schema []byte, schemaPath string, userValue cue.Value, options parseOptions) (*ParseResult[T], error) {
	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, FormatError(err, options.filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, options.filename)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}
