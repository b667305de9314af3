package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/tablecore/internal/compiler"
	"github.com/roach88/tablecore/internal/records"
	"github.com/roach88/tablecore/internal/table"
)

// LoadError represents an error that occurred while loading a table
// definition.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDefinitions compiles every table in path, which may be a single CUE
// file or a directory of CUE files.
func LoadDefinitions(path string) ([]*compiler.TableSpec, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definition not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definition: %v", err)}
	}

	var specs []*compiler.TableSpec
	if info.IsDir() {
		specs, err = compiler.CompileDir(path)
	} else {
		specs, err = compiler.CompileFile(path)
	}
	if err != nil {
		return nil, convertCompileError(err, path)
	}
	return specs, nil
}

// LoadTable compiles the definition, selects tableName and builds the
// table over the records in dataPath.
func LoadTable(defPath, tableName, dataPath string, opts *RootOptions) (*compiler.TableSpec, *table.Table[records.Record], error) {
	specs, err := LoadDefinitions(defPath)
	if err != nil {
		return nil, nil, err
	}
	spec, err := compiler.Lookup(specs, tableName)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}

	data, err := records.Load(dataPath)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, os.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return nil, nil, &LoadError{Code: code, Message: err.Error()}
	}

	tbl, err := spec.Build(data, opts.logger())
	if err != nil {
		var verr compiler.ValidationError
		if errors.As(err, &verr) {
			return nil, nil, &LoadError{Code: verr.Code, Message: err.Error()}
		}
		return nil, nil, &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
	}
	return spec, tbl, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeBuildFailed,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case strings.HasPrefix(field, "columns"):
		return compiler.ErrNoColumns
	case strings.HasPrefix(field, "features"):
		return compiler.ErrUnknownFeature
	case strings.HasPrefix(field, "options"):
		return compiler.ErrInvalidOption
	case strings.HasPrefix(field, "initial_state"):
		return compiler.ErrUnknownStateColumn
	default:
		return ErrCodeGeneric
	}
}

// loadErrorCode returns the code carried by err, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
