package main

import (
	"errors"
	"os"

	"github.com/alnah/go-pubstream/internal/assets"
	"github.com/alnah/go-pubstream/internal/config"
	"github.com/alnah/go-pubstream/internal/publication"
	"github.com/alnah/go-pubstream/internal/readerconfig"
)

// Process exit codes. Custom codes stay below 126, which shells reserve.
const (
	ExitSuccess = 0
	ExitGeneral = 1
	ExitUsage   = 2 // bad flags, env, config or reader settings
	ExitIO      = 3 // unreadable input, unwritable output, missing library
	ExitStore   = 4 // reader state backend unreachable
)

// exitClasses is checked in order; the first class with a matching
// sentinel decides the code.
var exitClasses = []struct {
	code int
	errs []error
}{
	{ExitStore, []error{ErrStoreUnavailable}},
	{ExitIO, []error{
		os.ErrNotExist,
		os.ErrPermission,
		ErrReadInput,
		ErrWriteOutput,
		publication.ErrInvalidRoot,
	}},
	{ExitUsage, []error{
		ErrUsage,
		ErrInvalidEnv,
		ErrUnsupportedShell,
		config.ErrConfigNotFound,
		config.ErrConfigParse,
		config.ErrEmptyConfigName,
		config.ErrFieldTooLong,
		config.ErrInvalidValue,
		assets.ErrUnknownMode,
		readerconfig.ErrInvalidColCount,
		readerconfig.ErrInvalidAlign,
		readerconfig.ErrFieldTooLong,
	}},
}

// exitCodeFor maps err to a process exit code. Sentinels are matched with
// errors.Is, so wrapping with %w keeps the classification.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	for _, class := range exitClasses {
		for _, target := range class.errs {
			if errors.Is(err, target) {
				return class.code
			}
		}
	}
	return ExitGeneral
}
