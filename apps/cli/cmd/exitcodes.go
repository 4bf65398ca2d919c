package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/spag/packages/errdef"
)

// Exit codes for spag CLI
const (
	// ExitSuccess indicates the command completed
	ExitSuccess = 0

	// ExitUnexpected indicates an unclassified failure
	ExitUnexpected = 1

	ExitMalformedTemplate   = 2
	ExitNoActiveEnvironment = 3
	ExitTransportError      = 4
	ExitProtocolError       = 5
	ExitEnvironmentNotFound = 6
	ExitUnresolvedVariable  = 7
	ExitMalformedHeader     = 8
	ExitNoEndpoint          = 9
	ExitIndexOutOfRange     = 10
	ExitDocumentIOError     = 11
	ExitRequestNotFound     = 12

	// ExitHTTPError indicates an HTTP error status with --fail
	ExitHTTPError = 22

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

var exitCodes = map[errdef.Code]int{
	errdef.CodeMalformedTemplate:   ExitMalformedTemplate,
	errdef.CodeNoActiveEnvironment: ExitNoActiveEnvironment,
	errdef.CodeTransport:           ExitTransportError,
	errdef.CodeProtocol:            ExitProtocolError,
	errdef.CodeEnvironmentNotFound: ExitEnvironmentNotFound,
	errdef.CodeUnresolvedVariable:  ExitUnresolvedVariable,
	errdef.CodeMalformedHeader:     ExitMalformedHeader,
	errdef.CodeNoEndpoint:          ExitNoEndpoint,
	errdef.CodeIndexOutOfRange:     ExitIndexOutOfRange,
	errdef.CodeDocumentIO:          ExitDocumentIOError,
	errdef.CodeRequestNotFound:     ExitRequestNotFound,
	errdef.CodeUsage:               ExitUsageError,
}

// statusError reports an HTTP error status when --fail is set. The response
// has already been printed.
type statusError struct {
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server responded %s", e.status)
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var status *statusError
	if errors.As(err, &status) {
		return ExitHTTPError
	}
	if code, ok := exitCodes[errdef.CodeOf(err)]; ok {
		return code
	}
	// cobra reports unknown subcommands as plain errors
	if strings.HasPrefix(err.Error(), "unknown command") {
		return ExitUsageError
	}
	return ExitUnexpected
}
