package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"taskmgr/internal/exitcode"
	"taskmgr/internal/service"
	"taskmgr/internal/session"
)

// reportError prints err as a single "error: ..." line and returns the exit
// code for its class.
func reportError(errOut io.Writer, err error) int {
	var (
		ve *service.ValidationError
		ce *service.ClientError
		se *service.ServerError
		ne *service.NetworkError
		ue *usageError
	)

	switch {
	case errors.As(err, &ve), errors.As(err, &ue):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, session.ErrExpired):
		fmt.Fprintln(errOut, "error: session expired (run: taskmgr login)")
		return exitcode.AuthError
	case errors.Is(err, session.ErrMalformedToken):
		fmt.Fprintln(errOut, "error: invalid session token (run: taskmgr login)")
		return exitcode.AuthError
	case service.IsUnauthorized(err):
		fmt.Fprintln(errOut, "error: session expired or revoked (run: taskmgr login)")
		return exitcode.AuthError
	case errors.Is(err, service.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case service.IsNotFound(err):
		fmt.Fprintf(errOut, "error: %v\n", notFoundMessage(err))
		return exitcode.UserError
	case errors.As(err, &ce):
		fmt.Fprintf(errOut, "error: %s\n", clientMessage(ce))
		return exitcode.UserError
	case errors.As(err, &se), errors.As(err, &ne):
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// notFoundMessage keeps local lookups ("project not found: x") and maps
// server 404s to a plain "not found".
func notFoundMessage(err error) string {
	var ce *service.ClientError
	if errors.As(err, &ce) {
		return "not found"
	}
	return err.Error()
}

func clientMessage(ce *service.ClientError) string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Error()
}
