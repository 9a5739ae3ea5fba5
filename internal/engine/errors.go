package engine

import "errors"

var (
	// ErrUnauthorized marks events from origins the bot does not serve.
	// Callers drop these without responding.
	ErrUnauthorized = errors.New("origin not authorized")

	// ErrEmptyPrompt marks a routed request whose prompt is empty after
	// stripping the marker or keyword.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrPermissionDenied marks an elevation attempt by a standard-tier
	// sender.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoTarget marks an elevation request with neither an explicit
	// target nor a replied-to message to derive one from.
	ErrNoTarget = errors.New("no elevation target")

	// ErrBotTarget marks an elevation request aimed at the bot itself.
	ErrBotTarget = errors.New("cannot elevate the bot")
)
