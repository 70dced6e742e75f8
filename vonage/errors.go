package vonage

import "errors"

var (
	// ErrRemoteFetch wraps failures reading conversation state
	ErrRemoteFetch = errors.New("remote fetch failed")
	// ErrRemoteWrite wraps failures creating events, replacing NCCOs or sending messages
	ErrRemoteWrite = errors.New("remote write failed")
	// ErrAuth wraps failures minting an application credential
	ErrAuth = errors.New("credential minting failed")
)
