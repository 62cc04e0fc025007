// This package contains the standalone slash commands (/level, /ping).
// Grouped commands live in their own *_handler package.
//
// There should be 2 functions per handler, one for adding the handler &
// information to send to Discord (public), and one for handling the
// interaction (private).
//
// Only return errors when it's the backend's fault, nil if user's fault.
package handler
