// Content governance for the Quillfeed posting platform.
//
// This package (`github.com/quillfeed/gatekeeper/govern`) composes the checks
// a piece of user-submitted content must pass before the platform accepts it:
// format validation, text sanitization, per-author rate governance, and
// automated moderation scoring. It also holds the citizen-report ledger,
// which sits outside the submission path. The pipeline tolerates failure of
// the external scoring dependency (fail-open, logged) and keeps per-author
// rate accounting correct under concurrent submission.
//
// See `cmd/bouncer` for the daemon built on this package.
package govern
