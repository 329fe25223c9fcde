// All this does is contain in one place the constants controlling which bits of the inner
// workings of the parser/certifier are displayed for debugging purposes. In a release they
// must all be set to false.

package settings

const (
	// These do what it sounds like.
	SHOW_PARSER     = false
	SHOW_REGISTER   = false // Logs each declaration as the registration path commits it.
	SHOW_REDUCTIONS = false // Extremely noisy on any real export file.

	SHOW_TESTS = true // Says whether the tests should say what is being tested, useful if one of them crashes and we don't know which.
)
