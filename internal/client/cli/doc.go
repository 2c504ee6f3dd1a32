// Package cli provides the interactive movieshelf command-line client.
//
// Each REPL line is parsed by a fresh cobra command tree, so flags never
// leak from one command to the next. Commands map one-to-one onto the
// session, trending and saved-movie services:
//
//	register | login | logout | whoami | profile
//	search <term> [--movie-id --title --poster --rating --released]
//	trending [n]
//	save <movie-id> <title...> [--poster --rating --released]
//	unsave <saved-id> | saved
//	help | exit
//
// Commands that need a session refuse to run until the session state is
// logged in. Failures are reported through Describe.
package cli
