// Package audit persists the original/cleaned attribute pairs for every
// processed imaging file in a SQLite database.
//
// The database is the only place where cleaned outputs can be traced back
// to source attributes. It lives outside the destination directory and the
// operator may delete it once the run has been verified.
package audit
