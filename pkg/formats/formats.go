// Package formats provides parsers for the text asset formats the viewer
// reads. Parsers work on in-memory bytes and never touch the filesystem.
package formats
