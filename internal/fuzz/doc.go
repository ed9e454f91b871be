// Package fuzztests houses Go fuzz harnesses that push arbitrary bytes through
// the compiler pipeline (source -> lexer -> parser -> lowering -> emitter) and
// check that it never panics or hangs, and that every stage accepts what the
// previous one produced.
package fuzztests
