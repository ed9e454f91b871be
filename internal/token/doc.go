// Package token defines lexical token kinds for the lispc compiler.
// Invariants:
//   - Token.Span covers the lexeme exactly (Start..End), quotes included for strings.
//   - Token.Text is the token value: "(" or ")" for parens, the digit run for numbers,
//     the contents between the quotes for strings, the letter run for names.
//   - Whitespace never produces a token; there is no trivia.
//   - Invalid and EOF are produced only by Lexer.Next and never appear in a
//     Tokenize result.
package token
