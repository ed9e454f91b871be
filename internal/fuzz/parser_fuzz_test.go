package fuzztests

import (
	"context"
	"testing"
	"time"

	"lispc/internal/codegen"
	"lispc/internal/hir"
	"lispc/internal/parser"
	"lispc/internal/source"
	"lispc/internal/testkit"
)

// parseTimeout is the maximum time allowed for one input. Exceeding it
// points at a loop that never consumes input.
const parseTimeout = 5 * time.Second

// FuzzPipeline checks that whatever the parser accepts is lowered and emitted
// without error, and that the trees satisfy the structural invariants.
func FuzzPipeline(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.lisp", input))

		prog, err := parser.ParseFile(file, parser.Options{MaxDepth: 512})
		if err != nil {
			if prog != nil {
				t.Fatalf("parse error %v with a program", err)
			}
			return
		}
		if err := testkit.CheckSpanInvariants(prog, file); err != nil {
			t.Fatalf("span invariants: %v", err)
		}

		low, err := hir.Lower(prog)
		if err != nil {
			t.Fatalf("lower: %v", err)
		}
		if err := testkit.CheckLoweredShape(prog, low); err != nil {
			t.Fatalf("lowered shape: %v", err)
		}
		if _, err := codegen.Generate(low); err != nil {
			t.Fatalf("emit: %v", err)
		}
	})
}

// FuzzParserNoHang runs the parser under a deadline.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("(((((((((((((((((((((((((((((((("))
	f.Add([]byte("))))))))"))
	f.Add([]byte("(a \"b (c\" d)"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)

		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("fuzz.lisp", input))
			_, _ = parser.ParseFile(file, parser.Options{})
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], "..."...)
}
