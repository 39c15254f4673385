package parse

import (
	"testing"

	"github.com/haricheung/coshell/internal/shellcore"
)

func TestParse_SingleCommand(t *testing.T) {
	got, err := Parse("echo hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sep != shellcore.SepNone {
		t.Fatalf("got sep %v, want NONE", got.Sep)
	}
	if len(got.Inputs) != 1 || got.Inputs[0].Kind != shellcore.KindCommand {
		t.Fatalf("got %+v, want one command", got)
	}
	want := []string{"echo", "hi"}
	if !equalArgs(got.Inputs[0].Command.Args, want) {
		t.Fatalf("got args %v, want %v", got.Inputs[0].Command.Args, want)
	}
}

func TestParse_TopLevelPipe(t *testing.T) {
	got, err := Parse("echo a | tr a b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sep != shellcore.SepPipe {
		t.Fatalf("got sep %v, want PIPE", got.Sep)
	}
	if len(got.Inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(got.Inputs))
	}
	if got.Inputs[0].Kind != shellcore.KindCommand || got.Inputs[1].Kind != shellcore.KindCommand {
		t.Fatalf("got %+v, want two commands", got)
	}
}

func TestParse_Sequential(t *testing.T) {
	got, err := Parse("echo x ; echo y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sep != shellcore.SepSeq {
		t.Fatalf("got sep %v, want SEQ", got.Sep)
	}
	if len(got.Inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(got.Inputs))
	}
}

func TestParse_Parallel(t *testing.T) {
	got, err := Parse("sleep 1 & echo done")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sep != shellcore.SepPara {
		t.Fatalf("got sep %v, want PARA", got.Sep)
	}
}

func TestParse_SubshellTopLevel(t *testing.T) {
	got, err := Parse("(echo 1 ; echo 2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sep != shellcore.SepNone {
		t.Fatalf("got sep %v, want NONE", got.Sep)
	}
	if len(got.Inputs) != 1 || got.Inputs[0].Kind != shellcore.KindSubshell {
		t.Fatalf("got %+v, want one subshell", got)
	}
	if got.Inputs[0].Subshell != "echo 1 ; echo 2" {
		t.Fatalf("got subshell text %q", got.Inputs[0].Subshell)
	}
}

func TestParse_SubshellAsPipelineStage(t *testing.T) {
	got, err := Parse("(echo 1 ; echo 2) | wc -l")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sep != shellcore.SepPipe {
		t.Fatalf("got sep %v, want PIPE", got.Sep)
	}
	if len(got.Inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(got.Inputs))
	}
	if got.Inputs[0].Kind != shellcore.KindSubshell {
		t.Fatalf("got first stage kind %v, want SUBSHELL", got.Inputs[0].Kind)
	}
	if got.Inputs[1].Kind != shellcore.KindCommand {
		t.Fatalf("got second stage kind %v, want COMMAND", got.Inputs[1].Kind)
	}
}

func TestParse_NestedPipelineInsideSequence(t *testing.T) {
	got, err := Parse("echo a | tr a b ; echo c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sep != shellcore.SepSeq {
		t.Fatalf("got sep %v, want SEQ", got.Sep)
	}
	if len(got.Inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(got.Inputs))
	}
	if got.Inputs[0].Kind != shellcore.KindPipeline {
		t.Fatalf("got first input kind %v, want PIPELINE", got.Inputs[0].Kind)
	}
	if len(got.Inputs[0].Pipeline) != 2 {
		t.Fatalf("got %d pipeline stages, want 2", len(got.Inputs[0].Pipeline))
	}
	if got.Inputs[1].Kind != shellcore.KindCommand {
		t.Fatalf("got second input kind %v, want COMMAND", got.Inputs[1].Kind)
	}
}

func TestParse_BroadcastSubshell(t *testing.T) {
	got, err := Parse("(cat & cat)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Inputs[0].Kind != shellcore.KindSubshell {
		t.Fatalf("got %+v, want one subshell", got)
	}
	if got.Inputs[0].Subshell != "cat & cat" {
		t.Fatalf("got subshell text %q", got.Inputs[0].Subshell)
	}
}

func TestParse_NestedSubshellDepth(t *testing.T) {
	got, err := Parse("((echo a) ; echo b)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Inputs[0].Kind != shellcore.KindSubshell {
		t.Fatalf("got %+v, want one subshell", got)
	}
	if got.Inputs[0].Subshell != "(echo a) ; echo b" {
		t.Fatalf("got subshell text %q", got.Inputs[0].Subshell)
	}
}

func TestParse_EmptyInputFails(t *testing.T) {
	if _, err := Parse("   "); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestParse_MixedTopSeparatorsFails(t *testing.T) {
	if _, err := Parse("a ; b & c"); err == nil {
		t.Fatal("expected error for mixed ';' and '&' at top level")
	}
}

func TestParse_UnbalancedParensFails(t *testing.T) {
	if _, err := Parse("(echo a ; echo b"); err == nil {
		t.Fatal("expected error for unclosed paren")
	}
	if _, err := Parse("echo a)"); err == nil {
		t.Fatal("expected error for stray close paren")
	}
}

func TestParse_TrailingSeparatorFails(t *testing.T) {
	if _, err := Parse("echo a ;"); err == nil {
		t.Fatal("expected error for trailing separator")
	}
}

func TestParse_SubshellStageInNestedPipelineFails(t *testing.T) {
	if _, err := Parse("echo a | (echo b) ; echo c"); err == nil {
		t.Fatal("expected error: subshell stage not permitted inside a nested (non-top) pipeline")
	}
}

func equalArgs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
