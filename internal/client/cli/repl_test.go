package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
}

func (f *fakeExec) Top(ctx context.Context, n int) error {
	f.calls = append(f.calls, fmt.Sprintf("top %d", n))
	return nil
}

func (f *fakeExec) Submit(ctx context.Context, name string, score float64, image string) error {
	f.calls = append(f.calls, fmt.Sprintf("submit %s %g %s", name, score, image))
	return nil
}

func (f *fakeExec) Revoke(ctx context.Context, name string) error {
	f.calls = append(f.calls, "revoke "+name)
	return nil
}

func (f *fakeExec) Check(ctx context.Context, score float64) error {
	f.calls = append(f.calls, fmt.Sprintf("check %g", score))
	return nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_Dispatch(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"",
		"top",
		"top 3",
		"top x",
		"submit alice 9.5",
		"submit bob 7 ./look.png",
		"submit carol abc",
		"submit",
		"revoke alice",
		"revoke",
		"check 8",
		"check nope",
		"foobar",
		"exit",
		"top",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, bufio.NewScanner(strings.NewReader(input)))

	assert.Equal(t, []string{
		"top 0",
		"top 3",
		"submit alice 9.5 ",
		"submit bob 7 ./look.png",
		"revoke alice",
		"check 8",
	}, exec.calls)

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Available commands")
	assert.Contains(t, joined, "usage: top [n]")
	assert.Contains(t, joined, "score must be a number")
	assert.Contains(t, joined, "usage: revoke <name>")
	assert.Contains(t, joined, "Unknown command:foobar")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, bufio.NewScanner(strings.NewReader("check 1")))
	assert.Equal(t, []string{"check 1"}, exec.calls)
}
