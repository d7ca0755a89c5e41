package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.err
}

func (f *fakeExec) List(_ context.Context, a []string) error      { return f.record("list", a) }
func (f *fakeExec) Show(_ context.Context, a []string) error      { return f.record("show", a) }
func (f *fakeExec) Add(_ context.Context, a []string) error       { return f.record("add", a) }
func (f *fakeExec) Edit(_ context.Context, a []string) error      { return f.record("edit", a) }
func (f *fakeExec) Archive(_ context.Context, a []string) error   { return f.record("archive", a) }
func (f *fakeExec) Unarchive(_ context.Context, a []string) error { return f.record("unarchive", a) }
func (f *fakeExec) Delete(_ context.Context, a []string) error    { return f.record("delete", a) }
func (f *fakeExec) Search(_ context.Context, a []string) error    { return f.record("search", a) }
func (f *fakeExec) Diary(_ context.Context, a []string) error     { return f.record("diary", a) }
func (f *fakeExec) Diaries(_ context.Context, a []string) error   { return f.record("diaries", a) }
func (f *fakeExec) WriteDiary(_ context.Context, a []string) error {
	return f.record("write-diary", a)
}
func (f *fakeExec) DeleteDiary(_ context.Context, a []string) error {
	return f.record("delete-diary", a)
}
func (f *fakeExec) Sync(_ context.Context, a []string) error   { return f.record("sync", a) }
func (f *fakeExec) Status(_ context.Context, a []string) error { return f.record("status", a) }
func (f *fakeExec) Failed(_ context.Context, a []string) error { return f.record("failed", a) }
func (f *fakeExec) Retry(_ context.Context, a []string) error  { return f.record("retry", a) }

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"",
		"list all",
		"l",
		"show abc",
		"add",
		"edit abc",
		"archive abc",
		"unarchive abc",
		"delete abc",
		"search two words",
		"diary 2024-01-01",
		"diaries",
		"write-diary 2024-01-01",
		"delete-diary 2024-01-01",
		"sync",
		"status",
		"failed",
		"retry op-1",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr(input))

	assert.Equal(t, []string{
		"list all", "list", "show abc", "add", "edit abc", "archive abc", "unarchive abc",
		"delete abc", "search two words", "diary 2024-01-01", "diaries",
		"write-diary 2024-01-01", "delete-diary 2024-01-01", "sync", "status", "failed", "retry op-1",
	}, exec.calls)
}

func TestRunREPL_ReportsErrorsAndUnknown(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{err: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "md> " }, rdr("sync\nfoobar\nquit\n"))

	out := strings.Join(*lines, "")
	assert.Contains(t, out, "md> ")
	assert.Contains(t, out, "error: boom")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Bye!")
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("status"))
	assert.Equal(t, []string{"status"}, exec.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec = &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("status\n"))
	assert.Empty(t, exec.calls)
}
