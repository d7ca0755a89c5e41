package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

const helpText = `Available commands:
  list [archived|all]   list memos
  show <id>             show a memo
  add                   add a memo
  edit <id>             edit a memo
  archive <id>          archive a memo (unarchive <id> to undo)
  delete <id>           delete a memo
  search <text>         search memo content and tags
  diary <date>          show the diary for YYYY-MM-DD
  diaries               list diaries
  write-diary <date>    create or replace a diary
  delete-diary <date>   delete a diary
  sync                  synchronize now
  status                connectivity and queue status
  failed                list operations that gave up
  retry <op-id>         put a failed operation back in the queue
  exit | quit           leave the program`

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Archive(ctx context.Context, args []string) error
	Unarchive(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Diary(ctx context.Context, args []string) error
	Diaries(ctx context.Context, args []string) error
	WriteDiary(ctx context.Context, args []string) error
	DeleteDiary(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Failed(ctx context.Context, args []string) error
	Retry(ctx context.Context, args []string) error
}

// runREPL reads commands from reader and dispatches them to a until EOF,
// "exit"/"quit" or ctx cancellation. Command errors are printed and the
// loop continues. Commands that prompt for more input share reader.
func runREPL(ctx context.Context, a execIface, promptFn func() string, reader *bufio.Reader) {
	commands := map[string]func(context.Context, []string) error{
		"list":         a.List,
		"l":            a.List,
		"show":         a.Show,
		"add":          a.Add,
		"edit":         a.Edit,
		"archive":      a.Archive,
		"unarchive":    a.Unarchive,
		"delete":       a.Delete,
		"search":       a.Search,
		"diary":        a.Diary,
		"diaries":      a.Diaries,
		"write-diary":  a.WriteDiary,
		"delete-diary": a.DeleteDiary,
		"sync":         a.Sync,
		"status":       a.Status,
		"failed":       a.Failed,
		"retry":        a.Retry,
	}

	for ctx.Err() == nil {
		if p := promptFn(); p != "" {
			printlnFn(p)
		}
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		run, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if err := run(ctx, args); err != nil {
			printlnFn("error:", err)
		}
	}
}
