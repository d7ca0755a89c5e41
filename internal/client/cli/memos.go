package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
	"github.com/dmitrijs2005/memodiary/internal/timex"
)

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func oneArg(args []string, format string) (string, error) {
	if len(args) != 1 {
		return "", usage(format)
	}
	return args[0], nil
}

func formatTime(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return timex.FromMillis(ms).Local().Format(time.DateTime)
}

// headline is the first line of s cut to n runes.
func headline(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func pendingMark(reconciled bool) string {
	if reconciled {
		return ""
	}
	return " *"
}

func (a *App) printMemoLine(m models.CachedMemo) {
	line := fmt.Sprintf("%s  %s", m.ID, headline(m.Content, 50))
	if len(m.Tags) > 0 {
		line += "  [" + strings.Join(m.Tags, ", ") + "]"
	}
	if m.Archived {
		line += "  (archived)"
	}
	fmt.Fprintln(a.out, line+pendingMark(m.Reconciled()))
}

func (a *App) printMemos(memos []models.CachedMemo) {
	if len(memos) == 0 {
		fmt.Fprintln(a.out, "no memos")
		return
	}
	for _, m := range memos {
		a.printMemoLine(m)
	}
}

// List prints memos, newest first. Rows marked with * have local changes
// that are not confirmed by the server yet.
func (a *App) List(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usage("list [archived|all]")
	}
	var filter string
	if len(args) == 1 {
		filter = args[0]
	}
	f, err := models.ParseMemoFilter(filter)
	if err != nil {
		return err
	}
	memos, err := a.memos.List(ctx, models.MemoQuery{Filter: f})
	if err != nil {
		return err
	}
	a.printMemos(memos)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := oneArg(args, "show <id>")
	if err != nil {
		return err
	}
	m, err := a.memos.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "id:       %s\n", m.ID)
	if len(m.Tags) > 0 {
		fmt.Fprintf(a.out, "tags:     %s\n", strings.Join(m.Tags, ", "))
	}
	if m.DiaryDate != "" {
		fmt.Fprintf(a.out, "diary:    %s\n", m.DiaryDate)
	}
	fmt.Fprintf(a.out, "archived: %t\n", m.Archived)
	fmt.Fprintf(a.out, "created:  %s\n", formatTime(m.CreatedAt))
	fmt.Fprintf(a.out, "updated:  %s\n", formatTime(m.UpdatedAt))
	if !m.Reconciled() {
		fmt.Fprintln(a.out, "sync:     pending")
	}
	fmt.Fprintf(a.out, "\n%s\n", m.Content)
	return nil
}

func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usage("add")
	}
	content, err := GetMultiline(a.reader, "Enter memo text:", a.out)
	if err != nil {
		return err
	}
	tags, err := GetSimpleText(a.reader, "Tags (comma separated, optional)", a.out)
	if err != nil {
		return err
	}
	date, err := GetSimpleText(a.reader, "Diary date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}

	m, err := a.memos.Create(ctx, models.MemoDraft{Content: content, Tags: ParseTags(tags), DiaryDate: date})
	if err != nil {
		return err
	}
	a.reportSaved("memo "+m.ID, m.Reconciled())
	return nil
}

// Edit prompts for new content and tags. Empty answers keep the current
// value; "-" clears the tags.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := oneArg(args, "edit <id>")
	if err != nil {
		return err
	}
	current, err := a.memos.Get(ctx, id)
	if err != nil {
		return err
	}

	var patch models.MemoPatch
	content, err := GetMultiline(a.reader, "New text (empty keeps the current text):", a.out)
	if err != nil {
		return err
	}
	if content != "" && content != current.Content {
		patch.Content = &content
	}
	tagsIn, err := GetSimpleText(a.reader, fmt.Sprintf("Tags [%s] (empty keeps, - clears)", strings.Join(current.Tags, ", ")), a.out)
	if err != nil {
		return err
	}
	switch tagsIn {
	case "":
	case "-":
		patch.Tags = &[]string{}
	default:
		tags := ParseTags(tagsIn)
		patch.Tags = &tags
	}

	if patch == (models.MemoPatch{}) {
		fmt.Fprintln(a.out, "nothing to change")
		return nil
	}
	m, err := a.memos.Update(ctx, current.ID, patch)
	if err != nil {
		return err
	}
	a.reportSaved("memo "+m.ID, m.Reconciled())
	return nil
}

func (a *App) Archive(ctx context.Context, args []string) error {
	return a.setArchived(ctx, args, true, "archive <id>")
}

func (a *App) Unarchive(ctx context.Context, args []string) error {
	return a.setArchived(ctx, args, false, "unarchive <id>")
}

func (a *App) setArchived(ctx context.Context, args []string, archived bool, format string) error {
	id, err := oneArg(args, format)
	if err != nil {
		return err
	}
	m, err := a.memos.Archive(ctx, id, archived)
	if err != nil {
		return err
	}
	a.reportSaved("memo "+m.ID, m.Reconciled())
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := oneArg(args, "delete <id>")
	if err != nil {
		return err
	}
	if err := a.memos.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted memo %s\n", id)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("search <text>")
	}
	memos, err := a.memos.Search(ctx, strings.Join(args, " "), 50)
	if err != nil {
		return err
	}
	a.printMemos(memos)
	return nil
}

func (a *App) reportSaved(what string, reconciled bool) {
	if reconciled {
		fmt.Fprintf(a.out, "saved %s\n", what)
		return
	}
	fmt.Fprintf(a.out, "saved %s locally, it will be sent when online\n", what)
}
