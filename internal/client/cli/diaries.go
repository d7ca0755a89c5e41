package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/memodiary/internal/client/models"
)

const diaryPageSize = 30

func (a *App) Diary(ctx context.Context, args []string) error {
	date, err := oneArg(args, "diary <YYYY-MM-DD>")
	if err != nil {
		return err
	}
	d, err := a.diaries.Get(ctx, date)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "date:    %s\n", d.Date)
	if d.MoodKey != "" || d.MoodScore != 0 {
		fmt.Fprintf(a.out, "mood:    %s (%d)\n", d.MoodKey, d.MoodScore)
	}
	if d.CoverImageID != "" {
		fmt.Fprintf(a.out, "cover:   %s\n", d.CoverImageID)
	}
	fmt.Fprintf(a.out, "updated: %s\n", formatTime(d.UpdatedAt))
	if !d.Reconciled() {
		fmt.Fprintln(a.out, "sync:    pending")
	}
	fmt.Fprintf(a.out, "\n%s\n", d.Summary)
	return nil
}

// Diaries lists diaries, latest date first: diaries [page].
func (a *App) Diaries(ctx context.Context, args []string) error {
	page := 1
	switch len(args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return usage("diaries [page]")
		}
		page = n
	default:
		return usage("diaries [page]")
	}

	list, err := a.diaries.List(ctx, diaryPageSize, (page-1)*diaryPageSize)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "no diaries")
		return nil
	}
	for _, d := range list {
		fmt.Fprintf(a.out, "%s  %-8s  %s%s\n", d.Date, d.MoodKey, headline(d.Summary, 50), pendingMark(d.Reconciled()))
	}
	return nil
}

func (a *App) WriteDiary(ctx context.Context, args []string) error {
	date, err := oneArg(args, "write-diary <YYYY-MM-DD>")
	if err != nil {
		return err
	}
	if err := models.ValidateDiaryDate(date); err != nil {
		return err
	}

	summary, err := GetMultiline(a.reader, "Diary text:", a.out)
	if err != nil {
		return err
	}
	moodKey, err := GetSimpleText(a.reader, "Mood (optional)", a.out)
	if err != nil {
		return err
	}
	scoreIn, err := GetSimpleText(a.reader, "Mood score (optional number)", a.out)
	if err != nil {
		return err
	}
	var score int
	if scoreIn != "" {
		if score, err = strconv.Atoi(scoreIn); err != nil {
			return fmt.Errorf("mood score %q is not a number", scoreIn)
		}
	}

	d, err := a.diaries.Save(ctx, date, models.DiaryDraft{Summary: summary, MoodKey: moodKey, MoodScore: score})
	if err != nil {
		return err
	}
	a.reportSaved("diary "+d.Date, d.Reconciled())
	return nil
}

func (a *App) DeleteDiary(ctx context.Context, args []string) error {
	date, err := oneArg(args, "delete-diary <YYYY-MM-DD>")
	if err != nil {
		return err
	}
	if err := a.diaries.Delete(ctx, date); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted diary %s\n", date)
	return nil
}
