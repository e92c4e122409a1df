package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/raysh454/phishguard/internal/engine"
	"github.com/raysh454/phishguard/internal/model"
)

// Exit codes of the classifier command.
const (
	ExitLegitimate = 0
	ExitPhishing   = 1
	ExitError      = 2
)

// ExitCode folds batch items into one exit code. Any error wins over any
// phishing verdict.
func ExitCode(items []engine.BatchItem) int {
	code := ExitLegitimate
	for _, it := range items {
		switch {
		case it.Err != nil || it.Verdict == nil:
			return ExitError
		case it.Verdict.IsPhishing():
			code = ExitPhishing
		}
	}
	return code
}

// WriteJSON prints one Result (or error object) per item. A single item is
// printed as an object, several as an array.
func WriteJSON(w io.Writer, items []engine.BatchItem) error {
	out := make([]any, len(items))
	for i, it := range items {
		if it.Err != nil || it.Verdict == nil {
			out[i] = model.NewErrorResult(it.Err)
			continue
		}
		out[i] = it.Verdict.Result()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if len(out) == 1 {
		return enc.Encode(out[0])
	}
	return enc.Encode(out)
}

// RenderReport writes a human readable report of every item.
func RenderReport(w io.Writer, items []engine.BatchItem) error {
	for _, it := range items {
		if err := renderItem(w, it); err != nil {
			return err
		}
	}
	if len(items) > 1 {
		return renderSummary(w, items)
	}
	return nil
}

func renderItem(w io.Writer, it engine.BatchItem) error {
	fmt.Fprint(w, pterm.DefaultSection.Sprint(it.URL))

	if it.Err != nil || it.Verdict == nil {
		fmt.Fprintln(w, pterm.Error.Sprint(model.NewErrorResult(it.Err).Error))
		return nil
	}
	v := it.Verdict

	label := pterm.Success.Sprint(v.Label.String())
	if v.IsPhishing() {
		label = pterm.Warning.Sprint(v.Label.String())
	}
	fmt.Fprintln(w, label)

	rows := pterm.TableData{
		{"Stage", string(v.Stage)},
		{"Heuristic score", strconv.Itoa(v.HeuristicScore)},
		{"Fetched", strconv.FormatBool(v.Fetched)},
	}
	if v.Redirected {
		rows = append(rows, []string{"Final URL", v.FinalURL})
	}
	if v.Stage == model.StageModel {
		rows = append(rows,
			[]string{"Domain", v.RegisteredDomain},
			[]string{"Trusted", strconv.FormatBool(v.Trusted)},
			[]string{"Model " + v.ScoreKind, strconv.FormatFloat(v.Score, 'f', 4, 64)},
			[]string{"Threshold", strconv.FormatFloat(v.Threshold, 'f', 2, 64)},
		)
	}
	table, err := pterm.DefaultTable.WithData(rows).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)

	bullets := make([]pterm.BulletListItem, 0, len(v.Info))
	for _, line := range v.Info {
		bullets = append(bullets, pterm.BulletListItem{Level: 0, Text: line})
	}
	list, err := pterm.DefaultBulletList.WithItems(bullets).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, list)
	return nil
}

func renderSummary(w io.Writer, items []engine.BatchItem) error {
	var phishing, legit, failed int
	for _, it := range items {
		switch {
		case it.Err != nil || it.Verdict == nil:
			failed++
		case it.Verdict.IsPhishing():
			phishing++
		default:
			legit++
		}
	}
	fmt.Fprint(w, pterm.DefaultSection.Sprint("Summary"))
	table, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"URLs", "Phishing", "Legitimate", "Errors"},
		{strconv.Itoa(len(items)), strconv.Itoa(phishing), strconv.Itoa(legit), strconv.Itoa(failed)},
	}).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)
	return nil
}
