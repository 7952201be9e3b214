package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goliatone/go-formstudio/pkg/builder"
	"github.com/goliatone/go-formstudio/pkg/codec"
	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/model"
	"github.com/goliatone/go-formstudio/pkg/preview"
	"github.com/goliatone/go-formstudio/pkg/renderers/tui"
	"github.com/goliatone/go-formstudio/pkg/submission"
)

func loadFile(path string) (model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read file: %w", err)
	}
	doc, err := codec.LoadDocument(raw)
	if err != nil {
		return model.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func singleArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		fs.Usage()
		return "", fmt.Errorf("expected exactly one form file, got %d", fs.NArg())
	}
	return fs.Arg(0), nil
}

func runFill(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("fill", "<form file>", stderr)
	step := fs.Int("step", 0, "ordinary fields per page (0 shows them all at once)")
	structural := fs.Bool("structural-back", false, "step back to the previous question in document order instead of the previous answer")
	output := fs.String("output", "text", "result format: text, html or json")
	outFile := fs.String("o", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := singleArg(fs)
	if err != nil {
		return err
	}
	doc, err := loadFile(path)
	if err != nil {
		return err
	}

	flowOptions := []flow.Option{flow.WithStepSize(*step)}
	if *structural {
		flowOptions = append(flowOptions, flow.WithStructuralBack())
	}
	runner := tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(stderr)),
		tui.WithFlowOptions(flowOptions...),
	)
	session, err := runner.Fill(ctx, doc)
	if err != nil {
		return err
	}

	var data []byte
	switch *output {
	case "json":
		payload := submission.Payload(session)
		if err := submission.Validate(doc, payload); err != nil {
			fmt.Fprintf(stderr, "warning: %v\n", err)
		}
		if data, err = json.MarshalIndent(payload, "", "  "); err != nil {
			return err
		}
		data = append(data, '\n')
	default:
		renderer, err := preview.New()
		if err != nil {
			return err
		}
		out, err := renderer.String(preview.FromSession(session), preview.Format(*output))
		if err != nil {
			return err
		}
		data = []byte(out)
	}
	return writeOutput(*outFile, data, stdout)
}

type violation struct {
	file     string
	location string
	kind     builder.IssueKind
	message  string
}

func runLint(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("lint", "<form files...>", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("no form files given")
	}

	var violations []violation
	for _, path := range fs.Args() {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := loadFile(path)
		if err != nil {
			return err
		}
		for _, issue := range builder.Lint(doc) {
			violations = append(violations, violation{
				file:     path,
				location: issueLocation(issue),
				kind:     issue.Kind,
				message:  issue.Message,
			})
		}
	}

	if len(violations) == 0 {
		return nil
	}
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(stdout, "%s: %s -> [%s] %s\n", v.file, v.location, v.kind, v.message)
	}
	return errFindings
}

func issueLocation(issue builder.Issue) string {
	if issue.OptionIndex < 0 {
		return fmt.Sprintf("fields[%d]", issue.FieldIndex)
	}
	return fmt.Sprintf("fields[%d].options[%d]", issue.FieldIndex, issue.OptionIndex)
}

func runSchema(_ context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("schema", "<form file>", stderr)
	outFile := fs.String("o", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := singleArg(fs)
	if err != nil {
		return err
	}
	doc, err := loadFile(path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(submission.Schema(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	return writeOutput(*outFile, append(data, '\n'), stdout)
}

func runNormalize(_ context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("normalize", "<form file>", stderr)
	format := fs.String("format", "json", "output format: json or yaml")
	outFile := fs.String("o", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := singleArg(fs)
	if err != nil {
		return err
	}
	f, err := codec.ParseFormat(*format)
	if err != nil {
		return err
	}
	doc, err := loadFile(path)
	if err != nil {
		return err
	}

	form, report := codec.ToPersisted(doc)
	if report.GeneratedValues > 0 {
		fmt.Fprintf(stderr, "%s: generated %d option values from labels\n", path, report.GeneratedValues)
	}
	for _, u := range report.UnresolvedReferences {
		fmt.Fprintf(stderr, "%s: fields[%d].options[%d]: dropped branch to unsaved field %s\n",
			path, u.FieldIndex, u.OptionIndex, u.Target.Key())
	}

	data, err := codec.Encode(form, f)
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	return writeOutput(*outFile, data, stdout)
}
