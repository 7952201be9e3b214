package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formstudio/pkg/model"
)

// IssueKind classifies a lint finding.
type IssueKind string

const (
	IssueNoOptions        IssueKind = "no-options"
	IssueDanglingTarget   IssueKind = "dangling-target"
	IssueEphemeralTarget  IssueKind = "ephemeral-target"
	IssueIgnoredBranching IssueKind = "ignored-branching"
	IssueCycle            IssueKind = "cycle"
)

// Issue is one authoring finding. OptionIndex is -1 for field level issues.
type Issue struct {
	Kind        IssueKind
	Field       model.Ref
	FieldIndex  int
	OptionIndex int
	Path        []model.Ref
	Message     string
}

// Lint inspects doc for problems that do not block saving or filling but
// change how the form behaves: options branching to questions that no longer
// exist, branches that will be dropped on save because their target is not
// persisted yet, and question loops the flow engine will cut short.
func Lint(doc model.Document) []Issue {
	var issues []Issue
	for fi, field := range doc.Fields {
		if field.Type.HasOptions() && len(field.Options) == 0 {
			issues = append(issues, Issue{
				Kind:        IssueNoOptions,
				Field:       field.Identity,
				FieldIndex:  fi,
				OptionIndex: -1,
				Message:     fmt.Sprintf("field %q has no options", field.Label),
			})
		}
		for oi, opt := range field.Options {
			if !field.IsQuestion() {
				if opt.NextQuestion != nil || opt.IsEnd {
					issues = append(issues, Issue{
						Kind:        IssueIgnoredBranching,
						Field:       field.Identity,
						FieldIndex:  fi,
						OptionIndex: oi,
						Message:     fmt.Sprintf("option %q of non-question field %q carries branching that is ignored", opt.Label, field.Label),
					})
				}
				continue
			}
			if opt.NextQuestion == nil {
				continue
			}
			if _, ok := doc.ResolveQuestion(opt.NextQuestion); !ok {
				issues = append(issues, Issue{
					Kind:        IssueDanglingTarget,
					Field:       field.Identity,
					FieldIndex:  fi,
					OptionIndex: oi,
					Message:     fmt.Sprintf("option %q targets %s which is not a question of this form", opt.Label, opt.NextQuestion),
				})
				continue
			}
			if opt.NextQuestion.IsEphemeral() {
				issues = append(issues, Issue{
					Kind:        IssueEphemeralTarget,
					Field:       field.Identity,
					FieldIndex:  fi,
					OptionIndex: oi,
					Message:     fmt.Sprintf("option %q targets an unsaved question; the branch is dropped on save", opt.Label),
				})
			}
		}
	}
	return append(issues, cycles(doc)...)
}

// QuestionGraph returns, for each question position, the question positions
// its options can lead to. Terminal transitions are omitted.
func QuestionGraph(doc model.Document) [][]int {
	questions := doc.QuestionFields()
	position := make(map[model.Ref]int, len(questions))
	for i, q := range questions {
		position[q.Identity] = i
	}

	graph := make([][]int, len(questions))
	for i, q := range questions {
		seen := make(map[int]struct{})
		for _, opt := range q.Options {
			if opt.IsEnd {
				continue
			}
			next := i + 1
			if target, ok := doc.ResolveQuestion(opt.NextQuestion); ok {
				next = position[target.Identity]
			}
			if next >= len(questions) {
				continue
			}
			if _, dup := seen[next]; dup {
				continue
			}
			seen[next] = struct{}{}
			graph[i] = append(graph[i], next)
		}
	}
	return graph
}

func cycles(doc model.Document) []Issue {
	questions := doc.QuestionFields()
	graph := QuestionGraph(doc)

	const (
		white = iota
		grey
		black
	)
	color := make([]int, len(graph))
	var stack []int
	reported := make(map[string]struct{})
	var issues []Issue

	var visit func(int)
	visit = func(n int) {
		color[n] = grey
		stack = append(stack, n)
		for _, next := range graph[n] {
			switch color[next] {
			case white:
				visit(next)
			case grey:
				start := 0
				for i, v := range stack {
					if v == next {
						start = i
						break
					}
				}
				loop := append([]int(nil), stack[start:]...)
				key := cycleKey(loop)
				if _, dup := reported[key]; dup {
					continue
				}
				reported[key] = struct{}{}

				path := make([]model.Ref, len(loop))
				names := make([]string, len(loop))
				for i, pos := range loop {
					path[i] = questions[pos].Identity
					names[i] = questions[pos].Label
				}
				issues = append(issues, Issue{
					Kind:        IssueCycle,
					Field:       questions[next].Identity,
					FieldIndex:  questions[next].OrderIndex,
					OptionIndex: -1,
					Path:        path,
					Message:     fmt.Sprintf("questions loop: %s -> %s", strings.Join(names, " -> "), questions[next].Label),
				})
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
	}

	for n := range graph {
		if color[n] == white {
			visit(n)
		}
	}
	return issues
}

func cycleKey(loop []int) string {
	sorted := append([]int(nil), loop...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
