package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/model"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	textAreas    []string
	infoMessages []string
	selectAsked  [][]string
	inputPos     int
	selectPos    int
	multiPos     int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectAsked = append(s.selectAsked, cfg.Options)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func branchingDoc() model.Document {
	return model.Document{
		Title: "Signup",
		Fields: []model.Field{
			{Identity: model.Persisted(1), Type: model.FieldTypeQuestion, Label: "Q1", Options: []model.Option{
				{Label: "A", Value: "a", IsEnd: true},
				{Label: "B", Value: "b", NextQuestion: model.RefPtr(model.Persisted(2))},
			}},
			{Identity: model.Persisted(10), Type: model.FieldTypeName, Label: "Name", IsRequired: true},
			{Identity: model.Persisted(2), Type: model.FieldTypeQuestion, Label: "Q2", Options: []model.Option{
				{Label: "C", Value: "c"},
			}},
			{Identity: model.Persisted(11), Type: model.FieldTypeEmail, Label: "Email"},
			{Identity: model.Persisted(12), Type: model.FieldTypeCheckbox, Label: "Extras", Options: []model.Option{
				{Label: "Wrap", Value: "wrap"},
				{Label: "Card", Value: "card"},
			}},
		},
	}
}

func TestFill_BranchBackAndFields(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{1, 1, 1, 0, 0, 0},
		inputs:    []string{"", "Ada", "bad", "ada@example.com"},
		multiIdx:  [][]int{{0, 1}},
	}
	r := New(WithPromptDriver(driver), WithFlowOptions(flow.WithStepSize(2)))

	session, err := r.Fill(context.Background(), branchingDoc())
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	wantAsked := [][]string{
		{"A", "B"},
		{"C", defaultBackLabel},
		{"A", "B"},
		{"C", defaultBackLabel},
		{continueLabel, defaultBackLabel},
		{finishLabel, defaultBackLabel},
	}
	if diff := cmp.Diff(wantAsked, driver.selectAsked); diff != "" {
		t.Fatalf("question prompts mismatch (-want +got):\n%s", diff)
	}

	wantAnswers := map[model.Ref]string{model.Persisted(1): "b", model.Persisted(2): "c"}
	if diff := cmp.Diff(wantAnswers, session.Answers()); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
	wantValues := map[model.Ref]string{
		model.Persisted(10): "Ada",
		model.Persisted(11): "ada@example.com",
		model.Persisted(12): "wrap,card",
	}
	if diff := cmp.Diff(wantValues, session.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected two validation messages, got %v", driver.infoMessages)
	}
	if !session.Complete() {
		t.Fatalf("session should be complete")
	}
}

func TestFill_PreviousOnFirstPageReturnsToQuestions(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{0, 1, 1, 0, 0},
		inputs:    []string{"Ada", "", "Grace", ""},
		multiIdx:  [][]int{{}, {1}},
	}

	session, err := New(WithPromptDriver(driver)).Fill(context.Background(), branchingDoc())
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	wantAsked := [][]string{
		{"A", "B"},
		{finishLabel, defaultBackLabel},
		{"A", "B"},
		{"C", defaultBackLabel},
		{finishLabel, defaultBackLabel},
	}
	if diff := cmp.Diff(wantAsked, driver.selectAsked); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	wantAnswers := map[model.Ref]string{model.Persisted(1): "b", model.Persisted(2): "c"}
	if diff := cmp.Diff(wantAnswers, session.Answers()); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
	if got := session.Values()[model.Persisted(10)]; got != "Grace" {
		t.Fatalf("expected the second pass to win, got %q", got)
	}
	if got := session.Values()[model.Persisted(12)]; got != "card" {
		t.Fatalf("expected extras from the second pass, got %q", got)
	}
}

func TestFill_EndOptionSkipsRemainingQuestions(t *testing.T) {
	doc := branchingDoc()
	doc.Fields = doc.Fields[:1]
	driver := &stubDriver{selectIdx: []int{0}}

	session, err := New(WithPromptDriver(driver)).Fill(context.Background(), doc)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !session.State().Terminal || len(driver.selectAsked) != 1 {
		t.Fatalf("expected one question then terminal, got %v after %d prompts", session.State(), len(driver.selectAsked))
	}
}

func TestFill_CycleIsReported(t *testing.T) {
	doc := branchingDoc()
	doc.Fields[2].Options[0].NextQuestion = model.RefPtr(model.Persisted(1))
	doc.Fields = []model.Field{doc.Fields[0], doc.Fields[2]}
	// B and C loop between the two questions until the hop limit cuts in.
	driver := &stubDriver{selectIdx: []int{1, 0, 1, 0}}

	session, err := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "> "})).Fill(context.Background(), doc)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !session.Engine().CycleDetected() {
		t.Fatalf("expected cycle detection")
	}
	if len(driver.infoMessages) != 1 || !strings.HasPrefix(driver.infoMessages[0], "> ") {
		t.Fatalf("expected one themed notice, got %v", driver.infoMessages)
	}
}

func TestFill_QuestionWithoutOptions(t *testing.T) {
	doc := model.Document{Fields: []model.Field{
		{Identity: model.Persisted(1), Type: model.FieldTypeQuestion, Label: "Empty"},
		{Identity: model.Persisted(2), Type: model.FieldTypeQuestion, Label: "Real", Options: []model.Option{{Label: "X", Value: "x"}}},
	}}
	driver := &stubDriver{selectIdx: []int{0}}

	session, err := New(WithPromptDriver(driver), WithBackLabel("")).Fill(context.Background(), doc)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff([][]string{{"X"}}, driver.selectAsked); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if v, _ := session.Engine().Answer(model.Persisted(2)); v != "x" {
		t.Fatalf("expected answer x, got %q", v)
	}
}

func TestFill_DriverErrorsStopTheSession(t *testing.T) {
	_, err := New(WithPromptDriver(&stubDriver{})).Fill(context.Background(), branchingDoc())
	if err == nil {
		t.Fatalf("expected driver error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(WithPromptDriver(&stubDriver{})).Fill(ctx, branchingDoc()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFieldValidator(t *testing.T) {
	cases := []struct {
		field model.Field
		input string
		ok    bool
	}{
		{model.Field{Type: model.FieldTypeText}, "", true},
		{model.Field{Type: model.FieldTypeText, IsRequired: true}, "  ", false},
		{model.Field{Type: model.FieldTypeEmail}, "ada@example.com", true},
		{model.Field{Type: model.FieldTypeEmail}, "ada", false},
		{model.Field{Type: model.FieldTypeNumber}, "4.5", true},
		{model.Field{Type: model.FieldTypeNumber}, "four", false},
		{model.Field{Type: model.FieldTypeDate}, "2024-02-29", true},
		{model.Field{Type: model.FieldTypeDate}, "29/02/2024", false},
		{model.Field{Type: model.FieldTypePhone}, "+44 20 7946 0958", true},
		{model.Field{Type: model.FieldTypePhone}, "call me", false},
	}
	for _, tc := range cases {
		err := fieldValidator(tc.field)(tc.input)
		if (err == nil) != tc.ok {
			t.Fatalf("%s %q: unexpected result %v", tc.field.Type, tc.input, err)
		}
	}
}
