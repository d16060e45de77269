package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/store"
	"github.com/abhisek/studypulse/internal/tutor"
	"github.com/abhisek/studypulse/internal/ui/theme"
	"github.com/abhisek/studypulse/internal/ui/views"
)

type fakeSource struct {
	snap  progress.Snapshot
	calls int
}

func (f *fakeSource) Snapshot(_ context.Context, _ string) progress.Snapshot {
	f.calls++
	return f.snap
}

type fakeTutor struct {
	subject, question string
	err               error
}

func (f *fakeTutor) Ask(_ context.Context, _, subject, question string) (*tutor.Answer, error) {
	f.subject, f.question = subject, question
	if f.err != nil {
		return nil, f.err
	}
	return &tutor.Answer{Subject: subject, Question: question, Text: "Torque is a turning force.", FollowUps: []string{"What is a moment arm?"}}, nil
}

func testSnapshot() progress.Snapshot {
	return progress.Snapshot{
		Stats:    progress.Ok(progress.UserProgressStats{TotalStudyTimeMinutes: 90, CompletedLessons: 2}),
		Streak:   progress.Ok(progress.StreakReport{State: progress.StreakActive, Days: 3}),
		Weekly:   progress.Ok(progress.WeeklyReport{TotalStudyTime: 90, MostStudiedSubject: "Physics", WeeklyGoalProgress: 30}),
		Monthly:  progress.Ok(progress.DefaultMonthly()),
		Insights: progress.Ok(progress.Insights{PreferredStudyTime: "Evening"}),
		Subjects: progress.Ok([]progress.SubjectProgress{{SubjectName: "Physics", CompletedTopics: 2, TotalTopics: 14, ProgressPercentage: 14}}),
	}
}

func newTestModel(src Source, t Asker) Model {
	m := New(Deps{Source: src, Tutor: t, UserID: "asha", Styles: theme.Plain()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

// drive feeds msg to the model and, if a command comes back, runs it once
// and feeds the result too.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if cmd != nil {
		if next := cmd(); next != nil {
			updated, _ = m.Update(next)
			m = updated.(Model)
		}
	}
	return m
}

func TestInitLoadsSnapshot(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	m := newTestModel(src, nil)

	if !strings.Contains(m.render(), "Loading...") {
		t.Error("expected loading view before the first snapshot")
	}

	msg := m.Init()()
	if _, ok := msg.(snapshotMsg); !ok {
		t.Fatalf("Init command returned %T", msg)
	}
	updated, _ := m.Update(msg)
	m = updated.(Model)

	view := m.render()
	for _, want := range []string{"StudyPulse", "asha", "3 day", "90 min this week", "[Overview]", "Physics"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if src.calls != 1 {
		t.Errorf("snapshot calls = %d", src.calls)
	}
}

func TestTabSwitching(t *testing.T) {
	m := newTestModel(&fakeSource{snap: testSnapshot()}, nil)
	m = drive(t, m, m.Init()())

	m = drive(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	if !strings.Contains(m.render(), "Last 7 days") {
		t.Error("expected weekly tab after right arrow")
	}
	m = drive(t, m, tea.KeyPressMsg{Code: '4', Text: "4"})
	if !strings.Contains(m.render(), "Evening") {
		t.Error("expected insights tab after 4")
	}
}

func TestRefreshReloads(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	m := newTestModel(src, nil)
	m = drive(t, m, tea.KeyPressMsg{Code: 'r', Text: "r"})
	if src.calls != 1 {
		t.Errorf("snapshot calls = %d, want 1", src.calls)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(&fakeSource{}, nil)
	for _, key := range []tea.KeyPressMsg{{Code: 'q', Text: "q"}, {Code: 'c', Mod: tea.ModCtrl}} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key.String())
		}
	}
}

func TestAskWithoutTutorIsIgnored(t *testing.T) {
	m := newTestModel(&fakeSource{}, nil)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if cmd != nil {
		t.Error("ask should be disabled without a tutor")
	}
}

func TestAskScreenFlow(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	tu := &fakeTutor{}
	m := newTestModel(src, tu)
	m = drive(t, m, m.Init()())

	m = drive(t, m, tea.KeyPressMsg{Code: 'a', Text: "a"})
	if m.stack.depth() != 2 {
		t.Fatalf("depth = %d, want 2", m.stack.depth())
	}
	ask := m.stack.active().(*askScreen)
	if ask.Subject() != "Physics" {
		t.Errorf("subject = %q", ask.Subject())
	}

	ask.input.Model.SetValue("What is torque?")
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil || !ask.pending {
		t.Fatal("expected a pending ask")
	}
	if !strings.Contains(m.render(), "Thinking...") {
		t.Error("expected thinking indicator")
	}

	updated, cmd := m.Update(cmd())
	m = updated.(Model)
	if tu.subject != "Physics" || tu.question != "What is torque?" {
		t.Errorf("asked %q / %q", tu.subject, tu.question)
	}
	view := m.render()
	if !strings.Contains(view, "Torque is a turning force.") || !strings.Contains(view, "moment arm") {
		t.Errorf("answer missing from view")
	}
	if cmd == nil {
		t.Fatal("expected a refresh after a recorded answer")
	}
	if _, ok := cmd().(refreshMsg); !ok {
		t.Error("expected refreshMsg")
	}

	m = drive(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.stack.depth() != 1 {
		t.Errorf("depth after esc = %d", m.stack.depth())
	}
}

func TestAskScreenIgnoresEmptyQuestion(t *testing.T) {
	a := newAsk(theme.Plain(), &fakeTutor{}, "asha", nil)
	if a.Subject() != GeneralSubject {
		t.Errorf("subject = %q", a.Subject())
	}
	_, cmd := a.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil || a.pending {
		t.Error("empty question should not be sent")
	}
}

func TestAskScreenSubjectCycle(t *testing.T) {
	a := newAsk(theme.Plain(), &fakeTutor{}, "asha", []string{"Biology", "Chemistry"})
	a.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if a.Subject() != "Chemistry" {
		t.Errorf("up should wrap: %q", a.Subject())
	}
	a.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if a.Subject() != "Biology" {
		t.Errorf("down: %q", a.Subject())
	}
}

func TestAskScreenErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{tutor.ErrEmptyQuestion, tutor.ErrEmptyQuestion.Error()},
		{&store.Error{Kind: store.KindSchemaMissing, Err: errors.New("no table")}, views.SetupMessage},
		{context.DeadlineExceeded, "took too long"},
	}
	for _, tt := range tests {
		a := newAsk(theme.Plain(), &fakeTutor{}, "asha", nil)
		screen, cmd := a.Update(answerMsg{err: tt.err})
		if cmd != nil {
			t.Errorf("%v: failed ask should not refresh", tt.err)
		}
		if !strings.Contains(screen.View(80, 20), tt.want) {
			t.Errorf("%v: view missing %q", tt.err, tt.want)
		}
	}
}

func TestSetupIncompleteView(t *testing.T) {
	err := &store.Error{Kind: store.KindSchemaMissing, Err: errors.New("no table")}
	snap := progress.Snapshot{Stats: progress.Degrade(progress.UserProgressStats{}, err)}
	m := newTestModel(&fakeSource{snap: snap}, nil)
	m = drive(t, m, m.Init()())
	if !strings.Contains(m.render(), views.SetupMessage) {
		t.Error("expected setup message")
	}
}

func TestTooSmall(t *testing.T) {
	m := New(Deps{Source: &fakeSource{}, Styles: theme.Plain()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(updated.(Model).render(), "Terminal too small") {
		t.Error("expected min size message")
	}
}

func TestClip(t *testing.T) {
	if got := clip("a\nb\nc", 2); got != "a\nb" {
		t.Errorf("clip = %q", got)
	}
	if got := clip("a", 5); got != "a" {
		t.Errorf("clip = %q", got)
	}
}
