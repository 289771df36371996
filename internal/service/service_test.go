package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ohms_lab/internal/lab"
	"ohms_lab/internal/lab/circuit"
	"ohms_lab/internal/lab/narration"
	"ohms_lab/internal/lab/quiz"
	"ohms_lab/internal/lab/shortcircuit"
	"ohms_lab/internal/lesson"
	"ohms_lab/internal/models"
	"ohms_lab/internal/repository"

	"github.com/zoobzio/clockz"
)

type testEnv struct {
	svc   *Service
	repo  *fakeEventRepo
	clock *clockz.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	content, err := lesson.Default()
	if err != nil {
		t.Fatalf("lesson: %v", err)
	}
	repo := &fakeEventRepo{}
	clock := clockz.NewFakeClock()
	svc := NewService(&repository.Repository{EventRepo: repo}, Options{
		TokenSecret: "test-secret-0123456789",
		TokenTTL:    time.Hour,
		SessionTTL:  30 * time.Minute,
		Content:     content,
		Narrator:    narration.Silent{},
		Clock:       clock,
	})
	return &testEnv{svc: svc, repo: repo, clock: clock}
}

func (e *testEnv) create(t *testing.T) (string, string) {
	t.Helper()
	token, snap, err := e.svc.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = e.svc.End(context.Background(), snap.SessionID) })
	return token, snap.SessionID
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within 1s")
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}

func TestSessions_CreateAndParseToken(t *testing.T) {
	env := newTestEnv(t)
	token, id := env.create(t)

	got, err := env.svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if got != id {
		t.Fatalf("session id = %q, want %q", got, id)
	}
	if env.svc.Count() != 1 {
		t.Fatalf("Count = %d, want 1", env.svc.Count())
	}
	if types := env.repo.types(); len(types) != 1 || types[0] != models.EventSessionStart {
		t.Fatalf("unexpected events: %v", types)
	}

	snap, err := env.svc.Snapshot(context.Background(), id)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Section != string(lab.Theory) || len(snap.Quiz) != 3 {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}
}

func TestSessions_ParseTokenRejects(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.create(t)

	if _, err := env.svc.ParseToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: got %v", err)
	}
	if _, err := env.svc.ParseToken(token[:len(token)-2] + "xx"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token: got %v", err)
	}

	env.clock.Advance(time.Hour + time.Second)
	if _, err := env.svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: got %v", err)
	}
}

func TestSessions_End(t *testing.T) {
	env := newTestEnv(t)
	_, id := env.create(t)

	if err := env.svc.End(context.Background(), id); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := env.svc.End(context.Background(), id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second End: got %v", err)
	}
	if _, err := env.svc.Snapshot(context.Background(), id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Snapshot after End: got %v", err)
	}
	if !contains(env.repo.types(), models.EventSessionEnd) {
		t.Fatalf("SESSION_END not logged: %v", env.repo.types())
	}
}

func TestLab_SelectSectionAndCircuit(t *testing.T) {
	env := newTestEnv(t)
	_, id := env.create(t)
	ctx := context.Background()

	snap, err := env.svc.SetCircuit(ctx, id, 24, 10)
	if err != nil {
		t.Fatalf("SetCircuit: %v", err)
	}
	if snap.Circuit.Current != 2.4 || snap.Circuit.Display != "2.400" {
		t.Fatalf("unexpected circuit view: %+v", snap.Circuit)
	}

	snap, err = env.svc.SelectSection(ctx, id, "protection")
	if err != nil {
		t.Fatalf("SelectSection: %v", err)
	}
	if snap.Section != string(lab.Protection) || snap.Circuit.Current != 2.4 {
		t.Fatalf("section switch changed the lab: %+v", snap)
	}

	if _, err := env.svc.SelectSection(ctx, id, "quiz"); !errors.Is(err, lab.ErrUnknownSection) {
		t.Fatalf("unknown section: got %v", err)
	}
	if _, err := env.svc.SetCircuit(ctx, id, 12, 0); !errors.Is(err, circuit.ErrInvalidInput) {
		t.Fatalf("zero resistance: got %v", err)
	}
	if _, err := env.svc.SetCircuit(ctx, "missing", 12, 100); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown session: got %v", err)
	}

	types := env.repo.types()
	if !contains(types, models.EventCircuitChange) || !contains(types, models.EventSectionChange) {
		t.Fatalf("missing events: %v", types)
	}
}

func TestLab_ShortCircuitLogsTimerTransition(t *testing.T) {
	env := newTestEnv(t)
	_, id := env.create(t)
	ctx := context.Background()

	if _, err := env.svc.ResetShort(ctx, id); !errors.Is(err, shortcircuit.ErrInvalidTransition) {
		t.Fatalf("reset from normal: got %v", err)
	}

	snap, err := env.svc.TriggerShort(ctx, id)
	if err != nil {
		t.Fatalf("TriggerShort: %v", err)
	}
	if snap.ShortCircuit.Status != shortcircuit.Shorted {
		t.Fatalf("status = %s, want shorted", snap.ShortCircuit.Status)
	}
	if _, err := env.svc.TriggerShort(ctx, id); !errors.Is(err, shortcircuit.ErrInvalidTransition) {
		t.Fatalf("double trigger: got %v", err)
	}

	env.clock.Advance(shortcircuit.BlowDelay)
	env.clock.BlockUntilReady()
	waitFor(t, func() bool { return contains(env.repo.types(), models.EventFuseBlown) })

	snap, err = env.svc.ResetShort(ctx, id)
	if err != nil {
		t.Fatalf("ResetShort: %v", err)
	}
	if snap.ShortCircuit.Status != shortcircuit.Normal {
		t.Fatalf("status = %s, want normal", snap.ShortCircuit.Status)
	}
	if !contains(env.repo.types(), models.EventFuseReset) {
		t.Fatalf("FUSE_RESET not logged: %v", env.repo.types())
	}
}

func TestLab_ToggleQuiz(t *testing.T) {
	env := newTestEnv(t)
	_, id := env.create(t)

	snap, err := env.svc.ToggleQuiz(context.Background(), id, "resistance")
	if err != nil {
		t.Fatalf("ToggleQuiz: %v", err)
	}
	var found bool
	for _, v := range snap.Quiz {
		if v.ID == "resistance" {
			found = v.Revealed && v.Answer != ""
		}
	}
	if !found {
		t.Fatalf("answer not revealed: %+v", snap.Quiz)
	}
	if _, err := env.svc.ToggleQuiz(context.Background(), id, "watt"); !errors.Is(err, quiz.ErrUnknownItem) {
		t.Fatalf("unknown item: got %v", err)
	}
}

func TestLab_CircuitChart(t *testing.T) {
	env := newTestEnv(t)
	_, id := env.create(t)

	var buf bytes.Buffer
	if err := env.svc.CircuitChart(context.Background(), id, &buf); err != nil {
		t.Fatalf("CircuitChart: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatalf("expected svg output")
	}
}

func TestNarration_ScriptAndBusy(t *testing.T) {
	env := newTestEnv(t)
	_, id := env.create(t)
	ctx := context.Background()

	res, err := env.svc.Narrate(ctx, id, NarrationRequest{Script: "theory"})
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if res.Failed || !strings.HasPrefix(res.Clip.Text, "Låt oss") {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, err := env.svc.Narrate(ctx, id, NarrationRequest{Text: "igen"}); !errors.Is(err, narration.ErrBusy) {
		t.Fatalf("second narration: got %v", err)
	}
	if _, err := env.svc.Narrate(ctx, id, NarrationRequest{Script: "character.watt"}); !errors.Is(err, ErrUnknownScript) {
		t.Fatalf("unknown script: got %v", err)
	}

	var narrations int
	for _, typ := range env.repo.types() {
		if typ == models.EventNarration {
			narrations++
		}
	}
	if narrations != 1 {
		t.Fatalf("want exactly one NARRATION event, got %d", narrations)
	}
}

func TestJanitor_SweepEvictsIdleSessions(t *testing.T) {
	env := newTestEnv(t)
	_, idle := env.create(t)

	env.clock.Advance(20 * time.Minute)
	_, active := env.create(t)
	env.clock.Advance(15 * time.Minute)

	j := env.svc.Janitor.(*JanitorService)
	if n := j.Sweep(context.Background()); n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}
	if _, err := env.svc.Snapshot(context.Background(), idle); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("idle session still present: %v", err)
	}
	if _, err := env.svc.Snapshot(context.Background(), active); err != nil {
		t.Fatalf("active session evicted: %v", err)
	}
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.svc.Run(ctx, time.Minute)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
