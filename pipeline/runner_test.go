package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeExecutor is a deterministic, instantly-resolving stage double.
type fakeExecutor struct {
	emissions []Emission
	payload   string
	err       error
	panicVal  any
	onExecute func(in Input) // called after emissions, before the outcome
}

func (f *fakeExecutor) Execute(ctx context.Context, in Input, emit EmitFunc) (string, error) {
	for _, e := range f.emissions {
		if err := emit(e); err != nil {
			return "", err
		}
	}
	if f.onExecute != nil {
		f.onExecute(in)
	}
	if f.panicVal != nil {
		panic(f.panicVal)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.payload, nil
}

func infoEmission(msg string) Emission {
	return Emission{Kind: KindInfo, Message: msg}
}

// newTestPipeline builds a five-stage registry over the given fakes.
func newTestPipeline(t *testing.T, fakes [5]*fakeExecutor) (*Registry, *State) {
	t.Helper()
	labels := []string{
		"Validating source",
		"Creating repository",
		"Pushing source",
		"Building remotely",
		"Verifying domain",
	}
	ids := []string{"validate", "create-repo", "push", "build", "verify-domain"}
	defs := make([]StageDef, 5)
	for i := range defs {
		defs[i] = StageDef{ID: ids[i], Label: labels[i], Executor: fakes[i]}
	}
	reg, err := NewRegistry(defs...)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	return reg, NewState(reg)
}

func defaultFakes() [5]*fakeExecutor {
	var fakes [5]*fakeExecutor
	for i := range fakes {
		fakes[i] = &fakeExecutor{
			emissions: []Emission{infoEmission("working")},
			payload:   "payload",
		}
	}
	fakes[4].payload = "https://my-app.slipway.app"
	return fakes
}

func countStatuses(snap Snapshot) map[StageStatus]int {
	counts := make(map[StageStatus]int)
	for _, st := range snap.Stages {
		counts[st.Status]++
	}
	return counts
}

func TestRunnerCompletesAllStages(t *testing.T) {
	fakes := defaultFakes()
	reg, state := newTestPipeline(t, fakes)
	runner := NewRunner(reg, state)

	if err := runner.Run(context.Background(), Input{Project: "my-app", Source: "src"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	snap := state.Snapshot()
	if snap.Running {
		t.Error("running should be false after completion")
	}
	if snap.Result != "https://my-app.slipway.app" {
		t.Errorf("result = %q, want final stage payload", snap.Result)
	}
	if snap.Failure != "" {
		t.Errorf("failure = %q, want empty", snap.Failure)
	}
	counts := countStatuses(snap)
	if counts[StatusSuccess] != 5 {
		t.Errorf("success stages = %d, want 5", counts[StatusSuccess])
	}
	if len(snap.Log) != 7 { // start entry + 5 emissions + completion entry
		t.Errorf("log length = %d, want 7", len(snap.Log))
	}
	if first := snap.Log[0]; first.Kind != KindInfo || !strings.Contains(first.Message, "my-app") {
		t.Errorf("first entry = %+v, want info entry naming the project", first)
	}
	if last := snap.Log[len(snap.Log)-1]; last.Kind != KindSuccess {
		t.Errorf("last entry kind = %s, want success", last.Kind)
	}
}

func TestRunnerStopsAtFirstFailure(t *testing.T) {
	fakes := defaultFakes()
	fakes[1].err = &ProviderError{Provider: "source control", Reason: "name taken"}
	reg, state := newTestPipeline(t, fakes)
	runner := NewRunner(reg, state)

	err := runner.Run(context.Background(), Input{Project: "my-app", Source: "src"})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Run() error = %v, want a *ProviderError", err)
	}

	snap := state.Snapshot()
	if snap.Running {
		t.Error("running should be false after failure")
	}
	if snap.Result != "" {
		t.Errorf("result = %q, want absent", snap.Result)
	}
	if snap.Failure == "" {
		t.Error("failure reason should be recorded")
	}
	wantStatuses := []StageStatus{StatusSuccess, StatusError, StatusIdle, StatusIdle, StatusIdle}
	for i, want := range wantStatuses {
		if got := snap.Stages[i].Status; got != want {
			t.Errorf("stage %d status = %s, want %s", i, got, want)
		}
	}
	var found bool
	for _, e := range snap.Log {
		if e.Kind == KindError && strings.Contains(e.Message, "name taken") &&
			strings.Contains(e.Message, "Creating repository") {
			found = true
		}
	}
	if !found {
		t.Error("log should contain an error entry referencing the failed stage and reason")
	}
}

func TestRunnerStatusCountsAreTotal(t *testing.T) {
	for _, failAt := range []int{-1, 0, 2, 4} {
		fakes := defaultFakes()
		if failAt >= 0 {
			fakes[failAt].err = errors.New("boom")
		}
		reg, state := newTestPipeline(t, fakes)
		_ = NewRunner(reg, state).Run(context.Background(), Input{Project: "p", Source: "s"})

		counts := countStatuses(state.Snapshot())
		total := counts[StatusSuccess] + counts[StatusError] + counts[StatusIdle]
		if total != 5 {
			t.Errorf("failAt=%d: success+error+idle = %d, want 5", failAt, total)
		}
		if counts[StatusRunning] != 0 {
			t.Errorf("failAt=%d: %d stages still running after the run", failAt, counts[StatusRunning])
		}
	}
}

func TestRunnerAtMostOneRunningStage(t *testing.T) {
	fakes := defaultFakes()
	reg, state := newTestPipeline(t, fakes)
	for i := range fakes {
		fakes[i].onExecute = func(Input) {
			snap := state.Snapshot()
			if n := countStatuses(snap)[StatusRunning]; n != 1 {
				t.Errorf("observed %d running stages mid-stage, want exactly 1", n)
			}
		}
	}
	runner := NewRunner(reg, state)
	if err := runner.Run(context.Background(), Input{Project: "p", Source: "s"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestRunnerEmissionsVisibleBeforeTerminalOutcome(t *testing.T) {
	fakes := defaultFakes()
	reg, state := newTestPipeline(t, fakes)

	fakes[2].emissions = []Emission{infoEmission("probe entry")}
	fakes[2].onExecute = func(Input) {
		snap := state.Snapshot()
		// Own emission is already observable while the stage is running.
		var seen bool
		for _, e := range snap.Log {
			if e.Message == "probe entry" {
				seen = true
			}
		}
		if !seen {
			t.Error("stage emission not visible before the stage's terminal outcome")
		}
		if snap.Stages[2].Status != StatusRunning {
			t.Errorf("own stage status = %s mid-stage, want running", snap.Stages[2].Status)
		}
		if snap.Stages[1].Status != StatusSuccess {
			t.Errorf("earlier stage status = %s, want success before a later stage runs", snap.Stages[1].Status)
		}
	}

	runner := NewRunner(reg, state)
	if err := runner.Run(context.Background(), Input{Project: "p", Source: "s"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestRunnerReentrantStartIsNoOp(t *testing.T) {
	fakes := defaultFakes()
	release := make(chan struct{})
	started := make(chan struct{})
	fakes[0].onExecute = func(Input) {
		close(started)
		<-release
	}
	reg, state := newTestPipeline(t, fakes)
	runner := NewRunner(reg, state)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := runner.Run(context.Background(), Input{Project: "p", Source: "s"}); err != nil {
			t.Errorf("first Run() error: %v", err)
		}
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never started")
	}

	before := state.Snapshot()
	if err := runner.Run(context.Background(), Input{Project: "other", Source: "x"}); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("second Run() error = %v, want ErrRunInProgress", err)
	}
	after := state.Snapshot()

	if after.RunID != before.RunID {
		t.Error("re-entrant start changed the run id")
	}
	if len(after.Log) != len(before.Log) {
		t.Errorf("re-entrant start changed log length: %d -> %d", len(before.Log), len(after.Log))
	}
	for i := range before.Stages {
		if before.Stages[i].Status != after.Stages[i].Status {
			t.Errorf("re-entrant start changed stage %d status", i)
		}
	}

	close(release)
	wg.Wait()
}

func TestRunnerBackToBackRunsResetState(t *testing.T) {
	fakes := defaultFakes()
	fakes[1].err = &ProviderError{Provider: "source control", Reason: "name taken"}
	reg, state := newTestPipeline(t, fakes)
	runner := NewRunner(reg, state)

	if err := runner.Run(context.Background(), Input{Project: "p", Source: "s"}); err == nil {
		t.Fatal("first run should fail")
	}
	first := state.Snapshot()

	fakes[1].err = nil
	if err := runner.Run(context.Background(), Input{Project: "p", Source: "s"}); err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	second := state.Snapshot()

	if second.RunID == first.RunID {
		t.Error("second run should have a fresh run id")
	}
	if counts := countStatuses(second); counts[StatusSuccess] != 5 {
		t.Errorf("second run success stages = %d, want 5 (no leakage from first run)", counts[StatusSuccess])
	}
	for _, e := range second.Log {
		if e.Kind == KindError {
			t.Errorf("second run log leaked a prior error entry: %q", e.Message)
		}
	}
	if second.Result == "" {
		t.Error("second run should carry a result")
	}
}

func TestRunnerOrchestrationFault(t *testing.T) {
	fakes := defaultFakes()
	fakes[2].panicVal = "nil pointer somewhere"
	reg, state := newTestPipeline(t, fakes)
	runner := NewRunner(reg, state)

	err := runner.Run(context.Background(), Input{Project: "p", Source: "s"})
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("Run() error = %v, want a panic-derived error", err)
	}

	snap := state.Snapshot()
	if snap.Running {
		t.Error("running should be false after a fault")
	}
	if snap.Result != "" {
		t.Errorf("result = %q, want absent", snap.Result)
	}
	// A fault is attributable to no stage: nothing reads as error, and
	// the interrupted stage is reset to idle.
	counts := countStatuses(snap)
	if counts[StatusError] != 0 {
		t.Errorf("%d stages in error after a fault, want 0", counts[StatusError])
	}
	if snap.Stages[2].Status != StatusIdle {
		t.Errorf("interrupted stage status = %s, want idle", snap.Stages[2].Status)
	}
	last := snap.Log[len(snap.Log)-1]
	if last.Kind != KindError || !strings.Contains(last.Message, "internal error") {
		t.Errorf("last entry = %+v, want a dedicated internal-error entry", last)
	}
}

func TestRunnerContextExpiryIsFault(t *testing.T) {
	fakes := defaultFakes()
	reg, state := newTestPipeline(t, fakes)
	runner := NewRunner(reg, state)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runner.Run(ctx, Input{Project: "p", Source: "s"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if counts := countStatuses(state.Snapshot()); counts[StatusError] != 0 {
		t.Errorf("%d stages in error after context expiry, want 0", counts[StatusError])
	}
}

func TestRunnerRespectsEmissionDelays(t *testing.T) {
	fakes := defaultFakes()
	fakes[0].emissions = []Emission{
		{Kind: KindInfo, Message: "a", Delay: 10 * time.Millisecond},
		{Kind: KindInfo, Message: "b", Delay: 20 * time.Millisecond},
	}
	reg, state := newTestPipeline(t, fakes)

	var slept []time.Duration
	runner := NewRunner(reg, state, WithSleep(func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}))
	if err := runner.Run(context.Background(), Input{Project: "p", Source: "s"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(slept) < 2 || slept[0] != 10*time.Millisecond || slept[1] != 20*time.Millisecond {
		t.Errorf("recorded sleeps = %v, want the stage's emission delays in order", slept)
	}
}

func TestRunnerLogMonotonicallyGrows(t *testing.T) {
	fakes := defaultFakes()
	reg, state := newTestPipeline(t, fakes)

	var lengths []int
	for i := range fakes {
		fakes[i].onExecute = func(Input) {
			lengths = append(lengths, state.Log().Len())
		}
	}
	runner := NewRunner(reg, state)
	if err := runner.Run(context.Background(), Input{Project: "p", Source: "s"}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for i := 1; i < len(lengths); i++ {
		if lengths[i] < lengths[i-1] {
			t.Fatalf("log length shrank during run: %v", lengths)
		}
	}
	if state.Log().Len() == 0 {
		t.Error("log should be non-empty once stages reached terminal status")
	}
}
