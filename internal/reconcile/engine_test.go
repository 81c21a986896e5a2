package reconcile

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/extract"
	"rollcall/internal/match"
	"rollcall/internal/names"
	"rollcall/internal/roster"
)

type staticRoster roster.Roster

func (s staticRoster) Current() roster.Roster { return roster.Roster(s) }

type fakeExtractor struct {
	result  extract.Result
	lastSel extract.Selector

	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeExtractor) Extract(ctx context.Context, rawText string, sel extract.Selector) extract.Result {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	f.lastSel = sel
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.result
}

func testRoster() staticRoster {
	return staticRoster(roster.Build(
		[]string{"张三", "李四", "王五", "赵六", "钱七"},
		[]string{"孙八"},
	))
}

func TestRun_Turbo(t *testing.T) {
	e := New(testRoster(), match.NewTurbo(names.ClassHan), nil, nil)

	out, err := e.Run(context.Background(), Request{Text: "1.张三2.李四 王五已完成 孙八"})
	require.NoError(t, err)

	assert.Equal(t, ModeTurbo, out.Mode)
	assert.Equal(t, 5, out.Report.Total)
	assert.Equal(t, 60.0, out.Report.Percent)
	assert.Equal(t, []string{"张三", "李四", "王五"}, out.Report.Present)
	assert.Equal(t, []string{"赵六", "钱七"}, out.Report.Missing)
	assert.NoError(t, out.Failure)

	_, err = uuid.Parse(out.RunID)
	assert.NoError(t, err)
}

func TestRun_ScopeAll(t *testing.T) {
	e := New(testRoster(), nil, nil, nil)
	out, err := e.Run(context.Background(), Request{Text: "孙八", Scope: roster.ScopeAll})
	require.NoError(t, err)
	assert.Equal(t, 6, out.Report.Total)
	assert.Equal(t, []string{"孙八"}, out.Report.Present)
}

func TestRun_EmptySubmission(t *testing.T) {
	e := New(testRoster(), nil, nil, nil)
	for _, text := range []string{"", "   \n\t"} {
		_, err := e.Run(context.Background(), Request{Text: text})
		assert.True(t, errors.Is(err, ErrEmptySubmission))
	}
}

func TestRun_EmptyRoster(t *testing.T) {
	e := New(staticRoster(roster.Empty()), nil, nil, nil)
	_, err := e.Run(context.Background(), Request{Text: "张三"})
	assert.True(t, errors.Is(err, ErrEmptyRoster))
}

func TestRun_AI(t *testing.T) {
	ai := &fakeExtractor{result: extract.Result{
		Names: names.NewSet("张三", "路人甲"),
		Tier:  extract.TierLocal,
	}}
	e := New(testRoster(), nil, ai, nil)

	out, err := e.Run(context.Background(), Request{Text: "x", Mode: ModeAI, Model: "qwen3:8b"})
	require.NoError(t, err)
	assert.Equal(t, extract.TierLocal, out.Tier)
	assert.Equal(t, []string{"张三"}, out.Report.Present)
	assert.Equal(t, extract.Selector("qwen3:8b"), ai.lastSel)
}

func TestRun_AIFailureStillReports(t *testing.T) {
	ai := &fakeExtractor{result: extract.Result{
		Names: names.NewSet(),
		Err:   extract.ErrMissingCredential,
	}}
	e := New(testRoster(), nil, ai, nil)

	out, err := e.Run(context.Background(), Request{Text: "张三", Mode: ModeAI})
	require.NoError(t, err)
	assert.True(t, errors.Is(out.Failure, extract.ErrMissingCredential))
	assert.Equal(t, 0, out.Report.PresentCount)
	assert.Equal(t, 5, out.Report.MissingCount)
}

func TestRun_AINotConfigured(t *testing.T) {
	e := New(testRoster(), nil, nil, nil)
	_, err := e.Run(context.Background(), Request{Text: "张三", Mode: ModeAI})
	assert.Error(t, err)
}

func TestRun_Serialized(t *testing.T) {
	ai := &fakeExtractor{delay: 10 * time.Millisecond, result: extract.Result{Names: names.NewSet()}}
	e := New(testRoster(), nil, ai, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Run(context.Background(), Request{Text: "x", Mode: ModeAI})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ai.maxSeen.Load())
}

func TestRun_WithStore(t *testing.T) {
	store := roster.Open(filepath.Join(t.TempDir(), "roster.json"))
	_, err := store.ReplaceText("张三\n李四", "王五")
	require.NoError(t, err)

	e := New(store, nil, nil, nil)
	out, err := e.Run(context.Background(), Request{Text: "李四"})
	require.NoError(t, err)
	assert.Equal(t, []string{"张三"}, out.Report.Missing)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeTurbo, m)

	m, err = ParseMode("AI")
	require.NoError(t, err)
	assert.Equal(t, ModeAI, m)

	_, err = ParseMode("magic")
	assert.Error(t, err)
}
