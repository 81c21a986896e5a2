package extract

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/config"
	"rollcall/internal/llm"
	"rollcall/internal/names"
)

type fakeLocal struct {
	content string
	err     error
	models  []string
	listErr error
	calls   int
	lastM   string
}

func (f *fakeLocal) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.calls++
	f.lastM = model
	return f.content, f.err
}

func (f *fakeLocal) ListModels(ctx context.Context) ([]string, error) {
	return f.models, f.listErr
}

type fakeCloud struct {
	content string
	err     error
	calls   int
	panics  bool
}

func (f *fakeCloud) ChatComplete(ctx context.Context, model string, messages []llm.Message) (string, error) {
	f.calls++
	if f.panics {
		panic("boom")
	}
	return f.content, f.err
}

func (f *fakeCloud) Name() string { return "fake" }

func TestParseNames(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    names.Set
		wantErr bool
	}{
		{"fenced with junk", "```json\n[\"刘1骐豪\", \"A\"]\n```", names.NewSet("刘骐豪"), false},
		{"surrounding prose", "好的，结果如下：[\"张三\",\"李四\",\"张三\"] 以上", names.NewSet("张三", "李四"), false},
		{"empty array", "[]", names.NewSet(), false},
		{"compatibility forms folded", "[\"⼀⼆\"]", names.NewSet("一二"), false},
		{"no brackets", "没有找到人名", names.NewSet(), true},
		{"reversed brackets", "] [", names.NewSet(), true},
		{"invalid json", "['张三', '李四']", names.NewSet(), true},
		{"non-string entries", "[1, 2]", names.NewSet(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNames(tt.content, names.ClassHan)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnparseable))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("1.张三")
	assert.Contains(t, p, "JSON")
	assert.Contains(t, p, "待处理文本：\n1.张三")
}

func TestSelector_WantsCloud(t *testing.T) {
	assert.True(t, CloudSelector.WantsCloud())
	assert.True(t, Selector("Cloud API (DeepSeek)").WantsCloud())
	assert.False(t, Selector("qwen3:8b").WantsCloud())
	assert.False(t, Selector("").WantsCloud())
}

func TestExtract_LocalSuccess(t *testing.T) {
	local := &fakeLocal{content: "[\"张三\", \"王-五\"]"}
	cloud := &fakeCloud{content: "[\"李四\"]"}
	ex := New(Options{Local: local, LocalEnabled: true, LocalModel: "qwen3:8b", Cloud: cloud})

	res := ex.Extract(context.Background(), "张三 王五", "")
	assert.Equal(t, names.NewSet("张三", "王五"), res.Names)
	assert.Equal(t, TierLocal, res.Tier)
	assert.NoError(t, res.Err)
	assert.Equal(t, "qwen3:8b", local.lastM)
	assert.Equal(t, 0, cloud.calls)
}

func TestExtract_SelectorNamesLocalModel(t *testing.T) {
	local := &fakeLocal{content: "[\"张三\"]"}
	ex := New(Options{Local: local, LocalEnabled: true, LocalModel: "qwen3:8b"})

	ex.Extract(context.Background(), "张三", "llama3:8b")
	assert.Equal(t, "llama3:8b", local.lastM)
}

func TestExtract_EmptySelectorUsesPreferredInstalledModel(t *testing.T) {
	local := &fakeLocal{content: "[\"张三\"]", models: []string{"llama3:8b", "qwen3:4b"}}
	ex := New(Options{Local: local, LocalEnabled: true, LocalModel: "qwen3:8b", Prefer: "qwen3"})

	assert.Equal(t, Selector("qwen3:4b"), ex.Models(context.Background()).DefaultSelector())

	res := ex.Extract(context.Background(), "张三", "")
	assert.Equal(t, "qwen3:4b", local.lastM)
	assert.Equal(t, TierLocal, res.Tier)
	assert.Equal(t, names.NewSet("张三"), res.Names)
	assert.NoError(t, res.Err)
}

func TestExtract_EmptySelectorFallsBackToConfiguredModel(t *testing.T) {
	local := &fakeLocal{content: "[\"张三\"]", listErr: errors.New("refused")}
	ex := New(Options{Local: local, LocalEnabled: true, LocalModel: "qwen3:8b", Prefer: "qwen3", Cloud: &fakeCloud{}})

	ex.Extract(context.Background(), "张三", "")
	assert.Equal(t, "qwen3:8b", local.lastM)
}

func TestExtract_LocalFailureFallsThroughToCloud(t *testing.T) {
	var reported []error
	local := &fakeLocal{err: errors.New("connection refused")}
	cloud := &fakeCloud{content: "```json\n[\"李四\"]\n```"}
	ex := New(Options{
		Local: local, LocalEnabled: true, LocalModel: "qwen3:8b",
		Cloud:     cloud,
		OnFailure: func(err error) { reported = append(reported, err) },
	})

	res := ex.Extract(context.Background(), "李四", "")
	assert.Equal(t, names.NewSet("李四"), res.Names)
	assert.Equal(t, TierCloud, res.Tier)
	assert.Empty(t, reported)
	assert.Equal(t, 1, local.calls)
	assert.Equal(t, 1, cloud.calls)
}

func TestExtract_EmptyLocalResponseFallsThrough(t *testing.T) {
	local := &fakeLocal{content: "   "}
	cloud := &fakeCloud{content: "[\"李四\"]"}
	ex := New(Options{Local: local, LocalEnabled: true, LocalModel: "m", Cloud: cloud})

	res := ex.Extract(context.Background(), "李四", "")
	assert.Equal(t, TierCloud, res.Tier)
	assert.Equal(t, 1, cloud.calls)
}

func TestExtract_FailingLocalNoCredential(t *testing.T) {
	var reported []error
	ex := New(Options{
		Local: &fakeLocal{err: errors.New("down")}, LocalEnabled: true, LocalModel: "m",
		OnFailure: func(err error) { reported = append(reported, err) },
	})

	res := ex.Extract(context.Background(), "张三", "")
	assert.Equal(t, names.NewSet(), res.Names)
	assert.Equal(t, TierNone, res.Tier)
	require.Len(t, reported, 1)
	assert.True(t, errors.Is(reported[0], ErrMissingCredential))
	assert.True(t, errors.Is(res.Err, ErrMissingCredential))
}

func TestExtract_CloudSelectorSkipsLocal(t *testing.T) {
	local := &fakeLocal{content: "[\"张三\"]"}
	cloud := &fakeCloud{content: "[\"李四\"]"}
	ex := New(Options{Local: local, LocalEnabled: true, LocalModel: "m", Cloud: cloud})

	res := ex.Extract(context.Background(), "x", CloudSelector)
	assert.Equal(t, 0, local.calls)
	assert.Equal(t, TierCloud, res.Tier)
	assert.Equal(t, names.NewSet("李四"), res.Names)
}

func TestExtract_DisabledLocalGoesToCloud(t *testing.T) {
	local := &fakeLocal{content: "[\"张三\"]"}
	cloud := &fakeCloud{content: "[\"李四\"]"}
	ex := New(Options{Local: local, LocalEnabled: false, LocalModel: "m", Cloud: cloud})

	res := ex.Extract(context.Background(), "x", "")
	assert.Equal(t, 0, local.calls)
	assert.Equal(t, TierCloud, res.Tier)
}

func TestExtract_CloudFailureReportedOnce(t *testing.T) {
	var reported []error
	cause := errors.New("503 service unavailable")
	cloud := &fakeCloud{err: cause}
	ex := New(Options{Cloud: cloud, OnFailure: func(err error) { reported = append(reported, err) }})

	res := ex.Extract(context.Background(), "x", "")
	assert.Equal(t, names.NewSet(), res.Names)
	require.Len(t, reported, 1)
	assert.True(t, errors.Is(reported[0], ErrCloudFailed))
	assert.True(t, errors.Is(reported[0], cause))
	assert.Equal(t, 1, cloud.calls)
}

func TestExtract_UnparseableIsNotAFailure(t *testing.T) {
	var reported []error
	ex := New(Options{
		Cloud:     &fakeCloud{content: "抱歉，我无法完成"},
		OnFailure: func(err error) { reported = append(reported, err) },
	})

	res := ex.Extract(context.Background(), "x", "")
	assert.Equal(t, names.NewSet(), res.Names)
	assert.NoError(t, res.Err)
	assert.Empty(t, reported)
}

func TestExtract_PanicIsContained(t *testing.T) {
	var reported []error
	ex := New(Options{
		Cloud:     &fakeCloud{panics: true},
		OnFailure: func(err error) { reported = append(reported, err) },
	})

	var res Result
	assert.NotPanics(t, func() { res = ex.Extract(context.Background(), "x", "") })
	assert.Equal(t, names.NewSet(), res.Names)
	assert.Len(t, reported, 1)
}

func TestModels(t *testing.T) {
	t.Run("prefers qwen3 and appends cloud", func(t *testing.T) {
		ex := New(Options{
			Local:        &fakeLocal{models: []string{"llama3:8b", "qwen3:4b", "qwen3:8b"}},
			LocalEnabled: true,
			Prefer:       "qwen3",
			Cloud:        &fakeCloud{},
		})
		list := ex.Models(context.Background())
		assert.Equal(t, []Selector{"llama3:8b", "qwen3:4b", "qwen3:8b", CloudSelector}, list.Names)
		assert.Equal(t, 1, list.Default)
		assert.Equal(t, Selector("qwen3:4b"), list.DefaultSelector())
	})

	t.Run("no preferred match defaults to first", func(t *testing.T) {
		ex := New(Options{Local: &fakeLocal{models: []string{"llama3:8b"}}, LocalEnabled: true, Prefer: "qwen3"})
		list := ex.Models(context.Background())
		assert.Equal(t, []Selector{"llama3:8b"}, list.Names)
		assert.Equal(t, 0, list.Default)
	})

	t.Run("local unavailable falls back to cloud", func(t *testing.T) {
		ex := New(Options{Local: &fakeLocal{listErr: errors.New("refused")}, LocalEnabled: true})
		list := ex.Models(context.Background())
		assert.Equal(t, []Selector{CloudSelector}, list.Names)
		assert.Equal(t, CloudSelector, list.DefaultSelector())
	})
}

func TestNewFromConfig(t *testing.T) {
	for _, key := range []string{"DEEPSEEK_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OLLAMA_HOST"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Local.Enabled = false

	var reported []error
	ex, err := NewFromConfig(cfg, func(err error) { reported = append(reported, err) })
	require.NoError(t, err)

	res := ex.Extract(context.Background(), "张三", "")
	assert.Equal(t, names.NewSet(), res.Names)
	require.Len(t, reported, 1)
	assert.True(t, errors.Is(reported[0], ErrMissingCredential))

	cfg.Names.CharClass = "klingon"
	_, err = NewFromConfig(cfg, nil)
	assert.Error(t, err)
}
