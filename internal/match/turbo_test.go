package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rollcall/internal/names"
)

func TestTurbo_Match(t *testing.T) {
	turbo := NewTurbo(names.ClassHan)

	tests := []struct {
		name   string
		target []string
		text   string
		want   names.Set
	}{
		{
			name:   "digits interleaved",
			target: []string{"张三", "李四"},
			text:   "1.张三2.李四 已完成",
			want:   names.NewSet("张三", "李四"),
		},
		{
			name:   "followed by text",
			target: []string{"王五"},
			text:   "王五已请假",
			want:   names.NewSet("王五"),
		},
		{
			name:   "absent",
			target: []string{"赵六"},
			text:   "无关文本",
			want:   names.NewSet(),
		},
		{
			name:   "digit inside name",
			target: []string{"刘骐豪"},
			text:   "刘骐1豪 ✅",
			want:   names.NewSet("刘骐豪"),
		},
		{
			name:   "split by newline",
			target: []string{"李欣然"},
			text:   "李\n欣然",
			want:   names.NewSet("李欣然"),
		},
		{
			name:   "raw form keeps names the class strips",
			target: []string{"Anna李", "李四"},
			text:   "Anna李 done",
			want:   names.NewSet("Anna李"),
		},
		{
			name:   "duplicate submissions count once",
			target: []string{"张三"},
			text:   "张三 张三 张三",
			want:   names.NewSet("张三"),
		},
		{
			name:   "empty text",
			target: []string{"张三"},
			text:   "",
			want:   names.NewSet(),
		},
		{
			name:   "empty target name ignored",
			target: []string{""},
			text:   "张三",
			want:   names.NewSet(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, turbo.Match(tt.target, tt.text))
		})
	}
}

func TestTurbo_Idempotent(t *testing.T) {
	turbo := NewTurbo("")
	target := []string{"张三", "李四", "王五"}
	text := "接龙：\n1. 张三\n2. 王-五\n"

	first := turbo.Match(target, text)
	second := turbo.Match(target, text)
	assert.Equal(t, first, second)
	assert.Equal(t, names.NewSet("张三", "王五"), first)
}
