package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"digits interleaved", "1.张三2.李四 已完成", "张三李四已完成"},
		{"emoji and punctuation", "✅刘骐1豪。", "刘骐豪"},
		{"latin dropped", "Alice 王五", "王五"},
		{"newline inside name", "张\n三", "张三"},
		{"full-width digits", "１２李欣然", "李欣然"},
		{"nothing permitted", "hello, world! 123", ""},
		{"kangxi radicals fold to ideographs", "⼀⼆", "一二"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestCharClass_Permits(t *testing.T) {
	assert.True(t, ClassHan.Permits('张'))
	assert.False(t, ClassHan.Permits('A'))
	assert.False(t, ClassHan.Permits('〇'))

	assert.True(t, ClassLatin.Permits('A'))
	assert.True(t, ClassLatin.Permits('z'))
	assert.True(t, ClassLatin.Permits('张'))
	assert.False(t, ClassLatin.Permits('1'))

	// U+3400 is CJK Extension A: Han script but outside the basic range.
	assert.True(t, ClassHanExt.Permits('㐀'))
	assert.False(t, ClassHan.Permits('㐀'))
}

func TestCleanName(t *testing.T) {
	got, ok := CleanName("刘1骐豪")
	require.True(t, ok)
	assert.Equal(t, "刘骐豪", got)

	_, ok = CleanName("A")
	assert.False(t, ok, "no permitted characters")

	_, ok = CleanName("张")
	assert.False(t, ok, "single character is not a name")

	got, ok = ClassLatin.CleanName("Li Na!")
	require.True(t, ok)
	assert.Equal(t, "LiNa", got)
}

func TestParseCharClass(t *testing.T) {
	c, err := ParseCharClass("")
	require.NoError(t, err)
	assert.Equal(t, DefaultClass, c)

	c, err = ParseCharClass("han-ext")
	require.NoError(t, err)
	assert.Equal(t, ClassHanExt, c)

	_, err = ParseCharClass("cyrillic")
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	s := NewSet("王五", "张三", "张三")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("张三"))
	assert.False(t, s.Has("李四"))

	s.Add("李四")
	assert.Equal(t, []string{"张三", "李四", "王五"}, s.Sorted())

	in := s.Intersect([]string{"李四", "赵六"})
	assert.Equal(t, NewSet("李四"), in)
}
