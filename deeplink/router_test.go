package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_KeepsOnlyLatestPending(t *testing.T) {
	r := NewRouter()
	r.Handle("/announcements/1")
	r.Handle("/prayers/2")
	assert.Equal(t, "/prayers/2", r.Pending())

	var got []string
	r.SetReady(func(url string) { got = append(got, url) })
	assert.Equal(t, []string{"/prayers/2"}, got)
	assert.Empty(t, r.Pending())

	// 已就绪：直接跳转，不再挂起
	r.Handle("/groups/3")
	assert.Equal(t, []string{"/prayers/2", "/groups/3"}, got)
	assert.Empty(t, r.Pending())
}

func TestRouter_SetReadyWithoutPending(t *testing.T) {
	r := NewRouter()
	calls := 0
	r.SetReady(func(string) { calls++ })
	assert.Equal(t, 0, calls)

	r.Handle("   ")
	assert.Equal(t, 0, calls)
}

func TestRouter_NotReadyAgain(t *testing.T) {
	r := NewRouter()
	r.SetReady(func(string) {})
	r.SetReady(nil)
	r.Handle("/groups/9")
	assert.Equal(t, "/groups/9", r.Pending())
}

func TestParsePayload(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"top level", `{"url":"/prayers/1"}`, "/prayers/1", true},
		{"nested data", `{"data":{"url":"/groups/2"}}`, "/groups/2", true},
		{"top level wins", `{"url":"/a","data":{"url":"/b"}}`, "/a", true},
		{"missing", `{"title":"x"}`, "", false},
		{"bad json", `{`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParsePayload([]byte(tc.in))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
