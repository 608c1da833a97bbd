package query

import "strings"

// Key 分层的查询键，例如 Key{"meetings", "7"}。
// Invalidate 按前缀匹配：Key{"meetings"} 会命中所有小组的聚会列表。
type Key []string

func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix k 是否以 p 开头（按段比较）
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}
