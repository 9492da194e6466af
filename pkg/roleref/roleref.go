// Package roleref 统一新旧两套角色表示的比较逻辑。
//
// 平台早期每个用户只有一个固定角色值（遗留字段），后来演进为
// 用户-租户-角色多对多绑定。两套表示长期共存，所有基于角色的
// 检查都必须同时承认两者，这里提供唯一的等价判定入口，
// 避免各处散落的字符串/枚举强转。
package roleref

import "strings"

// Kind 角色引用的来源
type Kind int

const (
	// Legacy 用户记录上的遗留单角色值
	Legacy Kind = iota
	// Rbac 通过绑定解析出的RBAC角色代码
	Rbac
)

// Ref 角色引用：来源 + 代码
type Ref struct {
	Kind Kind
	Code string
}

// LegacyRef 构造遗留角色引用
func LegacyRef(code string) Ref {
	return Ref{Kind: Legacy, Code: code}
}

// RbacRef 构造RBAC角色引用
func RbacRef(code string) Ref {
	return Ref{Kind: Rbac, Code: code}
}

// normalize 统一比较形态：去空白、转大写
func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Matches 判断角色引用是否等价于要求的角色代码。
// 等价规则：规范化（去空白、大小写不敏感）后相等，或原值严格相等。
func (r Ref) Matches(required string) bool {
	if r.Code == "" || required == "" {
		return false
	}
	if normalize(r.Code) == normalize(required) {
		return true
	}
	return r.Code == required
}

// MatchesAny 角色引用是否命中要求列表中的任意一项
func (r Ref) MatchesAny(required []string) bool {
	for _, code := range required {
		if r.Matches(code) {
			return true
		}
	}
	return false
}

// AnyMatches 引用集合与要求列表是否存在交集
func AnyMatches(refs []Ref, required []string) bool {
	for _, ref := range refs {
		if ref.MatchesAny(required) {
			return true
		}
	}
	return false
}

// Collect 把遗留角色值和RBAC角色代码列表收拢成统一的引用集合
func Collect(legacyRole string, rbacCodes []string) []Ref {
	refs := make([]Ref, 0, len(rbacCodes)+1)
	if legacyRole != "" {
		refs = append(refs, LegacyRef(legacyRole))
	}
	for _, code := range rbacCodes {
		if code != "" {
			refs = append(refs, RbacRef(code))
		}
	}
	return refs
}
