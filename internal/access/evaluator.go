package access

import "fmt"

// verdict 决策表单元：同一 (角色, 动作) 对应的裁决方式
type verdict uint8

const (
	vDeny           verdict = iota // 一律拒绝（FORBIDDEN_ROLE）
	vAllow                         // 一律允许
	vVisible                       // 仅当资源对操作者可见（否则 RESOURCE_HIDDEN）
	vOwner                         // 仅限资源属主（否则 NOT_OWNER）
	vOwnerOrPostOwner              // 属主，或评论所属文章的属主（否则 NOT_OWNER）
	vCommentOnly                   // 仅允许评论资源（其余 FORBIDDEN_ROLE）
)

// ruleTable 角色×动作决策表。
// 每个角色必须覆盖全部动作，缺失视为编程错误而非业务拒绝。
var ruleTable = map[Role]map[Action]verdict{
	RoleSuperAdmin: {
		ActionCreate:         vAllow,
		ActionRead:           vAllow,
		ActionUpdate:         vAllow,
		ActionDelete:         vAllow,
		ActionPublish:        vAllow,
		ActionUnpublish:      vAllow,
		ActionAssignCategory: vAllow,
	},
	RoleEditor: {
		ActionCreate:         vAllow,
		ActionRead:           vVisible,
		ActionUpdate:         vOwner,
		ActionDelete:         vOwnerOrPostOwner,
		ActionPublish:        vOwner,
		ActionUnpublish:      vOwner,
		ActionAssignCategory: vOwner,
	},
	RoleSubscriber: {
		ActionCreate:         vCommentOnly,
		ActionRead:           vVisible,
		ActionUpdate:         vDeny,
		ActionDelete:         vDeny,
		ActionPublish:        vDeny,
		ActionUnpublish:      vDeny,
		ActionAssignCategory: vDeny,
	},
	RoleAnonymous: {
		ActionCreate:         vDeny,
		ActionRead:           vVisible,
		ActionUpdate:         vDeny,
		ActionDelete:         vDeny,
		ActionPublish:        vDeny,
		ActionUnpublish:      vDeny,
		ActionAssignCategory: vDeny,
	},
}

// Evaluate 评估操作者能否对资源执行动作。
// 业务性拒绝通过 Decision 返回；error 仅在角色或动作枚举非法时出现，
// 属于调用方的编程错误而非业务规则。
func Evaluate(actor Actor, action Action, res Resource) (Decision, error) {
	actions, ok := ruleTable[actor.Role]
	if !ok {
		return Decision{}, fmt.Errorf("access: unknown role %d", uint8(actor.Role))
	}
	rule, ok := actions[action]
	if !ok {
		return Decision{}, fmt.Errorf("access: unknown action %d", uint8(action))
	}

	switch rule {
	case vAllow:
		return Allow, nil
	case vDeny:
		return Deny(ReasonForbiddenRole), nil
	case vVisible:
		if Visible(actor, res) {
			return Allow, nil
		}
		return Deny(ReasonResourceHidden), nil
	case vOwner:
		if isOwner(actor, res) {
			return Allow, nil
		}
		return Deny(ReasonNotOwner), nil
	case vOwnerOrPostOwner:
		if isOwner(actor, res) {
			return Allow, nil
		}
		if res.Kind == KindComment && actor.ID != 0 && actor.ID == res.PostAuthorID {
			return Allow, nil
		}
		return Deny(ReasonNotOwner), nil
	case vCommentOnly:
		if res.Kind == KindComment {
			return Allow, nil
		}
		return Deny(ReasonForbiddenRole), nil
	default:
		return Decision{}, fmt.Errorf("access: unknown verdict %d", uint8(rule))
	}
}

func isOwner(actor Actor, res Resource) bool {
	return actor.ID != 0 && actor.ID == res.AuthorID
}
