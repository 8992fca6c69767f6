package access

// Visible 判断资源记录对操作者是否可见。
// 读可见性独立于写权限：列表与详情查询统一走这一套规则。
//
// 文章：已发布且未软删除对所有人可见；作者与超管额外可见自己的草稿和已删记录。
// 评论：记录可见性跟随其所属文章；软删除评论的记录头保留（正文另行判断）。
// 分类：恒公开。
func Visible(actor Actor, res Resource) bool {
	switch res.Kind {
	case KindCategory:
		return true
	case KindPost:
		if actor.Role == RoleSuperAdmin {
			return true
		}
		if isOwner(actor, res) {
			return true
		}
		return res.Published && !res.SoftDeleted
	case KindComment:
		return postOfCommentVisible(actor, res)
	default:
		return false
	}
}

// BodyVisible 判断评论正文对操作者是否可见。
// 软删除评论的正文仅超管与所属文章作者可见，其余观察者看到 "[deleted]" 占位。
// 非评论资源恒返回记录可见性结果。
func BodyVisible(actor Actor, res Resource) bool {
	if !Visible(actor, res) {
		return false
	}
	if res.Kind != KindComment {
		return true
	}
	if !res.SoftDeleted {
		return true
	}
	if actor.Role == RoleSuperAdmin {
		return true
	}
	return actor.ID != 0 && actor.ID == res.PostAuthorID
}

// postOfCommentVisible 套用文章可见性规则于评论所属文章的快照
func postOfCommentVisible(actor Actor, res Resource) bool {
	if actor.Role == RoleSuperAdmin {
		return true
	}
	if actor.ID != 0 && actor.ID == res.PostAuthorID {
		return true
	}
	return res.PostPublished && !res.PostSoftDeleted
}
