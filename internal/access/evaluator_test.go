package access

import (
	"testing"
)

func publishedPost(authorID uint) Resource {
	return Resource{Kind: KindPost, AuthorID: authorID, Published: true}
}

func draftPost(authorID uint) Resource {
	return Resource{Kind: KindPost, AuthorID: authorID}
}

func TestEvaluateSuperAdminAlwaysAllowed(t *testing.T) {
	actor := Actor{ID: 1, Role: RoleSuperAdmin}
	actions := []Action{
		ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionPublish, ActionUnpublish, ActionAssignCategory,
	}
	resources := []Resource{
		publishedPost(2),
		draftPost(2),
		{Kind: KindPost, AuthorID: 2, SoftDeleted: true},
		{Kind: KindComment, AuthorID: 3, PostAuthorID: 2, SoftDeleted: true},
		{Kind: KindCategory, Published: true},
	}
	for _, action := range actions {
		for _, res := range resources {
			decision, err := Evaluate(actor, action, res)
			if err != nil {
				t.Fatalf("evaluate %s failed: %v", action, err)
			}
			if !decision.Allowed {
				t.Fatalf("super_admin should be allowed for %s, got reason %s", action, decision.Reason)
			}
		}
	}
}

func TestEvaluateEditorOwnership(t *testing.T) {
	owner := Actor{ID: 10, Role: RoleEditor}
	other := Actor{ID: 11, Role: RoleEditor}
	post := draftPost(10)

	for _, action := range []Action{ActionUpdate, ActionDelete, ActionPublish, ActionUnpublish, ActionAssignCategory} {
		decision, err := Evaluate(owner, action, post)
		if err != nil {
			t.Fatalf("evaluate %s failed: %v", action, err)
		}
		if !decision.Allowed {
			t.Fatalf("owner editor should be allowed for %s, got reason %s", action, decision.Reason)
		}

		decision, err = Evaluate(other, action, post)
		if err != nil {
			t.Fatalf("evaluate %s failed: %v", action, err)
		}
		if decision.Allowed {
			t.Fatalf("non-owner editor should be denied for %s", action)
		}
		if decision.Reason != ReasonNotOwner {
			t.Fatalf("expected NOT_OWNER for %s, got %s", action, decision.Reason)
		}
	}
}

func TestEvaluateEditorDeletesCommentOnOwnPost(t *testing.T) {
	postOwner := Actor{ID: 10, Role: RoleEditor}
	otherEditor := Actor{ID: 11, Role: RoleEditor}
	comment := Resource{Kind: KindComment, AuthorID: 42, PostAuthorID: 10, PostPublished: true}

	decision, err := Evaluate(postOwner, ActionDelete, comment)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("post owner should delete comments on own post, got reason %s", decision.Reason)
	}

	decision, err = Evaluate(otherEditor, ActionDelete, comment)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonNotOwner {
		t.Fatalf("other editor should get NOT_OWNER, got allowed=%v reason=%s", decision.Allowed, decision.Reason)
	}
}

func TestEvaluateSubscriberCreateMatrix(t *testing.T) {
	actor := Actor{ID: 20, Role: RoleSubscriber}

	decision, err := Evaluate(actor, ActionCreate, Resource{Kind: KindComment, PostAuthorID: 10, PostPublished: true})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("subscriber should create comments, got reason %s", decision.Reason)
	}

	for _, kind := range []ResourceKind{KindPost, KindCategory} {
		decision, err := Evaluate(actor, ActionCreate, Resource{Kind: kind})
		if err != nil {
			t.Fatalf("evaluate failed: %v", err)
		}
		if decision.Allowed || decision.Reason != ReasonForbiddenRole {
			t.Fatalf("subscriber create kind=%d: expected FORBIDDEN_ROLE, got allowed=%v reason=%s",
				kind, decision.Allowed, decision.Reason)
		}
	}
}

func TestEvaluateSubscriberMutationsForbidden(t *testing.T) {
	actor := Actor{ID: 20, Role: RoleSubscriber}
	ownComment := Resource{Kind: KindComment, AuthorID: 20, PostAuthorID: 10, PostPublished: true}

	for _, action := range []Action{ActionUpdate, ActionDelete, ActionPublish, ActionUnpublish, ActionAssignCategory} {
		decision, err := Evaluate(actor, action, ownComment)
		if err != nil {
			t.Fatalf("evaluate %s failed: %v", action, err)
		}
		if decision.Allowed || decision.Reason != ReasonForbiddenRole {
			t.Fatalf("subscriber %s: expected FORBIDDEN_ROLE, got allowed=%v reason=%s",
				action, decision.Allowed, decision.Reason)
		}
	}
}

func TestEvaluateAnonymousRead(t *testing.T) {
	actor := Actor{Role: RoleAnonymous}

	decision, err := Evaluate(actor, ActionRead, publishedPost(10))
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("anonymous should read published post, got reason %s", decision.Reason)
	}

	decision, err = Evaluate(actor, ActionRead, draftPost(10))
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonResourceHidden {
		t.Fatalf("anonymous draft read: expected RESOURCE_HIDDEN, got allowed=%v reason=%s",
			decision.Allowed, decision.Reason)
	}

	decision, err = Evaluate(actor, ActionRead, Resource{Kind: KindPost, AuthorID: 10, Published: true, SoftDeleted: true})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonResourceHidden {
		t.Fatalf("anonymous deleted read: expected RESOURCE_HIDDEN, got allowed=%v reason=%s",
			decision.Allowed, decision.Reason)
	}

	decision, err = Evaluate(actor, ActionCreate, Resource{Kind: KindComment, PostPublished: true})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonForbiddenRole {
		t.Fatalf("anonymous create: expected FORBIDDEN_ROLE, got allowed=%v reason=%s",
			decision.Allowed, decision.Reason)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	actor := Actor{ID: 11, Role: RoleEditor}
	res := draftPost(10)
	first, err := Evaluate(actor, ActionUpdate, res)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Evaluate(actor, ActionUpdate, res)
		if err != nil {
			t.Fatalf("evaluate failed: %v", err)
		}
		if again != first {
			t.Fatalf("evaluation not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestEvaluateUnknownEnumsAreErrors(t *testing.T) {
	if _, err := Evaluate(Actor{ID: 1, Role: Role(99)}, ActionRead, publishedPost(1)); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := Evaluate(Actor{ID: 1, Role: RoleEditor}, Action(99), publishedPost(1)); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestEvaluateRuleTableCoversAllRolesAndActions(t *testing.T) {
	roles := []Role{RoleAnonymous, RoleSubscriber, RoleEditor, RoleSuperAdmin}
	actions := []Action{
		ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionPublish, ActionUnpublish, ActionAssignCategory,
	}
	for _, role := range roles {
		actionTable, ok := ruleTable[role]
		if !ok {
			t.Fatalf("rule table missing role %s", role)
		}
		for _, action := range actions {
			if _, ok := actionTable[action]; !ok {
				t.Fatalf("rule table missing (%s, %s)", role, action)
			}
		}
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"", RoleAnonymous, false},
		{"subscriber", RoleSubscriber, false},
		{"editor", RoleEditor, false},
		{"super_admin", RoleSuperAdmin, false},
		{"root", RoleAnonymous, true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseRole(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRole(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
