package stubserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sceptre-labs/sceptre/src/auth"
	"github.com/sceptre-labs/sceptre/src/dispatch"
	"github.com/sceptre-labs/sceptre/src/knowledge"
	"github.com/sceptre-labs/sceptre/src/verify"
)

func newTestStub(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(New([]byte("test-secret")).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestSignupLoginVerifyFlow(t *testing.T) {
	srv := newTestStub(t)
	ctx := context.Background()
	client := auth.NewClient(srv.URL)

	if err := client.Signup(ctx, "a@b.com", "hunter2", "Ada B"); err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	sess, err := client.Login(ctx, "a@b.com", "hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if !sess.Valid() {
		t.Fatalf("login produced invalid session %+v", sess)
	}
	if sess.User.FullName != "Ada B" {
		t.Fatalf("full name = %q", sess.User.FullName)
	}

	d := verify.NewDispatcher(srv.URL)
	for _, sub := range []verify.Submission{
		verify.Text("The earth is flat."),
		verify.URL("https://example.com/story"),
		verify.File("claim.png", []byte("bytes")),
	} {
		res, err := d.Submit(ctx, sub, sess.Token, "sess-1")
		if err != nil {
			t.Fatalf("Submit(%v) error: %v", sub.Modality, err)
		}
		if res.ClassificationScore < 0 || res.ClassificationScore > 1 {
			t.Fatalf("Submit(%v) score out of range: %v", sub.Modality, res.ClassificationScore)
		}
		if res.CredibilityAssessment == "" {
			t.Fatalf("Submit(%v) missing assessment", sub.Modality)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestStub(t)
	ctx := context.Background()
	client := auth.NewClient(srv.URL)

	if err := client.Signup(ctx, "a@b.com", "hunter2", ""); err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	_, err := client.Login(ctx, "a@b.com", "wrong")
	var respErr *dispatch.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 ResponseError, got %v", err)
	}
}

func TestDuplicateSignupConflicts(t *testing.T) {
	srv := newTestStub(t)
	ctx := context.Background()
	client := auth.NewClient(srv.URL)

	if err := client.Signup(ctx, "a@b.com", "hunter2", ""); err != nil {
		t.Fatalf("first Signup() error: %v", err)
	}
	err := client.Signup(ctx, "a@b.com", "other", "")
	var respErr *dispatch.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 ResponseError, got %v", err)
	}
}

func TestVerifyRequiresAuth(t *testing.T) {
	srv := newTestStub(t)

	_, err := verify.NewDispatcher(srv.URL).Submit(context.Background(), verify.Text("x"), "not-a-token", "sess")
	var respErr *dispatch.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 ResponseError, got %v", err)
	}
}

func TestVerifyIsDeterministic(t *testing.T) {
	srv := newTestStub(t)
	ctx := context.Background()
	client := auth.NewClient(srv.URL)

	if err := client.Signup(ctx, "a@b.com", "hunter2", ""); err != nil {
		t.Fatalf("Signup() error: %v", err)
	}
	sess, err := client.Login(ctx, "a@b.com", "hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	d := verify.NewDispatcher(srv.URL)
	first, err := d.Submit(ctx, verify.Text("The earth is flat."), sess.Token, "sess")
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	second, err := d.Submit(ctx, verify.Text("The earth is flat."), sess.Token, "sess")
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if first.ClassificationScore != second.ClassificationScore ||
		first.CredibilityAssessment != second.CredibilityAssessment {
		t.Fatalf("same content got different verdicts: %+v vs %+v", first, second)
	}
}

func TestRefreshKnowledgeBase(t *testing.T) {
	srv := newTestStub(t)
	ctx := context.Background()
	client := auth.NewClient(srv.URL)

	if err := client.Signup(ctx, "a@b.com", "hunter2", ""); err != nil {
		t.Fatalf("Signup() error: %v", err)
	}
	sess, err := client.Login(ctx, "a@b.com", "hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	kb := knowledge.NewClient(srv.URL)
	res, err := kb.Refresh(ctx, "vaccines", sess.Token, "sess-1")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if res.Topic != "vaccines" || res.DocumentCount < 1 {
		t.Fatalf("unexpected refresh result %+v", res)
	}
}
