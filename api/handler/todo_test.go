package handler

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/taskdeck/backend/api/transport"
	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository/memory"
	todoUC "github.com/taskdeck/backend/usecase/todo"
)

func newTodoHandler() *TodoHandler {
	return NewTodoHandler(todoUC.New(memory.NewTodoRepository(), nil), nil, nil)
}

func newRequestCtx(method, uri, userID, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if userID != "" {
		ctx.Request.Header.Set(HeaderUserID, userID)
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	return ctx
}

func decodeError(t *testing.T, ctx *fasthttp.RequestCtx) transport.ErrorResponse {
	t.Helper()
	var resp transport.ErrorResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", ctx.Response.Body(), err)
	}
	return resp
}

func createOne(t *testing.T, h *TodoHandler, userID, title string) domain.Todo {
	t.Helper()
	body, _ := json.Marshal(transport.CreateTodoRequest{Title: title})
	ctx := newRequestCtx(fasthttp.MethodPost, "/todos", userID, string(body))
	h.Create(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("create status=%d body=%s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	var todo domain.Todo
	if err := json.Unmarshal(ctx.Response.Body(), &todo); err != nil {
		t.Fatalf("decode created todo: %v", err)
	}
	return todo
}

func TestTodoHandlers_RequireIdentity(t *testing.T) {
	h := newTodoHandler()

	calls := map[string]func(*fasthttp.RequestCtx){
		"list":             h.List,
		"create":           h.Create,
		"update":           h.Update,
		"delete":           h.Delete,
		"delete completed": h.DeleteCompleted,
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			ctx := newRequestCtx(fasthttp.MethodGet, "/todos", "", "")
			call(ctx)
			if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
				t.Fatalf("status=%d, want 401", ctx.Response.StatusCode())
			}
			if resp := decodeError(t, ctx); resp.Error.Code != string(domain.ErrCodeUnauthorized) {
				t.Fatalf("code=%q, want UNAUTHORIZED", resp.Error.Code)
			}
		})
	}
}

func TestTodoCreate(t *testing.T) {
	h := newTodoHandler()

	ctx := newRequestCtx(fasthttp.MethodPost, "/todos", "alice", `{"title":"buy milk"}`)
	h.Create(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("status=%d, want 201", ctx.Response.StatusCode())
	}
	if ct := string(ctx.Response.Header.ContentType()); ct != "application/json" {
		t.Fatalf("content type=%q", ct)
	}

	// The wire shape is camelCase.
	body := string(ctx.Response.Body())
	for _, key := range []string{`"id"`, `"userId"`, `"title"`, `"completed"`, `"createdAt"`, `"updatedAt"`} {
		if !strings.Contains(body, key) {
			t.Fatalf("body %s missing key %s", body, key)
		}
	}

	var todo domain.Todo
	if err := json.Unmarshal(ctx.Response.Body(), &todo); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if todo.UserID != "alice" || todo.Title != "buy milk" || todo.Completed {
		t.Fatalf("todo=%+v", todo)
	}
}

func TestTodoCreate_Invalid(t *testing.T) {
	h := newTodoHandler()

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"empty title", `{"title":""}`},
		{"whitespace title", `{"title":"   "}`},
		{"over max title", `{"title":"` + strings.Repeat("a", 501) + `"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newRequestCtx(fasthttp.MethodPost, "/todos", "alice", tc.body)
			h.Create(ctx)
			if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
				t.Fatalf("status=%d, want 400", ctx.Response.StatusCode())
			}
			if resp := decodeError(t, ctx); resp.Error.Code != string(domain.ErrCodeInvalid) {
				t.Fatalf("code=%q, want INVALID", resp.Error.Code)
			}
		})
	}
}

func TestTodoList(t *testing.T) {
	h := newTodoHandler()
	createOne(t, h, "alice", "one")
	createOne(t, h, "alice", "two")
	createOne(t, h, "bob", "not alice's")

	ctx := newRequestCtx(fasthttp.MethodGet, "/todos", "alice", "")
	h.List(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status=%d, want 200", ctx.Response.StatusCode())
	}
	var todos []domain.Todo
	if err := json.Unmarshal(ctx.Response.Body(), &todos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("len=%d, want 2", len(todos))
	}
	for _, todo := range todos {
		if todo.UserID != "alice" {
			t.Fatalf("foreign todo in list: %+v", todo)
		}
	}
}

func TestTodoUpdate_PartialPatch(t *testing.T) {
	h := newTodoHandler()
	created := createOne(t, h, "alice", "water plants")

	ctx := newRequestCtx(fasthttp.MethodPatch, "/todos/"+created.ID, "alice", `{"completed":true}`)
	ctx.SetUserValue("id", created.ID)
	h.Update(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status=%d body=%s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	var updated domain.Todo
	if err := json.Unmarshal(ctx.Response.Body(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Title != "water plants" {
		t.Fatalf("title=%q, toggle clobbered it", updated.Title)
	}
	if !updated.Completed {
		t.Fatal("completed flag not applied")
	}
}

func TestTodoUpdate_ForeignOwnerGets404(t *testing.T) {
	h := newTodoHandler()
	created := createOne(t, h, "alice", "mine")

	ctx := newRequestCtx(fasthttp.MethodPatch, "/todos/"+created.ID, "bob", `{"completed":true}`)
	ctx.SetUserValue("id", created.ID)
	h.Update(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("status=%d, want 404", ctx.Response.StatusCode())
	}
	if resp := decodeError(t, ctx); resp.Error.Code != string(domain.ErrCodeNotFound) {
		t.Fatalf("code=%q, want NOT_FOUND", resp.Error.Code)
	}
}

func TestTodoDelete(t *testing.T) {
	h := newTodoHandler()
	created := createOne(t, h, "alice", "short lived")

	ctx := newRequestCtx(fasthttp.MethodDelete, "/todos/"+created.ID, "alice", "")
	ctx.SetUserValue("id", created.ID)
	h.Delete(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status=%d, want 200", ctx.Response.StatusCode())
	}
	var ack transport.Ack
	if err := json.Unmarshal(ctx.Response.Body(), &ack); err != nil || !ack.Success {
		t.Fatalf("ack=%+v err=%v", ack, err)
	}

	// Second delete of the same id is a 404.
	ctx = newRequestCtx(fasthttp.MethodDelete, "/todos/"+created.ID, "alice", "")
	ctx.SetUserValue("id", created.ID)
	h.Delete(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("repeat status=%d, want 404", ctx.Response.StatusCode())
	}
}

func TestTodoDeleteCompleted(t *testing.T) {
	h := newTodoHandler()
	created := createOne(t, h, "alice", "finished")
	createOne(t, h, "alice", "still open")

	patch := newRequestCtx(fasthttp.MethodPatch, "/todos/"+created.ID, "alice", `{"completed":true}`)
	patch.SetUserValue("id", created.ID)
	h.Update(patch)
	if patch.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("toggle status=%d", patch.Response.StatusCode())
	}

	ctx := newRequestCtx(fasthttp.MethodDelete, "/todos/completed", "alice", "")
	h.DeleteCompleted(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status=%d, want 200", ctx.Response.StatusCode())
	}

	// Matching nothing is still a success.
	ctx = newRequestCtx(fasthttp.MethodDelete, "/todos/completed", "alice", "")
	h.DeleteCompleted(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("repeat status=%d, want 200", ctx.Response.StatusCode())
	}

	list := newRequestCtx(fasthttp.MethodGet, "/todos", "alice", "")
	h.List(list)
	var todos []domain.Todo
	if err := json.Unmarshal(list.Response.Body(), &todos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "still open" {
		t.Fatalf("list=%+v, want only the open todo", todos)
	}
}
