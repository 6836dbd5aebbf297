package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/pkg/api"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Guest@Example.com",
		Password:    "password123",
		DisplayName: "Guest",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.Token == "" {
		t.Fatal("expected token")
	}
	if resp.Msg.User.Role != "customer" || resp.Msg.User.Email != "guest@example.com" {
		t.Errorf("unexpected user: %+v", resp.Msg.User)
	}

	_, err = env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "guest@example.com", Password: "password123", DisplayName: "Again",
	}))
	expectCode(t, err, connect.CodeAlreadyExists)

	_, err = env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "weak@example.com", Password: "123", DisplayName: "Weak",
	}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "x@example.com", Password: "password123"}))
	expectCode(t, err, connect.CodeInvalidArgument)

	login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "guest@example.com", Password: "password123"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != resp.Msg.User.ID {
		t.Errorf("login user = %s, want %s", login.Msg.User.ID, resp.Msg.User.ID)
	}

	_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "guest@example.com", Password: "wrong-password"}))
	expectCode(t, err, connect.CodeUnauthenticated)
}

func TestGetCurrentUser(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	token := env.register(t, "cook@example.com", models.RoleStaff)

	resp, err := env.auth.GetCurrentUser(ctx, withToken(&api.GetCurrentUserRequest{}, token))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if resp.Msg.User.Role != "staff" {
		t.Errorf("role = %s, want staff (granted after the token was issued)", resp.Msg.User.Role)
	}
	want := []string{"browse", "order", "advance-item-status"}
	if len(resp.Msg.Capabilities) != len(want) {
		t.Fatalf("capabilities = %v, want %v", resp.Msg.Capabilities, want)
	}
	for i := range want {
		if resp.Msg.Capabilities[i] != want[i] {
			t.Errorf("capabilities[%d] = %s, want %s", i, resp.Msg.Capabilities[i], want[i])
		}
	}

	_, err = env.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	expectCode(t, err, connect.CodeUnauthenticated)

	_, err = env.auth.GetCurrentUser(ctx, withToken(&api.GetCurrentUserRequest{}, "forged.token.value"))
	expectCode(t, err, connect.CodeUnauthenticated)
}
