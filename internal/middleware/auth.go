package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/models"
)

// UserLookup loads the trusted user record behind a token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthInterceptor resolves the caller's Principal from a bearer token and
// stores it in the request context. Requests without a token carry the zero
// principal; operations that need a user reject it themselves. A token that
// is present but invalid, or names a user that no longer exists, is rejected
// with CodeUnauthenticated. The role always comes from the stored user.
type AuthInterceptor struct {
	jwtManager *auth.JWTManager
	users      UserLookup
	logger     *slog.Logger
}

var _ connect.Interceptor = (*AuthInterceptor)(nil)

func NewAuthInterceptor(jwtManager *auth.JWTManager, users UserLookup, logger *slog.Logger) *AuthInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthInterceptor{jwtManager: jwtManager, users: users, logger: logger}
}

func (i *AuthInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		ctx, err := i.authenticate(ctx, req.Spec().Procedure, req.Header())
		if err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (i *AuthInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *AuthInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, err := i.authenticate(ctx, conn.Spec().Procedure, conn.RequestHeader())
		if err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

func (i *AuthInterceptor) authenticate(ctx context.Context, procedure string, header http.Header) (context.Context, error) {
	value := header.Get("Authorization")
	if value == "" {
		return auth.WithPrincipal(ctx, auth.Principal{}), nil
	}

	token, err := auth.BearerToken(value)
	if err != nil {
		return ctx, connect.NewError(connect.CodeUnauthenticated, err)
	}
	claims, err := i.jwtManager.Validate(token)
	if err != nil {
		i.logger.Warn("Rejected token", "procedure", procedure, "error", err)
		return ctx, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}

	user, err := i.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		i.logger.Warn("Token for unknown user", "procedure", procedure, "user_id", claims.UserID)
		return ctx, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}
	if err != nil {
		i.logger.Error("Failed to load user", "user_id", claims.UserID, "error", err)
		return ctx, connect.NewError(connect.CodeUnavailable, models.ErrStorageUnavailable)
	}
	return auth.WithPrincipal(ctx, auth.PrincipalFor(user)), nil
}
