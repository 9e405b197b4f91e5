package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/dailyreflect/internal/client/client"
	"github.com/dmitrijs2005/dailyreflect/internal/client/services"
	"github.com/dmitrijs2005/dailyreflect/internal/common"
)

// Indirections over the interactive input helpers, swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register creates an account and signs in with it.
func (a *App) Register(ctx context.Context) error {
	return a.authenticate(ctx, "Registered and signed in as", a.auth.Register)
}

// Login signs in. The sign-in itself starts a background sync.
func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, "Signed in as", a.auth.Login)
}

func (a *App) authenticate(ctx context.Context, success string, fn func(ctx context.Context, email string, password []byte) error) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := fn(ctx, email, password); err != nil {
		a.reportAuthError(ctx, err)
		return err
	}

	a.println(success, email)
	return nil
}

func (a *App) reportAuthError(ctx context.Context, err error) {
	a.log.Warn(ctx, "authentication failed", "error", err)
	switch {
	case errors.Is(err, services.ErrAuthDisabled):
		a.println("Remote accounts are disabled in this configuration.")
	case errors.Is(err, client.ErrUnauthorized):
		a.println("Wrong email or password.")
	case errors.Is(err, common.ErrorAlreadyExists):
		a.println("An account with this email already exists.")
	case errors.Is(err, common.ErrorValidation):
		a.println("The server rejected the email or password.")
	case errors.Is(err, client.ErrUnavailable):
		a.println("Server unavailable, try again later.")
	default:
		a.println("Error:", err)
	}
}

// Logout forgets the remote identity. Local entries stay on this device.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.println("Not signed in.")
		return nil
	}
	if err := a.auth.Logout(ctx); err != nil {
		a.println("Error:", err)
		return err
	}
	a.println("Signed out. Local entries are kept.")
	return nil
}
