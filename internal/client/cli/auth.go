package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jobtrackr/jobtrackr-go/internal/client/api"
)

func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer WipeBytes(password)

	user, err := a.coord.SignIn(ctx, api.LoginRequest{Email: email, Password: string(password)})
	if err != nil {
		fmt.Println("Login failed:", a.coord.State().Error)
		return
	}

	name := user.Username
	if name == "" {
		name = user.Email
	}
	fmt.Printf("Welcome, %s!\n", name)
}

func (a *App) Register(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	username, err := GetSimpleText(a.reader, "Enter username (optional)", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer WipeBytes(password)

	resp, err := a.coord.SignUp(ctx, api.RegisterRequest{
		Email:    email,
		Username: username,
		Password: string(password),
	})
	if err != nil {
		fmt.Println("Registration failed:", a.coord.State().Error)
		return
	}

	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	fmt.Println("Check your mailbox for the verification code, then run 'verify'.")
}

func (a *App) Verify(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	code, err := GetSimpleText(a.reader, "Enter verification code", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	user, err := a.coord.VerifyRegistration(ctx, email, code)
	if err != nil {
		fmt.Println("Verification failed:", a.coord.State().Error)
		return
	}
	fmt.Printf("Account confirmed. Welcome, %s!\n", user.Email)
}

func (a *App) Resend(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	msg, err := a.coord.ResendVerificationCode(ctx, email)
	if err != nil {
		fmt.Println("Resend failed:", a.coord.State().Error)
		return
	}
	fmt.Println(msg)
}

func (a *App) ForgotPassword(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	msg, err := a.coord.ForgotPassword(ctx, email)
	if err != nil {
		fmt.Println("Request failed:", a.coord.State().Error)
		return
	}
	fmt.Println(msg)
}

func (a *App) WhoAmI() {
	st := a.coord.State()
	if !st.IsAuthenticated || st.User == nil {
		fmt.Println("Not signed in.")
		return
	}
	fmt.Printf("%s (%s), role %s\n", st.User.Email, st.User.ID, st.User.Role)
}

func (a *App) Refresh(ctx context.Context) {
	if err := a.coord.Refresh(ctx); err != nil {
		fmt.Println("Refresh failed:", err)
		return
	}
	fmt.Println("Token refreshed.")
}

func (a *App) Logout(ctx context.Context) {
	a.coord.SignOut(ctx)
	fmt.Println("Signed out.")
}
