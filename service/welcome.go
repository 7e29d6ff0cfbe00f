package service

import (
	"context"
	"fmt"
	"time"

	"approcciala/model"
)

type Mailer interface {
	Send(to, subject, text string) error
}

const welcomeSubject = "Welcome to Approcciala"

func welcomeText(user *model.User, trial time.Duration) string {
	return fmt.Sprintf(`Hi %s,

your account is ready and your free trial runs for %d days.
Create a chat from the dashboard, describe the match and send us the first line you have in mind.

The Approcciala team`, user.Email, int(trial/(24*time.Hour)))
}

// WelcomeTask mails the new account holder. It is scheduled after sign-up and
// never blocks or fails the sign-up itself.
func WelcomeTask(mailer Mailer, user *model.User) DeferredTask {
	return DeferredTask{
		Name: "welcome-mail " + user.ID,
		Run: func(ctx context.Context) error {
			return mailer.Send(user.Email, welcomeSubject, welcomeText(user, model.TrialPeriod))
		},
	}
}
