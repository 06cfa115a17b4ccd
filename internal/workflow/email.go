package workflow

import (
	"context"
	"fmt"

	"content-commerce/backend/internal/mail"
	"content-commerce/backend/internal/pipeline"
	"content-commerce/backend/internal/security"
	socialdomain "content-commerce/backend/internal/social/domain"
	tenantdomain "content-commerce/backend/internal/tenant/domain"
	userdomain "content-commerce/backend/internal/user/domain"
)

// envelope is what the email step reads from a pipeline state. Service and
// Event are looked up from the user when not provided.
type envelope struct {
	Skip          bool
	User          *userdomain.User
	Service       *tenantdomain.Service
	Event         *socialdomain.Event
	Token         string
	GuestPassword string
	Type          tenantdomain.EmailType
}

// sendEmail resolves the email configuration of the user's scope (event for
// guests, tenant otherwise) and delivers it through the configured sender.
// Without a configuration the generic template is used.
func sendEmail[S any](p *Pipelines, read func(*S) envelope) pipeline.Factory[S] {
	return pipeline.Func("SendEmail", func(ctx context.Context, s *S) error {
		env := read(s)
		if env.Skip {
			return nil
		}
		u := env.User
		if u == nil {
			return pipeline.Stop("no user to notify")
		}
		svc := env.Service
		if svc == nil {
			var err error
			if svc, err = p.deps.Tenants.GetByID(ctx, u.ServiceID); err != nil {
				return err
			}
			if svc == nil {
				return pipeline.Stopf("service %s not found", u.ServiceID)
			}
		}
		ev := env.Event
		if ev == nil && u.IsGuest() {
			var err error
			if ev, err = p.deps.Social.GetEvent(ctx, u.EventID); err != nil {
				return err
			}
		}
		typ := env.Type
		if typ == "" {
			typ = tenantdomain.EmailRegister
			if u.IsGuest() {
				typ = tenantdomain.EmailGuestInvitation
			}
		}
		scope := tenantdomain.ServiceScope(svc.ID)
		if u.IsGuest() {
			scope = tenantdomain.EventScope(u.EventID)
		}
		cfg, err := p.deps.Tenants.FindEmailConfig(ctx, scope, typ)
		if err != nil {
			return err
		}

		from := svc.SMTPEmail
		if from == "" {
			from = p.deps.DefaultFrom
		}
		to := []string{u.Email}
		if p.deps.DevEmail != "" {
			to = []string{p.deps.DevEmail}
		}
		keys := emailKeys(u, svc, ev, cfg, env, typ)

		var (
			msg        mail.Message
			senderName string
		)
		if cfg != nil {
			msg = cfg.Message(from, to, keys)
			senderName = cfg.Sender
		} else {
			msg = mail.Message{From: from, To: to, Subject: mail.GenericSubject, HTMLBody: mail.GenericTemplate, Keys: keys}
		}
		sender, err := p.deps.Mail.Get(senderName)
		if err != nil {
			return err
		}
		if err := sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("send %s email: %w", typ, err)
		}
		pipeline.Logf(ctx, "Email %s sent to user %s", typ, u.ID)
		return nil
	})
}

func emailKeys(u *userdomain.User, svc *tenantdomain.Service, ev *socialdomain.Event, cfg *tenantdomain.EmailConfig, env envelope, typ tenantdomain.EmailType) map[string]string {
	eventName := ""
	if ev != nil {
		eventName = ev.Title
	}
	return map[string]string{
		"FIRST_NAME":     u.FirstName,
		"LAST_NAME":      u.LastName,
		"USERNAME":       u.Username,
		"EMAIL":          u.Email,
		"TOKEN":          env.Token,
		"SERVICE_NAME":   svc.Name,
		"EVENT_NAME":     eventName,
		"GUEST_PASSWORD": env.GuestPassword,
		"LINK":           emailLink(svc, ev, cfg, env.Token),
		"TITLE":          svc.Name,
		"USER_NAME":      u.FullName(),
		"ACTION":         string(typ),
	}
}

// emailLink prefers the configuration link, then the event link, then the
// tenant URL. Configuration and tenant links are suffixed with the token.
func emailLink(svc *tenantdomain.Service, ev *socialdomain.Event, cfg *tenantdomain.EmailConfig, token string) string {
	withToken := func(base string) string {
		if token == "" {
			return base
		}
		return base + token + "/"
	}
	switch {
	case cfg != nil && cfg.Link != "":
		return withToken(cfg.Link)
	case ev != nil && ev.Link != "":
		return ev.Link
	default:
		return withToken(svc.URL)
	}
}

func userEnvelope(s *UserState) envelope {
	env := envelope{
		Skip:    !s.SendMail,
		User:    s.User,
		Service: s.Service,
		Event:   s.Event,
		Type:    s.EmailType,
	}
	if s.Token != nil {
		env.Token = s.Token.Key
	}
	if s.Event != nil && !security.IsHashed(s.Password) {
		env.GuestPassword = s.Password
	}
	return env
}

func mentionEnvelope(s *MentionState) envelope {
	return envelope{User: s.User, Type: tenantdomain.EmailMentionNotification}
}

func newPostEnvelope(s *NewPostState) envelope {
	return envelope{User: s.Guest, Type: tenantdomain.EmailNewPostNotification}
}
