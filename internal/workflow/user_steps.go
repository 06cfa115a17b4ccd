package workflow

import (
	"context"
	"fmt"
	"strings"

	"content-commerce/backend/internal/pipeline"
	userdomain "content-commerce/backend/internal/user/domain"
)

// generateRandomUsername picks "{slug}-{dddd}" (or "{first}-{last}-{dddd}"
// for tenants without a slug) and retries until the name is free.
func (p *Pipelines) generateRandomUsername() pipeline.Factory[UserState] {
	return pipeline.Func("GenerateRandomUsername", func(ctx context.Context, s *UserState) error {
		if s.Username != "" {
			return nil
		}
		seed := usernameSeed(s)
		for {
			candidate := fmt.Sprintf("%s-%04d", seed, p.deps.IntN(10000))
			taken, err := p.deps.Users.ExistsByUsername(ctx, candidate)
			if err != nil {
				return err
			}
			if !taken {
				s.Username = candidate
				return nil
			}
		}
	})
}

func usernameSeed(s *UserState) string {
	if s.Service != nil && s.Service.Slug != "" {
		return s.Service.Slug
	}
	parts := strings.Fields(strings.ToLower(s.FirstName + " " + s.LastName))
	if len(parts) == 0 {
		return "user"
	}
	return strings.Join(parts, "-")
}

func (p *Pipelines) createUser() pipeline.Factory[UserState] {
	return pipeline.Func("CreateUser", func(ctx context.Context, s *UserState) error {
		if s.Service == nil {
			return pipeline.Stop("cannot create a user without a service")
		}
		hash, err := p.deps.Hasher.HashIfPlain(s.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u := &userdomain.User{
			ServiceID:    s.Service.ID,
			Username:     s.Username,
			Email:        s.Email,
			FirstName:    s.FirstName,
			LastName:     s.LastName,
			PasswordHash: hash,
			IsVerified:   s.IsVerified,
			Profile:      s.Profile,
		}
		if s.Event != nil {
			u.EventID = s.Event.ID
		}
		if err := p.deps.Users.Create(ctx, u); err != nil {
			return err
		}
		s.User = u
		pipeline.Logf(ctx, "A new user was created: %s (%s)", u.FullName(), u.ID)
		return nil
	})
}

func (p *Pipelines) generateToken() pipeline.Factory[UserState] {
	return pipeline.Func("GenerateToken", func(ctx context.Context, s *UserState) error {
		u := s.PipelineUser()
		if u == nil {
			return pipeline.Stop("no user to issue a token for")
		}
		tok, err := p.deps.Tokens.GetOrCreate(ctx, u.ID)
		if err != nil {
			return err
		}
		s.Token = tok
		return nil
	})
}
