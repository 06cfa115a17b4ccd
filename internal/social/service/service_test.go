package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authtokendomain "content-commerce/backend/internal/authtoken/domain"
	"content-commerce/backend/internal/mail"
	"content-commerce/backend/internal/notification"
	"content-commerce/backend/internal/security"
	"content-commerce/backend/internal/social/domain"
	tenantdomain "content-commerce/backend/internal/tenant/domain"
	userdomain "content-commerce/backend/internal/user/domain"
	"content-commerce/backend/internal/workflow"
)

type memSocial struct {
	mu       sync.Mutex
	events   map[string]*domain.Event
	posts    map[string]*domain.Post
	comments map[string]*domain.Comment
}

func (r *memSocial) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[id], nil
}

func (r *memSocial) GetPost(_ context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[id], nil
}

func (r *memSocial) CreatePost(_ context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = p
	return nil
}

func (r *memSocial) GetComment(_ context.Context, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.comments[id], nil
}

func (r *memSocial) AddMention(_ context.Context, commentID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.comments[commentID]
	if c != nil && !c.HasMention(userID) {
		c.MentionIDs = append(c.MentionIDs, userID)
	}
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*userdomain.User
	seq  int
}

func (r *memUsers) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *memUsers) ExistsByEmailInEvent(_ context.Context, eventID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.EventID == eventID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) ListByEvent(_ context.Context, eventID string) ([]*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*userdomain.User
	for i := 1; i <= r.seq; i++ {
		if u := r.byID[fmt.Sprintf("user-%d", i)]; u != nil && u.EventID == eventID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) Create(_ context.Context, u *userdomain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	r.byID[u.ID] = u
	return nil
}

func (r *memUsers) SetPremium(context.Context, string, bool) error { return nil }

type memTokens struct {
	mu sync.Mutex
	m  map[string]*authtokendomain.Token
}

func (r *memTokens) GetOrCreate(_ context.Context, userID string) (*authtokendomain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.m[userID]; ok {
		return t, nil
	}
	t := &authtokendomain.Token{Key: "key-" + userID, UserID: userID}
	r.m[userID] = t
	return t, nil
}

type memTenants map[string]*tenantdomain.Service

func (m memTenants) GetByID(_ context.Context, id string) (*tenantdomain.Service, error) {
	return m[id], nil
}

func (m memTenants) FindEmailConfig(_ context.Context, scope tenantdomain.Scope, typ tenantdomain.EmailType) (*tenantdomain.EmailConfig, error) {
	if scope.IsEvent() && typ == tenantdomain.EmailGuestInvitation {
		return &tenantdomain.EmailConfig{
			Scope:        scope,
			Type:         typ,
			Subject:      "You are invited",
			HTMLTemplate: "[FIRST_NAME] [LAST_NAME]: [EMAIL] / [GUEST_PASSWORD]",
		}, nil
	}
	return nil, nil
}

type recordingProducer struct {
	mu        sync.Mutex
	published []notification.PostPublished
	err       error
}

func (p *recordingProducer) Publish(_ context.Context, ev notification.PostPublished) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, ev)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) IntN(int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

type fixture struct {
	social   *memSocial
	users    *memUsers
	outbox   *mail.DummySender
	producer *recordingProducer
	svc      *SocialService
}

const guestList = "ann@guests.io,annpass1\nbob@guests.io,bobpass2"

func newFixture(t *testing.T, withProducer bool) *fixture {
	t.Helper()
	f := &fixture{
		social: &memSocial{
			events: map[string]*domain.Event{
				"ev-1":   {ID: "ev-1", ServiceID: "svc-1", Title: "Launch Day", Guests: guestList, SendEmailToGuests: true, Link: "https://acme.test/launch"},
				"ev-bad": {ID: "ev-bad", ServiceID: "svc-1", Title: "Broken", Guests: "nobody\nx@y.io,bad pass"},
			},
			posts:    map[string]*domain.Post{},
			comments: map[string]*domain.Comment{"c-1": {ID: "c-1", PostID: "p-0", AuthorID: "author"}},
		},
		users:  &memUsers{byID: map[string]*userdomain.User{}},
		outbox: mail.NewDummySender(),
	}
	tenants := memTenants{"svc-1": {ID: "svc-1", Name: "Acme Academy", Slug: "acme", URL: "https://acme.test/"}}
	registry := mail.NewRegistry(mail.SenderDummy)
	registry.Register(mail.SenderDummy, f.outbox)
	seq := &counter{}
	pipes := workflow.New(workflow.Deps{
		Users:       f.users,
		Tokens:      &memTokens{m: map[string]*authtokendomain.Token{}},
		Social:      f.social,
		Tenants:     tenants,
		Hasher:      security.NewHasher(4),
		Mail:        registry,
		DefaultFrom: "noreply@localhost",
		IntN:        seq.IntN,
	})
	var producer notification.Producer
	if withProducer {
		f.producer = &recordingProducer{}
		producer = f.producer
	}
	f.svc = NewSocialService(f.social, f.users, tenants, pipes, producer, 2, nil)
	f.svc.intN = func(int) int { return 2345 }
	return f
}

func TestProvisionGuests(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	res, err := f.svc.ProvisionGuests(ctx, "ev-1")

	require.NoError(t, err)
	require.Len(t, res.Created, 2)
	ann := res.Created[0]
	assert.Equal(t, "Guest 12345", ann.FirstName)
	assert.Equal(t, "Launch Day", ann.LastName)
	assert.Equal(t, "ev-1", ann.EventID)
	assert.True(t, ann.IsVerified)
	assert.True(t, ann.IsGuest())
	require.NoError(t, security.NewHasher(4).Compare(ann.PasswordHash, "annpass1"))

	sent := f.outbox.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "You are invited", sent[0].Message.Subject)
	assert.Equal(t, "Guest 12345 Launch Day: ann@guests.io / annpass1", sent[0].CompiledBody)

	again, err := f.svc.ProvisionGuests(ctx, "ev-1")
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Equal(t, []string{"ann@guests.io", "bob@guests.io"}, again.Skipped)
	assert.Len(t, f.outbox.Sent(), 2)
}

func TestProvisionGuests_InvalidList(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.ProvisionGuests(context.Background(), "ev-bad")

	var gle *domain.GuestListError
	require.ErrorAs(t, err, &gle)
	assert.Len(t, gle.Problems, 2)
	assert.Empty(t, f.users.byID)
}

func TestProvisionGuests_UnknownEvent(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.ProvisionGuests(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestMentionUser(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	res, err := f.svc.ProvisionGuests(ctx, "ev-1")
	require.NoError(t, err)
	guest := res.Created[0]

	require.NoError(t, f.svc.MentionUser(ctx, "c-1", guest.ID))

	assert.True(t, f.social.comments["c-1"].HasMention(guest.ID))
	sent := f.outbox.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, []string{guest.Email}, sent[2].Message.To)

	assert.ErrorIs(t, f.svc.MentionUser(ctx, "missing", guest.ID), ErrCommentNotFound)
	assert.ErrorIs(t, f.svc.MentionUser(ctx, "c-1", "ghost"), ErrUserNotFound)
}

func TestPublishPost_WithProducer(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	post, err := f.svc.PublishPost(ctx, &domain.Post{ServiceID: "svc-1", EventID: "ev-1", AuthorID: "author", Body: "We are live"})

	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	require.Len(t, f.producer.published, 1)
	ev := f.producer.published[0]
	assert.Equal(t, notification.TypePostPublished, ev.Type)
	assert.Equal(t, post.ID, ev.PostID)
	assert.Equal(t, "ev-1", ev.EventID)
	assert.Empty(t, f.outbox.Sent())
}

func TestPublishPost_InlineWhenPublishFails(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.svc.ProvisionGuests(ctx, "ev-1")
	require.NoError(t, err)
	f.producer.err = errors.New("broker down")

	_, err = f.svc.PublishPost(ctx, &domain.Post{ServiceID: "svc-1", EventID: "ev-1", AuthorID: "author", Body: "We are live"})

	require.NoError(t, err)
	assert.Len(t, f.outbox.Sent(), 4)
}

func TestPublishPost_Validation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.PublishPost(ctx, &domain.Post{ServiceID: "svc-1", AuthorID: "author"})
	assert.Error(t, err)

	_, err = f.svc.PublishPost(ctx, &domain.Post{ServiceID: "svc-2", EventID: "ev-1", AuthorID: "author", Body: "x"})
	assert.ErrorIs(t, err, ErrEventNotFound)

	post, err := f.svc.PublishPost(ctx, &domain.Post{ServiceID: "svc-1", AuthorID: "author", Body: "Feed only"})
	require.NoError(t, err)
	assert.Contains(t, f.social.posts, post.ID)
}

func TestNotifyPostGuests(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	res, err := f.svc.ProvisionGuests(ctx, "ev-1")
	require.NoError(t, err)
	f.social.posts["p-1"] = &domain.Post{ID: "p-1", ServiceID: "svc-1", EventID: "ev-1", AuthorID: res.Created[1].ID, Body: "hi"}

	out, err := f.svc.NotifyPostGuests(ctx, "p-1")

	require.NoError(t, err)
	assert.Equal(t, NotifyResult{Sent: 1}, out)
	sent := f.outbox.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, []string{"ann@guests.io"}, sent[2].Message.To)

	_, err = f.svc.NotifyPostGuests(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}
