// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev tenant (slug "dev") already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"content-commerce/backend/internal/app"
	"content-commerce/backend/internal/buying/backend"
	buyingdomain "content-commerce/backend/internal/buying/domain"
	"content-commerce/backend/internal/config"
	"content-commerce/backend/internal/db"
	"content-commerce/backend/internal/mail"
	materialdomain "content-commerce/backend/internal/material/domain"
	policydomain "content-commerce/backend/internal/policy/domain"
	"content-commerce/backend/internal/policy/engine"
	socialdomain "content-commerce/backend/internal/social/domain"
	tenantdomain "content-commerce/backend/internal/tenant/domain"
	"content-commerce/backend/internal/workflow"
)

const (
	devSlug      = "dev"
	devUserEmail = "dev@example.com"
	devPassword  = "password123"
	guestList    = "guest1@example.com,guestpass1\nguest2@example.com,guestpass2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	a, err := app.New(cfg, conn, app.Options{Logger: logger})
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	repos := a.Repos
	ctx := context.Background()

	existing, err := repos.Tenants.GetBySlug(ctx, devSlug)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (tenant dev exists). Skipping.")
		os.Exit(0)
	}

	svc := &tenantdomain.Service{
		Name:      "Dev Academy",
		Slug:      devSlug,
		URL:       "http://localhost:3000/confirm/",
		SMTPEmail: cfg.DefaultFromEmail,
		Language:  "en",
	}
	if err := repos.Tenants.Create(ctx, svc); err != nil {
		log.Fatalf("create tenant: %v", err)
	}

	configs := tenantdomain.DefaultCredentialConfigs(svc.ID)
	if err := tenantdomain.ValidateCredentialSetup(configs); err != nil {
		log.Fatalf("credential configs: %v", err)
	}
	if err := repos.Tenants.ReplaceCredentialConfigs(ctx, svc.ID, configs); err != nil {
		log.Fatalf("create credential configs: %v", err)
	}

	for _, typ := range []tenantdomain.EmailType{tenantdomain.EmailRegister, tenantdomain.EmailGuestInvitation, tenantdomain.EmailNewPostNotification} {
		if err := repos.Tenants.SaveEmailConfig(ctx, &tenantdomain.EmailConfig{
			Scope:        tenantdomain.ServiceScope(svc.ID),
			Type:         typ,
			Sender:       mail.SenderDummy,
			Subject:      mail.GenericSubject,
			HTMLTemplate: mail.GenericTemplate,
			Link:         svc.URL,
		}); err != nil {
			log.Fatalf("create %s email config: %v", typ, err)
		}
	}

	store := &buyingdomain.Store{ServiceID: svc.ID, Name: "Dummy store", Backend: buyingdomain.BackendDummy}
	if err := repos.Buying.CreateStore(ctx, store); err != nil {
		log.Fatalf("create store: %v", err)
	}
	course := &materialdomain.Course{ServiceID: svc.ID, Title: "Intro to Go", IsPaid: true}
	if err := repos.Courses.Create(ctx, course); err != nil {
		log.Fatalf("create course: %v", err)
	}
	pkg := &buyingdomain.Package{
		ServiceID: svc.ID,
		StoreID:   store.ID,
		Label:     "Full access",
		Slug:      "full-access",
		Price:     "9.90",
		CourseIDs: []string{course.ID},
	}
	if err := repos.Buying.CreatePackage(ctx, pkg); err != nil {
		log.Fatalf("create package: %v", err)
	}

	if err := repos.Policies.Create(ctx, &policydomain.Policy{
		ServiceID: svc.ID,
		Rules:     engine.DefaultPolicy,
		Enabled:   true,
	}); err != nil {
		log.Fatalf("create policy: %v", err)
	}

	event := &socialdomain.Event{
		ServiceID: svc.ID,
		Title:     "Launch party",
		IsOpen:    true,
		Guests:    guestList,
	}
	if err := event.ValidateGuests(); err != nil {
		log.Fatalf("guest list: %v", err)
	}
	if err := repos.Social.CreateEvent(ctx, event); err != nil {
		log.Fatalf("create event: %v", err)
	}

	p := a.Pipelines.CreateUser(workflow.UserParams{
		FirstName:  "Dev",
		LastName:   "User",
		Email:      devUserEmail,
		Password:   devPassword,
		Service:    svc,
		Username:   "devuser",
		IsVerified: true,
	})
	if err := p.Run(ctx); err != nil {
		log.Fatalf("create dev user: %v", err)
	}
	if p.Stopped() {
		log.Fatalf("create dev user: %s", p.StopReason())
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev login (service %q): %s / %s\n", devSlug, devUserEmail, devPassword)
	fmt.Printf("Dev token: %s\n", p.State.Token.Key)
	fmt.Printf("Package %s purchasable with receipt %q\n", pkg.ID, backend.DummyReceipt)
	fmt.Printf("Event %s: provision its guests with SocialService/ProvisionGuests\n", event.ID)
}
