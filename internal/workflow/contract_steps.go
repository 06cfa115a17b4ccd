package workflow

import (
	"context"

	buyingdomain "content-commerce/backend/internal/buying/domain"
	"content-commerce/backend/internal/pipeline"
	"content-commerce/backend/internal/security"
)

func encryptReceipt() pipeline.Factory[ContractState] {
	return pipeline.Func("EncryptReceipt", func(_ context.Context, s *ContractState) error {
		s.StoredReceipt = security.ObscureReceipt(s.Receipt)
		return nil
	})
}

func (p *Pipelines) setUserPremium() pipeline.Factory[ContractState] {
	return pipeline.Func("SetUserPremium", func(ctx context.Context, s *ContractState) error {
		u := s.PipelineUser()
		if u == nil {
			return pipeline.Stop("no user to mark as premium")
		}
		if err := p.deps.Users.SetPremium(ctx, u.ID, true); err != nil {
			return err
		}
		u.IsPremium = true
		return nil
	})
}

func (p *Pipelines) createContract() pipeline.Factory[ContractState] {
	return pipeline.Func("CreateContract", func(ctx context.Context, s *ContractState) error {
		if s.Package == nil {
			return pipeline.Stop("package not found")
		}
		c := &buyingdomain.Contract{
			UserID:    s.User.ID,
			PackageID: s.Package.ID,
			Receipt:   s.StoredReceipt,
			IsActive:  true,
		}
		if err := p.deps.Contracts.CreateContract(ctx, c); err != nil {
			return err
		}
		s.Contract = c
		pipeline.Logf(ctx, "Contract %s created for user %s on package %s", c.ID, c.UserID, c.PackageID)
		return nil
	})
}
