package workflow

import (
	buyingdomain "content-commerce/backend/internal/buying/domain"
	"content-commerce/backend/internal/pipeline"
	socialdomain "content-commerce/backend/internal/social/domain"
	userdomain "content-commerce/backend/internal/user/domain"
)

// Pipeline names used in logs, spans and metrics.
const (
	CreateUserPipeline     = "CreateUserPipeline"
	CreateContractPipeline = "CreateContractPipeline"
	MentionGuestPipeline   = "MentionGuestPipeline"
	NewPostPipeline        = "NewPostPipeline"
)

// CreateUser builds the user creation pipeline: GenerateRandomUsername,
// CreateUser, GenerateToken, SendEmail (only when params.SendMail).
func (p *Pipelines) CreateUser(params UserParams) *pipeline.Pipeline[UserState] {
	return pipeline.New(CreateUserPipeline, &UserState{UserParams: params}, []pipeline.Factory[UserState]{
		p.generateRandomUsername(),
		p.createUser(),
		p.generateToken(),
		sendEmail(p, userEnvelope),
	}, p.options()...)
}

// CreateContract builds the purchase pipeline: EncryptReceipt, SetUserPremium,
// CreateContract. The receipt must already be verified.
func (p *Pipelines) CreateContract(receipt string, pkg *buyingdomain.Package, u *userdomain.User) *pipeline.Pipeline[ContractState] {
	return pipeline.New(CreateContractPipeline, &ContractState{Receipt: receipt, Package: pkg, User: u}, []pipeline.Factory[ContractState]{
		encryptReceipt(),
		p.setUserPremium(),
		p.createContract(),
	}, p.options()...)
}

// MentionGuest builds the mention pipeline: AddMentionOnComment, SendEmail.
func (p *Pipelines) MentionGuest(u *userdomain.User, c *socialdomain.Comment) *pipeline.Pipeline[MentionState] {
	return pipeline.New(MentionGuestPipeline, &MentionState{User: u, Comment: c}, []pipeline.Factory[MentionState]{
		p.addMentionOnComment(),
		sendEmail(p, mentionEnvelope),
	}, p.options()...)
}

// NotifyNewPost builds the new-post pipeline for one guest: SendEmail.
func (p *Pipelines) NotifyNewPost(guest *userdomain.User, post *socialdomain.Post) *pipeline.Pipeline[NewPostState] {
	return pipeline.New(NewPostPipeline, &NewPostState{Guest: guest, Post: post}, []pipeline.Factory[NewPostState]{
		sendEmail(p, newPostEnvelope),
	}, p.options()...)
}
